package rmq

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
	"text2phenotype.com/hmmtag/logger"
)

type Config struct {
	Host                    string `envconfig:"HMM_RMQ_HOST" required:"true"`
	Port                    string `envconfig:"HMM_RMQ_PORT" default:"5672"`
	Username                string `envconfig:"HMM_RMQ_USERNAME" required:"true"`
	Password                string `envconfig:"HMM_RMQ_PASSWORD" required:"true"`
	Exchange                string `envconfig:"HMM_RMQ_EXCHANGE" default:"hmm-tagger-exchange"`
	MaxParallelRequestCount int    `envconfig:"HMM_MQ_MAX_PARALLEL_REQUESTS" default:"5"`
	TaskQueue               string `envconfig:"HMM_TAGGING_TASK_QUEUE" required:"true"`
	ResultsQueue            string `envconfig:"HMM_TAGGING_RESULTS_QUEUE" required:"true"`
}

// Client consumes tagging tasks on one connection and publishes results on
// another, so a blocked publisher never stalls deliveries.
type Client struct {
	Deliveries     <-chan amqp.Delivery
	ReqChanErrors  <-chan *amqp.Error
	RespChanErrors <-chan *amqp.Error
	config         Config
	reqConn        *amqp.Connection
	respConn       *amqp.Connection
	respChannel    *amqp.Channel
	hmmLogger      *zerolog.Logger
}

func NewClient() (*Client, error) {
	hmmLogger := logger.NewLogger("RMQ client")
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		hmmLogger.Error().Err(err).Msg("Could not read env config")
		return nil, err
	}

	url := URL(config)
	respConn, respChannel, err := setup(url)
	if err != nil {
		return nil, fmt.Errorf("failed connection: %w", err)
	}
	reqConn, reqChannel, err := setup(url)
	if err != nil {
		_ = respConn.Close()
		return nil, fmt.Errorf("failed connection: %w", err)
	}

	deliveries, err := consume(config, reqChannel)
	if err != nil {
		_ = respConn.Close()
		_ = reqConn.Close()
		return nil, err
	}

	hmmLogger.Info().Str("queue", config.TaskQueue).Msg("Consuming tagging tasks")
	return &Client{
		Deliveries:     deliveries,
		ReqChanErrors:  reqChannel.NotifyClose(make(chan *amqp.Error, 1)),
		RespChanErrors: respChannel.NotifyClose(make(chan *amqp.Error, 1)),
		config:         config,
		reqConn:        reqConn,
		respConn:       respConn,
		respChannel:    respChannel,
		hmmLogger:      &hmmLogger,
	}, nil
}

func consume(config Config, ch *amqp.Channel) (<-chan amqp.Delivery, error) {
	q, err := ch.QueueDeclarePassive(
		config.TaskQueue, // name
		true,             // durable
		false,            // delete when unused
		false,            // exclusive
		false,            // no-wait
		nil,              // arguments
	)
	if err != nil {
		return nil, err
	}
	if err := ch.QueueBind(q.Name, q.Name, config.Exchange, false, nil); err != nil {
		return nil, err
	}
	if err := ch.Qos(config.MaxParallelRequestCount, 0, false); err != nil {
		return nil, fmt.Errorf("qos: %w", err)
	}
	deliveries, err := ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("consume deliveries: %w", err)
	}
	return deliveries, nil
}

func (c *Client) SendResult(msg amqp.Publishing) error {
	return c.respChannel.Publish(
		c.config.Exchange,
		c.config.ResultsQueue,
		false,
		false,
		msg)
}

func (c *Client) Close() {
	_ = c.reqConn.Close()
	_ = c.respConn.Close()
}

func URL(config Config) string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s", config.Username, config.Password, config.Host, config.Port)
}

func setup(url string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return conn, ch, nil
}
