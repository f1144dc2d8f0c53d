package worker

import (
	"encoding/json"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
	"text2phenotype.com/hmmtag/rmq"
)

type rmqTransactions interface {
	sendResult(task *Task, message Message) error
	acknowledgeDelivery(delivery *amqp.Delivery) error
	rejectDelivery(delivery *amqp.Delivery, hmmLogger *zerolog.Logger)
	getDeliveriesCh() <-chan amqp.Delivery
	getReqChanErrorsCh() <-chan *amqp.Error
	getRespChanErrorsCh() <-chan *amqp.Error
	close()
}

type rmqClientWrapper struct {
	rmqClient *rmq.Client
}

func (wrapper *rmqClientWrapper) close() {
	wrapper.rmqClient.Close()
}

func (wrapper *rmqClientWrapper) getDeliveriesCh() <-chan amqp.Delivery {
	return wrapper.rmqClient.Deliveries
}

func (wrapper *rmqClientWrapper) getReqChanErrorsCh() <-chan *amqp.Error {
	return wrapper.rmqClient.ReqChanErrors
}

func (wrapper *rmqClientWrapper) getRespChanErrorsCh() <-chan *amqp.Error {
	return wrapper.rmqClient.RespChanErrors
}

func (wrapper *rmqClientWrapper) sendResult(task *Task, message Message) error {
	b, err := resultMessage(message)
	if err != nil {
		return err
	}
	return wrapper.rmqClient.SendResult(
		amqp.Publishing{
			ContentType: "application/json",
			Body:        b,
		},
	)
}

func resultMessage(message Message) ([]byte, error) {
	message.Sender = senderName
	return json.Marshal(message)
}

func (wrapper *rmqClientWrapper) acknowledgeDelivery(delivery *amqp.Delivery) error {
	return delivery.Ack(false)
}

// rejectDelivery requeues a delivery once; a redelivered message is dropped.
func (wrapper *rmqClientWrapper) rejectDelivery(delivery *amqp.Delivery, hmmLogger *zerolog.Logger) {
	if delivery.Redelivered {
		hmmLogger.Info().Msg("Rejecting delivery as it already has been redelivered")
		if err := delivery.Reject(false); err != nil {
			hmmLogger.Err(err).Msg("Failed to reject delivery")
		}
		return
	}
	hmmLogger.Info().Msg("Requeuing delivery as it has not been redelivered yet")
	if err := delivery.Reject(true); err != nil {
		hmmLogger.Err(err).Msg("Failed to requeue delivery")
	}
}
