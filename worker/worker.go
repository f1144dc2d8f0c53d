package worker

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"text2phenotype.com/hmmtag/logger"
	"text2phenotype.com/hmmtag/rmq"
	"text2phenotype.com/hmmtag/s3client"
	"text2phenotype.com/hmmtag/tasks"
	"text2phenotype.com/hmmtag/types"
)

type Config struct {
	TaskMaxRetries int           `envconfig:"HMM_RETRY_TASK_COUNT_MAX" default:"3"`
	TaskTimeout    time.Duration `envconfig:"HMM_TASK_TIMEOUT" default:"10m"`
	ResultsPrefix  string        `envconfig:"HMM_RESULTS_PREFIX" default:"processed/tagging"`
}

type Worker struct {
	config    Config
	redis     redisTransactions
	s3        s3Transactions
	rmq       rmqTransactions
	models    *modelCache
	hmmLogger *zerolog.Logger
}

func New(taggerConfig types.TaggerConfig) (*Worker, error) {
	hmmLogger := logger.NewLogger("Worker")

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		hmmLogger.Error().Err(err).Msg("Could not read config")
		return nil, err
	}

	worker := Worker{
		config:    config,
		models:    newModelCache(taggerConfig),
		hmmLogger: &hmmLogger,
	}
	if err := worker.refreshRMQClient(); err != nil {
		hmmLogger.Error().Err(err).Msg("Could not create RMQ client")
		return nil, err
	}
	if err := worker.refreshS3Client(); err != nil {
		hmmLogger.Error().Err(err).Msg("Could not create S3 client")
		worker.rmq.close()
		return nil, err
	}
	if err := worker.refreshRedisClient(); err != nil {
		hmmLogger.Error().Err(err).Msg("Could not create Redis client")
		worker.rmq.close()
		worker.s3.close()
		return nil, err
	}
	return &worker, nil
}

// StartWorker consumes tagging tasks until the RMQ connection fails and
// cannot be refreshed.
func (worker *Worker) StartWorker() error {
	defer worker.Close()
	for {
		select {
		case delivery, ok := <-worker.rmq.getDeliveriesCh():
			if ok {
				go worker.processMessage(&delivery)
				continue
			}
			worker.hmmLogger.Error().Msg("Deliveries channel closed, trying to refresh RMQ client")
			if err := worker.refreshRMQClient(); err != nil {
				return fmt.Errorf("rmq deliveries channel has been closed and refresh returned error: %w", err)
			}
		case rmqErr := <-worker.rmq.getRespChanErrorsCh():
			if rmqErr == nil {
				continue
			}
			worker.hmmLogger.Err(rmqErr).Msg("Response connection received error, trying to refresh RMQ client")
			if err := worker.refreshRMQClient(); err != nil {
				return fmt.Errorf("response connection received error and refresh failed with: %w", err)
			}
		case rmqErr := <-worker.rmq.getReqChanErrorsCh():
			if rmqErr == nil {
				continue
			}
			worker.hmmLogger.Err(rmqErr).Msg("Request connection received error, trying to refresh RMQ client")
			if err := worker.refreshRMQClient(); err != nil {
				return fmt.Errorf("request connection received error and refresh failed with: %w", err)
			}
		}
	}
}

func (worker *Worker) Close() {
	worker.redis.close()
	worker.s3.close()
	worker.rmq.close()
}

func (worker *Worker) refreshRedisClient() error {
	worker.hmmLogger.Info().Msg("Refreshing Redis client")
	if oldClient := worker.redis; oldClient != nil {
		defer oldClient.close()
	}
	tasksClient, err := tasks.NewClient()
	if err != nil {
		worker.hmmLogger.Err(err).Msg("Failed to refresh Redis client")
		return err
	}
	worker.redis = &redisClientWrapper{&tasksClient}
	return nil
}

func (worker *Worker) refreshRMQClient() error {
	worker.hmmLogger.Info().Msg("Refreshing RMQ client")
	if oldClient := worker.rmq; oldClient != nil {
		defer oldClient.close()
	}
	rmqClient, err := rmq.NewClient()
	if err != nil {
		worker.hmmLogger.Err(err).Msg("Failed to refresh RMQ client")
		return err
	}
	worker.rmq = &rmqClientWrapper{rmqClient}
	return nil
}

func (worker *Worker) refreshS3Client() error {
	worker.hmmLogger.Info().Msg("Refreshing S3 client")
	if oldClient := worker.s3; oldClient != nil {
		defer oldClient.close()
	}
	s3Client, err := s3client.New()
	if err != nil {
		worker.hmmLogger.Err(err).Msg("Failed to refresh S3 client")
		return err
	}
	worker.s3 = &s3ClientWrapper{s3Client}
	return nil
}
