package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
	"text2phenotype.com/hmmtag/pipeline"
	"text2phenotype.com/hmmtag/tasks"
	"text2phenotype.com/hmmtag/utils"
)

const senderName = "hmm-tagger"

type Message struct {
	RedisKey string `json:"redis_key"`
	Sender   string `json:"sender"`
	Version  string `json:"version"`
}

type Task struct {
	delivery    *amqp.Delivery
	taggingTask *tasks.TaggingTask
	message     *Message
	redisKey    string
	resultsKey  string
	fingerprint string
	stats       *tasks.TaggingStats
	hmmLogger   *zerolog.Logger
}

func (worker *Worker) processMessage(delivery *amqp.Delivery) {
	ctx := context.Background()
	if worker.config.TaskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, worker.config.TaskTimeout)
		defer cancel()
	}

	rejectLogger := worker.hmmLogger.With().Str("message_id", delivery.MessageId).Logger()
	task, err := worker.createTask(ctx, delivery)
	if err != nil {
		rejectLogger.Err(err).
			Str("body", string(delivery.Body)).
			Msg("Failed to create task for delivery")
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = worker.processTask(ctx, task); err != nil {
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = worker.rmq.sendResult(task, *task.message); err != nil {
		task.hmmLogger.Err(err).Msg("Got error while sending message to results queue")
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = worker.rmq.acknowledgeDelivery(delivery); err != nil {
		task.hmmLogger.Err(err).Msg("Failed to acknowledge delivery")
	}
	task.hmmLogger.Info().Msg("Finished processing RMQ message")
}

func (worker *Worker) createTask(ctx context.Context, delivery *amqp.Delivery) (*Task, error) {
	var message Message
	if err := json.Unmarshal(delivery.Body, &message); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message, got error %w", err)
	}
	if message.RedisKey == "" {
		return nil, errors.New("message has no redis_key")
	}
	taggingTask, err := worker.redis.getTaggingTask(ctx, message.RedisKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query tagging task for message, got error %w", err)
	}
	taskLogger := worker.hmmLogger.With().Str("tid", message.RedisKey).Logger()
	task := Task{
		delivery:    delivery,
		taggingTask: taggingTask,
		redisKey:    message.RedisKey,
		message:     &message,
		hmmLogger:   &taskLogger,
	}
	task.resultsKey = getResultsFileKey(worker.config.ResultsPrefix, &task)
	return &task, nil
}

func (worker *Worker) processTask(ctx context.Context, task *Task) error {
	shouldPerform, err := worker.shouldPerformTask(ctx, task)
	if err != nil {
		task.hmmLogger.Err(err).Msg("Got error while trying to decide whether to run task")
		return err
	}
	if !shouldPerform {
		return nil
	}
	if err = worker.redis.onTaskStarted(ctx, task); err != nil {
		task.hmmLogger.Err(err).Msg("Failed to update task info")
		return fmt.Errorf("failed to update TaggingTask: %w", err)
	}
	if err = worker.runTagging(ctx, task); err != nil {
		task.hmmLogger.Err(err).Msg("Got error while tagging")
		return worker.redis.onTaskFailedWithError(ctx, task, err)
	}
	task.hmmLogger.Info().Msg("Saved results, marking task as complete")
	if err = worker.redis.onTaskComplete(ctx, task); err != nil {
		task.hmmLogger.Err(err).Msg("Got error while trying to mark task as complete")
		return err
	}
	return nil
}

func (worker *Worker) runTagging(ctx context.Context, task *Task) (err error) {
	defer utils.RecoverWithError(&err)
	task.hmmLogger.Info().Msgf("Processing message from RMQ, attempt # %d", task.taggingTask.Attempts)

	modelData, err := worker.s3.getModelData(task)
	if err != nil {
		return fmt.Errorf("failed fetch model from s3: %w", err)
	}
	loaded, err := worker.models.get(modelData)
	if err != nil {
		return fmt.Errorf("failed to load model %s: %w", task.taggingTask.ModelFileKey, err)
	}
	task.fingerprint = loaded.fingerprint

	sentences, err := worker.s3.getSentencesData(task)
	if err != nil {
		return fmt.Errorf("failed fetch sentences from s3: %w", err)
	}

	request := pipeline.Request{
		Tid:  task.redisKey,
		Text: string(sentences),
	}
	resp, ok := <-loaded.ppln(ctx, request)
	if !ok {
		return errors.New("pipeline channel was closed before returning anything")
	}
	if resp.Err != nil {
		return fmt.Errorf("tagging interrupted: %w", resp.Err)
	}
	task.stats = &tasks.TaggingStats{
		Sentences: resp.Stats.Sentences,
		Tagged:    resp.Stats.Tagged,
		NoPath:    resp.Stats.NoPath,
	}

	task.hmmLogger.Info().Msg("Finished tagging, saving results to s3")
	if err = worker.s3.saveResultsFile(task, resp.String()); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}
	return nil
}

func (worker *Worker) shouldPerformTask(ctx context.Context, task *Task) (bool, error) {
	taskInfo := task.taggingTask
	taskLogger := task.hmmLogger

	if taskInfo.Status.Complete() {
		taskLogger.Info().Msg("Task is already done. (might indicate issue acking message with RMQ). Sending result again.")
		return false, nil
	}
	if taskInfo.UserCanceled {
		taskLogger.Info().Msg("Task was canceled, no need to perform it.")
		return false, worker.redis.onTaskCancelled(ctx, task)
	}
	if taskInfo.Attempts >= worker.config.TaskMaxRetries {
		taskLogger.Info().Msg("Tagging task has exceeded retries.")
		return false, worker.redis.onTaskExceededRetries(ctx, task, worker.config.TaskMaxRetries)
	}
	return true, nil
}
