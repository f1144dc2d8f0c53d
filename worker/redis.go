package worker

import (
	"context"
	"fmt"

	"text2phenotype.com/hmmtag/tasks"
)

type redisTransactions interface {
	getTaggingTask(ctx context.Context, redisKey string) (*tasks.TaggingTask, error)
	onTaskStarted(ctx context.Context, task *Task) error
	onTaskCancelled(ctx context.Context, task *Task) error
	onTaskExceededRetries(ctx context.Context, task *Task, maxRetries int) error
	onTaskFailedWithError(ctx context.Context, task *Task, err error) error
	onTaskComplete(ctx context.Context, task *Task) error
	close()
}

type redisClientWrapper struct {
	tasksClient *tasks.Client
}

func (wrapper *redisClientWrapper) close() {
	wrapper.tasksClient.Close()
}

func (wrapper *redisClientWrapper) getTaggingTask(ctx context.Context, redisKey string) (*tasks.TaggingTask, error) {
	return wrapper.tasksClient.Tagging.Get(ctx, redisKey)
}

func (wrapper *redisClientWrapper) onTaskStarted(ctx context.Context, task *Task) error {
	return wrapper.tasksClient.Tagging.Update(ctx, task.redisKey, func(taggingTask *tasks.TaggingTask) {
		taggingTask.Status = tasks.TaskStatusStarted
		taggingTask.Attempts++
		taggingTask.StartedAt = getFormattedNow()
		taggingTask.CompletedAt = nil
	})
}

func (wrapper *redisClientWrapper) onTaskCancelled(ctx context.Context, task *Task) error {
	return wrapper.tasksClient.Tagging.Update(ctx, task.redisKey, func(taggingTask *tasks.TaggingTask) {
		taggingTask.Status = tasks.TaskStatusCanceled
		taggingTask.CompletedAt = getFormattedNow()
	})
}

func (wrapper *redisClientWrapper) onTaskExceededRetries(ctx context.Context, task *Task, maxRetries int) error {
	return wrapper.tasksClient.Tagging.Update(ctx, task.redisKey, func(taggingTask *tasks.TaggingTask) {
		taggingTask.Status = tasks.TaskStatusCompletedFailure
		taggingTask.CompletedAt = getFormattedNow()
		taggingTask.ErrorMessages = append(
			taggingTask.ErrorMessages,
			fmt.Sprintf("Task has exceeded retries. (Attempts: %d, max retries: %d)", taggingTask.Attempts, maxRetries),
		)
	})
}

func (wrapper *redisClientWrapper) onTaskFailedWithError(ctx context.Context, task *Task, err error) error {
	return wrapper.tasksClient.Tagging.Update(ctx, task.redisKey, func(taggingTask *tasks.TaggingTask) {
		taggingTask.Status = tasks.TaskStatusFailed
		taggingTask.CompletedAt = getFormattedNow()
		taggingTask.ErrorMessages = append(taggingTask.ErrorMessages, err.Error())
	})
}

func (wrapper *redisClientWrapper) onTaskComplete(ctx context.Context, task *Task) error {
	return wrapper.tasksClient.Tagging.Update(ctx, task.redisKey, func(taggingTask *tasks.TaggingTask) {
		taggingTask.Status = tasks.TaskStatusCompletedSuccess
		taggingTask.CompletedAt = getFormattedNow()
		taggingTask.ResultsFileKey = task.resultsKey
		taggingTask.ModelFingerprint = task.fingerprint
		taggingTask.Stats = task.stats
	})
}
