package worker

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
	"text2phenotype.com/hmmtag/tasks"
)

type failingMethod struct {
	fail bool
}

type withValue struct {
	fail          bool
	returnedValue interface{}
}

type redisMock struct {
	config redisMockConfig
	calls  redisMockCalls
	// last task state written by onTaskComplete
	completed *Task
}

type redisMockConfig struct {
	getTaggingTask        withValue
	onTaskCancelled       failingMethod
	onTaskStarted         failingMethod
	onTaskExceededRetries failingMethod
	onTaskFailedWithError failingMethod
	onTaskComplete        failingMethod
}

type redisMockCalls struct {
	getTaggingTask        bool
	onTaskCancelled       bool
	onTaskStarted         bool
	onTaskExceededRetries bool
	onTaskFailedWithError bool
	onTaskComplete        bool
}

type rmqMock struct {
	config    rmqMockConfig
	calls     rmqMockCalls
	published []byte
}

type rmqMockConfig struct {
	sendResult          failingMethod
	acknowledgeDelivery failingMethod
}

type rmqMockCalls struct {
	sendResult          bool
	acknowledgeDelivery bool
	rejectDelivery      bool
}

type s3Mock struct {
	config s3MockConfig
	calls  s3MockCalls
	saved  string
}

type s3MockConfig struct {
	getModelData     withValue
	getSentencesData withValue
	saveResultsFile  failingMethod
}

type s3MockCalls struct {
	getModelData     bool
	getSentencesData bool
	saveResultsFile  bool
}

func (mock *s3Mock) close() {}

func (mock *rmqMock) close() {}

func (mock *redisMock) close() {}

func (mock *redisMock) getTaggingTask(_ context.Context, redisKey string) (*tasks.TaggingTask, error) {
	mock.calls.getTaggingTask = true
	if mock.config.getTaggingTask.fail {
		return nil, errors.New("failed to get tagging task")
	}
	switch value := mock.config.getTaggingTask.returnedValue.(type) {
	case tasks.TaggingTask:
		return &value, nil
	default:
		return &tasks.TaggingTask{ModelFileKey: "models/model.txt", SentencesFileKey: "input/sentences.txt"}, nil
	}
}

func (mock *redisMock) onTaskStarted(_ context.Context, task *Task) error {
	mock.calls.onTaskStarted = true
	if mock.config.onTaskStarted.fail {
		return errors.New("failed to update tagging task on start")
	}
	return nil
}

func (mock *redisMock) onTaskCancelled(_ context.Context, task *Task) error {
	mock.calls.onTaskCancelled = true
	if mock.config.onTaskCancelled.fail {
		return errors.New("failed to update tagging task on cancel")
	}
	return nil
}

func (mock *redisMock) onTaskExceededRetries(_ context.Context, task *Task, maxRetries int) error {
	mock.calls.onTaskExceededRetries = true
	if mock.config.onTaskExceededRetries.fail {
		return errors.New("failed to update tagging task on exceeded retries")
	}
	return nil
}

func (mock *redisMock) onTaskFailedWithError(_ context.Context, task *Task, err error) error {
	mock.calls.onTaskFailedWithError = true
	if mock.config.onTaskFailedWithError.fail {
		return errors.New("failed to update tagging task on fail with error")
	}
	return nil
}

func (mock *redisMock) onTaskComplete(_ context.Context, task *Task) error {
	mock.calls.onTaskComplete = true
	mock.completed = task
	if mock.config.onTaskComplete.fail {
		return errors.New("failed to update tagging task on complete")
	}
	return nil
}

func (mock *rmqMock) rejectDelivery(delivery *amqp.Delivery, hmmLogger *zerolog.Logger) {
	mock.calls.rejectDelivery = true
}

func (mock *rmqMock) getDeliveriesCh() <-chan amqp.Delivery {
	return nil
}

func (mock *rmqMock) getReqChanErrorsCh() <-chan *amqp.Error {
	return nil
}

func (mock *rmqMock) getRespChanErrorsCh() <-chan *amqp.Error {
	return nil
}

func (mock *rmqMock) sendResult(task *Task, message Message) error {
	mock.calls.sendResult = true
	if mock.config.sendResult.fail {
		return errors.New("failed to send result")
	}
	b, err := resultMessage(message)
	mock.published = b
	return err
}

func (mock *rmqMock) acknowledgeDelivery(delivery *amqp.Delivery) error {
	mock.calls.acknowledgeDelivery = true
	if mock.config.acknowledgeDelivery.fail {
		return errors.New("failed to acknowledge delivery")
	}
	return nil
}

func (mock *s3Mock) getModelData(task *Task) ([]byte, error) {
	mock.calls.getModelData = true
	if mock.config.getModelData.fail {
		return nil, errors.New("mock: failed to load model from s3")
	}
	if value, ok := mock.config.getModelData.returnedValue.([]byte); ok {
		return value, nil
	}
	return []byte(testModel), nil
}

func (mock *s3Mock) getSentencesData(task *Task) ([]byte, error) {
	mock.calls.getSentencesData = true
	if mock.config.getSentencesData.fail {
		return nil, errors.New("mock: failed to load sentences from s3")
	}
	if value, ok := mock.config.getSentencesData.returnedValue.([]byte); ok {
		return value, nil
	}
	return []byte(testSentences), nil
}

func (mock *s3Mock) saveResultsFile(task *Task, result string) error {
	mock.calls.saveResultsFile = true
	if mock.config.saveResultsFile.fail {
		return errors.New("failed to upload results")
	}
	mock.saved = result
	return nil
}
