package worker

import (
	"text2phenotype.com/hmmtag/s3client"
)

type s3Transactions interface {
	getModelData(task *Task) ([]byte, error)
	getSentencesData(task *Task) ([]byte, error)
	saveResultsFile(task *Task, result string) error
	close()
}

type s3ClientWrapper struct {
	s3Client *s3client.Client
}

func (wrapper *s3ClientWrapper) close() {
	wrapper.s3Client.Close()
}

func (wrapper *s3ClientWrapper) getModelData(task *Task) ([]byte, error) {
	return wrapper.s3Client.Download(task.taggingTask.ModelFileKey)
}

func (wrapper *s3ClientWrapper) getSentencesData(task *Task) ([]byte, error) {
	return wrapper.s3Client.Download(task.taggingTask.SentencesFileKey)
}

func (wrapper *s3ClientWrapper) saveResultsFile(task *Task, result string) error {
	return wrapper.s3Client.Upload(result, task.resultsKey)
}
