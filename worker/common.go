package worker

import (
	"fmt"
	"path"
	"time"
)

func getResultsFileKey(prefix string, task *Task) string {
	return path.Join(prefix, task.redisKey, fmt.Sprintf("%s.tags.txt", task.redisKey))
}

const RFC3339Micro = "2006-01-02T15:04:05.000000-07:00"

func getFormattedNow() *string {
	now := time.Now().UTC().Format(RFC3339Micro)
	return &now
}
