package tasks

type TaskStatus string

const (
	TaskStatusSubmitted        TaskStatus = "submitted"
	TaskStatusStarted          TaskStatus = "started"
	TaskStatusFailed           TaskStatus = "failed"
	TaskStatusCompletedSuccess TaskStatus = "completed - success"
	TaskStatusCompletedFailure TaskStatus = "completed - failure"
	TaskStatusCanceled         TaskStatus = "canceled"
)

func (s TaskStatus) Complete() bool {
	return s == TaskStatusCompletedSuccess || s == TaskStatusCompletedFailure || s == TaskStatusCanceled
}

func (s TaskStatus) Submitted() bool {
	return s == TaskStatusSubmitted || s == TaskStatusStarted
}

// TaggingTask describes one batch: the model and sentence files to read and
// where the tagged output was written.
type TaggingTask struct {
	ModelFileKey     string        `json:"model_file_key"`
	SentencesFileKey string        `json:"sentences_file_key"`
	ResultsFileKey   string        `json:"results_file_key"`
	ModelFingerprint string        `json:"model_fingerprint"`
	UserCanceled     bool          `json:"user_canceled"`
	StartedAt        *string       `json:"started_at"`
	CompletedAt      *string       `json:"completed_at"`
	Attempts         int           `json:"attempts"`
	Status           TaskStatus    `json:"status"`
	ErrorMessages    []string      `json:"error_messages"`
	Stats            *TaggingStats `json:"stats"`
}

type TaggingStats struct {
	Sentences int `json:"sentences"`
	Tagged    int `json:"tagged"`
	NoPath    int `json:"no_path"`
}
