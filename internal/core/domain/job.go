package domain

import (
	"encoding/json"
	"time"
)

// JobType selects which worker a queued job is dispatched to.
type JobType string

const (
	JobTypeBatchCheck JobType = "batch_check"
	JobTypeExport     JobType = "export"
)

// JobStatus is the lifecycle state of a queued job.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

const (
	// MaxJobAttempts is the retry ceiling; a job failed this many times is
	// never picked up again.
	MaxJobAttempts = 3

	// JobRetryBackoff is the fixed delay before a failed job becomes
	// eligible again. Deliberately flat, not exponential.
	JobRetryBackoff = time.Minute
)

// Job is one durable unit of background work. Rows are never deleted;
// they double as the audit trail of what ran and how it ended.
type Job struct {
	JobID       string          `json:"jobID"`
	Type        JobType         `json:"type"`
	Payload     json.RawMessage `json:"payload"`
	Status      JobStatus       `json:"status"`
	Attempts    int             `json:"attempts"`
	ScheduledAt time.Time       `json:"scheduledAt"`
	StartedAt   *time.Time      `json:"startedAt,omitempty"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
	Error       *string         `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// JobPayload is the decoded form of the opaque payload column for the two
// job types this system knows about.
type JobPayload struct {
	BatchID  string `json:"batchId,omitempty"`
	ExportID string `json:"exportId,omitempty"`
	UserID   string `json:"userId"`
}
