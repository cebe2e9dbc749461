package repositories

import (
	"context"
	"time"

	"github.com/snapexpense/snap_expense_app/internal/core/domain"
)

// JobReader defines read operations for job data
type JobReader interface {
	// FindJobByID retrieves a specific job by its unique identifier.
	FindJobByID(ctx context.Context, jobID string) (*domain.Job, error)
}

// JobWriter defines write operations for job data
type JobWriter interface {
	// SaveJob persists a new job row.
	SaveJob(ctx context.Context, job domain.Job) error

	// ClaimNextDue claims at most one eligible job: status pending or
	// failed, attempts below the ceiling, scheduled_at due, oldest first.
	// The claim skips rows locked by concurrent workers and, in the same
	// transaction, marks the row processing, increments attempts and
	// records started_at. Returns nil when no row qualifies.
	ClaimNextDue(ctx context.Context, now time.Time, maxAttempts int) (*domain.Job, error)

	// MarkJobCompleted finishes a job successfully.
	MarkJobCompleted(ctx context.Context, jobID string, completedAt time.Time) error

	// MarkJobFailed records the failure message and the next eligible time.
	MarkJobFailed(ctx context.Context, jobID string, errMsg string, retryAt time.Time) error
}

// JobRepositoryFacade combines all job-related repository interfaces
type JobRepositoryFacade interface {
	JobReader
	JobWriter
}
