package services

import (
	"context"

	"github.com/snapexpense/snap_expense_app/internal/core/domain"
)

// JobQueueSvc is the durable background work queue.
type JobQueueSvc interface {
	// Enqueue records a new pending job and returns its ID.
	Enqueue(ctx context.Context, jobType domain.JobType, payload domain.JobPayload) (string, error)

	// RunOnce claims and executes at most one eligible job. The returned
	// bool reports whether a job was claimed; job execution failures are
	// recorded on the row and are not returned as errors.
	RunOnce(ctx context.Context) (bool, error)

	// Start runs the polling loop until the context is cancelled.
	Start(ctx context.Context)
}
