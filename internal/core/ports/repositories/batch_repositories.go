package repositories

import (
	"context"
	"time"

	"github.com/snapexpense/snap_expense_app/internal/core/domain"
)

// BatchReader defines read operations for batch data
type BatchReader interface {
	// FindBatchByID retrieves a specific batch by its unique identifier.
	FindBatchByID(ctx context.Context, batchID string) (*domain.Batch, error)

	// ListBatchesByProject retrieves all batches of a project/user pair,
	// newest first.
	ListBatchesByProject(ctx context.Context, projectID, userID string) ([]domain.Batch, error)

	// ListIssuesByBatch retrieves the current issue set of a batch.
	ListIssuesByBatch(ctx context.Context, batchID string) ([]domain.BatchIssue, error)
}

// BatchWriter defines write operations for batch data
type BatchWriter interface {
	// SaveBatch persists a new batch.
	SaveBatch(ctx context.Context, batch domain.Batch) error

	// UpdateBatch updates the filter criteria and name of a batch.
	UpdateBatch(ctx context.Context, batch domain.Batch) error

	// DeleteBatch removes a batch and its issues.
	DeleteBatch(ctx context.Context, batchID string) error

	// ReplaceIssues atomically replaces the issue set of a batch and writes
	// the denormalized summary counts. Readers never observe a partially
	// replaced set; an empty list is a valid replacement.
	ReplaceIssues(ctx context.Context, batchID string, issues []domain.BatchIssue, summary domain.IssueSummary, checkedAt time.Time) error
}

// BatchRepositoryFacade combines all batch-related repository interfaces
type BatchRepositoryFacade interface {
	BatchReader
	BatchWriter
}
