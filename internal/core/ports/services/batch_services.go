package services

import (
	"context"

	"github.com/snapexpense/snap_expense_app/internal/core/domain"
	"github.com/snapexpense/snap_expense_app/internal/dto"
)

// BatchSvcFacade defines operations for managing batches.
type BatchSvcFacade interface {
	CreateBatch(ctx context.Context, req dto.CreateBatchRequest, userID string) (*domain.Batch, error)
	GetBatchByID(ctx context.Context, batchID, userID string) (*domain.Batch, error)
	ListBatches(ctx context.Context, projectID, userID string) ([]domain.Batch, error)
	ListBatchIssues(ctx context.Context, batchID, userID string) ([]domain.BatchIssue, error)
	UpdateBatch(ctx context.Context, batchID string, req dto.UpdateBatchRequest, userID string) (*domain.Batch, error)
	DeleteBatch(ctx context.Context, batchID, userID string) error
}

// BatchCheckerSvc recomputes the full issue set of a batch. Idempotent and
// safe to re-run; a missing batch is a vacuous success.
type BatchCheckerSvc interface {
	Check(ctx context.Context, batchID, userID string) error
}
