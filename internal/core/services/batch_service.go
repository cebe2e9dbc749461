package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/snapexpense/snap_expense_app/internal/apperrors"
	"github.com/snapexpense/snap_expense_app/internal/core/domain"
	portsrepo "github.com/snapexpense/snap_expense_app/internal/core/ports/repositories"
	portssvc "github.com/snapexpense/snap_expense_app/internal/core/ports/services"
	"github.com/snapexpense/snap_expense_app/internal/dto"
	"github.com/snapexpense/snap_expense_app/internal/middleware"
)

// batchService provides batch CRUD operations.
type batchService struct {
	batchRepo   portsrepo.BatchRepositoryFacade
	projectRepo portsrepo.ProjectReader
}

// NewBatchService creates a new BatchService.
func NewBatchService(batchRepo portsrepo.BatchRepositoryFacade, projectRepo portsrepo.ProjectReader) portssvc.BatchSvcFacade {
	return &batchService{batchRepo: batchRepo, projectRepo: projectRepo}
}

var _ portssvc.BatchSvcFacade = (*batchService)(nil)

func (s *batchService) CreateBatch(ctx context.Context, req dto.CreateBatchRequest, userID string) (*domain.Batch, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	project, err := s.projectRepo.FindProjectByID(ctx, req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to find project %s: %w", req.ProjectID, err)
	}
	if project.UserID != userID {
		return nil, apperrors.ErrForbidden
	}

	now := time.Now()
	batch := domain.Batch{
		BatchID:    uuid.NewString(),
		UserID:     userID,
		ProjectID:  req.ProjectID,
		Name:       req.Name,
		DateFrom:   req.DateFrom,
		DateTo:     req.DateTo,
		Statuses:   req.Statuses,
		Categories: req.Categories,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.batchRepo.SaveBatch(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to save batch: %w", err)
	}

	logger.Info("Batch created", slog.String("batch_id", batch.BatchID))
	return &batch, nil
}

func (s *batchService) GetBatchByID(ctx context.Context, batchID, userID string) (*domain.Batch, error) {
	batch, err := s.batchRepo.FindBatchByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if batch.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return batch, nil
}

func (s *batchService) ListBatches(ctx context.Context, projectID, userID string) ([]domain.Batch, error) {
	return s.batchRepo.ListBatchesByProject(ctx, projectID, userID)
}

func (s *batchService) ListBatchIssues(ctx context.Context, batchID, userID string) ([]domain.BatchIssue, error) {
	if _, err := s.GetBatchByID(ctx, batchID, userID); err != nil {
		return nil, err
	}
	return s.batchRepo.ListIssuesByBatch(ctx, batchID)
}

func (s *batchService) UpdateBatch(ctx context.Context, batchID string, req dto.UpdateBatchRequest, userID string) (*domain.Batch, error) {
	batch, err := s.GetBatchByID(ctx, batchID, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		batch.Name = *req.Name
	}
	if req.DateFrom != nil {
		batch.DateFrom = req.DateFrom
	}
	if req.DateTo != nil {
		batch.DateTo = req.DateTo
	}
	if req.Statuses != nil {
		batch.Statuses = *req.Statuses
	}
	if req.Categories != nil {
		batch.Categories = *req.Categories
	}
	batch.LastUpdatedAt = time.Now()
	batch.LastUpdatedBy = userID

	if err := s.batchRepo.UpdateBatch(ctx, *batch); err != nil {
		return nil, fmt.Errorf("failed to update batch %s: %w", batchID, err)
	}
	return batch, nil
}

func (s *batchService) DeleteBatch(ctx context.Context, batchID, userID string) error {
	if _, err := s.GetBatchByID(ctx, batchID, userID); err != nil {
		return err
	}
	return s.batchRepo.DeleteBatch(ctx, batchID)
}
