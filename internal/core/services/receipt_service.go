package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/snapexpense/snap_expense_app/internal/apperrors"
	"github.com/snapexpense/snap_expense_app/internal/core/domain"
	portsrepo "github.com/snapexpense/snap_expense_app/internal/core/ports/repositories"
	portssvc "github.com/snapexpense/snap_expense_app/internal/core/ports/services"
	"github.com/snapexpense/snap_expense_app/internal/core/ports/storage"
	"github.com/snapexpense/snap_expense_app/internal/dto"
	"github.com/snapexpense/snap_expense_app/internal/middleware"
)

// receiptService provides receipt upload, linkage and suggestion operations.
type receiptService struct {
	receiptRepo portsrepo.ReceiptRepositoryFacade
	expenseRepo portsrepo.ExpenseRepositoryFacade
	projectRepo portsrepo.ProjectReader
	userSvc     portssvc.UserReaderSvc
	matcher     portssvc.MatchingSvc
	store       storage.ObjectStore
}

// NewReceiptService creates a new ReceiptService.
func NewReceiptService(
	receiptRepo portsrepo.ReceiptRepositoryFacade,
	expenseRepo portsrepo.ExpenseRepositoryFacade,
	projectRepo portsrepo.ProjectReader,
	userSvc portssvc.UserReaderSvc,
	matcher portssvc.MatchingSvc,
	store storage.ObjectStore,
) portssvc.ReceiptSvcFacade {
	return &receiptService{
		receiptRepo: receiptRepo,
		expenseRepo: expenseRepo,
		projectRepo: projectRepo,
		userSvc:     userSvc,
		matcher:     matcher,
		store:       store,
	}
}

var _ portssvc.ReceiptSvcFacade = (*receiptService)(nil)

// UploadReceipt stores the original bytes in object storage and persists the
// receipt row. The content hash feeds duplicate detection later.
func (s *receiptService) UploadReceipt(ctx context.Context, req dto.UploadReceiptRequest, data []byte, userID string) (*domain.Receipt, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	project, err := s.projectRepo.FindProjectByID(ctx, req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to find project %s: %w", req.ProjectID, err)
	}
	if project.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: receipt file is empty", apperrors.ErrValidation)
	}

	receiptID := uuid.NewString()
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])
	storageKey := "receipts/" + receiptID

	contentType := mime.TypeByExtension(filepath.Ext(req.FileName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if _, err := s.store.Upload(ctx, storageKey, data, contentType); err != nil {
		return nil, fmt.Errorf("failed to upload receipt file: %w", err)
	}

	now := time.Now()
	receipt := domain.Receipt{
		ReceiptID:  receiptID,
		UserID:     userID,
		ProjectID:  req.ProjectID,
		FileName:   req.FileName,
		Hash:       &hash,
		StorageKey: &storageKey,
		Amount:     req.Amount,
		Date:       req.Date,
		Type:       req.Type,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.receiptRepo.SaveReceipt(ctx, receipt); err != nil {
		return nil, fmt.Errorf("failed to save receipt: %w", err)
	}

	logger.Info("Receipt uploaded", slog.String("receipt_id", receiptID), slog.Int("size", len(data)))
	return &receipt, nil
}

func (s *receiptService) GetReceiptByID(ctx context.Context, receiptID, userID string) (*domain.Receipt, error) {
	receipt, err := s.receiptRepo.FindReceiptByID(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	if receipt.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return receipt, nil
}

func (s *receiptService) ListReceipts(ctx context.Context, projectID, userID string) ([]domain.Receipt, error) {
	return s.receiptRepo.ListReceiptsByProject(ctx, projectID, userID)
}

// DeleteReceipt soft-deletes a receipt. A linked expense is unlinked and its
// status flipped back unless the user pinned it manually.
func (s *receiptService) DeleteReceipt(ctx context.Context, receiptID, userID string) error {
	receipt, err := s.GetReceiptByID(ctx, receiptID, userID)
	if err != nil {
		return err
	}
	if receipt.DeletedAt != nil {
		return nil // already gone
	}

	if receipt.MatchedExpenseID != nil {
		if err := s.UnmatchReceipt(ctx, receiptID, userID); err != nil {
			return err
		}
	}
	return s.receiptRepo.SoftDeleteReceipt(ctx, receiptID, userID, time.Now())
}

// MatchReceipt links a receipt to an expense of the same user and flips the
// expense status to matched unless the status is manually pinned.
func (s *receiptService) MatchReceipt(ctx context.Context, receiptID, expenseID, userID string) error {
	receipt, err := s.GetReceiptByID(ctx, receiptID, userID)
	if err != nil {
		return err
	}
	if receipt.DeletedAt != nil {
		return fmt.Errorf("%w: receipt is deleted", apperrors.ErrValidation)
	}

	expense, err := s.expenseRepo.FindExpenseByID(ctx, expenseID)
	if err != nil {
		return fmt.Errorf("failed to find expense %s: %w", expenseID, err)
	}
	if expense.UserID != userID {
		return apperrors.ErrForbidden
	}

	now := time.Now()
	if err := s.receiptRepo.SetMatchedExpense(ctx, receiptID, &expenseID, userID, now); err != nil {
		return fmt.Errorf("failed to link receipt %s: %w", receiptID, err)
	}

	if !expense.ManualStatus && expense.Status != domain.ExpenseMatched {
		if err := s.expenseRepo.UpdateExpenseStatus(ctx, expenseID, domain.ExpenseMatched, userID, now); err != nil {
			return fmt.Errorf("failed to update expense status: %w", err)
		}
	}
	return nil
}

// UnmatchReceipt clears the receipt's expense link and flips the expense back
// to missing_receipt unless the status is manually pinned.
func (s *receiptService) UnmatchReceipt(ctx context.Context, receiptID, userID string) error {
	receipt, err := s.GetReceiptByID(ctx, receiptID, userID)
	if err != nil {
		return err
	}
	if receipt.MatchedExpenseID == nil {
		return nil
	}
	expenseID := *receipt.MatchedExpenseID

	now := time.Now()
	if err := s.receiptRepo.SetMatchedExpense(ctx, receiptID, nil, userID, now); err != nil {
		return fmt.Errorf("failed to unlink receipt %s: %w", receiptID, err)
	}

	expense, err := s.expenseRepo.FindExpenseByID(ctx, expenseID)
	if err != nil {
		// The expense may have been deleted concurrently; the unlink stands.
		return nil
	}
	if !expense.ManualStatus && expense.Status == domain.ExpenseMatched {
		if err := s.expenseRepo.UpdateExpenseStatus(ctx, expenseID, domain.ExpenseMissingReceipt, userID, now); err != nil {
			return fmt.Errorf("failed to update expense status: %w", err)
		}
	}
	return nil
}

// SuggestMatches ranks candidate expenses for a receipt using the user's
// matching rules. An already-linked expense is always pinned at the head of
// the list so a user editing an existing match never sees an empty list.
func (s *receiptService) SuggestMatches(ctx context.Context, receiptID, userID string) ([]domain.MatchCandidate, error) {
	receipt, err := s.GetReceiptByID(ctx, receiptID, userID)
	if err != nil {
		return nil, err
	}

	settings, err := s.userSvc.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	expenses, err := s.expenseRepo.ListExpenses(ctx, domain.ExpenseFilter{
		ProjectID: receipt.ProjectID,
		UserID:    userID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses for project %s: %w", receipt.ProjectID, err)
	}

	signal := domain.ReceiptSignal{
		Amount:   receipt.Amount,
		Date:     receipt.Date,
		Category: receipt.Type,
	}
	candidates := make([]domain.ExpenseCandidate, len(expenses))
	for i, e := range expenses {
		candidates[i] = domain.ExpenseCandidate{
			ID:       e.ExpenseID,
			Amount:   e.Amount,
			Date:     e.Date,
			Category: e.Category,
			Note:     e.Note,
		}
	}

	ranked := s.matcher.FindCandidates(signal, candidates, settings.MatchRules())

	if receipt.MatchedExpenseID != nil && *receipt.MatchedExpenseID != "" {
		linked := *receipt.MatchedExpenseID
		filtered := ranked[:0]
		for _, c := range ranked {
			if c.ExpenseID != linked {
				filtered = append(filtered, c)
			}
		}
		ranked = append([]domain.MatchCandidate{{
			ExpenseID:  linked,
			Confidence: domain.ConfidenceHigh,
			Reason:     "already matched",
		}}, filtered...)
	}
	return ranked, nil
}
