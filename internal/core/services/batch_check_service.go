package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/snapexpense/snap_expense_app/internal/apperrors"
	"github.com/snapexpense/snap_expense_app/internal/core/domain"
	portsrepo "github.com/snapexpense/snap_expense_app/internal/core/ports/repositories"
	portssvc "github.com/snapexpense/snap_expense_app/internal/core/ports/services"
	"github.com/snapexpense/snap_expense_app/internal/middleware"
	"github.com/snapexpense/snap_expense_app/internal/utils/reconcile"
)

// batchCheckService recomputes the data-quality issue set of a batch.
// The issue table is a derived cache: every run replaces the batch's issues
// wholesale, so re-running on unchanged data yields the identical set.
type batchCheckService struct {
	batchRepo   portsrepo.BatchRepositoryFacade
	expenseRepo portsrepo.ExpenseReader
	receiptRepo portsrepo.ReceiptReader
	now         func() time.Time
}

// NewBatchCheckService creates a new BatchCheckService.
func NewBatchCheckService(
	batchRepo portsrepo.BatchRepositoryFacade,
	expenseRepo portsrepo.ExpenseReader,
	receiptRepo portsrepo.ReceiptReader,
) portssvc.BatchCheckerSvc {
	return &batchCheckService{
		batchRepo:   batchRepo,
		expenseRepo: expenseRepo,
		receiptRepo: receiptRepo,
		now:         time.Now,
	}
}

var _ portssvc.BatchCheckerSvc = (*batchCheckService)(nil)

// Check recomputes and replaces the issue set for a batch. Idempotent; a
// missing batch is a vacuous success since it may have been deleted while
// the job sat in the queue.
func (s *batchCheckService) Check(ctx context.Context, batchID, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx).With(slog.String("batch_id", batchID))

	batch, err := s.batchRepo.FindBatchByID(ctx, batchID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Info("Batch no longer exists, skipping check")
			return nil
		}
		return fmt.Errorf("failed to load batch %s: %w", batchID, err)
	}
	if batch.UserID != userID {
		return apperrors.ErrForbidden
	}

	expenses, err := s.expenseRepo.ListExpenses(ctx, batch.Filter())
	if err != nil {
		return fmt.Errorf("failed to list expenses for batch %s: %w", batchID, err)
	}

	receipts, err := s.receiptRepo.ListReceiptsByProject(ctx, batch.ProjectID, batch.UserID)
	if err != nil {
		return fmt.Errorf("failed to list receipts for batch %s: %w", batchID, err)
	}

	issues := s.computeIssues(*batch, expenses, receipts)
	summary := domain.SummarizeIssues(issues)

	if err := s.batchRepo.ReplaceIssues(ctx, batchID, issues, summary, s.now()); err != nil {
		return fmt.Errorf("failed to replace issues for batch %s: %w", batchID, err)
	}

	logger.Info("Batch check completed",
		slog.Int("expenses", len(expenses)),
		slog.Int("missing_receipt", summary.MissingReceipt),
		slog.Int("duplicate_receipt", summary.DuplicateReceipt),
		slog.Int("amount_mismatch", summary.AmountMismatch),
	)
	return nil
}

// computeIssues derives the full issue list for the batch's expenses.
// Manual-status expenses are still checked: the manual flag only suppresses
// automatic status transitions elsewhere, not issue detection.
func (s *batchCheckService) computeIssues(batch domain.Batch, expenses []domain.Expense, receipts []domain.Receipt) []domain.BatchIssue {
	grouped := reconcile.GroupReceiptsByExpense(receipts)

	var issues []domain.BatchIssue
	eligible := make(map[string]struct{}, len(expenses))

	for _, e := range expenses {
		eligible[e.ExpenseID] = struct{}{}
		linked := grouped[e.ExpenseID]

		if len(linked) == 0 || e.Status == domain.ExpenseMissingReceipt {
			issues = append(issues, s.newIssue(batch.BatchID, domain.IssueMissingReceipt, domain.SeverityWarning,
				&e.ExpenseID, nil,
				fmt.Sprintf("expense of %s on %s has no receipt", e.Amount.StringFixed(2), e.Date.Format("2006-01-02"))))
		}

		for _, r := range linked {
			if reconcile.AmountMismatch(e, r) {
				receiptID := r.ReceiptID
				issues = append(issues, s.newIssue(batch.BatchID, domain.IssueAmountMismatch, domain.SeverityError,
					&e.ExpenseID, &receiptID,
					fmt.Sprintf("receipt amount %s differs from expense amount %s", r.Amount.StringFixed(2), e.Amount.StringFixed(2))))
			}
		}
	}

	// Duplicate detection runs over receipts that carry a content hash AND
	// are matched to an expense selected by this batch. Every member of a
	// colliding group is flagged, not just the extras, so the user can
	// choose which one to keep.
	var hashable []domain.Receipt
	for _, r := range receipts {
		if r.DeletedAt != nil || r.MatchedExpenseID == nil {
			continue
		}
		if _, ok := eligible[*r.MatchedExpenseID]; !ok {
			continue
		}
		hashable = append(hashable, r)
	}

	dupGroups := reconcile.DuplicateHashGroups(hashable)
	hashes := make([]string, 0, len(dupGroups))
	for hash := range dupGroups {
		hashes = append(hashes, hash)
	}
	sort.Strings(hashes) // deterministic issue order across runs

	for _, hash := range hashes {
		group := dupGroups[hash]
		for _, r := range group {
			receiptID := r.ReceiptID
			issues = append(issues, s.newIssue(batch.BatchID, domain.IssueDuplicateReceipt, domain.SeverityWarning,
				r.MatchedExpenseID, &receiptID,
				fmt.Sprintf("receipt shares its content hash with %d other receipt(s)", len(group)-1)))
		}
	}

	return issues
}

func (s *batchCheckService) newIssue(batchID string, issueType domain.IssueType, severity domain.IssueSeverity, expenseID, receiptID *string, message string) domain.BatchIssue {
	return domain.BatchIssue{
		IssueID:   uuid.NewString(),
		BatchID:   batchID,
		Type:      issueType,
		Severity:  severity,
		ExpenseID: expenseID,
		ReceiptID: receiptID,
		Message:   message,
		CreatedAt: s.now(),
	}
}
