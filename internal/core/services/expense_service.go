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

// expenseService provides expense CRUD operations.
type expenseService struct {
	expenseRepo portsrepo.ExpenseRepositoryFacade
	projectRepo portsrepo.ProjectReader
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(expenseRepo portsrepo.ExpenseRepositoryFacade, projectRepo portsrepo.ProjectReader) portssvc.ExpenseSvcFacade {
	return &expenseService{expenseRepo: expenseRepo, projectRepo: projectRepo}
}

var _ portssvc.ExpenseSvcFacade = (*expenseService)(nil)

func (s *expenseService) CreateExpense(ctx context.Context, req dto.CreateExpenseRequest, userID string) (*domain.Expense, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	project, err := s.projectRepo.FindProjectByID(ctx, req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to find project %s: %w", req.ProjectID, err)
	}
	if project.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	if req.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: expense amount cannot be negative", apperrors.ErrValidation)
	}

	status := req.Status
	if status == "" {
		status = domain.ExpenseMissingReceipt
	}

	now := time.Now()
	expense := domain.Expense{
		ExpenseID:    uuid.NewString(),
		UserID:       userID,
		ProjectID:    req.ProjectID,
		Amount:       req.Amount,
		Date:         req.Date,
		Category:     req.Category,
		Note:         req.Note,
		Status:       status,
		ManualStatus: req.ManualStatus,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.expenseRepo.SaveExpense(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to save expense: %w", err)
	}

	logger.Info("Expense created", slog.String("expense_id", expense.ExpenseID), slog.String("project_id", expense.ProjectID))
	return &expense, nil
}

func (s *expenseService) GetExpenseByID(ctx context.Context, expenseID, userID string) (*domain.Expense, error) {
	expense, err := s.expenseRepo.FindExpenseByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if expense.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return expense, nil
}

func (s *expenseService) ListExpenses(ctx context.Context, filter domain.ExpenseFilter) ([]domain.Expense, error) {
	return s.expenseRepo.ListExpenses(ctx, filter)
}

func (s *expenseService) UpdateExpense(ctx context.Context, expenseID string, req dto.UpdateExpenseRequest, userID string) (*domain.Expense, error) {
	expense, err := s.GetExpenseByID(ctx, expenseID, userID)
	if err != nil {
		return nil, err
	}

	if req.Amount != nil {
		if req.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: expense amount cannot be negative", apperrors.ErrValidation)
		}
		expense.Amount = *req.Amount
	}
	if req.Date != nil {
		expense.Date = *req.Date
	}
	if req.Category != nil {
		expense.Category = *req.Category
	}
	if req.Note != nil {
		expense.Note = *req.Note
	}
	if req.Status != nil {
		// A user setting the status directly is a manual override.
		expense.Status = *req.Status
	}
	if req.ManualStatus != nil {
		expense.ManualStatus = *req.ManualStatus
	}

	expense.LastUpdatedAt = time.Now()
	expense.LastUpdatedBy = userID

	if err := s.expenseRepo.UpdateExpense(ctx, *expense); err != nil {
		return nil, fmt.Errorf("failed to update expense %s: %w", expenseID, err)
	}
	return expense, nil
}

func (s *expenseService) DeleteExpense(ctx context.Context, expenseID, userID string) error {
	if _, err := s.GetExpenseByID(ctx, expenseID, userID); err != nil {
		return err
	}
	return s.expenseRepo.DeleteExpense(ctx, expenseID)
}
