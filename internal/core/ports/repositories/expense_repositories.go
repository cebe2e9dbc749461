package repositories

import (
	"context"
	"time"

	"github.com/snapexpense/snap_expense_app/internal/core/domain"
)

// ExpenseReader defines read operations for expense data
type ExpenseReader interface {
	// FindExpenseByID retrieves a specific expense by its unique identifier.
	FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error)

	// ListExpenses retrieves all expenses matching the filter, ordered by date ascending.
	ListExpenses(ctx context.Context, filter domain.ExpenseFilter) ([]domain.Expense, error)
}

// ExpenseWriter defines write operations for expense data
type ExpenseWriter interface {
	// SaveExpense persists a new expense.
	SaveExpense(ctx context.Context, expense domain.Expense) error

	// UpdateExpense updates the mutable fields of an expense.
	UpdateExpense(ctx context.Context, expense domain.Expense) error

	// UpdateExpenseStatus sets the status of an expense. Callers are
	// responsible for honoring the manual-status flag.
	UpdateExpenseStatus(ctx context.Context, expenseID string, status domain.ExpenseStatus, updatedBy string, updatedAt time.Time) error

	// DeleteExpense removes an expense row.
	DeleteExpense(ctx context.Context, expenseID string) error
}

// ExpenseRepositoryFacade combines all expense-related repository interfaces
type ExpenseRepositoryFacade interface {
	ExpenseReader
	ExpenseWriter
}
