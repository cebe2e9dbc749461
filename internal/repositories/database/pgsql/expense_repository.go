package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/snapexpense/snap_expense_app/internal/apperrors"
	"github.com/snapexpense/snap_expense_app/internal/core/domain"
	portsrepo "github.com/snapexpense/snap_expense_app/internal/core/ports/repositories"
)

type PgxExpenseRepository struct {
	db *pgxpool.Pool
}

func newPgxExpenseRepository(db *pgxpool.Pool) portsrepo.ExpenseRepositoryFacade {
	return &PgxExpenseRepository{db: db}
}

var _ portsrepo.ExpenseRepositoryFacade = (*PgxExpenseRepository)(nil)

const expenseColumns = `expense_id, user_id, project_id, amount, date, category, note, status, manual_status,
		created_at, created_by, last_updated_at, last_updated_by`

func scanExpense(row pgx.Row) (*domain.Expense, error) {
	var e domain.Expense
	err := row.Scan(
		&e.ExpenseID,
		&e.UserID,
		&e.ProjectID,
		&e.Amount,
		&e.Date,
		&e.Category,
		&e.Note,
		&e.Status,
		&e.ManualStatus,
		&e.CreatedAt,
		&e.CreatedBy,
		&e.LastUpdatedAt,
		&e.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *PgxExpenseRepository) SaveExpense(ctx context.Context, expense domain.Expense) error {
	query := `
		INSERT INTO expenses (` + expenseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.db.Exec(ctx, query,
		expense.ExpenseID,
		expense.UserID,
		expense.ProjectID,
		expense.Amount,
		expense.Date,
		expense.Category,
		expense.Note,
		expense.Status,
		expense.ManualStatus,
		expense.CreatedAt,
		expense.CreatedBy,
		expense.LastUpdatedAt,
		expense.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save expense: %w", err)
	}
	return nil
}

func (r *PgxExpenseRepository) FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE expense_id = $1;`
	expense, err := scanExpense(r.db.QueryRow(ctx, query, expenseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find expense by ID %s: %w", expenseID, err)
	}
	return expense, nil
}

// ListExpenses applies the filter's non-zero criteria and returns the rows
// ordered by date ascending, expense_id as the tie-break, so the selection
// order is stable across calls.
func (r *PgxExpenseRepository) ListExpenses(ctx context.Context, filter domain.ExpenseFilter) ([]domain.Expense, error) {
	var (
		conds []string
		args  []any
	)
	addCond := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.ProjectID != "" {
		addCond("project_id = $%d", filter.ProjectID)
	}
	if filter.UserID != "" {
		addCond("user_id = $%d", filter.UserID)
	}
	if filter.DateFrom != nil {
		addCond("date >= $%d", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		addCond("date <= $%d", *filter.DateTo)
	}
	if len(filter.Statuses) > 0 {
		addCond("status = ANY($%d)", filter.Statuses)
	}
	if len(filter.Categories) > 0 {
		addCond("category = ANY($%d)", filter.Categories)
	}

	query := `SELECT ` + expenseColumns + ` FROM expenses`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY date ASC, expense_id ASC;"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []domain.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense row: %w", err)
		}
		expenses = append(expenses, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense rows: %w", err)
	}
	return expenses, nil
}

func (r *PgxExpenseRepository) UpdateExpense(ctx context.Context, expense domain.Expense) error {
	query := `
		UPDATE expenses
		SET amount = $2, date = $3, category = $4, note = $5, status = $6, manual_status = $7,
		    last_updated_at = $8, last_updated_by = $9
		WHERE expense_id = $1;
	`
	tag, err := r.db.Exec(ctx, query,
		expense.ExpenseID,
		expense.Amount,
		expense.Date,
		expense.Category,
		expense.Note,
		expense.Status,
		expense.ManualStatus,
		expense.LastUpdatedAt,
		expense.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense %s: %w", expense.ExpenseID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxExpenseRepository) UpdateExpenseStatus(ctx context.Context, expenseID string, status domain.ExpenseStatus, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE expenses
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE expense_id = $1;
	`
	tag, err := r.db.Exec(ctx, query, expenseID, status, updatedAt, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to update status of expense %s: %w", expenseID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxExpenseRepository) DeleteExpense(ctx context.Context, expenseID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM expenses WHERE expense_id = $1;`, expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense %s: %w", expenseID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
