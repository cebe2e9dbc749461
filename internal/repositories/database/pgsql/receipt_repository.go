package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/snapexpense/snap_expense_app/internal/apperrors"
	"github.com/snapexpense/snap_expense_app/internal/core/domain"
	portsrepo "github.com/snapexpense/snap_expense_app/internal/core/ports/repositories"
)

type PgxReceiptRepository struct {
	db *pgxpool.Pool
}

func newPgxReceiptRepository(db *pgxpool.Pool) portsrepo.ReceiptRepositoryFacade {
	return &PgxReceiptRepository{db: db}
}

var _ portsrepo.ReceiptRepositoryFacade = (*PgxReceiptRepository)(nil)

const receiptColumns = `receipt_id, user_id, project_id, file_name, hash, storage_key, matched_expense_id,
		amount, date, type, deleted_at, created_at, created_by, last_updated_at, last_updated_by`

func scanReceipt(row pgx.Row) (*domain.Receipt, error) {
	var rec domain.Receipt
	err := row.Scan(
		&rec.ReceiptID,
		&rec.UserID,
		&rec.ProjectID,
		&rec.FileName,
		&rec.Hash,
		&rec.StorageKey,
		&rec.MatchedExpenseID,
		&rec.Amount,
		&rec.Date,
		&rec.Type,
		&rec.DeletedAt,
		&rec.CreatedAt,
		&rec.CreatedBy,
		&rec.LastUpdatedAt,
		&rec.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *PgxReceiptRepository) SaveReceipt(ctx context.Context, receipt domain.Receipt) error {
	query := `
		INSERT INTO receipts (` + receiptColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := r.db.Exec(ctx, query,
		receipt.ReceiptID,
		receipt.UserID,
		receipt.ProjectID,
		receipt.FileName,
		receipt.Hash,
		receipt.StorageKey,
		receipt.MatchedExpenseID,
		receipt.Amount,
		receipt.Date,
		receipt.Type,
		receipt.DeletedAt,
		receipt.CreatedAt,
		receipt.CreatedBy,
		receipt.LastUpdatedAt,
		receipt.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save receipt: %w", err)
	}
	return nil
}

// FindReceiptByID returns the row even when soft-deleted; callers decide
// whether a deleted receipt is acceptable.
func (r *PgxReceiptRepository) FindReceiptByID(ctx context.Context, receiptID string) (*domain.Receipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipts WHERE receipt_id = $1;`
	receipt, err := scanReceipt(r.db.QueryRow(ctx, query, receiptID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find receipt by ID %s: %w", receiptID, err)
	}
	return receipt, nil
}

func (r *PgxReceiptRepository) ListReceiptsByProject(ctx context.Context, projectID, userID string) ([]domain.Receipt, error) {
	query := `
		SELECT ` + receiptColumns + `
		FROM receipts
		WHERE project_id = $1 AND user_id = $2 AND deleted_at IS NULL
		ORDER BY created_at ASC, receipt_id ASC;
	`
	rows, err := r.db.Query(ctx, query, projectID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts for project %s: %w", projectID, err)
	}
	defer rows.Close()

	var receipts []domain.Receipt
	for rows.Next() {
		rec, err := scanReceipt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan receipt row: %w", err)
		}
		receipts = append(receipts, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate receipt rows: %w", err)
	}
	return receipts, nil
}

func (r *PgxReceiptRepository) UpdateReceipt(ctx context.Context, receipt domain.Receipt) error {
	query := `
		UPDATE receipts
		SET file_name = $2, amount = $3, date = $4, type = $5,
		    last_updated_at = $6, last_updated_by = $7
		WHERE receipt_id = $1;
	`
	tag, err := r.db.Exec(ctx, query,
		receipt.ReceiptID,
		receipt.FileName,
		receipt.Amount,
		receipt.Date,
		receipt.Type,
		receipt.LastUpdatedAt,
		receipt.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update receipt %s: %w", receipt.ReceiptID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxReceiptRepository) SetMatchedExpense(ctx context.Context, receiptID string, expenseID *string, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE receipts
		SET matched_expense_id = $2, last_updated_at = $3, last_updated_by = $4
		WHERE receipt_id = $1;
	`
	tag, err := r.db.Exec(ctx, query, receiptID, expenseID, updatedAt, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to set matched expense of receipt %s: %w", receiptID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxReceiptRepository) SoftDeleteReceipt(ctx context.Context, receiptID string, deletedBy string, deletedAt time.Time) error {
	query := `
		UPDATE receipts
		SET deleted_at = $2, last_updated_at = $2, last_updated_by = $3
		WHERE receipt_id = $1 AND deleted_at IS NULL;
	`
	tag, err := r.db.Exec(ctx, query, receiptID, deletedAt, deletedBy)
	if err != nil {
		return fmt.Errorf("failed to soft delete receipt %s: %w", receiptID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
