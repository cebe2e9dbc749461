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

type PgxBatchRepository struct {
	BaseRepository
}

func newPgxBatchRepository(db *pgxpool.Pool) portsrepo.BatchRepositoryFacade {
	return &PgxBatchRepository{BaseRepository{Pool: db}}
}

var _ portsrepo.BatchRepositoryFacade = (*PgxBatchRepository)(nil)

const batchColumns = `batch_id, user_id, project_id, name, date_from, date_to, statuses, categories,
		missing_receipt_count, duplicate_receipt_count, amount_mismatch_count, checked_at,
		created_at, created_by, last_updated_at, last_updated_by`

func scanBatch(row pgx.Row) (*domain.Batch, error) {
	var b domain.Batch
	var statuses []string
	err := row.Scan(
		&b.BatchID,
		&b.UserID,
		&b.ProjectID,
		&b.Name,
		&b.DateFrom,
		&b.DateTo,
		&statuses,
		&b.Categories,
		&b.IssueSummary.MissingReceipt,
		&b.IssueSummary.DuplicateReceipt,
		&b.IssueSummary.AmountMismatch,
		&b.CheckedAt,
		&b.CreatedAt,
		&b.CreatedBy,
		&b.LastUpdatedAt,
		&b.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	for _, s := range statuses {
		b.Statuses = append(b.Statuses, domain.ExpenseStatus(s))
	}
	return &b, nil
}

func statusStrings(statuses []domain.ExpenseStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func (r *PgxBatchRepository) SaveBatch(ctx context.Context, batch domain.Batch) error {
	query := `
		INSERT INTO batches (batch_id, user_id, project_id, name, date_from, date_to, statuses, categories,
		                     created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.Pool.Exec(ctx, query,
		batch.BatchID,
		batch.UserID,
		batch.ProjectID,
		batch.Name,
		batch.DateFrom,
		batch.DateTo,
		statusStrings(batch.Statuses),
		batch.Categories,
		batch.CreatedAt,
		batch.CreatedBy,
		batch.LastUpdatedAt,
		batch.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save batch: %w", err)
	}
	return nil
}

func (r *PgxBatchRepository) FindBatchByID(ctx context.Context, batchID string) (*domain.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE batch_id = $1;`
	batch, err := scanBatch(r.Pool.QueryRow(ctx, query, batchID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find batch by ID %s: %w", batchID, err)
	}
	return batch, nil
}

func (r *PgxBatchRepository) ListBatchesByProject(ctx context.Context, projectID, userID string) ([]domain.Batch, error) {
	query := `
		SELECT ` + batchColumns + `
		FROM batches
		WHERE project_id = $1 AND user_id = $2
		ORDER BY created_at DESC;
	`
	rows, err := r.Pool.Query(ctx, query, projectID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list batches for project %s: %w", projectID, err)
	}
	defer rows.Close()

	var batches []domain.Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan batch row: %w", err)
		}
		batches = append(batches, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate batch rows: %w", err)
	}
	return batches, nil
}

func (r *PgxBatchRepository) ListIssuesByBatch(ctx context.Context, batchID string) ([]domain.BatchIssue, error) {
	query := `
		SELECT issue_id, batch_id, type, severity, expense_id, receipt_id, message, created_at
		FROM batch_issues
		WHERE batch_id = $1
		ORDER BY seq ASC;
	`
	rows, err := r.Pool.Query(ctx, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues for batch %s: %w", batchID, err)
	}
	defer rows.Close()

	var issues []domain.BatchIssue
	for rows.Next() {
		var iss domain.BatchIssue
		if err := rows.Scan(
			&iss.IssueID,
			&iss.BatchID,
			&iss.Type,
			&iss.Severity,
			&iss.ExpenseID,
			&iss.ReceiptID,
			&iss.Message,
			&iss.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan issue row: %w", err)
		}
		issues = append(issues, iss)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate issue rows: %w", err)
	}
	return issues, nil
}

func (r *PgxBatchRepository) UpdateBatch(ctx context.Context, batch domain.Batch) error {
	query := `
		UPDATE batches
		SET name = $2, date_from = $3, date_to = $4, statuses = $5, categories = $6,
		    last_updated_at = $7, last_updated_by = $8
		WHERE batch_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		batch.BatchID,
		batch.Name,
		batch.DateFrom,
		batch.DateTo,
		statusStrings(batch.Statuses),
		batch.Categories,
		batch.LastUpdatedAt,
		batch.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update batch %s: %w", batch.BatchID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteBatch removes the batch; the issues go with it via ON DELETE CASCADE.
func (r *PgxBatchRepository) DeleteBatch(ctx context.Context, batchID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM batches WHERE batch_id = $1;`, batchID)
	if err != nil {
		return fmt.Errorf("failed to delete batch %s: %w", batchID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ReplaceIssues swaps the issue set and the summary counts in one
// transaction, so concurrent readers see either the previous set or the new
// one, never a mix.
func (r *PgxBatchRepository) ReplaceIssues(ctx context.Context, batchID string, issues []domain.BatchIssue, summary domain.IssueSummary, checkedAt time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM batch_issues WHERE batch_id = $1;`, batchID); err != nil {
		return fmt.Errorf("failed to clear issues for batch %s: %w", batchID, err)
	}

	if len(issues) > 0 {
		insert := `
			INSERT INTO batch_issues (issue_id, batch_id, type, severity, expense_id, receipt_id, message, seq, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
		`
		pgBatch := &pgx.Batch{}
		for i, iss := range issues {
			pgBatch.Queue(insert,
				iss.IssueID,
				batchID,
				iss.Type,
				iss.Severity,
				iss.ExpenseID,
				iss.ReceiptID,
				iss.Message,
				i,
				iss.CreatedAt,
			)
		}
		br := tx.SendBatch(ctx, pgBatch)
		for range issues {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("failed to insert issue for batch %s: %w", batchID, err)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("failed to close issue insert batch: %w", err)
		}
	}

	update := `
		UPDATE batches
		SET missing_receipt_count = $2, duplicate_receipt_count = $3, amount_mismatch_count = $4, checked_at = $5
		WHERE batch_id = $1;
	`
	tag, err := tx.Exec(ctx, update, batchID, summary.MissingReceipt, summary.DuplicateReceipt, summary.AmountMismatch, checkedAt)
	if err != nil {
		return fmt.Errorf("failed to update summary of batch %s: %w", batchID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return r.Commit(ctx, tx)
}
