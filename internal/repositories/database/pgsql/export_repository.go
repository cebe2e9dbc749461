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

type PgxExportRepository struct {
	db *pgxpool.Pool
}

func newPgxExportRepository(db *pgxpool.Pool) portsrepo.ExportRepositoryFacade {
	return &PgxExportRepository{db: db}
}

var _ portsrepo.ExportRepositoryFacade = (*PgxExportRepository)(nil)

const exportColumns = `export_id, batch_id, user_id, project_ids, type, status, storage_key, file_size,
		expires_at, error, created_at, created_by, last_updated_at, last_updated_by`

func scanExport(row pgx.Row) (*domain.ExportRecord, error) {
	var rec domain.ExportRecord
	err := row.Scan(
		&rec.ExportID,
		&rec.BatchID,
		&rec.UserID,
		&rec.ProjectIDs,
		&rec.Type,
		&rec.Status,
		&rec.StorageKey,
		&rec.FileSize,
		&rec.ExpiresAt,
		&rec.Error,
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

func (r *PgxExportRepository) SaveExport(ctx context.Context, record domain.ExportRecord) error {
	query := `
		INSERT INTO export_records (export_id, batch_id, user_id, project_ids, type, status,
		                            created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.db.Exec(ctx, query,
		record.ExportID,
		record.BatchID,
		record.UserID,
		record.ProjectIDs,
		record.Type,
		record.Status,
		record.CreatedAt,
		record.CreatedBy,
		record.LastUpdatedAt,
		record.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save export record: %w", err)
	}
	return nil
}

func (r *PgxExportRepository) FindExportByID(ctx context.Context, exportID string) (*domain.ExportRecord, error) {
	query := `SELECT ` + exportColumns + ` FROM export_records WHERE export_id = $1;`
	record, err := scanExport(r.db.QueryRow(ctx, query, exportID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find export by ID %s: %w", exportID, err)
	}
	return record, nil
}

func (r *PgxExportRepository) FindActiveExport(ctx context.Context, batchID string, exportType domain.ExportType) (*domain.ExportRecord, error) {
	query := `
		SELECT ` + exportColumns + `
		FROM export_records
		WHERE batch_id = $1 AND type = $2 AND status IN ('pending', 'running')
		ORDER BY created_at DESC
		LIMIT 1;
	`
	record, err := scanExport(r.db.QueryRow(ctx, query, batchID, exportType))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find active export for batch %s: %w", batchID, err)
	}
	return record, nil
}

func (r *PgxExportRepository) ListExportsByUser(ctx context.Context, userID string) ([]domain.ExportRecord, error) {
	query := `
		SELECT ` + exportColumns + `
		FROM export_records
		WHERE user_id = $1
		ORDER BY created_at DESC;
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports for user %s: %w", userID, err)
	}
	defer rows.Close()

	var records []domain.ExportRecord
	for rows.Next() {
		rec, err := scanExport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan export row: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate export rows: %w", err)
	}
	return records, nil
}

func (r *PgxExportRepository) MarkExportRunning(ctx context.Context, exportID string, updatedAt time.Time) error {
	query := `
		UPDATE export_records
		SET status = 'running', last_updated_at = $2
		WHERE export_id = $1;
	`
	tag, err := r.db.Exec(ctx, query, exportID, updatedAt)
	if err != nil {
		return fmt.Errorf("failed to mark export %s running: %w", exportID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxExportRepository) MarkExportCompleted(ctx context.Context, exportID string, storageKey string, fileSize int64, updatedAt time.Time) error {
	query := `
		UPDATE export_records
		SET status = 'completed', storage_key = $2, file_size = $3, error = NULL, last_updated_at = $4
		WHERE export_id = $1;
	`
	tag, err := r.db.Exec(ctx, query, exportID, storageKey, fileSize, updatedAt)
	if err != nil {
		return fmt.Errorf("failed to mark export %s completed: %w", exportID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxExportRepository) MarkExportFailed(ctx context.Context, exportID string, errMsg string, updatedAt time.Time) error {
	query := `
		UPDATE export_records
		SET status = 'failed', error = $2, last_updated_at = $3
		WHERE export_id = $1;
	`
	tag, err := r.db.Exec(ctx, query, exportID, errMsg, updatedAt)
	if err != nil {
		return fmt.Errorf("failed to mark export %s failed: %w", exportID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
