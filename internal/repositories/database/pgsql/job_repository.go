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

type PgxJobRepository struct {
	BaseRepository
}

func newPgxJobRepository(db *pgxpool.Pool) portsrepo.JobRepositoryFacade {
	return &PgxJobRepository{BaseRepository{Pool: db}}
}

var _ portsrepo.JobRepositoryFacade = (*PgxJobRepository)(nil)

const jobColumns = `job_id, type, payload, status, attempts, scheduled_at, started_at, completed_at, error, created_at, updated_at`

func scanJob(row pgx.Row) (*domain.Job, error) {
	var j domain.Job
	err := row.Scan(
		&j.JobID,
		&j.Type,
		&j.Payload,
		&j.Status,
		&j.Attempts,
		&j.ScheduledAt,
		&j.StartedAt,
		&j.CompletedAt,
		&j.Error,
		&j.CreatedAt,
		&j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *PgxJobRepository) SaveJob(ctx context.Context, job domain.Job) error {
	query := `
		INSERT INTO jobs (job_id, type, payload, status, attempts, scheduled_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.Pool.Exec(ctx, query,
		job.JobID,
		job.Type,
		job.Payload,
		job.Status,
		job.Attempts,
		job.ScheduledAt,
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}
	return nil
}

func (r *PgxJobRepository) FindJobByID(ctx context.Context, jobID string) (*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE job_id = $1;`
	job, err := scanJob(r.Pool.QueryRow(ctx, query, jobID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find job by ID %s: %w", jobID, err)
	}
	return job, nil
}

// ClaimNextDue selects the oldest eligible job with FOR UPDATE SKIP LOCKED
// and marks it processing in the same transaction. The row lock is what
// makes concurrent workers safe: two pollers can never claim the same job,
// and a locked row is skipped rather than waited on.
func (r *PgxJobRepository) ClaimNextDue(ctx context.Context, now time.Time, maxAttempts int) (*domain.Job, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	selectQuery := `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE status IN ('pending', 'failed')
		  AND attempts < $1
		  AND scheduled_at <= $2
		ORDER BY scheduled_at ASC
		FOR UPDATE SKIP LOCKED
		LIMIT 1;
	`
	job, err := scanJob(tx.QueryRow(ctx, selectQuery, maxAttempts, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to select due job: %w", err)
	}

	updateQuery := `
		UPDATE jobs
		SET status = 'processing', attempts = attempts + 1, started_at = $2, updated_at = $2
		WHERE job_id = $1;
	`
	if _, err := tx.Exec(ctx, updateQuery, job.JobID, now); err != nil {
		return nil, fmt.Errorf("failed to mark job %s processing: %w", job.JobID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}

	job.Status = domain.JobProcessing
	job.Attempts++
	job.StartedAt = &now
	job.UpdatedAt = now
	return job, nil
}

func (r *PgxJobRepository) MarkJobCompleted(ctx context.Context, jobID string, completedAt time.Time) error {
	query := `
		UPDATE jobs
		SET status = 'completed', completed_at = $2, error = NULL, updated_at = $2
		WHERE job_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, jobID, completedAt)
	if err != nil {
		return fmt.Errorf("failed to mark job %s completed: %w", jobID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// MarkJobFailed records the failure and reschedules the row. A job at the
// attempt ceiling keeps the failed status but is never claimed again, since
// the claim query filters on attempts.
func (r *PgxJobRepository) MarkJobFailed(ctx context.Context, jobID string, errMsg string, retryAt time.Time) error {
	query := `
		UPDATE jobs
		SET status = 'failed', error = $2, scheduled_at = $3, updated_at = now()
		WHERE job_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, jobID, errMsg, retryAt)
	if err != nil {
		return fmt.Errorf("failed to mark job %s failed: %w", jobID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
