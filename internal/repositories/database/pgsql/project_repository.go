package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/snapexpense/snap_expense_app/internal/apperrors"
	"github.com/snapexpense/snap_expense_app/internal/core/domain"
	portsrepo "github.com/snapexpense/snap_expense_app/internal/core/ports/repositories"
)

type PgxProjectRepository struct {
	db *pgxpool.Pool
}

func newPgxProjectRepository(db *pgxpool.Pool) portsrepo.ProjectRepositoryFacade {
	return &PgxProjectRepository{db: db}
}

var _ portsrepo.ProjectRepositoryFacade = (*PgxProjectRepository)(nil)

const foreignKeyViolation = "23503"

func (r *PgxProjectRepository) SaveProject(ctx context.Context, project domain.Project) error {
	query := `
		INSERT INTO projects (project_id, user_id, name, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.db.Exec(ctx, query,
		project.ProjectID,
		project.UserID,
		project.Name,
		project.CreatedAt,
		project.CreatedBy,
		project.LastUpdatedAt,
		project.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	return nil
}

func (r *PgxProjectRepository) FindProjectByID(ctx context.Context, projectID string) (*domain.Project, error) {
	query := `
		SELECT project_id, user_id, name, created_at, created_by, last_updated_at, last_updated_by
		FROM projects
		WHERE project_id = $1;
	`
	var project domain.Project
	err := r.db.QueryRow(ctx, query, projectID).Scan(
		&project.ProjectID,
		&project.UserID,
		&project.Name,
		&project.CreatedAt,
		&project.CreatedBy,
		&project.LastUpdatedAt,
		&project.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find project by ID %s: %w", projectID, err)
	}
	return &project, nil
}

func (r *PgxProjectRepository) ListProjectsByUser(ctx context.Context, userID string) ([]domain.Project, error) {
	query := `
		SELECT project_id, user_id, name, created_at, created_by, last_updated_at, last_updated_by
		FROM projects
		WHERE user_id = $1
		ORDER BY created_at ASC;
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects for user %s: %w", userID, err)
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(
			&p.ProjectID,
			&p.UserID,
			&p.Name,
			&p.CreatedAt,
			&p.CreatedBy,
			&p.LastUpdatedAt,
			&p.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate project rows: %w", err)
	}
	return projects, nil
}

func (r *PgxProjectRepository) UpdateProject(ctx context.Context, project domain.Project) error {
	query := `
		UPDATE projects
		SET name = $2, last_updated_at = $3, last_updated_by = $4
		WHERE project_id = $1;
	`
	tag, err := r.db.Exec(ctx, query,
		project.ProjectID,
		project.Name,
		project.LastUpdatedAt,
		project.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update project %s: %w", project.ProjectID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteProject removes a project row. The referencing foreign keys on
// expenses and receipts surface as a validation error rather than a raw
// constraint failure.
func (r *PgxProjectRepository) DeleteProject(ctx context.Context, projectID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM projects WHERE project_id = $1;`, projectID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return fmt.Errorf("%w: project still has expenses or receipts", apperrors.ErrValidation)
		}
		return fmt.Errorf("failed to delete project %s: %w", projectID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
