package repositories

import (
	"context"

	"github.com/snapexpense/snap_expense_app/internal/core/domain"
)

// ProjectReader defines read operations for project data
type ProjectReader interface {
	// FindProjectByID retrieves a specific project by its unique identifier.
	FindProjectByID(ctx context.Context, projectID string) (*domain.Project, error)

	// ListProjectsByUser retrieves all projects owned by a user.
	ListProjectsByUser(ctx context.Context, userID string) ([]domain.Project, error)
}

// ProjectWriter defines write operations for project data
type ProjectWriter interface {
	// SaveProject persists a new project.
	SaveProject(ctx context.Context, project domain.Project) error

	// UpdateProject updates the mutable fields of a project.
	UpdateProject(ctx context.Context, project domain.Project) error

	// DeleteProject removes a project. Implementations fail with
	// ErrValidation while expenses or receipts still reference it.
	DeleteProject(ctx context.Context, projectID string) error
}

// ProjectRepositoryFacade combines all project-related repository interfaces
type ProjectRepositoryFacade interface {
	ProjectReader
	ProjectWriter
}
