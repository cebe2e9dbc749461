package services

import (
	"context"

	"github.com/snapexpense/snap_expense_app/internal/core/domain"
	"github.com/snapexpense/snap_expense_app/internal/dto"
)

// ProjectSvcFacade defines operations for managing projects.
type ProjectSvcFacade interface {
	CreateProject(ctx context.Context, req dto.CreateProjectRequest, userID string) (*domain.Project, error)
	GetProjectByID(ctx context.Context, projectID, userID string) (*domain.Project, error)
	ListProjects(ctx context.Context, userID string) ([]domain.Project, error)
	UpdateProject(ctx context.Context, projectID string, req dto.UpdateProjectRequest, userID string) (*domain.Project, error)
	DeleteProject(ctx context.Context, projectID, userID string) error
}
