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

// projectService provides project CRUD operations.
type projectService struct {
	projectRepo portsrepo.ProjectRepositoryFacade
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo portsrepo.ProjectRepositoryFacade) portssvc.ProjectSvcFacade {
	return &projectService{projectRepo: projectRepo}
}

var _ portssvc.ProjectSvcFacade = (*projectService)(nil)

func (s *projectService) CreateProject(ctx context.Context, req dto.CreateProjectRequest, userID string) (*domain.Project, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now()
	project := domain.Project{
		ProjectID: uuid.NewString(),
		UserID:    userID,
		Name:      req.Name,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.projectRepo.SaveProject(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to save project: %w", err)
	}

	logger.Info("Project created", slog.String("project_id", project.ProjectID))
	return &project, nil
}

func (s *projectService) GetProjectByID(ctx context.Context, projectID, userID string) (*domain.Project, error) {
	project, err := s.projectRepo.FindProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return project, nil
}

func (s *projectService) ListProjects(ctx context.Context, userID string) ([]domain.Project, error) {
	return s.projectRepo.ListProjectsByUser(ctx, userID)
}

func (s *projectService) UpdateProject(ctx context.Context, projectID string, req dto.UpdateProjectRequest, userID string) (*domain.Project, error) {
	project, err := s.GetProjectByID(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	project.LastUpdatedAt = time.Now()
	project.LastUpdatedBy = userID

	if err := s.projectRepo.UpdateProject(ctx, *project); err != nil {
		return nil, fmt.Errorf("failed to update project %s: %w", projectID, err)
	}
	return project, nil
}

func (s *projectService) DeleteProject(ctx context.Context, projectID, userID string) error {
	if _, err := s.GetProjectByID(ctx, projectID, userID); err != nil {
		return err
	}
	return s.projectRepo.DeleteProject(ctx, projectID)
}
