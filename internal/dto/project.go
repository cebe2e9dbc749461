package dto

import (
	"time"

	"github.com/snapexpense/snap_expense_app/internal/core/domain"
)

// CreateProjectRequest defines the data needed to create a new project.
type CreateProjectRequest struct {
	Name string `json:"name" binding:"required"`
}

// UpdateProjectRequest defines the data allowed for updating a project.
type UpdateProjectRequest struct {
	Name *string `json:"name"`
}

// ProjectResponse defines the data returned for a project.
type ProjectResponse struct {
	ProjectID     string    `json:"projectID"`
	Name          string    `json:"name"`
	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// ToProjectResponse converts a domain.Project to ProjectResponse DTO
func ToProjectResponse(p *domain.Project) ProjectResponse {
	return ProjectResponse{
		ProjectID:     p.ProjectID,
		Name:          p.Name,
		CreatedAt:     p.CreatedAt,
		LastUpdatedAt: p.LastUpdatedAt,
	}
}

// ToListProjectResponse converts a slice of domain.Project to DTOs
func ToListProjectResponse(projects []domain.Project) []ProjectResponse {
	res := make([]ProjectResponse, len(projects))
	for i, p := range projects {
		res[i] = ToProjectResponse(&p)
	}
	return res
}
