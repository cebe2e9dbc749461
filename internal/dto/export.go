package dto

import (
	"time"

	"github.com/snapexpense/snap_expense_app/internal/core/domain"
)

// CreateExportRequest defines the data needed to request an export.
// Either BatchID or ProjectIDs must be provided.
type CreateExportRequest struct {
	BatchID    *string           `json:"batchID"`
	ProjectIDs []string          `json:"projectIDs"`
	Type       domain.ExportType `json:"type" binding:"required,oneof=csv yaml zip"`
	Sync       bool              `json:"sync"`
}

// ExportResponse defines the data returned for an export record.
type ExportResponse struct {
	ExportID   string     `json:"exportID"`
	BatchID    *string    `json:"batchID,omitempty"`
	ProjectIDs []string   `json:"projectIDs"`
	Type       string     `json:"type"`
	Status     string     `json:"status"`
	StorageKey *string    `json:"storageKey,omitempty"`
	FileSize   *int64     `json:"fileSize,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	Error      *string    `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	Reused     bool       `json:"reused,omitempty"`
}

// ToExportResponse converts a domain.ExportRecord to ExportResponse DTO
func ToExportResponse(r *domain.ExportRecord) ExportResponse {
	return ExportResponse{
		ExportID:   r.ExportID,
		BatchID:    r.BatchID,
		ProjectIDs: r.ProjectIDs,
		Type:       string(r.Type),
		Status:     string(r.Status),
		StorageKey: r.StorageKey,
		FileSize:   r.FileSize,
		ExpiresAt:  r.ExpiresAt,
		Error:      r.Error,
		CreatedAt:  r.CreatedAt,
	}
}

// ToListExportResponse converts a slice of domain.ExportRecord to DTOs
func ToListExportResponse(records []domain.ExportRecord) []ExportResponse {
	res := make([]ExportResponse, len(records))
	for i, r := range records {
		res[i] = ToExportResponse(&r)
	}
	return res
}
