package dto

import (
	"time"

	"github.com/snapexpense/snap_expense_app/internal/core/domain"
)

// CreateBatchRequest defines the data needed to create a new batch.
type CreateBatchRequest struct {
	ProjectID  string                 `json:"projectID" binding:"required"`
	Name       string                 `json:"name" binding:"required"`
	DateFrom   *time.Time             `json:"dateFrom"`
	DateTo     *time.Time             `json:"dateTo"`
	Statuses   []domain.ExpenseStatus `json:"statuses"`
	Categories []string               `json:"categories"`
}

// UpdateBatchRequest defines the data allowed for updating a batch.
type UpdateBatchRequest struct {
	Name       *string                 `json:"name"`
	DateFrom   *time.Time              `json:"dateFrom"`
	DateTo     *time.Time              `json:"dateTo"`
	Statuses   *[]domain.ExpenseStatus `json:"statuses"`
	Categories *[]string               `json:"categories"`
}

// BatchResponse defines the data returned for a batch.
type BatchResponse struct {
	BatchID      string                 `json:"batchID"`
	ProjectID    string                 `json:"projectID"`
	Name         string                 `json:"name"`
	DateFrom     *time.Time             `json:"dateFrom,omitempty"`
	DateTo       *time.Time             `json:"dateTo,omitempty"`
	Statuses     []domain.ExpenseStatus `json:"statuses,omitempty"`
	Categories   []string               `json:"categories,omitempty"`
	IssueSummary domain.IssueSummary    `json:"issueSummary"`
	CheckedAt    *time.Time             `json:"checkedAt,omitempty"`
	CreatedAt    time.Time              `json:"createdAt"`
}

// ToBatchResponse converts a domain.Batch to BatchResponse DTO
func ToBatchResponse(b *domain.Batch) BatchResponse {
	return BatchResponse{
		BatchID:      b.BatchID,
		ProjectID:    b.ProjectID,
		Name:         b.Name,
		DateFrom:     b.DateFrom,
		DateTo:       b.DateTo,
		Statuses:     b.Statuses,
		Categories:   b.Categories,
		IssueSummary: b.IssueSummary,
		CheckedAt:    b.CheckedAt,
		CreatedAt:    b.CreatedAt,
	}
}

// ToListBatchResponse converts a slice of domain.Batch to DTOs
func ToListBatchResponse(batches []domain.Batch) []BatchResponse {
	res := make([]BatchResponse, len(batches))
	for i, b := range batches {
		res[i] = ToBatchResponse(&b)
	}
	return res
}

// BatchIssueResponse defines the data returned for a batch issue.
type BatchIssueResponse struct {
	IssueID   string  `json:"issueID"`
	Type      string  `json:"type"`
	Severity  string  `json:"severity"`
	ExpenseID *string `json:"expenseID,omitempty"`
	ReceiptID *string `json:"receiptID,omitempty"`
	Message   string  `json:"message"`
}

// ToListBatchIssueResponse converts a slice of domain.BatchIssue to DTOs
func ToListBatchIssueResponse(issues []domain.BatchIssue) []BatchIssueResponse {
	res := make([]BatchIssueResponse, len(issues))
	for i, iss := range issues {
		res[i] = BatchIssueResponse{
			IssueID:   iss.IssueID,
			Type:      string(iss.Type),
			Severity:  string(iss.Severity),
			ExpenseID: iss.ExpenseID,
			ReceiptID: iss.ReceiptID,
			Message:   iss.Message,
		}
	}
	return res
}
