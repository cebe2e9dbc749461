package dto

import (
	"time"

	"github.com/snapexpense/snap_expense_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateExpenseRequest defines the data needed to create a new expense.
type CreateExpenseRequest struct {
	ProjectID    string               `json:"projectID" binding:"required"`
	Amount       decimal.Decimal      `json:"amount" binding:"required,dgt0"`
	Date         time.Time            `json:"date" binding:"required"`
	Category     string               `json:"category"`
	Note         string               `json:"note"`
	Status       domain.ExpenseStatus `json:"status" binding:"omitempty,oneof=missing_receipt matched no_receipt_required"`
	ManualStatus bool                 `json:"manualStatus"`
}

// UpdateExpenseRequest defines the data allowed for updating an expense.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateExpenseRequest struct {
	Amount       *decimal.Decimal      `json:"amount" binding:"omitempty,dgt0"`
	Date         *time.Time            `json:"date"`
	Category     *string               `json:"category"`
	Note         *string               `json:"note"`
	Status       *domain.ExpenseStatus `json:"status" binding:"omitempty,oneof=missing_receipt matched no_receipt_required"`
	ManualStatus *bool                 `json:"manualStatus"`
}

// ListExpensesParams defines query parameters for listing expenses.
type ListExpensesParams struct {
	ProjectID string     `form:"projectID" binding:"required"`
	DateFrom  *time.Time `form:"dateFrom" time_format:"2006-01-02"`
	DateTo    *time.Time `form:"dateTo" time_format:"2006-01-02"`
	Status    string     `form:"status"`
	Category  string     `form:"category"`
}

// ExpenseResponse defines the data returned for an expense.
type ExpenseResponse struct {
	ExpenseID     string               `json:"expenseID"`
	ProjectID     string               `json:"projectID"`
	Amount        decimal.Decimal      `json:"amount"`
	Date          time.Time            `json:"date"`
	Category      string               `json:"category,omitempty"`
	Note          string               `json:"note"`
	Status        domain.ExpenseStatus `json:"status"`
	ManualStatus  bool                 `json:"manualStatus"`
	CreatedAt     time.Time            `json:"createdAt"`
	LastUpdatedAt time.Time            `json:"lastUpdatedAt"`
}

// ToExpenseResponse converts a domain.Expense to ExpenseResponse DTO
func ToExpenseResponse(e *domain.Expense) ExpenseResponse {
	return ExpenseResponse{
		ExpenseID:     e.ExpenseID,
		ProjectID:     e.ProjectID,
		Amount:        e.Amount,
		Date:          e.Date,
		Category:      e.Category,
		Note:          e.Note,
		Status:        e.Status,
		ManualStatus:  e.ManualStatus,
		CreatedAt:     e.CreatedAt,
		LastUpdatedAt: e.LastUpdatedAt,
	}
}

// ToListExpenseResponse converts a slice of domain.Expense to DTOs
func ToListExpenseResponse(expenses []domain.Expense) []ExpenseResponse {
	res := make([]ExpenseResponse, len(expenses))
	for i, e := range expenses {
		res[i] = ToExpenseResponse(&e)
	}
	return res
}
