package dto

import (
	"time"

	"github.com/snapexpense/snap_expense_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// UploadReceiptRequest defines the metadata accompanying a receipt upload.
type UploadReceiptRequest struct {
	ProjectID string           `json:"projectID" binding:"required"`
	FileName  string           `json:"fileName" binding:"required"`
	Amount    *decimal.Decimal `json:"amount"`
	Date      *time.Time       `json:"date"`
	Type      string           `json:"type"`
}

// ReceiptResponse defines the data returned for a receipt.
type ReceiptResponse struct {
	ReceiptID        string           `json:"receiptID"`
	ProjectID        string           `json:"projectID"`
	FileName         string           `json:"fileName"`
	Hash             *string          `json:"hash,omitempty"`
	StorageKey       *string          `json:"storageKey,omitempty"`
	MatchedExpenseID *string          `json:"matchedExpenseID,omitempty"`
	Amount           *decimal.Decimal `json:"amount,omitempty"`
	Date             *time.Time       `json:"date,omitempty"`
	Type             string           `json:"type,omitempty"`
	DeletedAt        *time.Time       `json:"deletedAt,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
}

// ToReceiptResponse converts a domain.Receipt to ReceiptResponse DTO
func ToReceiptResponse(r *domain.Receipt) ReceiptResponse {
	return ReceiptResponse{
		ReceiptID:        r.ReceiptID,
		ProjectID:        r.ProjectID,
		FileName:         r.FileName,
		Hash:             r.Hash,
		StorageKey:       r.StorageKey,
		MatchedExpenseID: r.MatchedExpenseID,
		Amount:           r.Amount,
		Date:             r.Date,
		Type:             r.Type,
		DeletedAt:        r.DeletedAt,
		CreatedAt:        r.CreatedAt,
	}
}

// ToListReceiptResponse converts a slice of domain.Receipt to DTOs
func ToListReceiptResponse(receipts []domain.Receipt) []ReceiptResponse {
	res := make([]ReceiptResponse, len(receipts))
	for i, r := range receipts {
		res[i] = ToReceiptResponse(&r)
	}
	return res
}

// MatchReceiptRequest links a receipt to an expense.
type MatchReceiptRequest struct {
	ExpenseID string `json:"expenseID" binding:"required"`
}

// MatchCandidateResponse is one ranked pairing suggestion.
type MatchCandidateResponse struct {
	ExpenseID  string `json:"expenseID"`
	Confidence string `json:"confidence"`
	Reason     string `json:"reason"`
}

// ToMatchCandidateResponses converts match candidates to DTOs
func ToMatchCandidateResponses(candidates []domain.MatchCandidate) []MatchCandidateResponse {
	res := make([]MatchCandidateResponse, len(candidates))
	for i, c := range candidates {
		res[i] = MatchCandidateResponse{
			ExpenseID:  c.ExpenseID,
			Confidence: string(c.Confidence),
			Reason:     c.Reason,
		}
	}
	return res
}
