package repositories

import (
	"context"
	"time"

	"github.com/snapexpense/snap_expense_app/internal/core/domain"
)

// ReceiptReader defines read operations for receipt data
type ReceiptReader interface {
	// FindReceiptByID retrieves a specific receipt by its unique identifier,
	// including soft-deleted rows.
	FindReceiptByID(ctx context.Context, receiptID string) (*domain.Receipt, error)

	// ListReceiptsByProject retrieves all non-deleted receipts of a
	// project/user pair.
	ListReceiptsByProject(ctx context.Context, projectID, userID string) ([]domain.Receipt, error)
}

// ReceiptWriter defines write operations for receipt data
type ReceiptWriter interface {
	// SaveReceipt persists a new receipt.
	SaveReceipt(ctx context.Context, receipt domain.Receipt) error

	// UpdateReceipt updates the mutable fields of a receipt.
	UpdateReceipt(ctx context.Context, receipt domain.Receipt) error

	// SetMatchedExpense links (or with nil unlinks) a receipt to an expense.
	SetMatchedExpense(ctx context.Context, receiptID string, expenseID *string, updatedBy string, updatedAt time.Time) error

	// SoftDeleteReceipt marks a receipt deleted without removing the row.
	SoftDeleteReceipt(ctx context.Context, receiptID string, deletedBy string, deletedAt time.Time) error
}

// ReceiptRepositoryFacade combines all receipt-related repository interfaces
type ReceiptRepositoryFacade interface {
	ReceiptReader
	ReceiptWriter
}
