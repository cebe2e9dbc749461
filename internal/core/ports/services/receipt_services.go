package services

import (
	"context"

	"github.com/snapexpense/snap_expense_app/internal/core/domain"
	"github.com/snapexpense/snap_expense_app/internal/dto"
)

// ReceiptReaderSvc defines read operations for receipts
type ReceiptReaderSvc interface {
	GetReceiptByID(ctx context.Context, receiptID, userID string) (*domain.Receipt, error)
	ListReceipts(ctx context.Context, projectID, userID string) ([]domain.Receipt, error)
}

// ReceiptWriterSvc defines write operations for receipts
type ReceiptWriterSvc interface {
	// UploadReceipt stores the original bytes in object storage and
	// persists the receipt row.
	UploadReceipt(ctx context.Context, req dto.UploadReceiptRequest, data []byte, userID string) (*domain.Receipt, error)

	// DeleteReceipt soft-deletes a receipt, unlinking it first.
	DeleteReceipt(ctx context.Context, receiptID, userID string) error
}

// ReceiptMatchSvc defines the match/unmatch operations that flip expense
// status alongside the receipt link.
type ReceiptMatchSvc interface {
	// MatchReceipt links a receipt to an expense of the same user.
	MatchReceipt(ctx context.Context, receiptID, expenseID, userID string) error

	// UnmatchReceipt clears the receipt's expense link.
	UnmatchReceipt(ctx context.Context, receiptID, userID string) error

	// SuggestMatches ranks candidate expenses for a receipt using the
	// user's matching rules. An already-linked expense is always pinned
	// at the head of the list.
	SuggestMatches(ctx context.Context, receiptID, userID string) ([]domain.MatchCandidate, error)
}

// ReceiptSvcFacade combines all receipt-related service interfaces
type ReceiptSvcFacade interface {
	ReceiptReaderSvc
	ReceiptWriterSvc
	ReceiptMatchSvc
}
