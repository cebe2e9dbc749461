package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receipt represents an uploaded proof-of-purchase document.
// Receipts are soft-deleted once uploaded; MatchedExpenseID is the sole
// link to an Expense and must reference an expense of the same user.
type Receipt struct {
	ReceiptID        string           `json:"receiptID"`
	UserID           string           `json:"userID"`
	ProjectID        string           `json:"projectID"`
	FileName         string           `json:"fileName"`
	Hash             *string          `json:"hash,omitempty"`
	StorageKey       *string          `json:"storageKey,omitempty"`
	MatchedExpenseID *string          `json:"matchedExpenseID,omitempty"`
	Amount           *decimal.Decimal `json:"amount,omitempty"`
	Date             *time.Time       `json:"date,omitempty"`
	Type             string           `json:"type,omitempty"`
	DeletedAt        *time.Time       `json:"deletedAt,omitempty"`
	AuditFields
}

// Extension returns the lower-cased file extension of the original upload,
// without the leading dot. Defaults to "pdf" when the name carries none.
func (r Receipt) Extension() string {
	name := r.FileName
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			if i == len(name)-1 {
				break
			}
			return lowerASCII(name[i+1:])
		}
	}
	return "pdf"
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
