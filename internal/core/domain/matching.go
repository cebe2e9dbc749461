package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MatchRules are the user-configurable tolerances of the matching engine.
type MatchRules struct {
	DateWindowDays       int             `json:"dateWindowDays"`
	AmountTolerance      decimal.Decimal `json:"amountTolerance"`
	RequireCategoryMatch bool            `json:"requireCategoryMatch"`
}

// DefaultMatchRules returns the rules applied when a user has not
// customized anything: 3 day window, zero tolerance, no category requirement.
func DefaultMatchRules() MatchRules {
	return MatchRules{DateWindowDays: 3, AmountTolerance: decimal.Zero}
}

// ReceiptSignal is what the matching engine knows about a receipt.
// Every field is optional; absent information never excludes a candidate.
type ReceiptSignal struct {
	Amount   *decimal.Decimal `json:"amount,omitempty"`
	Date     *time.Time       `json:"date,omitempty"`
	Category string           `json:"category,omitempty"`
	Note     string           `json:"note,omitempty"`
}

// ExpenseCandidate is the slice of an expense the matching engine scores.
type ExpenseCandidate struct {
	ID       string          `json:"id"`
	Amount   decimal.Decimal `json:"amount"`
	Date     time.Time       `json:"date"`
	Category string          `json:"category,omitempty"`
	Note     string          `json:"note,omitempty"`
}

// Confidence is the coarse human-facing label for a match candidate.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// MatchCandidate is one ranked pairing suggestion.
type MatchCandidate struct {
	ExpenseID  string     `json:"expenseID"`
	Confidence Confidence `json:"confidence"`
	Reason     string     `json:"reason"`
}
