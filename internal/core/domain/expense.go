package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseStatus indicates the receipt-linkage state of an expense.
type ExpenseStatus string

const (
	ExpenseMissingReceipt    ExpenseStatus = "missing_receipt"
	ExpenseMatched           ExpenseStatus = "matched"
	ExpenseNoReceiptRequired ExpenseStatus = "no_receipt_required"
)

// Expense represents a single reimbursable expense line.
// Status mirrors the current receipt linkage unless ManualStatus is set,
// in which case no automated process may overwrite it.
type Expense struct {
	ExpenseID    string          `json:"expenseID"`
	UserID       string          `json:"userID"`
	ProjectID    string          `json:"projectID"`
	Amount       decimal.Decimal `json:"amount"`
	Date         time.Time       `json:"date"`
	Category     string          `json:"category,omitempty"`
	Note         string          `json:"note"`
	Status       ExpenseStatus   `json:"status"`
	ManualStatus bool            `json:"manualStatus"`
	AuditFields
}

// ExpenseFilter narrows an expense selection the way a batch does.
// Zero-valued fields are not applied.
type ExpenseFilter struct {
	ProjectID  string
	UserID     string
	DateFrom   *time.Time
	DateTo     *time.Time
	Statuses   []ExpenseStatus
	Categories []string
}
