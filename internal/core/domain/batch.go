package domain

import "time"

// Batch is a user-defined grouping of expenses, by filter criteria,
// intended for one reimbursement submission/export cycle.
type Batch struct {
	BatchID    string          `json:"batchID"`
	UserID     string          `json:"userID"`
	ProjectID  string          `json:"projectID"`
	Name       string          `json:"name"`
	DateFrom   *time.Time      `json:"dateFrom,omitempty"`
	DateTo     *time.Time      `json:"dateTo,omitempty"`
	Statuses   []ExpenseStatus `json:"statuses,omitempty"`
	Categories []string        `json:"categories,omitempty"`

	// Denormalized output of the most recent consistency check.
	IssueSummary IssueSummary `json:"issueSummary"`
	CheckedAt    *time.Time   `json:"checkedAt,omitempty"`

	AuditFields
}

// Filter expresses the batch's expense selection criteria.
func (b Batch) Filter() ExpenseFilter {
	return ExpenseFilter{
		ProjectID:  b.ProjectID,
		UserID:     b.UserID,
		DateFrom:   b.DateFrom,
		DateTo:     b.DateTo,
		Statuses:   b.Statuses,
		Categories: b.Categories,
	}
}

// IssueType classifies a detected data-quality problem.
type IssueType string

const (
	IssueMissingReceipt   IssueType = "missing_receipt"
	IssueDuplicateReceipt IssueType = "duplicate_receipt"
	IssueAmountMismatch   IssueType = "amount_mismatch"
)

// IssueSeverity grades how serious an issue is.
type IssueSeverity string

const (
	SeverityWarning IssueSeverity = "warning"
	SeverityError   IssueSeverity = "error"
)

// BatchIssue is one detected problem within a batch. The issue set of a
// batch is a derived cache: every checker run replaces it wholesale.
type BatchIssue struct {
	IssueID   string        `json:"issueID"`
	BatchID   string        `json:"batchID"`
	Type      IssueType     `json:"type"`
	Severity  IssueSeverity `json:"severity"`
	ExpenseID *string       `json:"expenseID,omitempty"`
	ReceiptID *string       `json:"receiptID,omitempty"`
	Message   string        `json:"message"`
	CreatedAt time.Time     `json:"createdAt"`
}

// IssueSummary is the denormalized per-type issue count stored on the batch.
type IssueSummary struct {
	MissingReceipt   int `json:"missingReceipt"`
	DuplicateReceipt int `json:"duplicateReceipt"`
	AmountMismatch   int `json:"amountMismatch"`
}

// SummarizeIssues tallies an issue list into per-type counts.
func SummarizeIssues(issues []BatchIssue) IssueSummary {
	var s IssueSummary
	for _, iss := range issues {
		switch iss.Type {
		case IssueMissingReceipt:
			s.MissingReceipt++
		case IssueDuplicateReceipt:
			s.DuplicateReceipt++
		case IssueAmountMismatch:
			s.AmountMismatch++
		}
	}
	return s
}
