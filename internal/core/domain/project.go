package domain

// Project groups expenses, receipts and batches for one reimbursement context.
type Project struct {
	ProjectID string `json:"projectID"`
	UserID    string `json:"userID"`
	Name      string `json:"name"`
	AuditFields
}
