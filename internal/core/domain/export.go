package domain

import "time"

// ExportType selects the artifact an export produces.
type ExportType string

const (
	// ExportCSV produces the BOM-prefixed delimited report alone.
	ExportCSV ExportType = "csv"
	// ExportYAML produces the structured index document.
	ExportYAML ExportType = "yaml"
	// ExportZip bundles the report, the index and the original receipt
	// files into one archive.
	ExportZip ExportType = "zip"
)

// ExportStatus is the lifecycle state of an export record.
type ExportStatus string

const (
	ExportPending   ExportStatus = "pending"
	ExportRunning   ExportStatus = "running"
	ExportCompleted ExportStatus = "completed"
	ExportFailed    ExportStatus = "failed"
)

// Extension returns the artifact file extension for the export type.
func (t ExportType) Extension() string {
	switch t {
	case ExportZip:
		return "zip"
	case ExportYAML:
		return "yaml"
	default:
		return "csv"
	}
}

// ExportRecord tracks one requested export artifact. Created pending by the
// caller; owned exclusively by the export pipeline thereafter.
type ExportRecord struct {
	ExportID   string       `json:"exportID"`
	BatchID    *string      `json:"batchID,omitempty"`
	UserID     string       `json:"userID"`
	ProjectIDs []string     `json:"projectIDs"`
	Type       ExportType   `json:"type"`
	Status     ExportStatus `json:"status"`
	StorageKey *string      `json:"storageKey,omitempty"`
	FileSize   *int64       `json:"fileSize,omitempty"`
	ExpiresAt  *time.Time   `json:"expiresAt,omitempty"`
	Error      *string      `json:"error,omitempty"`
	AuditFields
}
