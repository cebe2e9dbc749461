package repositories

import (
	"context"
	"time"

	"github.com/snapexpense/snap_expense_app/internal/core/domain"
)

// ExportReader defines read operations for export records
type ExportReader interface {
	// FindExportByID retrieves a specific export record.
	FindExportByID(ctx context.Context, exportID string) (*domain.ExportRecord, error)

	// FindActiveExport returns a pending or running export for the same
	// batch and type, if one exists. Used by the duplicate-creation guard.
	FindActiveExport(ctx context.Context, batchID string, exportType domain.ExportType) (*domain.ExportRecord, error)

	// ListExportsByUser retrieves a user's export records, newest first.
	ListExportsByUser(ctx context.Context, userID string) ([]domain.ExportRecord, error)
}

// ExportWriter defines write operations for export records
type ExportWriter interface {
	// SaveExport persists a new export record.
	SaveExport(ctx context.Context, record domain.ExportRecord) error

	// MarkExportRunning transitions a record to running.
	MarkExportRunning(ctx context.Context, exportID string, updatedAt time.Time) error

	// MarkExportCompleted records the uploaded artifact and finishes the record.
	MarkExportCompleted(ctx context.Context, exportID string, storageKey string, fileSize int64, updatedAt time.Time) error

	// MarkExportFailed records the failure on the record.
	MarkExportFailed(ctx context.Context, exportID string, errMsg string, updatedAt time.Time) error
}

// ExportRepositoryFacade combines all export-related repository interfaces
type ExportRepositoryFacade interface {
	ExportReader
	ExportWriter
}
