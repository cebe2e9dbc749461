package services

import (
	"context"

	"github.com/snapexpense/snap_expense_app/internal/core/domain"
	"github.com/snapexpense/snap_expense_app/internal/dto"
)

// ExportReaderSvc defines read operations for export records
type ExportReaderSvc interface {
	GetExportByID(ctx context.Context, exportID, userID string) (*domain.ExportRecord, error)
	ListExports(ctx context.Context, userID string) ([]domain.ExportRecord, error)
}

// ExportRequestSvc creates export records. A pending or running export for
// the same batch and type is reused instead of creating a second one.
type ExportRequestSvc interface {
	RequestExport(ctx context.Context, req dto.CreateExportRequest, userID string) (*domain.ExportRecord, bool, error)
}

// ExportRunnerSvc materializes a requested export. Run is invoked either
// synchronously right after record creation or from the job queue; both
// paths produce identical output for the same record.
type ExportRunnerSvc interface {
	Run(ctx context.Context, exportID, userID string) error
}

// ExportSvcFacade combines all export-related service interfaces
type ExportSvcFacade interface {
	ExportReaderSvc
	ExportRequestSvc
	ExportRunnerSvc
}
