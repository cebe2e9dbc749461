package services

import (
	"time"

	portsrepo "github.com/snapexpense/snap_expense_app/internal/core/ports/repositories"
	portssvc "github.com/snapexpense/snap_expense_app/internal/core/ports/services"
	"github.com/snapexpense/snap_expense_app/internal/core/ports/storage"
)

// NewServiceContainer creates the service container with properly
// initialized dependencies. Services only see each other through their port
// interfaces, never concrete types.
func NewServiceContainer(repos *portsrepo.RepositoryProvider, store storage.ObjectStore, jobPollInterval time.Duration) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.User = NewUserService(repos.UserRepo)
	container.Project = NewProjectService(repos.ProjectRepo)
	container.Expense = NewExpenseService(repos.ExpenseRepo, repos.ProjectRepo)
	container.Matching = NewMatchingService()

	container.Receipt = NewReceiptService(
		repos.ReceiptRepo,
		repos.ExpenseRepo,
		repos.ProjectRepo,
		container.User,
		container.Matching,
		store,
	)

	container.Batch = NewBatchService(repos.BatchRepo, repos.ProjectRepo)

	container.Export = NewExportService(
		repos.ExportRepo,
		repos.BatchRepo,
		repos.ProjectRepo,
		repos.ExpenseRepo,
		repos.ReceiptRepo,
		container.User,
		store,
	)

	// The checker and the export runner are the job queue's two workers.
	checker := NewBatchCheckService(repos.BatchRepo, repos.ExpenseRepo, repos.ReceiptRepo)
	container.Jobs = NewJobService(repos.JobRepo, checker, container.Export, jobPollInterval)

	return container
}
