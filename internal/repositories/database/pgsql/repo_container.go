package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/snapexpense/snap_expense_app/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		UserRepo:    newPgxUserRepository(dbPool),
		ProjectRepo: newPgxProjectRepository(dbPool),
		ExpenseRepo: newPgxExpenseRepository(dbPool),
		ReceiptRepo: newPgxReceiptRepository(dbPool),
		BatchRepo:   newPgxBatchRepository(dbPool),
		ExportRepo:  newPgxExportRepository(dbPool),
		JobRepo:     newPgxJobRepository(dbPool),
	}
}
