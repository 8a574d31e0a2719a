package pgsql

import (
	portsrepo "github.com/autoecole-hub/console_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires the pgsql repositories into the provider consumed
// by the service container.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	transactionRepo := newPgxTransactionRepository(dbPool)
	accountRepo := newPgxSchoolAccountRepository(dbPool)
	treasuryRepo := newPgxTreasuryRepository(dbPool)

	return portsrepo.RepositoryProvider{
		TransactionRepo: transactionRepo,
		AccountRepo:     accountRepo,
		TreasuryRepo:    treasuryRepo,
	}
}
