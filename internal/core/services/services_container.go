package services

import (
	portsrepo "github.com/autoecole-hub/console_backend/internal/core/ports/repositories"
	portssvc "github.com/autoecole-hub/console_backend/internal/core/ports/services"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Account service first since reconciliation depends on its aggregation.
	container.Account = NewSchoolAccountService(repos.AccountRepo, repos.TransactionRepo)
	container.Transaction = NewTransactionService(repos.TransactionRepo, repos.AccountRepo)
	container.Treasury = NewTreasuryService(repos.TreasuryRepo)
	container.Reconciliation = NewReconciliationService(
		repos.AccountRepo,
		repos.TransactionRepo,
		repos.TreasuryRepo,
		container.Account,
	)

	return container
}

// Compile-time checks that the concrete services satisfy their facades.
var (
	_ portssvc.TransactionSvcFacade    = (*transactionService)(nil)
	_ portssvc.SchoolAccountSvcFacade  = (*schoolAccountService)(nil)
	_ portssvc.TreasurySvcFacade       = (*treasuryService)(nil)
	_ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)
)
