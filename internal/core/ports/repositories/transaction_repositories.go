package repositories

import (
	"context"

	"github.com/autoecole-hub/console_backend/internal/core/domain"
	"github.com/autoecole-hub/console_backend/internal/dto"
)

// TransactionReader defines read operations for ledger entries
type TransactionReader interface {
	// FindTransactionByID retrieves a specific entry by its unique identifier.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactions retrieves a filtered, paginated list of entries ordered by
	// occurred_at descending. It returns the entries, a token for the next page, and an error.
	ListTransactions(ctx context.Context, filters dto.ListTransactionsFilters, limit int, nextToken *string) ([]domain.Transaction, *string, error)

	// FindTransactionsForAccount retrieves every entry attributable to the given
	// account, either through its explicit account link or through the legacy
	// description/reference heuristic, ordered by occurred_at descending.
	FindTransactionsForAccount(ctx context.Context, account domain.SchoolAccount) ([]domain.Transaction, error)

	// ListUnlinkedTransactions retrieves entries that carry no account link,
	// for the legacy backfill.
	ListUnlinkedTransactions(ctx context.Context) ([]domain.Transaction, error)
}

// TransactionWriter defines write operations for ledger entries.
// Every write that changes a VALIDATED amount folds the change into the
// treasury summary with an atomic increment inside the same database transaction.
type TransactionWriter interface {
	// SaveTransaction persists a new entry and folds it into the treasury summary.
	SaveTransaction(ctx context.Context, txn domain.Transaction) error

	// UpdateTransaction persists edits to an entry and folds the aggregate delta
	// against the previous persisted state into the treasury summary.
	UpdateTransaction(ctx context.Context, txn domain.Transaction) error

	// DeleteTransaction removes an entry and folds its amount out of the treasury
	// summary. It returns the deleted entry.
	DeleteTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// LinkTransactionToAccount sets the explicit account link on a legacy entry.
	LinkTransactionToAccount(ctx context.Context, transactionID, accountID, updatedBy string) error
}

// TransactionRepositoryFacade combines all transaction-related repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}

// TransactionRepositoryWithTx extends the facade with database transaction capabilities
type TransactionRepositoryWithTx interface {
	TransactionRepositoryFacade
	TransactionManager
}
