package services

import (
	"context"

	"github.com/autoecole-hub/console_backend/internal/core/domain"
	"github.com/autoecole-hub/console_backend/internal/dto"
)

// TransactionReaderSvc defines read operations over the ledger.
type TransactionReaderSvc interface {
	// GetTransactionByID retrieves a single ledger entry.
	GetTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactions retrieves a filtered page of ledger entries, newest first.
	ListTransactions(ctx context.Context, filters dto.ListTransactionsFilters, limit int, nextToken *string) ([]domain.Transaction, *string, error)
}

// TransactionWriterSvc defines write operations over the ledger.
type TransactionWriterSvc interface {
	// CreateTransaction validates and records a new ledger entry.
	CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, creatorUserID string) (*domain.Transaction, error)

	// UpdateTransaction applies edits to an existing ledger entry.
	UpdateTransaction(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest, updaterUserID string) (*domain.Transaction, error)

	// DeleteTransaction hard-deletes a ledger entry and folds its amount out of
	// the treasury summary. Requires elevated operator privilege.
	DeleteTransaction(ctx context.Context, transactionID string, deleterUserID string) error

	// BackfillAccountLinks assigns the explicit account link on legacy entries
	// that match exactly one school account. Ambiguous and unmatched entries are
	// left untouched and reported.
	BackfillAccountLinks(ctx context.Context, updaterUserID string) (*dto.BackfillResultResponse, error)
}

// TransactionSvcFacade combines all transaction service interfaces
type TransactionSvcFacade interface {
	TransactionReaderSvc
	TransactionWriterSvc
}
