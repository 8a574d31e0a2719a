package repositories

import (
	"context"
	"time"

	"github.com/autoecole-hub/console_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SchoolAccountReader defines read operations for school account data
type SchoolAccountReader interface {
	// FindAccountByID retrieves a specific school account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.SchoolAccount, error)

	// ListAccounts retrieves school accounts ordered by name.
	ListAccounts(ctx context.Context, limit int, offset int) ([]domain.SchoolAccount, error)
}

// SchoolAccountWriter defines write operations for school account data
type SchoolAccountWriter interface {
	// SaveAccount inserts a new school account.
	SaveAccount(ctx context.Context, account domain.SchoolAccount) error

	// UpdateAccount persists edits to a school account.
	UpdateAccount(ctx context.Context, account domain.SchoolAccount) error

	// SetReconciledAmounts persists the paid override and expected amount together
	// with the compensating transaction in a single database transaction: both
	// succeed or neither is written. observedOverride is the override the caller
	// read when it computed the compensating amount; if the stored override no
	// longer matches it the write is refused with apperrors.ErrConflict so the
	// caller can recompute against the fresh state.
	SetReconciledAmounts(ctx context.Context, accountID string, observedOverride *decimal.Decimal, paidOverride decimal.Decimal, expectedAmount decimal.Decimal, compensating *domain.Transaction, updatedBy string, updatedAt time.Time) error

	// ClearPaidOverride returns the account to the computed paid figure.
	ClearPaidOverride(ctx context.Context, accountID string, updatedBy string, updatedAt time.Time) error
}

// SchoolAccountRepositoryFacade combines all school-account repository interfaces
type SchoolAccountRepositoryFacade interface {
	SchoolAccountReader
	SchoolAccountWriter
}
