package services

import (
	"context"

	"github.com/autoecole-hub/console_backend/internal/core/domain"
	"github.com/autoecole-hub/console_backend/internal/dto"
)

// SchoolAccountSvcFacade defines operations on school accounts and their payment view.
type SchoolAccountSvcFacade interface {
	// CreateAccount registers a new partner school account.
	CreateAccount(ctx context.Context, req dto.CreateSchoolAccountRequest, creatorUserID string) (*domain.SchoolAccount, error)

	// GetAccountByID retrieves a school account.
	GetAccountByID(ctx context.Context, accountID string) (*domain.SchoolAccount, error)

	// ListAccounts retrieves school accounts ordered by name.
	ListAccounts(ctx context.Context, limit int, offset int) ([]domain.SchoolAccount, error)

	// UpdateAccount applies edits to a school account.
	UpdateAccount(ctx context.Context, accountID string, req dto.UpdateSchoolAccountRequest, updaterUserID string) (*domain.SchoolAccount, error)

	// GetAccountPaymentView resolves the account's paid figure (override-aware)
	// together with its matched transaction history.
	GetAccountPaymentView(ctx context.Context, accountID string) (*domain.AccountPaymentView, error)

	// ClearPaidOverride returns the account's paid figure to the computed total.
	ClearPaidOverride(ctx context.Context, accountID string, updaterUserID string) (*domain.SchoolAccount, error)

	// ComputeAccountPaid resolves the paid total for an account from a transaction
	// set: the override when present, otherwise the sum of matched validated
	// inbound entries. Pure; exposed for reconciliation and reporting.
	ComputeAccountPaid(account domain.SchoolAccount, transactions []domain.Transaction) domain.PaymentTotal
}
