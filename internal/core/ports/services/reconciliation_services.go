package services

import (
	"context"

	"github.com/autoecole-hub/console_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ReconciliationResult is the outcome of a payment reconciliation.
// CompensatingTransaction is nil when the asserted figure already matched the
// previously known total (delta zero).
type ReconciliationResult struct {
	CompensatingTransaction *domain.Transaction
	UpdatedSummary          domain.TreasurySummary
}

// ReconciliationSvcFacade reconciles an operator-asserted paid figure against the ledger.
type ReconciliationSvcFacade interface {
	// ReconcilePayment sets the account's paid override and expected amount, and
	// synthesizes a compensating transaction for the delta versus the previously
	// known paid total. Replaying the same request is a no-op (delta zero).
	// Requires elevated operator privilege.
	ReconcilePayment(ctx context.Context, accountID string, newPaidAmount, newExpectedAmount decimal.Decimal, operatorID string) (*ReconciliationResult, error)
}
