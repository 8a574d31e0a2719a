package repositories

import (
	"context"

	"github.com/autoecole-hub/console_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TreasuryRepositoryFacade defines operations on the singleton treasury summary row.
type TreasuryRepositoryFacade interface {
	// GetSummary retrieves the singleton summary row.
	GetSummary(ctx context.Context) (*domain.TreasurySummary, error)

	// ApplySummaryDelta folds a change into the summary with a single atomic SQL
	// increment. The new totals are never computed client-side from a prior read.
	// countDelta adjusts the transaction count (entries of any status).
	ApplySummaryDelta(ctx context.Context, inboundDelta, outboundDelta decimal.Decimal, countDelta int64) (*domain.TreasurySummary, error)

	// RebuildSummary recomputes the summary row from the transactions table in a
	// single statement. Recovery path for an interrupted fold.
	RebuildSummary(ctx context.Context) (*domain.TreasurySummary, error)
}
