package services

import (
	"context"

	"github.com/autoecole-hub/console_backend/internal/core/domain"
)

// TreasurySvcFacade defines operations on the platform-wide treasury summary.
type TreasurySvcFacade interface {
	// GetTreasurySummary retrieves the current platform summary.
	GetTreasurySummary(ctx context.Context) (*domain.TreasurySummary, error)

	// RebuildSummary recomputes the summary from the ledger. Recovery path for an
	// interrupted summary fold; requires elevated operator privilege.
	RebuildSummary(ctx context.Context) (*domain.TreasurySummary, error)

	// ComputeSummary derives a summary from a transaction set. Pure; totals sum
	// validated entries by direction, the count includes entries of any status.
	ComputeSummary(transactions []domain.Transaction) domain.TreasurySummary
}
