package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/autoecole-hub/console_backend/internal/core/domain"
	portsrepo "github.com/autoecole-hub/console_backend/internal/core/ports/repositories"
	portssvc "github.com/autoecole-hub/console_backend/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// treasuryService provides access to the platform-wide treasury summary.
type treasuryService struct {
	BaseService
	treasuryRepo portsrepo.TreasuryRepositoryFacade
}

// NewTreasuryService creates a new TreasuryService.
func NewTreasuryService(treasuryRepo portsrepo.TreasuryRepositoryFacade) portssvc.TreasurySvcFacade {
	return &treasuryService{
		treasuryRepo: treasuryRepo,
	}
}

// Ensure treasuryService implements the portssvc.TreasurySvcFacade interface
var _ portssvc.TreasurySvcFacade = (*treasuryService)(nil)

// GetTreasurySummary retrieves the current platform summary.
func (s *treasuryService) GetTreasurySummary(ctx context.Context) (*domain.TreasurySummary, error) {
	summary, err := s.treasuryRepo.GetSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read treasury summary: %w", err)
	}
	return summary, nil
}

// RebuildSummary recomputes the summary row from the ledger. This is the
// recovery path when a summary fold could not be applied after its writes
// were already committed.
func (s *treasuryService) RebuildSummary(ctx context.Context) (*domain.TreasurySummary, error) {
	summary, err := s.treasuryRepo.RebuildSummary(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to rebuild treasury summary")
		return nil, fmt.Errorf("failed to rebuild treasury summary: %w", err)
	}

	s.LogInfo(ctx, "Treasury summary rebuilt",
		slog.String("balance", summary.Balance.String()),
		slog.Int64("transaction_count", summary.TransactionCount),
	)
	return summary, nil
}

// ComputeSummary derives a summary from a transaction set. Totals sum validated
// entries by direction; the count includes entries of any status.
func (s *treasuryService) ComputeSummary(transactions []domain.Transaction) domain.TreasurySummary {
	totalIn := decimal.Zero
	totalOut := decimal.Zero
	for _, txn := range transactions {
		if !txn.CountsTowardTotals() {
			continue
		}
		if txn.Direction == domain.Outbound {
			totalOut = totalOut.Add(txn.Amount)
		} else {
			totalIn = totalIn.Add(txn.Amount)
		}
	}

	return domain.TreasurySummary{
		TotalInbound:     totalIn,
		TotalOutbound:    totalOut,
		Balance:          totalIn.Sub(totalOut),
		TransactionCount: int64(len(transactions)),
		UpdatedAt:        time.Now().UTC(),
	}
}
