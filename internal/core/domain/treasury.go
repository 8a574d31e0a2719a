package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TreasurySummary is the platform-wide running aggregate of the ledger.
// It is a singleton record maintained as a read-optimized cache: TotalInbound and
// TotalOutbound sum VALIDATED entries of the respective direction, Balance is
// TotalInbound - TotalOutbound, and TransactionCount counts all entries regardless
// of status.
type TreasurySummary struct {
	TotalInbound     decimal.Decimal `json:"totalInbound"`
	TotalOutbound    decimal.Decimal `json:"totalOutbound"`
	Balance          decimal.Decimal `json:"balance"`
	TransactionCount int64           `json:"transactionCount"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// IsConsistent reports whether the balance equals inbound minus outbound.
func (s TreasurySummary) IsConsistent() bool {
	return s.Balance.Equal(s.TotalInbound.Sub(s.TotalOutbound))
}
