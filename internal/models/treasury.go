package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TreasurySummary is the database representation of the singleton treasury row.
// The table holds exactly one row, keyed by a fixed id.
type TreasurySummary struct {
	SummaryID        string          `db:"summary_id"`
	TotalInbound     decimal.Decimal `db:"total_inbound"`
	TotalOutbound    decimal.Decimal `db:"total_outbound"`
	Balance          decimal.Decimal `db:"balance"`
	TransactionCount int64           `db:"transaction_count"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

// TreasurySummaryID is the fixed key of the singleton treasury row.
const TreasurySummaryID = "platform"
