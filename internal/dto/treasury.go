package dto

import (
	"time"

	"github.com/autoecole-hub/console_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TreasurySummaryResponse defines the data returned for the platform summary.
type TreasurySummaryResponse struct {
	TotalInbound     decimal.Decimal `json:"totalInbound"`
	TotalOutbound    decimal.Decimal `json:"totalOutbound"`
	Balance          decimal.Decimal `json:"balance"`
	TransactionCount int64           `json:"transactionCount"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// ReconcilePaymentRequest defines the payload for a manual payment reconciliation.
type ReconcilePaymentRequest struct {
	NewPaidAmount     decimal.Decimal `json:"newPaidAmount" binding:"required"`
	NewExpectedAmount decimal.Decimal `json:"newExpectedAmount" binding:"required"`
}

// ReconcilePaymentResponse returns the compensating transaction (if one was
// created) and the updated platform summary.
type ReconcilePaymentResponse struct {
	CompensatingTransaction *TransactionResponse    `json:"compensatingTransaction,omitempty"`
	UpdatedSummary          TreasurySummaryResponse `json:"updatedSummary"`
}

// BackfillResultResponse reports the outcome of the legacy account-link backfill.
type BackfillResultResponse struct {
	Linked    int      `json:"linked"`
	Ambiguous []string `json:"ambiguous"` // transaction IDs matching more than one account
	Unmatched []string `json:"unmatched"` // transaction IDs matching no account
}

// ToTreasurySummaryResponse converts a domain.TreasurySummary to its response DTO.
func ToTreasurySummaryResponse(s *domain.TreasurySummary) TreasurySummaryResponse {
	return TreasurySummaryResponse{
		TotalInbound:     s.TotalInbound,
		TotalOutbound:    s.TotalOutbound,
		Balance:          s.Balance,
		TransactionCount: s.TransactionCount,
		UpdatedAt:        s.UpdatedAt,
	}
}
