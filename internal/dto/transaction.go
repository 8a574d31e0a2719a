package dto

import (
	"time"

	"github.com/autoecole-hub/console_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest defines the payload to record a new ledger entry.
// Amount, description, and category are mandatory; the entry is rejected before
// any write when one is missing.
type CreateTransactionRequest struct {
	Direction     domain.TransactionDirection `json:"direction" binding:"required,oneof=INBOUND OUTBOUND"`
	Amount        decimal.Decimal             `json:"amount" binding:"required"`
	Description   string                      `json:"description" binding:"required"`
	Category      string                      `json:"category" binding:"required"`
	PaymentMethod string                      `json:"paymentMethod"`
	Reference     string                      `json:"reference"`
	AccountID     string                      `json:"accountID"`
	OccurredAt    *time.Time                  `json:"occurredAt"`
	Status        domain.TransactionStatus    `json:"status" binding:"omitempty,oneof=VALIDATED PENDING CANCELLED"`
}

// UpdateTransactionRequest defines the editable fields of a ledger entry.
// Nil fields are left unchanged.
type UpdateTransactionRequest struct {
	Amount      *decimal.Decimal          `json:"amount"`
	Description *string                   `json:"description"`
	Category    *string                   `json:"category"`
	Status      *domain.TransactionStatus `json:"status" binding:"omitempty,oneof=VALIDATED PENDING CANCELLED"`
}

// ListTransactionsFilters narrows a transaction listing. All fields are optional.
type ListTransactionsFilters struct {
	Direction  *domain.TransactionDirection `form:"direction" binding:"omitempty,oneof=INBOUND OUTBOUND"`
	Status     *domain.TransactionStatus    `form:"status" binding:"omitempty,oneof=VALIDATED PENDING CANCELLED"`
	From       *time.Time                   `form:"from" time_format:"2006-01-02"`
	To         *time.Time                   `form:"to" time_format:"2006-01-02"`
	SearchText string                       `form:"q"`
}

// TransactionResponse defines the data returned for a ledger entry.
type TransactionResponse struct {
	TransactionID string                      `json:"transactionID"`
	Direction     domain.TransactionDirection `json:"direction"`
	Amount        decimal.Decimal             `json:"amount"`
	Description   string                      `json:"description"`
	Category      string                      `json:"category"`
	PaymentMethod string                      `json:"paymentMethod,omitempty"`
	Reference     string                      `json:"reference"`
	AccountID     string                      `json:"accountID,omitempty"`
	OccurredAt    time.Time                   `json:"occurredAt"`
	RecordedBy    string                      `json:"recordedBy"`
	Status        domain.TransactionStatus    `json:"status"`
	CreatedAt     time.Time                   `json:"createdAt"`
	UpdatedAt     time.Time                   `json:"updatedAt"`
}

// ListTransactionsResponse wraps a page of transactions with the pagination token.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// ToTransactionResponse converts a domain.Transaction to its response DTO.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID: t.TransactionID,
		Direction:     t.Direction,
		Amount:        t.Amount,
		Description:   t.Description,
		Category:      t.Category,
		PaymentMethod: t.PaymentMethod,
		Reference:     t.Reference,
		AccountID:     t.AccountID,
		OccurredAt:    t.OccurredAt,
		RecordedBy:    t.RecordedBy,
		Status:        t.Status,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.LastUpdatedAt,
	}
}

// ToTransactionResponses converts a slice of domain transactions to response DTOs.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(txns))
	for i := range txns {
		out[i] = ToTransactionResponse(&txns[i])
	}
	return out
}
