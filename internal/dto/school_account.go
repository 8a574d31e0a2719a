package dto

import (
	"time"

	"github.com/autoecole-hub/console_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateSchoolAccountRequest defines the payload to register a partner school account.
type CreateSchoolAccountRequest struct {
	Name           string          `json:"name" binding:"required"`
	ExpectedAmount decimal.Decimal `json:"expectedAmount"`
}

// UpdateSchoolAccountRequest defines the editable fields of a school account.
type UpdateSchoolAccountRequest struct {
	Name           *string          `json:"name"`
	ExpectedAmount *decimal.Decimal `json:"expectedAmount"`
}

// SchoolAccountResponse defines the data returned for a school account.
type SchoolAccountResponse struct {
	AccountID      string           `json:"accountID"`
	Name           string           `json:"name"`
	ExpectedAmount decimal.Decimal  `json:"expectedAmount"`
	PaidOverride   *decimal.Decimal `json:"paidOverride,omitempty"`
	IsActive       bool             `json:"isActive"`
	CreatedAt      time.Time        `json:"createdAt"`
}

// AccountPaymentViewResponse is the payment picture for one school account:
// the resolved paid figure (computed or overridden), the expected amount, and
// the matched transaction history.
type AccountPaymentViewResponse struct {
	AccountID      string                `json:"accountID"`
	Name           string                `json:"name"`
	Paid           decimal.Decimal       `json:"paid"`
	PaidSource     string                `json:"paidSource"` // COMPUTED or OVERRIDDEN
	ExpectedAmount decimal.Decimal       `json:"expectedAmount"`
	MatchedHistory []TransactionResponse `json:"matchedHistory"`
}

// ToAccountPaymentViewResponse converts a domain.AccountPaymentView to its response DTO.
func ToAccountPaymentViewResponse(v *domain.AccountPaymentView) AccountPaymentViewResponse {
	return AccountPaymentViewResponse{
		AccountID:      v.Account.AccountID,
		Name:           v.Account.Name,
		Paid:           v.Paid.Amount,
		PaidSource:     string(v.Paid.Source),
		ExpectedAmount: v.Account.ExpectedAmount,
		MatchedHistory: ToTransactionResponses(v.MatchedHistory),
	}
}

// ToSchoolAccountResponse converts a domain.SchoolAccount to its response DTO.
func ToSchoolAccountResponse(a *domain.SchoolAccount) SchoolAccountResponse {
	return SchoolAccountResponse{
		AccountID:      a.AccountID,
		Name:           a.Name,
		ExpectedAmount: a.ExpectedAmount,
		PaidOverride:   a.PaidOverride,
		IsActive:       a.IsActive,
		CreatedAt:      a.CreatedAt,
	}
}
