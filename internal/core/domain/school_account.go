package domain

import (
	"github.com/shopspring/decimal"
)

// SchoolAccount represents a partner driving school's billing account.
// ExpectedAmount is the operator-set target (typically the contract tier price).
// PaidOverride, when set, is the authoritative paid total for the account and
// supersedes any figure computed from matched transactions.
type SchoolAccount struct {
	AccountID      string           `json:"accountID"` // Primary Key (UUID)
	Name           string           `json:"name"`
	ExpectedAmount decimal.Decimal  `json:"expectedAmount"`
	PaidOverride   *decimal.Decimal `json:"paidOverride,omitempty"`
	IsActive       bool             `json:"isActive"`
	AuditFields
}

// HasPaidOverride reports whether an operator has asserted the paid total by hand.
func (a SchoolAccount) HasPaidOverride() bool {
	return a.PaidOverride != nil
}
