package models

import (
	"github.com/shopspring/decimal"
)

// SchoolAccount is the database representation of a partner school's billing account.
type SchoolAccount struct {
	AccountID      string           `db:"account_id"`
	Name           string           `db:"name"`
	ExpectedAmount decimal.Decimal  `db:"expected_amount"`
	PaidOverride   *decimal.Decimal `db:"paid_override"` // NULL means computed
	IsActive       bool             `db:"is_active"`
	AuditFields
}
