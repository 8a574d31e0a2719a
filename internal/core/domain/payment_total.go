package domain

import "github.com/shopspring/decimal"

// PaymentTotalSource distinguishes how a school's paid total was determined.
type PaymentTotalSource string

const (
	// ComputedTotal means the total was summed from matched validated inbound transactions.
	ComputedTotal PaymentTotalSource = "COMPUTED"
	// OverriddenTotal means an operator asserted the total by hand.
	OverriddenTotal PaymentTotalSource = "OVERRIDDEN"
)

// PaymentTotal is the tagged result of resolving a school's paid figure.
// Computed is the default; Overridden requires an explicit operator action to
// both set and clear.
type PaymentTotal struct {
	Amount decimal.Decimal    `json:"amount"`
	Source PaymentTotalSource `json:"source"`
}

// NewComputedTotal builds a PaymentTotal derived from the ledger.
func NewComputedTotal(sum decimal.Decimal) PaymentTotal {
	return PaymentTotal{Amount: sum, Source: ComputedTotal}
}

// NewOverriddenTotal builds a PaymentTotal asserted by an operator.
func NewOverriddenTotal(value decimal.Decimal) PaymentTotal {
	return PaymentTotal{Amount: value, Source: OverriddenTotal}
}

// IsOverridden reports whether the total shadows the computed figure.
func (p PaymentTotal) IsOverridden() bool {
	return p.Source == OverriddenTotal
}
