package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionDirection indicates whether money flowed into or out of the platform.
type TransactionDirection string

const (
	Inbound  TransactionDirection = "INBOUND"
	Outbound TransactionDirection = "OUTBOUND"
)

// TransactionStatus indicates the state of a ledger entry. Only VALIDATED entries
// count toward any aggregate.
type TransactionStatus string

const (
	Validated TransactionStatus = "VALIDATED"
	Pending   TransactionStatus = "PENDING"
	Cancelled TransactionStatus = "CANCELLED"
)

// Transaction represents a single cash-in/cash-out entry in the platform ledger.
type Transaction struct {
	TransactionID string               `json:"transactionID"` // Primary Key (UUID)
	Direction     TransactionDirection `json:"direction"`
	Amount        decimal.Decimal      `json:"amount"` // Positive value; precise decimal type
	Description   string               `json:"description"`
	Category      string               `json:"category"`
	PaymentMethod string               `json:"paymentMethod"`
	Reference     string               `json:"reference"` // Generated token when not supplied
	AccountID     string               `json:"accountID"` // Nullable FK -> school_accounts.account_id
	OccurredAt    time.Time            `json:"occurredAt"`
	RecordedBy    string               `json:"recordedBy"` // Operator who created the entry
	Status        TransactionStatus    `json:"status"`
	AuditFields
}

// CountsTowardTotals reports whether this entry contributes to treasury totals.
func (t Transaction) CountsTowardTotals() bool {
	return t.Status == Validated
}

// SignedAmount returns the amount with the sign implied by the direction:
// positive for INBOUND, negative for OUTBOUND.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.Direction == Outbound {
		return t.Amount.Neg()
	}
	return t.Amount
}
