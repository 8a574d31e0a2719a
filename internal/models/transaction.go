package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionDirection mirrors domain.TransactionDirection for DB storage.
type TransactionDirection string

const (
	Inbound  TransactionDirection = "INBOUND"
	Outbound TransactionDirection = "OUTBOUND"
)

// TransactionStatus mirrors domain.TransactionStatus for DB storage.
type TransactionStatus string

const (
	Validated TransactionStatus = "VALIDATED"
	Pending   TransactionStatus = "PENDING"
	Cancelled TransactionStatus = "CANCELLED"
)

// Transaction is the database representation of a ledger entry.
type Transaction struct {
	TransactionID string               `db:"transaction_id"`
	Direction     TransactionDirection `db:"direction"`
	Amount        decimal.Decimal      `db:"amount"`
	Description   string               `db:"description"`
	Category      string               `db:"category"`
	PaymentMethod string               `db:"payment_method"`
	Reference     string               `db:"reference"`
	AccountID     string               `db:"account_id"` // empty string maps to NULL
	OccurredAt    time.Time            `db:"occurred_at"`
	RecordedBy    string               `db:"recorded_by"`
	Status        TransactionStatus    `db:"status"`
	AuditFields
}
