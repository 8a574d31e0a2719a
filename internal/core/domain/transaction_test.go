package domain_test

import (
	"testing"

	"github.com/autoecole-hub/console_backend/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransaction_CountsTowardTotals(t *testing.T) {
	tests := []struct {
		name   string
		status domain.TransactionStatus
		want   bool
	}{
		{"validated counts", domain.Validated, true},
		{"pending excluded", domain.Pending, false},
		{"cancelled excluded", domain.Cancelled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := domain.Transaction{Status: tt.status, Amount: decimal.NewFromInt(10)}
			assert.Equal(t, tt.want, txn.CountsTowardTotals())
		})
	}
}

func TestTransaction_SignedAmount(t *testing.T) {
	tests := []struct {
		name      string
		direction domain.TransactionDirection
		amount    decimal.Decimal
		want      decimal.Decimal
	}{
		{"inbound is positive", domain.Inbound, decimal.NewFromInt(100), decimal.NewFromInt(100)},
		{"outbound is negative", domain.Outbound, decimal.NewFromInt(40), decimal.NewFromInt(-40)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := domain.Transaction{Direction: tt.direction, Amount: tt.amount}
			assert.True(t, txn.SignedAmount().Equal(tt.want), "got %s", txn.SignedAmount())
		})
	}
}

func TestTreasurySummary_IsConsistent(t *testing.T) {
	consistent := domain.TreasurySummary{
		TotalInbound:  decimal.NewFromInt(150),
		TotalOutbound: decimal.NewFromInt(30),
		Balance:       decimal.NewFromInt(120),
	}
	assert.True(t, consistent.IsConsistent())

	drifted := domain.TreasurySummary{
		TotalInbound:  decimal.NewFromInt(150),
		TotalOutbound: decimal.NewFromInt(30),
		Balance:       decimal.NewFromInt(100),
	}
	assert.False(t, drifted.IsConsistent())
}

func TestPaymentTotal_Sources(t *testing.T) {
	computed := domain.NewComputedTotal(decimal.NewFromInt(190))
	assert.Equal(t, domain.ComputedTotal, computed.Source)
	assert.False(t, computed.IsOverridden())

	overridden := domain.NewOverriddenTotal(decimal.Zero)
	assert.Equal(t, domain.OverriddenTotal, overridden.Source)
	assert.True(t, overridden.IsOverridden())
}

func TestSchoolAccount_HasPaidOverride(t *testing.T) {
	zero := decimal.Zero
	withOverride := domain.SchoolAccount{PaidOverride: &zero}
	without := domain.SchoolAccount{}

	// A zero override is still an override.
	assert.True(t, withOverride.HasPaidOverride())
	assert.False(t, without.HasPaidOverride())
}
