package mapping

import (
	"github.com/autoecole-hub/console_backend/internal/core/domain"
	"github.com/autoecole-hub/console_backend/internal/models"
)

// ToModelTransaction converts a domain transaction to its DB representation.
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID: d.TransactionID,
		Direction:     models.TransactionDirection(d.Direction),
		Amount:        d.Amount,
		Description:   d.Description,
		Category:      d.Category,
		PaymentMethod: d.PaymentMethod,
		Reference:     d.Reference,
		AccountID:     d.AccountID,
		OccurredAt:    d.OccurredAt,
		RecordedBy:    d.RecordedBy,
		Status:        models.TransactionStatus(d.Status),
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransaction converts a DB transaction to its domain representation.
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID: m.TransactionID,
		Direction:     domain.TransactionDirection(m.Direction),
		Amount:        m.Amount,
		Description:   m.Description,
		Category:      m.Category,
		PaymentMethod: m.PaymentMethod,
		Reference:     m.Reference,
		AccountID:     m.AccountID,
		OccurredAt:    m.OccurredAt,
		RecordedBy:    m.RecordedBy,
		Status:        domain.TransactionStatus(m.Status),
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainTransactionSlice converts a slice of DB transactions to domain transactions.
func ToDomainTransactionSlice(ms []models.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		out[i] = ToDomainTransaction(m)
	}
	return out
}
