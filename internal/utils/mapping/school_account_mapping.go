package mapping

import (
	"github.com/autoecole-hub/console_backend/internal/core/domain"
	"github.com/autoecole-hub/console_backend/internal/models"
)

// ToModelSchoolAccount converts a domain school account to its DB representation.
func ToModelSchoolAccount(d domain.SchoolAccount) models.SchoolAccount {
	return models.SchoolAccount{
		AccountID:      d.AccountID,
		Name:           d.Name,
		ExpectedAmount: d.ExpectedAmount,
		PaidOverride:   d.PaidOverride,
		IsActive:       d.IsActive,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainSchoolAccount converts a DB school account to its domain representation.
func ToDomainSchoolAccount(m models.SchoolAccount) domain.SchoolAccount {
	return domain.SchoolAccount{
		AccountID:      m.AccountID,
		Name:           m.Name,
		ExpectedAmount: m.ExpectedAmount,
		PaidOverride:   m.PaidOverride,
		IsActive:       m.IsActive,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainTreasurySummary converts the DB treasury row to its domain representation.
func ToDomainTreasurySummary(m models.TreasurySummary) domain.TreasurySummary {
	return domain.TreasurySummary{
		TotalInbound:     m.TotalInbound,
		TotalOutbound:    m.TotalOutbound,
		Balance:          m.Balance,
		TransactionCount: m.TransactionCount,
		UpdatedAt:        m.UpdatedAt,
	}
}
