package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/autoecole-hub/console_backend/internal/apperrors"
	"github.com/autoecole-hub/console_backend/internal/core/domain"
	portsrepo "github.com/autoecole-hub/console_backend/internal/core/ports/repositories"
	portssvc "github.com/autoecole-hub/console_backend/internal/core/ports/services"
	"github.com/autoecole-hub/console_backend/internal/utils"
	"github.com/shopspring/decimal"
)

var (
	ErrNegativePaidAmount     = errors.New("reconciled paid amount must not be negative")
	ErrNegativeExpectedAmount = errors.New("reconciled expected amount must not be negative")
)

// reconciliationCategory labels compensating transactions in the ledger.
const reconciliationCategory = "reconciliation"

// maxSummaryFoldAttempts bounds the retries of the treasury summary fold.
const maxSummaryFoldAttempts = 3

// maxReconcileAttempts bounds the recompute-and-retry loop when a concurrent
// reconciliation changes the baseline between our read and our write.
const maxReconcileAttempts = 3

// reconciliationService reconciles operator-asserted paid figures against the ledger.
type reconciliationService struct {
	BaseService
	accountRepo  portsrepo.SchoolAccountRepositoryFacade
	txnRepo      portsrepo.TransactionRepositoryFacade
	treasuryRepo portsrepo.TreasuryRepositoryFacade
	accountSvc   portssvc.SchoolAccountSvcFacade
}

// NewReconciliationService creates a new ReconciliationService.
func NewReconciliationService(
	accountRepo portsrepo.SchoolAccountRepositoryFacade,
	txnRepo portsrepo.TransactionRepositoryFacade,
	treasuryRepo portsrepo.TreasuryRepositoryFacade,
	accountSvc portssvc.SchoolAccountSvcFacade,
) portssvc.ReconciliationSvcFacade {
	return &reconciliationService{
		accountRepo:  accountRepo,
		txnRepo:      txnRepo,
		treasuryRepo: treasuryRepo,
		accountSvc:   accountSvc,
	}
}

// Ensure reconciliationService implements the portssvc.ReconciliationSvcFacade interface
var _ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)

// ReconcilePayment brings the ledger in line with an operator-asserted paid
// figure. The previously known total is the override when set, otherwise the
// computed sum; the difference becomes a compensating transaction persisted
// atomically with the account update. The treasury fold runs afterwards as an
// atomic increment with bounded retries, so a fold failure never repeats the
// account update or duplicates the compensating entry.
//
// Replaying the same request is a no-op: the first call persisted the override,
// so the second call computes a zero delta and creates nothing. The baseline the
// delta was computed from is handed to the repository, which refuses the write
// when a concurrent reconciliation has changed it; the loop then recomputes the
// delta from the fresh state, so overlapping identical requests converge on a
// single compensating entry.
func (s *reconciliationService) ReconcilePayment(ctx context.Context, accountID string, newPaidAmount, newExpectedAmount decimal.Decimal, operatorID string) (*portssvc.ReconciliationResult, error) {
	if newPaidAmount.IsNegative() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrNegativePaidAmount)
	}
	if newExpectedAmount.IsNegative() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrNegativeExpectedAmount)
	}

	var (
		delta        decimal.Decimal
		compensating *domain.Transaction
	)
	for attempt := 1; ; attempt++ {
		account, err := s.accountRepo.FindAccountByID(ctx, accountID)
		if err != nil {
			return nil, fmt.Errorf("failed to find school account %s: %w", accountID, err)
		}

		oldPaid, err := s.resolveKnownPaid(ctx, *account)
		if err != nil {
			return nil, err
		}

		delta = newPaidAmount.Sub(oldPaid)

		compensating = nil
		if !delta.IsZero() {
			compensating = s.buildCompensatingTransaction(*account, delta, operatorID)
		}

		// Account update and compensating entry commit together or not at all.
		now := time.Now().UTC()
		err = s.accountRepo.SetReconciledAmounts(ctx, accountID, account.PaidOverride, newPaidAmount, newExpectedAmount, compensating, operatorID, now)
		if err == nil {
			break
		}
		if errors.Is(err, apperrors.ErrConflict) && attempt < maxReconcileAttempts {
			s.LogWarn(ctx, "Reconciliation baseline changed concurrently, recomputing",
				slog.String("account_id", accountID),
				slog.Int("attempt", attempt),
			)
			continue
		}
		s.LogError(ctx, err, "Failed to persist reconciliation", slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to persist reconciliation for account %s: %w", accountID, err)
	}

	summary, err := s.foldDelta(ctx, compensating)
	if err != nil {
		// The compensating entry is already committed and is deliberately kept;
		// the summary is repaired by replaying the fold (RebuildSummary), not by
		// undoing the reconciliation.
		s.LogError(ctx, err, "Treasury fold failed after reconciliation was persisted",
			slog.String("account_id", accountID))
		return nil, fmt.Errorf("reconciliation persisted but treasury fold failed, rebuild required: %w", err)
	}

	if compensating != nil {
		s.LogInfo(ctx, "Payment reconciled",
			slog.String("account_id", accountID),
			slog.String("delta", delta.String()),
			slog.String("compensating_transaction_id", compensating.TransactionID),
		)
	} else {
		s.LogInfo(ctx, "Payment reconciled with zero delta", slog.String("account_id", accountID))
	}

	return &portssvc.ReconciliationResult{
		CompensatingTransaction: compensating,
		UpdatedSummary:          *summary,
	}, nil
}

// resolveKnownPaid returns the account's previously known paid total: the
// override when set, otherwise the sum computed from attributable transactions.
func (s *reconciliationService) resolveKnownPaid(ctx context.Context, account domain.SchoolAccount) (decimal.Decimal, error) {
	if account.HasPaidOverride() {
		return *account.PaidOverride, nil
	}

	transactions, err := s.txnRepo.FindTransactionsForAccount(ctx, account)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load transactions for account %s: %w", account.AccountID, err)
	}

	return s.accountSvc.ComputeAccountPaid(account, transactions).Amount, nil
}

// buildCompensatingTransaction synthesizes the ledger entry for a non-zero delta:
// inbound for a positive one, outbound for a negative one, always validated so it
// counts immediately.
func (s *reconciliationService) buildCompensatingTransaction(account domain.SchoolAccount, delta decimal.Decimal, operatorID string) *domain.Transaction {
	direction := domain.Inbound
	if delta.IsNegative() {
		direction = domain.Outbound
	}

	now := time.Now().UTC()
	return &domain.Transaction{
		TransactionID: uuid.NewString(),
		Direction:     direction,
		Amount:        delta.Abs(),
		Description:   fmt.Sprintf("Reconciliation adjustment for %s", account.Name),
		Category:      reconciliationCategory,
		PaymentMethod: "adjustment",
		Reference:     utils.GenerateReconciliationReference(account.AccountID),
		AccountID:     account.AccountID,
		OccurredAt:    now,
		RecordedBy:    operatorID,
		Status:        domain.Validated,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     operatorID,
			LastUpdatedAt: now,
			LastUpdatedBy: operatorID,
		},
	}
}

// foldDelta applies the compensating entry to the treasury summary as an atomic
// increment, retrying only the fold on failure. With no compensating entry the
// current summary is returned unchanged.
func (s *reconciliationService) foldDelta(ctx context.Context, compensating *domain.Transaction) (*domain.TreasurySummary, error) {
	if compensating == nil {
		return s.treasuryRepo.GetSummary(ctx)
	}

	inDelta := decimal.Zero
	outDelta := decimal.Zero
	if compensating.Direction == domain.Outbound {
		outDelta = compensating.Amount
	} else {
		inDelta = compensating.Amount
	}

	var lastErr error
	for attempt := 1; attempt <= maxSummaryFoldAttempts; attempt++ {
		summary, err := s.treasuryRepo.ApplySummaryDelta(ctx, inDelta, outDelta, 1)
		if err == nil {
			return summary, nil
		}
		lastErr = err
		s.LogWarn(ctx, "Treasury fold attempt failed",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()),
		)
	}
	return nil, lastErr
}
