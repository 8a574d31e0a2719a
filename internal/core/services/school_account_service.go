package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/autoecole-hub/console_backend/internal/apperrors"
	"github.com/autoecole-hub/console_backend/internal/core/domain"
	portsrepo "github.com/autoecole-hub/console_backend/internal/core/ports/repositories"
	portssvc "github.com/autoecole-hub/console_backend/internal/core/ports/services"
	"github.com/autoecole-hub/console_backend/internal/dto"
	"github.com/autoecole-hub/console_backend/internal/utils/matching"
	"github.com/shopspring/decimal"
)

// schoolAccountService provides school account operations and the
// override-aware payment aggregation.
type schoolAccountService struct {
	BaseService
	accountRepo portsrepo.SchoolAccountRepositoryFacade
	txnRepo     portsrepo.TransactionRepositoryFacade
}

// NewSchoolAccountService creates a new SchoolAccountService.
func NewSchoolAccountService(accountRepo portsrepo.SchoolAccountRepositoryFacade, txnRepo portsrepo.TransactionRepositoryFacade) portssvc.SchoolAccountSvcFacade {
	return &schoolAccountService{
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
	}
}

// Ensure schoolAccountService implements the portssvc.SchoolAccountSvcFacade interface
var _ portssvc.SchoolAccountSvcFacade = (*schoolAccountService)(nil)

// CreateAccount registers a new partner school account.
func (s *schoolAccountService) CreateAccount(ctx context.Context, req dto.CreateSchoolAccountRequest, creatorUserID string) (*domain.SchoolAccount, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", apperrors.ErrValidation)
	}
	if req.ExpectedAmount.IsNegative() {
		return nil, fmt.Errorf("%w: expected amount must not be negative", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	account := domain.SchoolAccount{
		AccountID:      uuid.NewString(),
		Name:           req.Name,
		ExpectedAmount: req.ExpectedAmount,
		IsActive:       true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "Failed to save school account", slog.String("account_name", req.Name))
		return nil, fmt.Errorf("failed to save school account: %w", err)
	}

	s.LogInfo(ctx, "School account created", slog.String("account_id", account.AccountID))
	return &account, nil
}

// GetAccountByID retrieves a school account.
func (s *schoolAccountService) GetAccountByID(ctx context.Context, accountID string) (*domain.SchoolAccount, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find school account %s: %w", accountID, err)
	}
	return account, nil
}

// ListAccounts retrieves school accounts ordered by name.
func (s *schoolAccountService) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.SchoolAccount, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list school accounts: %w", err)
	}
	return accounts, nil
}

// UpdateAccount applies edits to a school account.
func (s *schoolAccountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateSchoolAccountRequest, updaterUserID string) (*domain.SchoolAccount, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find school account %s: %w", accountID, err)
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", apperrors.ErrValidation)
		}
		account.Name = *req.Name
	}
	if req.ExpectedAmount != nil {
		if req.ExpectedAmount.IsNegative() {
			return nil, fmt.Errorf("%w: expected amount must not be negative", apperrors.ErrValidation)
		}
		account.ExpectedAmount = *req.ExpectedAmount
	}

	account.LastUpdatedAt = time.Now().UTC()
	account.LastUpdatedBy = updaterUserID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		s.LogError(ctx, err, "Failed to update school account", slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to update school account %s: %w", accountID, err)
	}

	return account, nil
}

// ComputeAccountPaid resolves the paid total for an account. The override, when
// present, is authoritative and the transaction set is ignored; otherwise the
// total is the sum of validated inbound entries attributable to the account.
func (s *schoolAccountService) ComputeAccountPaid(account domain.SchoolAccount, transactions []domain.Transaction) domain.PaymentTotal {
	if account.HasPaidOverride() {
		return domain.NewOverriddenTotal(*account.PaidOverride)
	}

	sum := decimal.Zero
	for _, txn := range transactions {
		if txn.Status != domain.Validated || txn.Direction != domain.Inbound {
			continue
		}
		if matching.Matches(txn, account) {
			sum = sum.Add(txn.Amount)
		}
	}
	return domain.NewComputedTotal(sum)
}

// GetAccountPaymentView resolves the account's paid figure together with its
// matched transaction history. With an override set, the history is shown for
// reference only and does not feed the paid figure.
func (s *schoolAccountService) GetAccountPaymentView(ctx context.Context, accountID string) (*domain.AccountPaymentView, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find school account %s: %w", accountID, err)
	}

	history, err := s.txnRepo.FindTransactionsForAccount(ctx, *account)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions for account %s: %w", accountID, err)
	}

	return &domain.AccountPaymentView{
		Account:        *account,
		Paid:           s.ComputeAccountPaid(*account, history),
		MatchedHistory: history,
	}, nil
}

// ClearPaidOverride returns the account's paid figure to the computed total.
// Setting an override happens only through payment reconciliation; clearing it
// is the matching explicit operator action.
func (s *schoolAccountService) ClearPaidOverride(ctx context.Context, accountID string, updaterUserID string) (*domain.SchoolAccount, error) {
	if err := s.accountRepo.ClearPaidOverride(ctx, accountID, updaterUserID, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to clear paid override for account %s: %w", accountID, err)
	}

	s.LogInfo(ctx, "Paid override cleared", slog.String("account_id", accountID))
	return s.accountRepo.FindAccountByID(ctx, accountID)
}
