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
	"github.com/autoecole-hub/console_backend/internal/utils"
	"github.com/autoecole-hub/console_backend/internal/utils/matching"
	"github.com/shopspring/decimal"
)

// maxAccountPageSize bounds the account pages loaded during the backfill.
const maxAccountPageSize = 200

// transactionService provides ledger entry operations.
type transactionService struct {
	BaseService
	txnRepo     portsrepo.TransactionRepositoryFacade
	accountRepo portsrepo.SchoolAccountRepositoryFacade
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(txnRepo portsrepo.TransactionRepositoryFacade, accountRepo portsrepo.SchoolAccountRepositoryFacade) portssvc.TransactionSvcFacade {
	return &transactionService{
		txnRepo:     txnRepo,
		accountRepo: accountRepo,
	}
}

// Ensure transactionService implements the portssvc.TransactionSvcFacade interface
var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

// validateTransactionFields enforces the mandatory fields of a ledger entry.
// Rejection happens before any write; there is no partial state.
func validateTransactionFields(amount decimal.Decimal, description, category string) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: amount must be a positive value", apperrors.ErrValidation)
	}
	if description == "" {
		return fmt.Errorf("%w: description is required", apperrors.ErrValidation)
	}
	if category == "" {
		return fmt.Errorf("%w: category is required", apperrors.ErrValidation)
	}
	return nil
}

// CreateTransaction validates and records a new ledger entry.
func (s *transactionService) CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, creatorUserID string) (*domain.Transaction, error) {
	if err := validateTransactionFields(req.Amount, req.Description, req.Category); err != nil {
		return nil, err
	}

	if req.AccountID != "" {
		if _, err := s.accountRepo.FindAccountByID(ctx, req.AccountID); err != nil {
			return nil, fmt.Errorf("failed to resolve account %s: %w", req.AccountID, err)
		}
	}

	now := time.Now().UTC()

	occurredAt := now
	if req.OccurredAt != nil {
		occurredAt = req.OccurredAt.UTC()
	}

	status := req.Status
	if status == "" {
		// Manually entered transactions count immediately.
		status = domain.Validated
	}

	reference := req.Reference
	if reference == "" {
		reference = utils.GenerateTransactionReference()
	}

	txn := domain.Transaction{
		TransactionID: uuid.NewString(),
		Direction:     req.Direction,
		Amount:        req.Amount,
		Description:   req.Description,
		Category:      req.Category,
		PaymentMethod: req.PaymentMethod,
		Reference:     reference,
		AccountID:     req.AccountID,
		OccurredAt:    occurredAt,
		RecordedBy:    creatorUserID,
		Status:        status,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.txnRepo.SaveTransaction(ctx, txn); err != nil {
		s.LogError(ctx, err, "Failed to save transaction", slog.String("transaction_id", txn.TransactionID))
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}

	s.LogInfo(ctx, "Transaction recorded",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("direction", string(txn.Direction)),
		slog.String("amount", txn.Amount.String()),
	)
	return &txn, nil
}

// GetTransactionByID retrieves a single ledger entry.
func (s *transactionService) GetTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	return txn, nil
}

// ListTransactions retrieves a filtered page of ledger entries, newest first.
func (s *transactionService) ListTransactions(ctx context.Context, filters dto.ListTransactionsFilters, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	txns, next, err := s.txnRepo.ListTransactions(ctx, filters, limit, nextToken)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txns, next, nil
}

// UpdateTransaction applies edits to an existing ledger entry. The repository
// folds the aggregate delta into the treasury summary atomically.
func (s *transactionService) UpdateTransaction(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest, updaterUserID string) (*domain.Transaction, error) {
	existing, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}

	updated := *existing
	if req.Amount != nil {
		updated.Amount = *req.Amount
	}
	if req.Description != nil {
		updated.Description = *req.Description
	}
	if req.Category != nil {
		updated.Category = *req.Category
	}
	if req.Status != nil {
		updated.Status = *req.Status
	}

	if err := validateTransactionFields(updated.Amount, updated.Description, updated.Category); err != nil {
		return nil, err
	}

	updated.LastUpdatedAt = time.Now().UTC()
	updated.LastUpdatedBy = updaterUserID

	if err := s.txnRepo.UpdateTransaction(ctx, updated); err != nil {
		s.LogError(ctx, err, "Failed to update transaction", slog.String("transaction_id", transactionID))
		return nil, fmt.Errorf("failed to update transaction %s: %w", transactionID, err)
	}

	s.LogInfo(ctx, "Transaction updated", slog.String("transaction_id", transactionID))
	return &updated, nil
}

// DeleteTransaction hard-deletes a ledger entry. The repository folds the
// deleted amount out of the treasury summary in the same database transaction,
// so computed account totals change on the next read.
func (s *transactionService) DeleteTransaction(ctx context.Context, transactionID string, deleterUserID string) error {
	deleted, err := s.txnRepo.DeleteTransaction(ctx, transactionID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction %s: %w", transactionID, err)
	}

	s.LogWarn(ctx, "Transaction hard-deleted",
		slog.String("transaction_id", transactionID),
		slog.String("deleted_by", deleterUserID),
		slog.String("amount", deleted.Amount.String()),
		slog.String("direction", string(deleted.Direction)),
	)
	return nil
}

// BackfillAccountLinks assigns the explicit account link on legacy entries using
// the text-matching heuristic. Only entries matching exactly one account are
// linked; ambiguous and unmatched entries are reported untouched.
func (s *transactionService) BackfillAccountLinks(ctx context.Context, updaterUserID string) (*dto.BackfillResultResponse, error) {
	accounts := []domain.SchoolAccount{}
	for offset := 0; ; offset += maxAccountPageSize {
		page, err := s.accountRepo.ListAccounts(ctx, maxAccountPageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("failed to list accounts for backfill: %w", err)
		}
		accounts = append(accounts, page...)
		if len(page) < maxAccountPageSize {
			break
		}
	}

	unlinked, err := s.txnRepo.ListUnlinkedTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list unlinked transactions: %w", err)
	}

	result := &dto.BackfillResultResponse{Ambiguous: []string{}, Unmatched: []string{}}
	for _, txn := range unlinked {
		matched := matching.MatchAccounts(txn, accounts)
		switch len(matched) {
		case 0:
			result.Unmatched = append(result.Unmatched, txn.TransactionID)
		case 1:
			if err := s.txnRepo.LinkTransactionToAccount(ctx, txn.TransactionID, matched[0].AccountID, updaterUserID); err != nil {
				s.LogError(ctx, err, "Failed to link transaction during backfill", slog.String("transaction_id", txn.TransactionID))
				return nil, fmt.Errorf("failed to link transaction %s: %w", txn.TransactionID, err)
			}
			result.Linked++
		default:
			// A single transaction matching several accounts would silently
			// inflate each of their computed totals; leave it for a human.
			result.Ambiguous = append(result.Ambiguous, txn.TransactionID)
		}
	}

	s.LogInfo(ctx, "Account link backfill completed",
		slog.Int("linked", result.Linked),
		slog.Int("ambiguous", len(result.Ambiguous)),
		slog.Int("unmatched", len(result.Unmatched)),
	)
	return result, nil
}
