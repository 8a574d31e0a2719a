package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/autoecole-hub/console_backend/internal/apperrors"
	"github.com/autoecole-hub/console_backend/internal/core/domain"
	portssvc "github.com/autoecole-hub/console_backend/internal/core/ports/services"
	"github.com/autoecole-hub/console_backend/internal/core/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Test Suite Setup ---

type ReconciliationServiceTestSuite struct {
	suite.Suite
	mockAccountRepo  *MockSchoolAccountRepository
	mockTxnRepo      *MockTransactionRepository
	mockTreasuryRepo *MockTreasuryRepository
	service          portssvc.ReconciliationSvcFacade
}

func (suite *ReconciliationServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockSchoolAccountRepository)
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockTreasuryRepo = new(MockTreasuryRepository)

	// The real account service supplies the override-aware aggregation.
	accountSvc := services.NewSchoolAccountService(suite.mockAccountRepo, suite.mockTxnRepo)
	suite.service = services.NewReconciliationService(
		suite.mockAccountRepo,
		suite.mockTxnRepo,
		suite.mockTreasuryRepo,
		accountSvc,
	)
}

// --- Test Cases ---

func (suite *ReconciliationServiceTestSuite) TestReconcilePayment_PositiveDeltaFromOverride() {
	ctx := context.Background()
	operatorID := uuid.NewString()
	account := &domain.SchoolAccount{
		AccountID:    uuid.NewString(),
		Name:         "Auto Ecole Nord",
		PaidOverride: decimalPtr(decimal.NewFromInt(80)),
	}
	newPaid := decimal.NewFromInt(100)
	newExpected := decimal.NewFromInt(1200)
	updatedSummary := &domain.TreasurySummary{
		TotalInbound:  decimal.NewFromInt(120),
		TotalOutbound: decimal.Zero,
		Balance:       decimal.NewFromInt(120),
	}

	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()
	suite.mockAccountRepo.On("SetReconciledAmounts", ctx, account.AccountID, account.PaidOverride, newPaid, newExpected,
		mock.MatchedBy(func(t *domain.Transaction) bool {
			return t != nil &&
				t.Direction == domain.Inbound &&
				t.Amount.Equal(decimal.NewFromInt(20)) &&
				t.AccountID == account.AccountID &&
				t.Status == domain.Validated &&
				t.Category == "reconciliation"
		}),
		operatorID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockTreasuryRepo.On("ApplySummaryDelta", ctx, decimal.NewFromInt(20), decimal.Zero, int64(1)).Return(updatedSummary, nil).Once()

	result, err := suite.service.ReconcilePayment(ctx, account.AccountID, newPaid, newExpected, operatorID)

	suite.Require().NoError(err)
	suite.Require().NotNil(result.CompensatingTransaction)
	suite.Equal(domain.Inbound, result.CompensatingTransaction.Direction)
	suite.True(result.CompensatingTransaction.Amount.Equal(decimal.NewFromInt(20)))
	suite.Equal(operatorID, result.CompensatingTransaction.RecordedBy)
	suite.True(result.UpdatedSummary.Balance.Equal(decimal.NewFromInt(120)))

	// The override is the baseline, so the ledger is never consulted.
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "FindTransactionsForAccount")
	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockTreasuryRepo.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestReconcilePayment_NegativeDeltaFromComputed() {
	ctx := context.Background()
	operatorID := uuid.NewString()
	account := &domain.SchoolAccount{
		AccountID: uuid.NewString(),
		Name:      "Ecole de Conduite Sud",
	}
	// Computed baseline: 90 + 100 = 190.
	history := []domain.Transaction{
		{Direction: domain.Inbound, Status: domain.Validated, Amount: decimal.NewFromInt(90), AccountID: account.AccountID},
		{Direction: domain.Inbound, Status: domain.Validated, Amount: decimal.NewFromInt(100), AccountID: account.AccountID},
	}
	newPaid := decimal.NewFromInt(150)
	newExpected := decimal.NewFromInt(800)
	updatedSummary := &domain.TreasurySummary{Balance: decimal.NewFromInt(150)}

	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()
	suite.mockTxnRepo.On("FindTransactionsForAccount", ctx, *account).Return(history, nil).Once()
	suite.mockAccountRepo.On("SetReconciledAmounts", ctx, account.AccountID, (*decimal.Decimal)(nil), newPaid, newExpected,
		mock.MatchedBy(func(t *domain.Transaction) bool {
			return t != nil && t.Direction == domain.Outbound && t.Amount.Equal(decimal.NewFromInt(40))
		}),
		operatorID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockTreasuryRepo.On("ApplySummaryDelta", ctx, decimal.Zero, decimal.NewFromInt(40), int64(1)).Return(updatedSummary, nil).Once()

	result, err := suite.service.ReconcilePayment(ctx, account.AccountID, newPaid, newExpected, operatorID)

	suite.Require().NoError(err)
	suite.Require().NotNil(result.CompensatingTransaction)
	suite.Equal(domain.Outbound, result.CompensatingTransaction.Direction)
	suite.True(result.CompensatingTransaction.Amount.Equal(decimal.NewFromInt(40)))
	suite.mockTreasuryRepo.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestReconcilePayment_ZeroDeltaCreatesNothing() {
	ctx := context.Background()
	operatorID := uuid.NewString()
	account := &domain.SchoolAccount{
		AccountID:    uuid.NewString(),
		Name:         "Ecole",
		PaidOverride: decimalPtr(decimal.NewFromInt(100)),
	}
	newPaid := decimal.NewFromInt(100)
	newExpected := decimal.NewFromInt(500)
	summary := &domain.TreasurySummary{Balance: decimal.NewFromInt(100)}

	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()
	suite.mockAccountRepo.On("SetReconciledAmounts", ctx, account.AccountID, account.PaidOverride, newPaid, newExpected,
		(*domain.Transaction)(nil), operatorID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockTreasuryRepo.On("GetSummary", ctx).Return(summary, nil).Once()

	result, err := suite.service.ReconcilePayment(ctx, account.AccountID, newPaid, newExpected, operatorID)

	suite.Require().NoError(err)
	suite.Nil(result.CompensatingTransaction)
	suite.True(result.UpdatedSummary.Balance.Equal(decimal.NewFromInt(100)))

	suite.mockTreasuryRepo.AssertNotCalled(suite.T(), "ApplySummaryDelta")
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestReconcilePayment_ReplayIsIdempotent() {
	// After a successful reconciliation the override equals the asserted paid
	// amount, so replaying the identical request yields a zero delta and no
	// second compensating entry.
	ctx := context.Background()
	operatorID := uuid.NewString()
	newPaid := decimal.NewFromInt(100)
	newExpected := decimal.NewFromInt(500)

	reconciled := &domain.SchoolAccount{
		AccountID:    uuid.NewString(),
		Name:         "Ecole",
		PaidOverride: decimalPtr(newPaid),
	}
	summary := &domain.TreasurySummary{Balance: decimal.NewFromInt(100)}

	suite.mockAccountRepo.On("FindAccountByID", ctx, reconciled.AccountID).Return(reconciled, nil).Once()
	suite.mockAccountRepo.On("SetReconciledAmounts", ctx, reconciled.AccountID, reconciled.PaidOverride, newPaid, newExpected,
		(*domain.Transaction)(nil), operatorID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockTreasuryRepo.On("GetSummary", ctx).Return(summary, nil).Once()

	result, err := suite.service.ReconcilePayment(ctx, reconciled.AccountID, newPaid, newExpected, operatorID)

	suite.Require().NoError(err)
	suite.Nil(result.CompensatingTransaction)
}

func (suite *ReconciliationServiceTestSuite) TestReconcilePayment_RejectsNegativeAmounts() {
	ctx := context.Background()

	result, err := suite.service.ReconcilePayment(ctx, uuid.NewString(), decimal.NewFromInt(-1), decimal.NewFromInt(100), uuid.NewString())
	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrValidation)

	result, err = suite.service.ReconcilePayment(ctx, uuid.NewString(), decimal.NewFromInt(100), decimal.NewFromInt(-1), uuid.NewString())
	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrValidation)

	suite.mockAccountRepo.AssertNotCalled(suite.T(), "FindAccountByID")
}

func (suite *ReconciliationServiceTestSuite) TestReconcilePayment_AccountNotFound() {
	ctx := context.Background()
	accountID := uuid.NewString()

	suite.mockAccountRepo.On("FindAccountByID", ctx, accountID).Return(nil, apperrors.ErrNotFound).Once()

	result, err := suite.service.ReconcilePayment(ctx, accountID, decimal.NewFromInt(100), decimal.NewFromInt(500), uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *ReconciliationServiceTestSuite) TestReconcilePayment_FoldRetriesThenSucceeds() {
	ctx := context.Background()
	operatorID := uuid.NewString()
	account := &domain.SchoolAccount{
		AccountID:    uuid.NewString(),
		Name:         "Ecole",
		PaidOverride: decimalPtr(decimal.NewFromInt(0)),
	}
	newPaid := decimal.NewFromInt(50)
	updatedSummary := &domain.TreasurySummary{Balance: decimal.NewFromInt(50)}

	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()
	suite.mockAccountRepo.On("SetReconciledAmounts", ctx, account.AccountID, account.PaidOverride, newPaid, decimal.NewFromInt(100),
		mock.AnythingOfType("*domain.Transaction"), operatorID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	// First two folds fail, the third lands.
	suite.mockTreasuryRepo.On("ApplySummaryDelta", ctx, decimal.NewFromInt(50), decimal.Zero, int64(1)).Return(nil, assert.AnError).Twice()
	suite.mockTreasuryRepo.On("ApplySummaryDelta", ctx, decimal.NewFromInt(50), decimal.Zero, int64(1)).Return(updatedSummary, nil).Once()

	result, err := suite.service.ReconcilePayment(ctx, account.AccountID, newPaid, decimal.NewFromInt(100), operatorID)

	suite.Require().NoError(err)
	suite.True(result.UpdatedSummary.Balance.Equal(decimal.NewFromInt(50)))
	suite.mockTreasuryRepo.AssertNumberOfCalls(suite.T(), "ApplySummaryDelta", 3)
}

func (suite *ReconciliationServiceTestSuite) TestReconcilePayment_FoldExhaustionKeepsEntry() {
	ctx := context.Background()
	operatorID := uuid.NewString()
	account := &domain.SchoolAccount{
		AccountID:    uuid.NewString(),
		Name:         "Ecole",
		PaidOverride: decimalPtr(decimal.NewFromInt(0)),
	}
	newPaid := decimal.NewFromInt(50)

	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()
	suite.mockAccountRepo.On("SetReconciledAmounts", ctx, account.AccountID, account.PaidOverride, newPaid, decimal.NewFromInt(100),
		mock.AnythingOfType("*domain.Transaction"), operatorID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockTreasuryRepo.On("ApplySummaryDelta", ctx, decimal.NewFromInt(50), decimal.Zero, int64(1)).Return(nil, assert.AnError).Times(3)

	result, err := suite.service.ReconcilePayment(ctx, account.AccountID, newPaid, decimal.NewFromInt(100), operatorID)

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorContains(err, "rebuild required")

	// The reconciliation itself was persisted exactly once and is never undone.
	suite.mockAccountRepo.AssertNumberOfCalls(suite.T(), "SetReconciledAmounts", 1)
	suite.mockTreasuryRepo.AssertNumberOfCalls(suite.T(), "ApplySummaryDelta", 3)
}

// fakeTreasuryRepo folds deltas under a mutex, mimicking the atomic SQL
// increment of the real repository.
type fakeTreasuryRepo struct {
	mu      sync.Mutex
	summary domain.TreasurySummary
}

func (f *fakeTreasuryRepo) GetSummary(ctx context.Context) (*domain.TreasurySummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.summary
	return &s, nil
}

func (f *fakeTreasuryRepo) ApplySummaryDelta(ctx context.Context, inboundDelta, outboundDelta decimal.Decimal, countDelta int64) (*domain.TreasurySummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summary.TotalInbound = f.summary.TotalInbound.Add(inboundDelta)
	f.summary.TotalOutbound = f.summary.TotalOutbound.Add(outboundDelta)
	f.summary.Balance = f.summary.Balance.Add(inboundDelta.Sub(outboundDelta))
	f.summary.TransactionCount += countDelta
	f.summary.UpdatedAt = time.Now().UTC()
	s := f.summary
	return &s, nil
}

func (f *fakeTreasuryRepo) RebuildSummary(ctx context.Context) (*domain.TreasurySummary, error) {
	return f.GetSummary(ctx)
}

func (suite *ReconciliationServiceTestSuite) TestReconcilePayment_ConcurrentFoldsNeverLoseDeltas() {
	ctx := context.Background()
	operatorID := uuid.NewString()

	accountA := &domain.SchoolAccount{AccountID: uuid.NewString(), Name: "Ecole A", PaidOverride: decimalPtr(decimal.Zero)}
	accountB := &domain.SchoolAccount{AccountID: uuid.NewString(), Name: "Ecole B", PaidOverride: decimalPtr(decimal.Zero)}

	suite.mockAccountRepo.On("FindAccountByID", ctx, accountA.AccountID).Return(accountA, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, accountB.AccountID).Return(accountB, nil).Once()
	suite.mockAccountRepo.On("SetReconciledAmounts", ctx, mock.AnythingOfType("string"), mock.Anything, mock.Anything, mock.Anything,
		mock.AnythingOfType("*domain.Transaction"), operatorID, mock.AnythingOfType("time.Time")).Return(nil).Twice()

	treasury := &fakeTreasuryRepo{}
	accountSvc := services.NewSchoolAccountService(suite.mockAccountRepo, suite.mockTxnRepo)
	service := services.NewReconciliationService(suite.mockAccountRepo, suite.mockTxnRepo, treasury, accountSvc)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := service.ReconcilePayment(ctx, accountA.AccountID, decimal.NewFromInt(100), decimal.NewFromInt(100), operatorID)
		suite.NoError(err)
	}()
	go func() {
		defer wg.Done()
		_, err := service.ReconcilePayment(ctx, accountB.AccountID, decimal.NewFromInt(50), decimal.NewFromInt(50), operatorID)
		suite.NoError(err)
	}()
	wg.Wait()

	final, err := treasury.GetSummary(ctx)
	suite.Require().NoError(err)
	// Both folds must land: 100 + 50, never a lost update.
	suite.True(final.Balance.Equal(decimal.NewFromInt(150)), "balance: %s", final.Balance)
	suite.Equal(int64(2), final.TransactionCount)
	suite.True(final.IsConsistent())
}

// contendedAccountRepo mimics the real repository's locked compare-and-set:
// a write whose observed override no longer matches the stored one is refused.
// The first two baseline reads rendezvous on a barrier, forcing both callers
// to observe the same stale override before either of them writes.
type contendedAccountRepo struct {
	mu           sync.Mutex
	account      domain.SchoolAccount
	compensating []domain.Transaction
	baselineGate *sync.WaitGroup
	gatedReads   int
}

func (f *contendedAccountRepo) FindAccountByID(ctx context.Context, accountID string) (*domain.SchoolAccount, error) {
	f.mu.Lock()
	acc := f.account
	gate := f.gatedReads < 2
	if gate {
		f.gatedReads++
	}
	f.mu.Unlock()
	if gate {
		f.baselineGate.Done()
		f.baselineGate.Wait()
	}
	return &acc, nil
}

func (f *contendedAccountRepo) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.SchoolAccount, error) {
	return nil, nil
}

func (f *contendedAccountRepo) SaveAccount(ctx context.Context, account domain.SchoolAccount) error {
	return nil
}

func (f *contendedAccountRepo) UpdateAccount(ctx context.Context, account domain.SchoolAccount) error {
	return nil
}

func (f *contendedAccountRepo) SetReconciledAmounts(ctx context.Context, accountID string, observedOverride *decimal.Decimal, paidOverride decimal.Decimal, expectedAmount decimal.Decimal, compensating *domain.Transaction, updatedBy string, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	current := f.account.PaidOverride
	matches := (current == nil && observedOverride == nil) ||
		(current != nil && observedOverride != nil && current.Equal(*observedOverride))
	if !matches {
		return fmt.Errorf("%w: school account %s was reconciled concurrently", apperrors.ErrConflict, accountID)
	}
	f.account.PaidOverride = decimalPtr(paidOverride)
	f.account.ExpectedAmount = expectedAmount
	if compensating != nil {
		f.compensating = append(f.compensating, *compensating)
	}
	return nil
}

func (f *contendedAccountRepo) ClearPaidOverride(ctx context.Context, accountID string, updatedBy string, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.account.PaidOverride = nil
	return nil
}

func (suite *ReconciliationServiceTestSuite) TestReconcilePayment_OverlappingIdenticalRequestsBookOneEntry() {
	// Two identical requests race: both read the stale baseline before either
	// writes. The compare-and-set refuses the loser's stale delta; its retry
	// sees the winner's override, computes a zero delta and books nothing.
	ctx := context.Background()
	operatorID := uuid.NewString()

	var gate sync.WaitGroup
	gate.Add(2)
	accountRepo := &contendedAccountRepo{
		account: domain.SchoolAccount{
			AccountID:      uuid.NewString(),
			Name:           "Auto Ecole Nord",
			ExpectedAmount: decimal.NewFromInt(500),
			PaidOverride:   decimalPtr(decimal.Zero),
		},
		baselineGate: &gate,
	}
	treasury := &fakeTreasuryRepo{}
	accountSvc := services.NewSchoolAccountService(accountRepo, suite.mockTxnRepo)
	service := services.NewReconciliationService(accountRepo, suite.mockTxnRepo, treasury, accountSvc)

	accountID := accountRepo.account.AccountID
	newPaid := decimal.NewFromInt(250)
	newExpected := decimal.NewFromInt(500)

	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		go func() {
			defer wg.Done()
			_, err := service.ReconcilePayment(ctx, accountID, newPaid, newExpected, operatorID)
			suite.NoError(err)
		}()
	}
	wg.Wait()

	// Exactly one compensating entry for the one asserted payment of 250.
	suite.Require().Len(accountRepo.compensating, 1)
	suite.Equal(domain.Inbound, accountRepo.compensating[0].Direction)
	suite.True(accountRepo.compensating[0].Amount.Equal(newPaid))

	final, err := treasury.GetSummary(ctx)
	suite.Require().NoError(err)
	suite.True(final.TotalInbound.Equal(newPaid), "totalInbound: %s", final.TotalInbound)
	suite.Equal(int64(1), final.TransactionCount)
	suite.True(final.IsConsistent())
	suite.True(accountRepo.account.PaidOverride.Equal(newPaid))
}

func (suite *ReconciliationServiceTestSuite) TestReconcilePayment_ConflictExhaustionSurfacesConflict() {
	ctx := context.Background()
	operatorID := uuid.NewString()
	account := &domain.SchoolAccount{
		AccountID:    uuid.NewString(),
		Name:         "Ecole",
		PaidOverride: decimalPtr(decimal.Zero),
	}
	conflict := fmt.Errorf("%w: school account %s was reconciled concurrently", apperrors.ErrConflict, account.AccountID)

	// Every recompute keeps losing the race; the caller gets the conflict back.
	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Times(3)
	suite.mockAccountRepo.On("SetReconciledAmounts", ctx, account.AccountID, account.PaidOverride, mock.Anything, mock.Anything,
		mock.AnythingOfType("*domain.Transaction"), operatorID, mock.AnythingOfType("time.Time")).Return(conflict).Times(3)

	result, err := suite.service.ReconcilePayment(ctx, account.AccountID, decimal.NewFromInt(50), decimal.NewFromInt(100), operatorID)

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockAccountRepo.AssertNumberOfCalls(suite.T(), "SetReconciledAmounts", 3)
	suite.mockTreasuryRepo.AssertNotCalled(suite.T(), "ApplySummaryDelta")
}

// --- Run Test Suite ---
func TestReconciliationService(t *testing.T) {
	suite.Run(t, new(ReconciliationServiceTestSuite))
}
