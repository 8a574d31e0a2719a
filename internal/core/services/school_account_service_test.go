package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/autoecole-hub/console_backend/internal/apperrors"
	"github.com/autoecole-hub/console_backend/internal/core/domain"
	portssvc "github.com/autoecole-hub/console_backend/internal/core/ports/services"
	"github.com/autoecole-hub/console_backend/internal/core/services"
	"github.com/autoecole-hub/console_backend/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// MockSchoolAccountRepository is a mock type for the SchoolAccountRepositoryFacade interface
type MockSchoolAccountRepository struct {
	mock.Mock
}

func (m *MockSchoolAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.SchoolAccount, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SchoolAccount), args.Error(1)
}

func (m *MockSchoolAccountRepository) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.SchoolAccount, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SchoolAccount), args.Error(1)
}

func (m *MockSchoolAccountRepository) SaveAccount(ctx context.Context, account domain.SchoolAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockSchoolAccountRepository) UpdateAccount(ctx context.Context, account domain.SchoolAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockSchoolAccountRepository) SetReconciledAmounts(ctx context.Context, accountID string, observedOverride *decimal.Decimal, paidOverride decimal.Decimal, expectedAmount decimal.Decimal, compensating *domain.Transaction, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, accountID, observedOverride, paidOverride, expectedAmount, compensating, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockSchoolAccountRepository) ClearPaidOverride(ctx context.Context, accountID string, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, accountID, updatedBy, updatedAt)
	return args.Error(0)
}

// decimalPtr returns a pointer to the provided decimal.Decimal value.
func decimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

// --- Test Suite Setup ---

type SchoolAccountServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockSchoolAccountRepository
	mockTxnRepo     *MockTransactionRepository
	service         portssvc.SchoolAccountSvcFacade
}

func (suite *SchoolAccountServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockSchoolAccountRepository)
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.service = services.NewSchoolAccountService(suite.mockAccountRepo, suite.mockTxnRepo)
}

// --- Test Cases ---

func (suite *SchoolAccountServiceTestSuite) TestCreateAccount_Success() {
	ctx := context.Background()
	creatorUserID := uuid.NewString()
	req := dto.CreateSchoolAccountRequest{
		Name:           "Auto Ecole Centrale",
		ExpectedAmount: decimal.NewFromInt(1200),
	}

	suite.mockAccountRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.SchoolAccount")).Return(nil).Once()

	account, err := suite.service.CreateAccount(ctx, req, creatorUserID)

	suite.Require().NoError(err)
	suite.Require().NotNil(account)
	suite.NotEmpty(account.AccountID)
	suite.Equal(req.Name, account.Name)
	suite.True(account.ExpectedAmount.Equal(req.ExpectedAmount))
	suite.Nil(account.PaidOverride)
	suite.True(account.IsActive)
	suite.Equal(creatorUserID, account.CreatedBy)
	suite.WithinDuration(time.Now(), account.CreatedAt, time.Second)

	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *SchoolAccountServiceTestSuite) TestCreateAccount_RejectsEmptyName() {
	ctx := context.Background()

	account, err := suite.service.CreateAccount(ctx, dto.CreateSchoolAccountRequest{}, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(account)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SaveAccount")
}

func (suite *SchoolAccountServiceTestSuite) TestComputeAccountPaid_SumsMatchedValidatedInbound() {
	account := domain.SchoolAccount{AccountID: uuid.NewString(), Name: "Ecole de Conduite Sud"}

	transactions := []domain.Transaction{
		// Matched by explicit link.
		{Direction: domain.Inbound, Status: domain.Validated, Amount: decimal.NewFromInt(90), AccountID: account.AccountID},
		// Matched by name heuristic.
		{Direction: domain.Inbound, Status: domain.Validated, Amount: decimal.NewFromInt(100), Description: "Virement Ecole de Conduite Sud"},
		// Pending entries never count.
		{Direction: domain.Inbound, Status: domain.Pending, Amount: decimal.NewFromInt(999), AccountID: account.AccountID},
		// Outbound entries never count toward paid.
		{Direction: domain.Outbound, Status: domain.Validated, Amount: decimal.NewFromInt(50), AccountID: account.AccountID},
		// Unrelated entry.
		{Direction: domain.Inbound, Status: domain.Validated, Amount: decimal.NewFromInt(75), Description: "Autre ecole"},
	}

	total := suite.service.ComputeAccountPaid(account, transactions)

	suite.Equal(domain.ComputedTotal, total.Source)
	suite.True(total.Amount.Equal(decimal.NewFromInt(190)), "expected 190, got %s", total.Amount)
}

func (suite *SchoolAccountServiceTestSuite) TestComputeAccountPaid_OverrideShadowsComputed() {
	account := domain.SchoolAccount{
		AccountID:    uuid.NewString(),
		Name:         "Ecole Test",
		PaidOverride: decimalPtr(decimal.NewFromInt(500)),
	}
	transactions := []domain.Transaction{
		{Direction: domain.Inbound, Status: domain.Validated, Amount: decimal.NewFromInt(90), AccountID: account.AccountID},
	}

	total := suite.service.ComputeAccountPaid(account, transactions)

	suite.True(total.IsOverridden())
	suite.True(total.Amount.Equal(decimal.NewFromInt(500)))
}

func (suite *SchoolAccountServiceTestSuite) TestComputeAccountPaid_ZeroOverrideStillShadows() {
	// A zero override is an assertion of "nothing paid", not an absent override.
	account := domain.SchoolAccount{
		AccountID:    uuid.NewString(),
		PaidOverride: decimalPtr(decimal.Zero),
	}
	transactions := []domain.Transaction{
		{Direction: domain.Inbound, Status: domain.Validated, Amount: decimal.NewFromInt(90), AccountID: account.AccountID},
	}

	total := suite.service.ComputeAccountPaid(account, transactions)

	suite.True(total.IsOverridden())
	suite.True(total.Amount.IsZero())
}

func (suite *SchoolAccountServiceTestSuite) TestGetAccountPaymentView_Success() {
	ctx := context.Background()
	account := &domain.SchoolAccount{
		AccountID:      uuid.NewString(),
		Name:           "Auto Ecole Nord",
		ExpectedAmount: decimal.NewFromInt(1000),
	}
	history := []domain.Transaction{
		{TransactionID: uuid.NewString(), Direction: domain.Inbound, Status: domain.Validated, Amount: decimal.NewFromInt(300), AccountID: account.AccountID},
	}

	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()
	suite.mockTxnRepo.On("FindTransactionsForAccount", ctx, *account).Return(history, nil).Once()

	view, err := suite.service.GetAccountPaymentView(ctx, account.AccountID)

	suite.Require().NoError(err)
	suite.Equal(account.AccountID, view.Account.AccountID)
	suite.Equal(domain.ComputedTotal, view.Paid.Source)
	suite.True(view.Paid.Amount.Equal(decimal.NewFromInt(300)))
	suite.Len(view.MatchedHistory, 1)
}

func (suite *SchoolAccountServiceTestSuite) TestGetAccountPaymentView_NotFound() {
	ctx := context.Background()
	accountID := uuid.NewString()

	suite.mockAccountRepo.On("FindAccountByID", ctx, accountID).Return(nil, apperrors.ErrNotFound).Once()

	view, err := suite.service.GetAccountPaymentView(ctx, accountID)

	suite.Require().Error(err)
	suite.Nil(view)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "FindTransactionsForAccount")
}

func (suite *SchoolAccountServiceTestSuite) TestClearPaidOverride_Success() {
	ctx := context.Background()
	updaterUserID := uuid.NewString()
	account := &domain.SchoolAccount{AccountID: uuid.NewString(), Name: "Ecole"}

	suite.mockAccountRepo.On("ClearPaidOverride", ctx, account.AccountID, updaterUserID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()

	cleared, err := suite.service.ClearPaidOverride(ctx, account.AccountID, updaterUserID)

	suite.Require().NoError(err)
	suite.Nil(cleared.PaidOverride)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *SchoolAccountServiceTestSuite) TestUpdateAccount_RejectsNegativeExpected() {
	ctx := context.Background()
	account := &domain.SchoolAccount{AccountID: uuid.NewString(), Name: "Ecole"}

	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()

	updated, err := suite.service.UpdateAccount(ctx, account.AccountID, dto.UpdateSchoolAccountRequest{
		ExpectedAmount: decimalPtr(decimal.NewFromInt(-10)),
	}, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(updated)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateAccount")
}

// --- Run Test Suite ---
func TestSchoolAccountService(t *testing.T) {
	suite.Run(t, new(SchoolAccountServiceTestSuite))
}
