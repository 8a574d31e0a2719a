package services_test

import (
	"context"
	"testing"

	"github.com/autoecole-hub/console_backend/internal/core/domain"
	portssvc "github.com/autoecole-hub/console_backend/internal/core/ports/services"
	"github.com/autoecole-hub/console_backend/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// MockTreasuryRepository is a mock type for the TreasuryRepositoryFacade interface
type MockTreasuryRepository struct {
	mock.Mock
}

func (m *MockTreasuryRepository) GetSummary(ctx context.Context) (*domain.TreasurySummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TreasurySummary), args.Error(1)
}

func (m *MockTreasuryRepository) ApplySummaryDelta(ctx context.Context, inboundDelta, outboundDelta decimal.Decimal, countDelta int64) (*domain.TreasurySummary, error) {
	args := m.Called(ctx, inboundDelta, outboundDelta, countDelta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TreasurySummary), args.Error(1)
}

func (m *MockTreasuryRepository) RebuildSummary(ctx context.Context) (*domain.TreasurySummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TreasurySummary), args.Error(1)
}

// --- Test Suite Setup ---

type TreasuryServiceTestSuite struct {
	suite.Suite
	mockRepo *MockTreasuryRepository
	service  portssvc.TreasurySvcFacade
}

func (suite *TreasuryServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockTreasuryRepository)
	suite.service = services.NewTreasuryService(suite.mockRepo)
}

// --- Test Cases ---

func (suite *TreasuryServiceTestSuite) TestComputeSummary_ValidatedOnlyTotals() {
	transactions := []domain.Transaction{
		{Direction: domain.Inbound, Status: domain.Validated, Amount: decimal.NewFromInt(100)},
		{Direction: domain.Inbound, Status: domain.Validated, Amount: decimal.NewFromInt(50)},
		{Direction: domain.Outbound, Status: domain.Validated, Amount: decimal.NewFromInt(30)},
		// Pending and cancelled entries count only toward the entry count.
		{Direction: domain.Inbound, Status: domain.Pending, Amount: decimal.NewFromInt(1000)},
		{Direction: domain.Outbound, Status: domain.Cancelled, Amount: decimal.NewFromInt(500)},
	}

	summary := suite.service.ComputeSummary(transactions)

	suite.True(summary.TotalInbound.Equal(decimal.NewFromInt(150)), "inbound: %s", summary.TotalInbound)
	suite.True(summary.TotalOutbound.Equal(decimal.NewFromInt(30)), "outbound: %s", summary.TotalOutbound)
	suite.True(summary.Balance.Equal(decimal.NewFromInt(120)), "balance: %s", summary.Balance)
	suite.Equal(int64(5), summary.TransactionCount)
	suite.True(summary.IsConsistent())
}

func (suite *TreasuryServiceTestSuite) TestComputeSummary_EmptyLedger() {
	summary := suite.service.ComputeSummary(nil)

	suite.True(summary.TotalInbound.IsZero())
	suite.True(summary.TotalOutbound.IsZero())
	suite.True(summary.Balance.IsZero())
	suite.Equal(int64(0), summary.TransactionCount)
	suite.True(summary.IsConsistent())
}

func (suite *TreasuryServiceTestSuite) TestGetTreasurySummary_Success() {
	ctx := context.Background()
	expected := &domain.TreasurySummary{
		TotalInbound:     decimal.NewFromInt(1000),
		TotalOutbound:    decimal.NewFromInt(400),
		Balance:          decimal.NewFromInt(600),
		TransactionCount: 42,
	}

	suite.mockRepo.On("GetSummary", ctx).Return(expected, nil).Once()

	summary, err := suite.service.GetTreasurySummary(ctx)

	suite.Require().NoError(err)
	suite.Equal(expected, summary)
	suite.True(summary.IsConsistent())
}

func (suite *TreasuryServiceTestSuite) TestRebuildSummary_Success() {
	ctx := context.Background()
	rebuilt := &domain.TreasurySummary{
		TotalInbound:     decimal.NewFromInt(150),
		TotalOutbound:    decimal.NewFromInt(30),
		Balance:          decimal.NewFromInt(120),
		TransactionCount: 5,
	}

	suite.mockRepo.On("RebuildSummary", ctx).Return(rebuilt, nil).Once()

	summary, err := suite.service.RebuildSummary(ctx)

	suite.Require().NoError(err)
	suite.Equal(rebuilt, summary)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *TreasuryServiceTestSuite) TestRebuildSummary_RepoError() {
	ctx := context.Background()

	suite.mockRepo.On("RebuildSummary", ctx).Return(nil, assert.AnError).Once()

	summary, err := suite.service.RebuildSummary(ctx)

	suite.Require().Error(err)
	suite.Nil(summary)
	suite.ErrorIs(err, assert.AnError)
}

// --- Run Test Suite ---
func TestTreasuryService(t *testing.T) {
	suite.Run(t, new(TreasuryServiceTestSuite))
}
