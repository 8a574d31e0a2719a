package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/autoecole-hub/console_backend/internal/core/domain"
	portssvc "github.com/autoecole-hub/console_backend/internal/core/ports/services"
	"github.com/autoecole-hub/console_backend/internal/dto"
	"github.com/autoecole-hub/console_backend/internal/handlers"
	"github.com/autoecole-hub/console_backend/internal/middleware"
	"github.com/autoecole-hub/console_backend/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock TreasuryService ---
type MockTreasuryService struct {
	mock.Mock
}

func (m *MockTreasuryService) GetTreasurySummary(ctx context.Context) (*domain.TreasurySummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TreasurySummary), args.Error(1)
}

func (m *MockTreasuryService) RebuildSummary(ctx context.Context) (*domain.TreasurySummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TreasurySummary), args.Error(1)
}

func (m *MockTreasuryService) ComputeSummary(transactions []domain.Transaction) domain.TreasurySummary {
	args := m.Called(transactions)
	return args.Get(0).(domain.TreasurySummary)
}

// Ensure mock implements the interface
var _ portssvc.TreasurySvcFacade = (*MockTreasuryService)(nil)

// --- Test Suite ---
type TreasuryHandlerTestSuite struct {
	suite.Suite
	router              *gin.Engine
	mockTreasuryService *MockTreasuryService
	jwtSecret           string
}

// generateTestToken creates a dummy JWT for testing, with an optional role claim.
func (suite *TreasuryHandlerTestSuite) generateTestToken(userID, role string) string {
	claims := jwt.MapClaims{
		"iss": "console-test",
		"sub": userID,
		"exp": jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		"iat": jwt.NewNumericDate(time.Now()),
	}
	if role != "" {
		claims["role"] = role
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *TreasuryHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	suite.mockTreasuryService = new(MockTreasuryService)

	cfg := &config.Config{
		JWTSecret:    suite.jwtSecret,
		JWTIssuer:    "console-test",
		IsProduction: true, // no swagger routes in tests
	}
	svcContainer := &portssvc.ServiceContainer{
		Treasury: suite.mockTreasuryService,
	}
	handlers.RegisterRoutes(suite.router, cfg, svcContainer)
}

// --- Test Cases ---

func (suite *TreasuryHandlerTestSuite) TestGetSummary_Success() {
	expected := &domain.TreasurySummary{
		TotalInbound:     decimal.NewFromInt(150),
		TotalOutbound:    decimal.NewFromInt(30),
		Balance:          decimal.NewFromInt(120),
		TransactionCount: 5,
		UpdatedAt:        time.Now(),
	}

	suite.mockTreasuryService.On("GetTreasurySummary", mock.Anything).Return(expected, nil).Once()

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/treasury/summary", nil)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(uuid.NewString(), ""))
	w := httptest.NewRecorder()

	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)

	var body dto.TreasurySummaryResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.True(body.Balance.Equal(decimal.NewFromInt(120)))
	suite.Equal(int64(5), body.TransactionCount)

	suite.mockTreasuryService.AssertExpectations(suite.T())
}

func (suite *TreasuryHandlerTestSuite) TestGetSummary_Unauthorized() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/treasury/summary", nil)
	w := httptest.NewRecorder()

	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockTreasuryService.AssertNotCalled(suite.T(), "GetTreasurySummary")
}

func (suite *TreasuryHandlerTestSuite) TestGetSummary_RejectsForeignIssuer() {
	claims := jwt.MapClaims{
		"iss": "some-other-service",
		"sub": uuid.NewString(),
		"exp": jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		"iat": jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	suite.Require().NoError(err)

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/treasury/summary", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	w := httptest.NewRecorder()

	suite.router.ServeHTTP(w, req)

	// Correctly signed, but minted by another tenant of the identity service.
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockTreasuryService.AssertNotCalled(suite.T(), "GetTreasurySummary")
}

func (suite *TreasuryHandlerTestSuite) TestRebuildSummary_RequiresAdminRole() {
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/treasury/summary/rebuild", nil)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(uuid.NewString(), ""))
	w := httptest.NewRecorder()

	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusForbidden, w.Code)
	suite.mockTreasuryService.AssertNotCalled(suite.T(), "RebuildSummary")
}

func (suite *TreasuryHandlerTestSuite) TestRebuildSummary_AdminSuccess() {
	rebuilt := &domain.TreasurySummary{
		TotalInbound:  decimal.NewFromInt(150),
		TotalOutbound: decimal.NewFromInt(30),
		Balance:       decimal.NewFromInt(120),
	}

	suite.mockTreasuryService.On("RebuildSummary", mock.Anything).Return(rebuilt, nil).Once()

	req, _ := http.NewRequest(http.MethodPost, "/api/v1/treasury/summary/rebuild", nil)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(uuid.NewString(), middleware.RoleAdmin))
	w := httptest.NewRecorder()

	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)

	var body dto.TreasurySummaryResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.True(body.Balance.Equal(decimal.NewFromInt(120)))

	suite.mockTreasuryService.AssertExpectations(suite.T())
}

// --- Run Test Suite ---
func TestTreasuryHandler(t *testing.T) {
	suite.Run(t, new(TreasuryHandlerTestSuite))
}
