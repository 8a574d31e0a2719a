package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/autoecole-hub/console_backend/internal/apperrors"
	portssvc "github.com/autoecole-hub/console_backend/internal/core/ports/services"
	"github.com/autoecole-hub/console_backend/internal/dto"
	"github.com/autoecole-hub/console_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// schoolAccountHandler handles HTTP requests for school accounts and their
// payment reconciliation.
type schoolAccountHandler struct {
	accountService        portssvc.SchoolAccountSvcFacade
	reconciliationService portssvc.ReconciliationSvcFacade
}

func newSchoolAccountHandler(as portssvc.SchoolAccountSvcFacade, rs portssvc.ReconciliationSvcFacade) *schoolAccountHandler {
	return &schoolAccountHandler{accountService: as, reconciliationService: rs}
}

// registerSchoolAccountRoutes registers school account routes. Reconciliation
// and override clearing mutate balances and require the admin role.
func registerSchoolAccountRoutes(rg *gin.RouterGroup, accountService portssvc.SchoolAccountSvcFacade, reconciliationService portssvc.ReconciliationSvcFacade) {
	h := newSchoolAccountHandler(accountService, reconciliationService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:accountID", h.getAccount)
		accounts.PUT("/:accountID", h.updateAccount)
		accounts.GET("/:accountID/payment-view", h.getPaymentView)
		accounts.POST("/:accountID/reconcile", middleware.RequireAdminRole(), h.reconcilePayment)
		accounts.DELETE("/:accountID/paid-override", middleware.RequireAdminRole(), h.clearPaidOverride)
	}
}

// createAccount godoc
// @Summary Create a school account
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   account body dto.CreateSchoolAccountRequest true "Account details"
// @Success 201 {object} dto.SchoolAccountResponse
// @Failure 400 {object} map[string]map[string]string "Field-level validation errors"
// @Failure 409 {object} map[string]string "Account already exists"
// @Failure 500 {object} map[string]string "Failed to create account"
// @Security BearerAuth
// @Router /accounts [post]
func (h *schoolAccountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateSchoolAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"errors": dto.FieldErrors(err)})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), req, creatorUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "Account already exists"})
		} else {
			logger.Error("Failed to create account", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToSchoolAccountResponse(account))
}

// listAccounts godoc
// @Summary List school accounts
// @Tags accounts
// @Produce  json
// @Param   limit query int false "Page size (default 50)"
// @Param   offset query int false "Offset into the name-ordered listing"
// @Success 200 {array} dto.SchoolAccountResponse
// @Failure 500 {object} map[string]string "Failed to list accounts"
// @Security BearerAuth
// @Router /accounts [get]
func (h *schoolAccountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	limit, offset := parsePageParams(c, 50)
	accounts, err := h.accountService.ListAccounts(c.Request.Context(), limit, offset)
	if err != nil {
		logger.Error("Failed to list accounts", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list accounts"})
		return
	}

	responses := make([]dto.SchoolAccountResponse, 0, len(accounts))
	for i := range accounts {
		responses = append(responses, dto.ToSchoolAccountResponse(&accounts[i]))
	}
	c.JSON(http.StatusOK, responses)
}

// getAccount godoc
// @Summary Get a school account by ID
// @Tags accounts
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Success 200 {object} dto.SchoolAccountResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to retrieve account"
// @Security BearerAuth
// @Router /accounts/{accountID} [get]
func (h *schoolAccountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	account, err := h.accountService.GetAccountByID(c.Request.Context(), accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		} else {
			logger.Error("Failed to get account", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve account"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToSchoolAccountResponse(account))
}

// updateAccount godoc
// @Summary Update a school account
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Param   patch body dto.UpdateSchoolAccountRequest true "Fields to update"
// @Success 200 {object} dto.SchoolAccountResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to update account"
// @Security BearerAuth
// @Router /accounts/{accountID} [put]
func (h *schoolAccountHandler) updateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	var req dto.UpdateSchoolAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for updateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"errors": dto.FieldErrors(err)})
		return
	}

	updaterUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	account, err := h.accountService.UpdateAccount(c.Request.Context(), accountID, req, updaterUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		} else {
			logger.Error("Failed to update account", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update account"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToSchoolAccountResponse(account))
}

// getPaymentView godoc
// @Summary Get the payment view of an account
// @Description Returns the account's paid total (override-aware), its source and the matched transaction history
// @Tags accounts
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Success 200 {object} dto.AccountPaymentViewResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to compute payment view"
// @Security BearerAuth
// @Router /accounts/{accountID}/payment-view [get]
func (h *schoolAccountHandler) getPaymentView(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	view, err := h.accountService.GetAccountPaymentView(c.Request.Context(), accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		} else {
			logger.Error("Failed to compute payment view", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute payment view"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountPaymentViewResponse(view))
}

// reconcilePayment godoc
// @Summary Reconcile an account's paid amount
// @Description Records the corrected paid amount, creates a compensating ledger entry for the delta and folds it into the treasury summary. Requires the admin role.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Param   reconciliation body dto.ReconcilePaymentRequest true "Corrected amounts"
// @Success 200 {object} dto.ReconcilePaymentResponse
// @Failure 400 {object} map[string]string "Negative amount or validation error"
// @Failure 403 {object} map[string]string "Elevated privilege required"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 409 {object} map[string]string "Concurrent reconciliation in progress"
// @Failure 500 {object} map[string]string "Reconciliation failed"
// @Security BearerAuth
// @Router /accounts/{accountID}/reconcile [post]
func (h *schoolAccountHandler) reconcilePayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	var req dto.ReconcilePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for reconcilePayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"errors": dto.FieldErrors(err)})
		return
	}

	operatorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	result, err := h.reconciliationService.ReconcilePayment(c.Request.Context(), accountID, req.NewPaidAmount, req.NewExpectedAmount, operatorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		} else if errors.Is(err, apperrors.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "Account is being reconciled concurrently, retry"})
		} else {
			logger.Error("Reconciliation failed", slog.String("accountID", accountID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Reconciliation failed"})
		}
		return
	}

	resp := dto.ReconcilePaymentResponse{
		UpdatedSummary: dto.ToTreasurySummaryResponse(&result.UpdatedSummary),
	}
	if result.CompensatingTransaction != nil {
		txnResp := dto.ToTransactionResponse(result.CompensatingTransaction)
		resp.CompensatingTransaction = &txnResp
	}
	c.JSON(http.StatusOK, resp)
}

// clearPaidOverride godoc
// @Summary Clear an account's paid override
// @Description Removes the reconciled override so the paid total reverts to the computed sum of matched entries. Requires the admin role.
// @Tags accounts
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Success 200 {object} dto.SchoolAccountResponse
// @Failure 403 {object} map[string]string "Elevated privilege required"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to clear override"
// @Security BearerAuth
// @Router /accounts/{accountID}/paid-override [delete]
func (h *schoolAccountHandler) clearPaidOverride(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	updaterUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	account, err := h.accountService.ClearPaidOverride(c.Request.Context(), accountID, updaterUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		} else {
			logger.Error("Failed to clear paid override", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear override"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToSchoolAccountResponse(account))
}
