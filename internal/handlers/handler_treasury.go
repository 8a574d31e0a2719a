package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/autoecole-hub/console_backend/internal/core/ports/services"
	"github.com/autoecole-hub/console_backend/internal/dto"
	"github.com/autoecole-hub/console_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// treasuryHandler serves the platform-wide treasury summary.
type treasuryHandler struct {
	treasuryService portssvc.TreasurySvcFacade
}

func newTreasuryHandler(ts portssvc.TreasurySvcFacade) *treasuryHandler {
	return &treasuryHandler{treasuryService: ts}
}

// registerTreasuryRoutes registers the summary endpoints. The rebuild is a
// recovery operation and requires the admin role.
func registerTreasuryRoutes(rg *gin.RouterGroup, treasuryService portssvc.TreasurySvcFacade) {
	h := newTreasuryHandler(treasuryService)

	treasury := rg.Group("/treasury")
	{
		treasury.GET("/summary", h.getSummary)
		treasury.POST("/summary/rebuild", middleware.RequireAdminRole(), h.rebuildSummary)
	}
}

// getSummary godoc
// @Summary Get the platform treasury summary
// @Description Returns cumulative validated inbound/outbound totals, the running balance and the all-status transaction count
// @Tags treasury
// @Produce  json
// @Success 200 {object} dto.TreasurySummaryResponse
// @Failure 500 {object} map[string]string "Failed to retrieve summary"
// @Security BearerAuth
// @Router /treasury/summary [get]
func (h *treasuryHandler) getSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	summary, err := h.treasuryService.GetTreasurySummary(c.Request.Context())
	if err != nil {
		logger.Error("Failed to get treasury summary", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve summary"})
		return
	}

	c.JSON(http.StatusOK, dto.ToTreasurySummaryResponse(summary))
}

// rebuildSummary godoc
// @Summary Rebuild the treasury summary from the ledger
// @Description Recomputes the summary aggregates from the full transaction table. Recovery path after an interrupted fold; requires the admin role.
// @Tags treasury
// @Produce  json
// @Success 200 {object} dto.TreasurySummaryResponse
// @Failure 403 {object} map[string]string "Elevated privilege required"
// @Failure 500 {object} map[string]string "Rebuild failed"
// @Security BearerAuth
// @Router /treasury/summary/rebuild [post]
func (h *treasuryHandler) rebuildSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	operatorID, _ := middleware.GetUserIDFromContext(c)
	logger.Warn("Treasury summary rebuild requested", slog.String("operatorID", operatorID))

	summary, err := h.treasuryService.RebuildSummary(c.Request.Context())
	if err != nil {
		logger.Error("Treasury summary rebuild failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Rebuild failed"})
		return
	}

	c.JSON(http.StatusOK, dto.ToTreasurySummaryResponse(summary))
}
