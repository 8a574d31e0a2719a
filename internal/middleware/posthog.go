package middleware

import (
	"net/http"
	"strings"

	"github.com/autoecole-hub/console_backend/internal/utils"
	"github.com/gin-gonic/gin"
)

// untrackedPaths are endpoints that produce no useful analytics signal.
var untrackedPaths = map[string]bool{
	"/health": true,
}

// PosthogMiddleware emits a PostHog event per successful authenticated request.
// Events are named after the route template so rows for the same endpoint
// aggregate regardless of path parameters.
func PosthogMiddleware(posthogClient *utils.PosthogClientWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		if posthogClient == nil || !posthogClient.IsInitialized() || untrackedPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		c.Next()

		// Failed requests are visible in logs already; only track successes.
		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		operatorID, exists := GetUserIDFromContext(c)
		if !exists {
			return
		}

		// "/api/v1/accounts/:accountID" -> "api_v1_accounts_:accountID"
		eventName := strings.ReplaceAll(strings.TrimPrefix(c.FullPath(), "/"), "/", "_")
		if eventName == "" {
			return
		}

		props := map[string]any{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status_code": c.Writer.Status(),
		}
		if len(c.Params) > 0 {
			params := make(map[string]string, len(c.Params))
			for _, param := range c.Params {
				params[param.Key] = param.Value
			}
			props["params"] = params
		}

		posthogClient.Enqueue(operatorID, eventName, props)
	}
}
