package handlers

import (
	"net/http"
	"sync"

	intconfig "busmanager/internal/config"
	"busmanager/internal/http/middleware"
	"busmanager/internal/services"

	"github.com/gin-gonic/gin"
)

var (
	fontMu     sync.RWMutex
	reportFont string
)

// SetReportFont sets the TTF used by GET /api/reports/fleet.
func SetReportFont(path string) {
	fontMu.Lock()
	defer fontMu.Unlock()
	reportFont = path
}

// fleet builds request-scoped services over the shared connection.
func fleet(c *gin.Context) services.Fleet {
	fontMu.RLock()
	font := reportFont
	fontMu.RUnlock()
	return services.NewFleet(intconfig.DB, intconfig.Dialect).
		WithRequestID(middleware.GetRequestID(c)).
		WithReportFont(font)
}

// RespondError sends standard error payload with request_id included.
// Keeps backward compatibility by always providing "message".
func RespondError(c *gin.Context, status int, message string, err error) {
	reqID := middleware.GetRequestID(c)
	payload := gin.H{
		"message":    message,
		"request_id": reqID,
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	c.JSON(status, payload)
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		RespondError(c, http.StatusBadRequest, "empty body", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid payload", err)
		return false
	}
	return true
}
