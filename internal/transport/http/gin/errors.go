package httpgin

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/seatres/internal/domain"
)

func statusOf(kind domain.Kind) int {
	switch kind {
	case domain.KindInvalid:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindUnauthorized:
		return http.StatusForbidden
	case domain.KindUnknownHolder:
		return http.StatusUnauthorized
	case domain.KindTransactionAborted:
		return http.StatusServiceUnavailable
	case domain.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// respondErr sends err to the requesting client only, as a status code and
// a short reason. Unclassified errors are logged and hidden.
func respondErr(c *gin.Context, logger *slog.Logger, err error) {
	kind := domain.KindOf(err)
	status := statusOf(kind)

	switch kind {
	case domain.KindInternal:
		_ = c.Error(err)
		reqID, _ := c.Get("request_id")
		logger.Error("request failed", "error", err, "request_id", reqID, "path", c.FullPath())
	case domain.KindTransactionAborted:
		c.Header("Retry-After", "1")
	case domain.KindRateLimited:
		c.Header("Retry-After", "60")
	}

	c.JSON(status, errorBody(domain.Message(err)))
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, errorBody(msg))
}
