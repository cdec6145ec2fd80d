package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shieldbackend/internal/apperr"
)

var kindStatus = map[apperr.Kind]int{
	apperr.KindValidation:          http.StatusBadRequest,
	apperr.KindNotFound:            http.StatusNotFound,
	apperr.KindForbidden:           http.StatusForbidden,
	apperr.KindConflict:            http.StatusConflict,
	apperr.KindUpstreamClient:      http.StatusBadGateway,
	apperr.KindUpstreamUnavailable: http.StatusServiceUnavailable,
	apperr.KindUpstreamTimeout:     http.StatusGatewayTimeout,
}

// respondError maps typed application errors to HTTP statuses. Anything
// without a kind is logged and hidden behind a generic 500.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var e *apperr.Error
	if errors.As(err, &e) {
		status, ok := kindStatus[e.Kind]
		if !ok {
			status = http.StatusInternalServerError
		}
		c.JSON(status, gin.H{"error": e.Message, "kind": e.Kind})
		return
	}
	logger.Error("Unhandled error", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error", "kind": apperr.KindInternal})
}
