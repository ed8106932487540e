package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"retail_sales/internal/sales"
)

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, sales.ErrInvalidArgument), errors.Is(err, sales.ErrCurrencyMismatch):
		return http.StatusBadRequest
	case errors.Is(err, sales.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, sales.ErrInvalidState), errors.Is(err, sales.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, sales.ErrSequenceExhausted):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError writes the error response. Internal errors are logged and
// hidden behind msg.
func abortWithError(c *gin.Context, logger *zap.Logger, msg string, err error) {
	status := statusFor(err)
	if status == http.StatusServiceUnavailable {
		logger.Warn(msg, zap.String("path", c.FullPath()), zap.Error(err))
	}
	if status == http.StatusInternalServerError {
		logger.Error(msg, zap.String("path", c.FullPath()), zap.Error(err))
		c.AbortWithStatusJSON(status, gin.H{"error": msg})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}
