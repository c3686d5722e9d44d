package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/VMConsole/internal/domain/vm"
)

// StatusFor maps controller errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, vm.ErrUnknownOS):
		return http.StatusNotFound
	case errors.Is(err, vm.ErrNotPermitted):
		return http.StatusConflict
	case errors.Is(err, vm.ErrInvalidURL):
		return http.StatusBadRequest
	case errors.Is(err, vm.ErrTokenRequired):
		return http.StatusPreconditionFailed
	case errors.Is(err, vm.ErrBackend):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) respondError(c *gin.Context, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}
