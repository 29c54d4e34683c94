package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/webtop/internal/domain/desktop"
	"github.com/GriffinCanCode/webtop/internal/domain/theme"
	"github.com/GriffinCanCode/webtop/internal/domain/weather"
	"github.com/GriffinCanCode/webtop/internal/infrastructure/resilience"
)

// StatusFor maps a domain error to an HTTP status
func StatusFor(err error) int {
	switch {
	case errors.Is(err, desktop.ErrIconNotFound),
		errors.Is(err, desktop.ErrWindowNotFound):
		return http.StatusNotFound
	case errors.Is(err, desktop.ErrInvalidViewport),
		errors.Is(err, theme.ErrInvalidTheme),
		errors.Is(err, weather.ErrInvalidCoordinate):
		return http.StatusBadRequest
	case errors.Is(err, weather.ErrDisabled),
		errors.Is(err, resilience.ErrCircuitOpen),
		errors.Is(err, resilience.ErrTooManyRequests):
		return http.StatusServiceUnavailable
	case errors.Is(err, weather.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
