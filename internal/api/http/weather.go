package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webtop/internal/domain/weather"
)

// Weather returns current conditions for ?lat=&lon=
func (h *Handlers) Weather(c *gin.Context) {
	if h.weather == nil {
		respondError(c, weather.ErrDisabled)
		return
	}

	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lon, errLon := strconv.ParseFloat(c.Query("lon"), 64)
	if err := errors.Join(errLat, errLon); err != nil {
		badRequest(c, fmt.Errorf("lat and lon query parameters required: %w", err))
		return
	}

	report, err := h.weather.Current(c.Request.Context(), lat, lon)
	if err != nil {
		if !errors.Is(err, weather.ErrDisabled) {
			h.logger.Warn("Weather lookup failed", zap.Error(err))
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
