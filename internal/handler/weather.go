package handler

import (
	"net/http"

	"github.com/Aashish1107/TravelAgent/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type WeatherHandler struct {
	svc    *service.WeatherService
	logger *zap.Logger
}

func NewWeatherHandler(svc *service.WeatherService, logger *zap.Logger) *WeatherHandler {
	return &WeatherHandler{svc: svc, logger: logger}
}

// GetWeather godoc
// @Summary Current weather and hourly forecast
// @Description Works anonymously. A valid bearer token only adds the caller to the request log.
// @Tags weather
// @Produce json
// @Param location path string true "City or place name"
// @Success 200 {object} model.Weather
// @Failure 400 {object} model.ErrorResponse
// @Router /api/weather/{location} [get]
func (h *WeatherHandler) GetWeather(c *gin.Context) {
	userID, _ := currentUserID(c)

	weather, err := h.svc.GetWeather(c.Request.Context(), c.Param("location"), userID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, weather)
}
