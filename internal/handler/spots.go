package handler

import (
	"net/http"

	"github.com/Aashish1107/TravelAgent/internal/model"
	"github.com/Aashish1107/TravelAgent/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SpotHandler struct {
	svc    *service.SpotService
	logger *zap.Logger
}

func NewSpotHandler(svc *service.SpotService, logger *zap.Logger) *SpotHandler {
	return &SpotHandler{svc: svc, logger: logger}
}

// SaveSpot godoc
// @Summary Save a spot
// @Tags spots
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.SaveSpotRequest true "Spot payload"
// @Success 201 {object} model.SavedSpot
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /api/spots/save [post]
func (h *SpotHandler) SaveSpot(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		abortUnauthorized(c, "Access token required")
		return
	}

	var req model.SaveSpotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Message: "spotId, name, latitude and longitude are required"})
		return
	}

	spot, err := h.svc.SaveSpot(c.Request.Context(), userID, req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, spot)
}

// ListSavedSpots godoc
// @Summary List saved spots
// @Tags spots
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.SavedSpot
// @Failure 401 {object} model.ErrorResponse
// @Router /api/spots/saved [get]
func (h *SpotHandler) ListSavedSpots(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		abortUnauthorized(c, "Access token required")
		return
	}

	spots, err := h.svc.ListSavedSpots(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, spots)
}

// RemoveSavedSpot godoc
// @Summary Remove a saved spot
// @Tags spots
// @Produce json
// @Security BearerAuth
// @Param id path int true "Saved spot ID"
// @Success 200 {object} model.SuccessResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/spots/{id} [delete]
func (h *SpotHandler) RemoveSavedSpot(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		abortUnauthorized(c, "Access token required")
		return
	}
	spotID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.svc.RemoveSavedSpot(c.Request.Context(), userID, spotID); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, model.SuccessResponse{Success: true})
}
