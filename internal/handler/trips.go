package handler

import (
	"net/http"
	"strconv"

	"github.com/Aashish1107/TravelAgent/internal/model"
	"github.com/Aashish1107/TravelAgent/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TripHandler struct {
	svc    *service.TripService
	logger *zap.Logger
}

func NewTripHandler(svc *service.TripService, logger *zap.Logger) *TripHandler {
	return &TripHandler{svc: svc, logger: logger}
}

// CreateTrip godoc
// @Summary Create trip
// @Tags trips
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.CreateTripRequest true "Trip payload"
// @Success 201 {object} model.Trip
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/trips [post]
func (h *TripHandler) CreateTrip(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		abortUnauthorized(c, "Access token required")
		return
	}

	var req model.CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Message: "Trip name is required"})
		return
	}

	trip, err := h.svc.CreateTrip(c.Request.Context(), userID, req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, trip)
}

// ListTrips godoc
// @Summary List trips of the current user
// @Tags trips
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Trip
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/trips [get]
func (h *TripHandler) ListTrips(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		abortUnauthorized(c, "Access token required")
		return
	}

	trips, err := h.svc.ListTrips(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, trips)
}

// UpdateTrip godoc
// @Summary Update trip
// @Tags trips
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Trip ID"
// @Param request body model.UpdateTripRequest true "Fields to change"
// @Success 200 {object} model.Trip
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/trips/{id} [put]
func (h *TripHandler) UpdateTrip(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		abortUnauthorized(c, "Access token required")
		return
	}
	tripID, ok := pathID(c)
	if !ok {
		return
	}

	var req model.UpdateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Message: "Invalid request body"})
		return
	}

	trip, err := h.svc.UpdateTrip(c.Request.Context(), userID, tripID, req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

// DeleteTrip godoc
// @Summary Delete trip
// @Tags trips
// @Produce json
// @Security BearerAuth
// @Param id path int true "Trip ID"
// @Success 200 {object} model.SuccessResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/trips/{id} [delete]
func (h *TripHandler) DeleteTrip(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		abortUnauthorized(c, "Access token required")
		return
	}
	tripID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteTrip(c.Request.Context(), userID, tripID); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, model.SuccessResponse{Success: true})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Message: "Invalid id"})
		return 0, false
	}
	return id, true
}
