package handler

import (
	"net/http"

	"github.com/Aashish1107/TravelAgent/internal/model"
	"github.com/Aashish1107/TravelAgent/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SearchHandler struct {
	svc    *service.SearchService
	logger *zap.Logger
}

func NewSearchHandler(svc *service.SearchService, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{svc: svc, logger: logger}
}

// SearchLocation godoc
// @Summary Search a location for tourist spots and weather
// @Description The search is recorded in the caller's history with whatever the agents returned.
// @Tags search
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.LocationSearchRequest true "Search payload"
// @Success 200 {object} model.LocationSearchResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/search/location [post]
func (h *SearchHandler) SearchLocation(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		abortUnauthorized(c, "Access token required")
		return
	}

	var req model.LocationSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Message: "Invalid search parameters"})
		return
	}

	search, results, err := h.svc.Search(c.Request.Context(), userID, req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, model.LocationSearchResponse{
		Success:  true,
		SearchID: search.ID,
		Message:  "Search completed successfully",
		Data:     results,
	})
}

// SearchHistory godoc
// @Summary Location searches of the current user, newest first
// @Tags search
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.TravelSearch
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/search/history [get]
func (h *SearchHandler) SearchHistory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		abortUnauthorized(c, "Access token required")
		return
	}

	searches, err := h.svc.History(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, searches)
}
