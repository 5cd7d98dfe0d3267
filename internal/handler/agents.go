package handler

import (
	"net/http"
	"strconv"

	"github.com/Aashish1107/TravelAgent/internal/model"
	"github.com/Aashish1107/TravelAgent/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AgentHandler struct {
	svc    *service.AgentService
	logger *zap.Logger
}

func NewAgentHandler(svc *service.AgentService, logger *zap.Logger) *AgentHandler {
	return &AgentHandler{svc: svc, logger: logger}
}

// SendMessage godoc
// @Summary Send a message to the travel agents
// @Tags agents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.AgentMessageRequest true "Message payload"
// @Success 200 {object} model.AgentMessageResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/agents/message [post]
func (h *AgentHandler) SendMessage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		abortUnauthorized(c, "Access token required")
		return
	}

	var req model.AgentMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Message: "Invalid message data"})
		return
	}

	resp, err := h.svc.SendMessage(c.Request.Context(), userID, req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListConversations godoc
// @Summary Conversation log of the current user, newest first
// @Tags agents
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max entries (default 50, capped at 200)"
// @Success 200 {array} model.AgentConversation
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/agents/conversations [get]
func (h *AgentHandler) ListConversations(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		abortUnauthorized(c, "Access token required")
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Message: "Invalid limit"})
			return
		}
		limit = n
	}

	conversations, err := h.svc.Conversations(c.Request.Context(), userID, limit)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, conversations)
}
