package handler

import (
	"errors"
	"net/http"

	"github.com/Aashish1107/TravelAgent/internal/model"
	"github.com/Aashish1107/TravelAgent/internal/obs"
	"github.com/Aashish1107/TravelAgent/internal/service"
	"github.com/Aashish1107/TravelAgent/internal/session"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	svc      *service.AuthService
	sessions *session.Manager
	logger   *zap.Logger
}

func NewAuthHandler(svc *service.AuthService, sessions *session.Manager, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, sessions: sessions, logger: logger}
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.RegisterRequest true "Email, password and optional names"
// @Success 201 {object} model.AuthResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Message: "Email and password are required"})
		return
	}

	result, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		obs.AuthRegistrations.WithLabelValues(resultLabel(err)).Inc()
		h.writeError(c, err)
		return
	}

	obs.AuthRegistrations.WithLabelValues(obs.ResultSuccess).Inc()
	c.JSON(http.StatusCreated, model.AuthResponse{
		Message:      "User registered successfully",
		User:         result.User.Sanitize(),
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
	})
}

// Login godoc
// @Summary Login with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "Email and password"
// @Success 200 {object} model.AuthResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Message: "Email and password are required"})
		return
	}

	result, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		obs.AuthLogins.WithLabelValues(service.StrategyLocal, resultLabel(err)).Inc()
		h.writeError(c, err)
		return
	}

	obs.AuthLogins.WithLabelValues(service.StrategyLocal, obs.ResultSuccess).Inc()
	c.JSON(http.StatusOK, model.AuthResponse{
		Message:      "Login successful",
		User:         result.User.Sanitize(),
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
	})
}

// Refresh godoc
// @Summary Exchange a refresh token for a new token pair
// @Description Both tokens are reissued. The presented refresh token is not invalidated.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.RefreshRequest true "Refresh token"
// @Success 200 {object} model.TokenPair
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req model.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		obs.AuthRefreshes.WithLabelValues("missing").Inc()
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Message: "Refresh token required"})
		return
	}

	pair, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		obs.AuthRefreshes.WithLabelValues(resultLabel(err)).Inc()
		h.writeError(c, err)
		return
	}

	obs.AuthRefreshes.WithLabelValues(obs.ResultSuccess).Inc()
	c.JSON(http.StatusOK, pair)
}

// Me godoc
// @Summary Get current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.UserResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/auth/user [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		abortUnauthorized(c, "Access token required")
		return
	}

	user, err := h.svc.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user.Sanitize())
}

// Logout godoc
// @Summary Logout
// @Description Destroys the server-side session record if one exists. Issued tokens stay valid until they expire; clients must discard them.
// @Tags auth
// @Produce json
// @Success 200 {object} model.MessageResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := c.Request.Context()
	sess, err := h.sessions.Load(ctx, c.Request)
	if err != nil {
		h.logger.Error("load session on logout", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Message: "Logout failed"})
		return
	}
	if err := h.sessions.Destroy(ctx, c.Writer, sess); err != nil {
		h.logger.Error("destroy session on logout", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Message: "Logout failed"})
		return
	}
	if userID, ok := sess.UserID(); ok {
		h.logger.Info("session destroyed", zap.Int64("user_id", userID))
	}
	c.JSON(http.StatusOK, model.MessageResponse{Message: "Logout successful"})
}

func (h *AuthHandler) writeError(c *gin.Context, err error) {
	writeError(c, h.logger, err)
}

// writeError maps service errors to a status and a generic message. Details
// of unexpected errors are logged, never returned.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Message: "Invalid input"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Message: "Invalid email or password"})
	case errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Message: "Invalid or expired token"})
	case errors.Is(err, service.ErrDuplicateEmail):
		c.JSON(http.StatusConflict, model.ErrorResponse{Message: "User already exists with this email"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, model.ErrorResponse{Message: "Not found"})
	default:
		logger.Error("request failed", zap.String("route", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Message: "Internal server error"})
	}
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrDuplicateEmail):
		return obs.ResultFailure
	default:
		return obs.ResultError
	}
}
