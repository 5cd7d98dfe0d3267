package handler

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"

	"github.com/Aashish1107/TravelAgent/internal/model"
	"github.com/Aashish1107/TravelAgent/internal/obs"
	"github.com/Aashish1107/TravelAgent/internal/service"
	"github.com/Aashish1107/TravelAgent/internal/session"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	sessionKeyState    = "oauth_state"
	sessionKeyNonce    = "oauth_nonce"
	sessionKeyVerifier = "oauth_verifier"
)

// OAuthHandler runs the redirect handshake for a federated provider. The
// handshake parameters live in the server-side session between the two legs.
type OAuthHandler struct {
	svc         *service.AuthService
	provider    service.FederatedProvider
	sessions    *session.Manager
	frontendURL string
	logger      *zap.Logger
}

func NewOAuthHandler(svc *service.AuthService, provider service.FederatedProvider, sessions *session.Manager, frontendURL string, logger *zap.Logger) *OAuthHandler {
	return &OAuthHandler{
		svc:         svc,
		provider:    provider,
		sessions:    sessions,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		logger:      logger,
	}
}

// Start godoc
// @Summary Start Google login
// @Tags auth
// @Success 302
// @Failure 500 {object} model.ErrorResponse
// @Router /api/auth/google [get]
func (h *OAuthHandler) Start(c *gin.Context) {
	ctx := c.Request.Context()
	sess, err := h.sessions.Load(ctx, c.Request)
	if err != nil {
		h.logger.Error("load session for oauth start", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Message: "Authentication failed"})
		return
	}

	state, err := randomToken()
	if err != nil {
		h.logger.Error("generate oauth state", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Message: "Authentication failed"})
		return
	}
	nonce, err := randomToken()
	if err != nil {
		h.logger.Error("generate oauth nonce", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Message: "Authentication failed"})
		return
	}
	verifier := oauth2.GenerateVerifier()

	sess.Set(sessionKeyState, state)
	sess.Set(sessionKeyNonce, nonce)
	sess.Set(sessionKeyVerifier, verifier)
	if err := h.sessions.Save(ctx, c.Writer, sess); err != nil {
		h.logger.Error("save oauth session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Message: "Authentication failed"})
		return
	}

	c.Redirect(http.StatusFound, h.provider.AuthCodeURL(state, nonce, verifier))
}

// Callback godoc
// @Summary Google login callback
// @Description Redirects to the frontend with the token pair in the URL fragment, or to the login page on failure.
// @Tags auth
// @Param state query string true "Opaque state from the start leg"
// @Param code query string true "Authorization code"
// @Success 302
// @Router /api/auth/google/callback [get]
func (h *OAuthHandler) Callback(c *gin.Context) {
	ctx := c.Request.Context()
	strategy := h.provider.Name()

	sess, err := h.sessions.Load(ctx, c.Request)
	if err != nil {
		h.logger.Error("load session for oauth callback", zap.Error(err))
		h.fail(c, strategy, obs.ResultError)
		return
	}

	// One-shot: the handshake values are consumed whatever the outcome.
	wantState := sess.Pop(sessionKeyState)
	nonce := sess.Pop(sessionKeyNonce)
	verifier := sess.Pop(sessionKeyVerifier)

	if errParam := c.Query("error"); errParam != "" {
		h.logger.Info("provider returned error", zap.String("provider", strategy), zap.String("error", errParam))
		h.saveQuietly(c, sess)
		h.fail(c, strategy, obs.ResultFailure)
		return
	}

	gotState := c.Query("state")
	code := c.Query("code")
	if wantState == "" || code == "" || subtle.ConstantTimeCompare([]byte(gotState), []byte(wantState)) != 1 {
		h.logger.Info("oauth state mismatch", zap.String("provider", strategy))
		h.saveQuietly(c, sess)
		h.fail(c, strategy, obs.ResultFailure)
		return
	}

	profile, err := h.provider.Exchange(ctx, code, verifier, nonce)
	if err != nil {
		h.logger.Warn("oauth exchange failed", zap.String("provider", strategy), zap.Error(err))
		h.saveQuietly(c, sess)
		h.fail(c, strategy, resultLabel(err))
		return
	}

	result, err := h.svc.FederatedLogin(ctx, strategy, *profile)
	if err != nil {
		h.logger.Warn("federated login failed", zap.String("provider", strategy), zap.Error(err))
		h.saveQuietly(c, sess)
		h.fail(c, strategy, resultLabel(err))
		return
	}

	// New sid on login so a planted pre-login cookie is worthless.
	if err := h.sessions.Regenerate(ctx, sess); err != nil {
		h.logger.Error("regenerate session after oauth login", zap.Error(err))
		h.fail(c, strategy, obs.ResultError)
		return
	}
	sess.SetUserID(result.User.ID)
	if err := h.sessions.Save(ctx, c.Writer, sess); err != nil {
		h.logger.Error("save session after oauth login", zap.Error(err))
		h.fail(c, strategy, obs.ResultError)
		return
	}

	obs.AuthLogins.WithLabelValues(strategy, obs.ResultSuccess).Inc()
	fragment := url.Values{}
	fragment.Set("accessToken", result.Tokens.AccessToken)
	fragment.Set("refreshToken", result.Tokens.RefreshToken)
	c.Redirect(http.StatusFound, h.frontendURL+"/#"+fragment.Encode())
}

func (h *OAuthHandler) fail(c *gin.Context, strategy, result string) {
	obs.AuthLogins.WithLabelValues(strategy, result).Inc()
	c.Redirect(http.StatusFound, h.frontendURL+"/login")
}

// saveQuietly persists the consumed handshake values so they cannot be replayed.
func (h *OAuthHandler) saveQuietly(c *gin.Context, sess *session.Session) {
	if sess.IsNew() {
		return
	}
	if err := h.sessions.Save(c.Request.Context(), c.Writer, sess); err != nil {
		h.logger.Warn("save session after failed oauth callback", zap.Error(err))
	}
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
