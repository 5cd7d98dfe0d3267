package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Aashish1107/TravelAgent/internal/model"
	"github.com/Aashish1107/TravelAgent/internal/obs"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	modeRequired = "required"
	modeOptional = "optional"
)

// TokenVerifier checks an access token. *service.AuthService implements it.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*model.Identity, error)
}

type identityKey struct{}

func WithIdentity(ctx context.Context, identity model.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFrom returns the identity attached by RequireAuth or OptionalAuth.
func IdentityFrom(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(model.Identity)
	return identity, ok
}

// RequireAuth rejects requests without a valid access token with 401.
func RequireAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			obs.AuthTokenVerifications.WithLabelValues(modeRequired, "missing").Inc()
			abortUnauthorized(c, "Access token required")
			return
		}

		identity, err := verifier.VerifyAccessToken(token)
		if err != nil {
			obs.AuthTokenVerifications.WithLabelValues(modeRequired, obs.ResultFailure).Inc()
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		obs.AuthTokenVerifications.WithLabelValues(modeRequired, obs.ResultSuccess).Inc()
		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), *identity))
		c.Next()
	}
}

// OptionalAuth attaches an identity when a valid access token is present and
// otherwise lets the request through anonymously.
func OptionalAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Next()
			return
		}

		identity, err := verifier.VerifyAccessToken(token)
		if err != nil {
			obs.AuthTokenVerifications.WithLabelValues(modeOptional, obs.ResultFailure).Inc()
			c.Next()
			return
		}

		obs.AuthTokenVerifications.WithLabelValues(modeOptional, obs.ResultSuccess).Inc()
		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), *identity))
		c.Next()
	}
}

// currentUserID is the only source of the tenant key for storage calls.
func currentUserID(c *gin.Context) (int64, bool) {
	identity, ok := IdentityFrom(c.Request.Context())
	if !ok {
		return 0, false
	}
	return identity.UserID, true
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{Message: message})
}

// RequestLogger logs one line per request. It never logs headers or bodies.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		latency := time.Since(start)
		status := c.Writer.Status()
		obs.HTTPRequestDuration.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Observe(latency.Seconds())

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", latency),
		}
		if userID, ok := currentUserID(c); ok {
			fields = append(fields, zap.Int64("user_id", userID))
		}
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		case status >= http.StatusBadRequest:
			logger.Info("request", fields...)
		default:
			logger.Debug("request", fields...)
		}
	}
}

func CORSMiddleware(allowedOrigins []string, allowCredentials bool) gin.HandlerFunc {
	originMap := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		originMap[trimmed] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if _, ok := originMap[origin]; ok {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
				if allowCredentials {
					c.Header("Access-Control-Allow-Credentials", "true")
				}
				c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
				c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
