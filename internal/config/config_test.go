package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("JWT_ACCESS_TTL", "")
	t.Setenv("JWT_REFRESH_TTL", "")
	t.Setenv("SESSION_STORE", "")
	t.Setenv("AUTH_COOKIE_SECURE", "")
	t.Setenv("GOOGLE_CLIENT_ID", "")

	cfg := Load()

	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, "15m", cfg.Auth.JWTAccessTTL)
	assert.Equal(t, "168h", cfg.Auth.JWTRefreshTTL)
	assert.Equal(t, "postgres", cfg.Session.Store)
	assert.Equal(t, "false", cfg.Session.CookieSecure)
	assert.True(t, cfg.Log.Pretty)
	assert.False(t, cfg.Google.Enabled())
}

func TestLoadProductionSecuresCookies(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTH_COOKIE_SECURE", "")
	t.Setenv("LOG_PRETTY", "")

	cfg := Load()

	assert.Equal(t, "true", cfg.Session.CookieSecure)
	assert.False(t, cfg.Log.Pretty)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("FRONTEND_URL", "https://app.example/")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("GOOGLE_CLIENT_ID", "id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret")

	cfg := Load()

	require.Len(t, cfg.Server.AllowedOrigins, 2)
	assert.Equal(t, "https://b.example", cfg.Server.AllowedOrigins[1])
	assert.Equal(t, "https://app.example", cfg.Server.FrontendURL)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.True(t, cfg.Google.Enabled())
}
