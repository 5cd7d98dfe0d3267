package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Auth     AuthConfig
	Session  SessionConfig
	Google   GoogleConfig
	Redis    RedisConfig
	Agent    AgentConfig
	Postgres PostgresConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	FrontendURL    string
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Pretty bool
}

// AuthConfig keeps raw strings; the auth service parses and validates them.
type AuthConfig struct {
	JWTSecret        string
	JWTRefreshSecret string
	JWTAccessTTL     string
	JWTRefreshTTL    string
	BcryptCost       string
}

type SessionConfig struct {
	Secret         string
	TTL            string
	Store          string
	CookieName     string
	CookiePath     string
	CookieDomain   string
	CookieSecure   string
	CookieSameSite string
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

func (g GoogleConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AgentConfig struct {
	BaseURL string
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

func Load() Config {
	env := getenv("APP_ENV", "development")
	return Config{
		Server: ServerConfig{
			Port:           getenv("PORT", "5000"),
			Env:            env,
			FrontendURL:    strings.TrimRight(getenv("FRONTEND_URL", "http://localhost:5173"), "/"),
			AllowedOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		},
		Log: LogConfig{
			Level:  getenv("LOG_LEVEL", "info"),
			Pretty: getbool("LOG_PRETTY", env != "production"),
		},
		Auth: AuthConfig{
			JWTSecret:        os.Getenv("JWT_SECRET"),
			JWTRefreshSecret: os.Getenv("JWT_REFRESH_SECRET"),
			JWTAccessTTL:     getenv("JWT_ACCESS_TTL", "15m"),
			JWTRefreshTTL:    getenv("JWT_REFRESH_TTL", "168h"),
			BcryptCost:       getenv("BCRYPT_COST", "12"),
		},
		Session: SessionConfig{
			Secret:         os.Getenv("SESSION_SECRET"),
			TTL:            getenv("SESSION_TTL", "168h"),
			Store:          getenv("SESSION_STORE", "postgres"),
			CookieName:     getenv("SESSION_COOKIE_NAME", "travelagent.sid"),
			CookiePath:     getenv("AUTH_COOKIE_PATH", "/"),
			CookieDomain:   os.Getenv("AUTH_COOKIE_DOMAIN"),
			CookieSecure:   getenv("AUTH_COOKIE_SECURE", strconv.FormatBool(env == "production")),
			CookieSameSite: getenv("AUTH_COOKIE_SAMESITE", "lax"),
		},
		Google: GoogleConfig{
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			CallbackURL:  getenv("GOOGLE_CALLBACK_URL", "http://localhost:5000/api/auth/google/callback"),
		},
		Redis: RedisConfig{
			Addr:     getenv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getint("REDIS_DB", 0),
		},
		Agent: AgentConfig{
			BaseURL: getenv("PYTHON_SERVER_URL", "http://localhost:8000"),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getbool(key string, fallback bool) bool {
	parsed, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return parsed
}

func getint(key string, fallback int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
