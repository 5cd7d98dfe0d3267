package session

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Aashish1107/TravelAgent/internal/config"
	"github.com/Aashish1107/TravelAgent/internal/obs"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrMisconfigured = errors.New("session config invalid")

const (
	defaultTTL     = 7 * 24 * time.Hour
	minSecretBytes = 16
	keyUserID      = "user_id"
)

type CookieConfig struct {
	Name     string
	Path     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

// Session is one cookie-keyed record. Values are flat strings so every store
// can hold the same JSON payload.
type Session struct {
	ID     string
	Values map[string]string
	isNew  bool
}

func (s *Session) IsNew() bool {
	return s.isNew
}

func (s *Session) Get(key string) string {
	return s.Values[key]
}

func (s *Session) Set(key, value string) {
	s.Values[key] = value
}

func (s *Session) Delete(key string) {
	delete(s.Values, key)
}

// Pop returns a value and removes it, for one-shot handshake parameters.
func (s *Session) Pop(key string) string {
	v := s.Values[key]
	delete(s.Values, key)
	return v
}

func (s *Session) SetUserID(id int64) {
	s.Values[keyUserID] = strconv.FormatInt(id, 10)
}

func (s *Session) UserID() (int64, bool) {
	id, err := strconv.ParseInt(s.Values[keyUserID], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

type Manager struct {
	store  Store
	secret []byte
	ttl    time.Duration
	cookie CookieConfig
	now    func() time.Time
}

func NewManager(store Store, cfg config.SessionConfig) (*Manager, error) {
	if len(cfg.Secret) < minSecretBytes {
		return nil, fmt.Errorf("%w: SESSION_SECRET must be at least %d bytes", ErrMisconfigured, minSecretBytes)
	}

	ttl := defaultTTL
	if strings.TrimSpace(cfg.TTL) != "" {
		parsed, err := time.ParseDuration(cfg.TTL)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("%w: invalid SESSION_TTL", ErrMisconfigured)
		}
		ttl = parsed
	}

	secure, err := parseBool(cfg.CookieSecure, true)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid AUTH_COOKIE_SECURE", ErrMisconfigured)
	}
	sameSite, err := parseSameSite(cfg.CookieSameSite)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid AUTH_COOKIE_SAMESITE", ErrMisconfigured)
	}
	if sameSite == http.SameSiteNoneMode && !secure {
		return nil, fmt.Errorf("%w: SameSite=None requires Secure cookie", ErrMisconfigured)
	}

	name := strings.TrimSpace(cfg.CookieName)
	if name == "" {
		name = "travelagent.sid"
	}
	path := strings.TrimSpace(cfg.CookiePath)
	if path == "" {
		path = "/"
	}

	return &Manager{
		store:  store,
		secret: []byte(cfg.Secret),
		ttl:    ttl,
		cookie: CookieConfig{
			Name:     name,
			Path:     path,
			Domain:   cfg.CookieDomain,
			Secure:   secure,
			SameSite: sameSite,
		},
		now: time.Now,
	}, nil
}

// Load returns the session named by the request cookie, or a fresh unsaved
// one if the cookie is missing, tampered with, or points at an expired record.
func (m *Manager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(m.cookie.Name)
	if err != nil {
		return m.newSession(), nil
	}
	id, ok := m.unsign(cookie.Value)
	if !ok {
		return m.newSession(), nil
	}

	data, err := m.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return m.newSession(), nil
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		return m.newSession(), nil
	}
	return &Session{ID: id, Values: values}, nil
}

// Save writes the session and pushes its expiry ttl into the future.
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, s *Session) error {
	data, err := json.Marshal(s.Values)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	expiresAt := m.now().Add(m.ttl)
	if err := m.store.Set(ctx, s.ID, data, expiresAt); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.isNew = false

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie.Name,
		Value:    m.sign(s.ID),
		Path:     m.cookie.Path,
		Domain:   m.cookie.Domain,
		Expires:  expiresAt,
		MaxAge:   int(m.ttl.Seconds()),
		Secure:   m.cookie.Secure,
		HttpOnly: true,
		SameSite: m.cookie.SameSite,
	})
	return nil
}

// Regenerate moves the session's values to a fresh id and drops the old
// record. Call it when the session changes privilege, before Save.
func (m *Manager) Regenerate(ctx context.Context, s *Session) error {
	if !s.isNew {
		if err := m.store.Delete(ctx, s.ID); err != nil {
			return fmt.Errorf("regenerate session: %w", err)
		}
	}
	s.ID = uuid.NewString()
	s.isNew = true
	return nil
}

// Destroy removes the record and expires the cookie. Destroying a session
// that was never saved only clears the cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, s *Session) error {
	if !s.isNew {
		if err := m.store.Delete(ctx, s.ID); err != nil {
			return fmt.Errorf("destroy session: %w", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie.Name,
		Value:    "",
		Path:     m.cookie.Path,
		Domain:   m.cookie.Domain,
		MaxAge:   -1,
		Secure:   m.cookie.Secure,
		HttpOnly: true,
		SameSite: m.cookie.SameSite,
	})
	return nil
}

// RunSweeper periodically removes expired records until ctx is cancelled.
// Stores without a Sweeper expire records themselves and are left alone.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration, logger *zap.Logger) {
	sweeper, ok := m.store.(Sweeper)
	if !ok {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sweeper.DeleteExpired(ctx)
			if err != nil {
				logger.Error("session sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				obs.SessionsSwept.Add(float64(n))
				logger.Debug("expired sessions removed", zap.Int64("count", n))
			}
		}
	}
}

func (m *Manager) newSession() *Session {
	return &Session{
		ID:     uuid.NewString(),
		Values: map[string]string{},
		isNew:  true,
	}
}

func (m *Manager) sign(id string) string {
	return id + "." + base64.RawURLEncoding.EncodeToString(m.mac(id))
}

func (m *Manager) unsign(value string) (string, bool) {
	idx := strings.LastIndexByte(value, '.')
	if idx <= 0 {
		return "", false
	}
	id, sig := value[:idx], value[idx+1:]
	got, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return "", false
	}
	if !hmac.Equal(got, m.mac(id)) {
		return "", false
	}
	return id, true
}

func (m *Manager) mac(id string) []byte {
	h := hmac.New(sha256.New, m.secret)
	h.Write([]byte(id))
	return h.Sum(nil)
}

func parseBool(value string, fallback bool) (bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	return strconv.ParseBool(value)
}

func parseSameSite(value string) (http.SameSite, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return 0, fmt.Errorf("unknown SameSite mode %q", value)
	}
}
