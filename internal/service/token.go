package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Aashish1107/TravelAgent/internal/config"
	"github.com/Aashish1107/TravelAgent/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

type tokenClaims struct {
	UserID int64           `json:"userId"`
	Type   model.TokenKind `json:"type"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies stateless HS256 token pairs. Access and
// refresh tokens are signed with different secrets, so a leaked access key
// cannot mint refresh tokens. Issued tokens are not recorded anywhere and stay
// valid until they expire.
type TokenCodec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

type TokenCodecOption func(*TokenCodec)

// WithClock replaces time.Now for issuing and verifying.
func WithClock(now func() time.Time) TokenCodecOption {
	return func(c *TokenCodec) {
		c.now = now
	}
}

func NewTokenCodec(cfg config.AuthConfig, opts ...TokenCodecOption) (*TokenCodec, error) {
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, fmt.Errorf("%w: JWT_SECRET is required", ErrMisconfigured)
	}
	if strings.TrimSpace(cfg.JWTRefreshSecret) == "" {
		return nil, fmt.Errorf("%w: JWT_REFRESH_SECRET is required", ErrMisconfigured)
	}
	if cfg.JWTSecret == cfg.JWTRefreshSecret {
		return nil, fmt.Errorf("%w: JWT_SECRET and JWT_REFRESH_SECRET must differ", ErrMisconfigured)
	}

	accessTTL, err := parseTTL(cfg.JWTAccessTTL, defaultAccessTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid JWT_ACCESS_TTL", ErrMisconfigured)
	}
	refreshTTL, err := parseTTL(cfg.JWTRefreshTTL, defaultRefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid JWT_REFRESH_TTL", ErrMisconfigured)
	}
	if accessTTL >= refreshTTL {
		return nil, fmt.Errorf("%w: JWT_ACCESS_TTL must be shorter than JWT_REFRESH_TTL", ErrMisconfigured)
	}

	c := &TokenCodec{
		accessSecret:  []byte(cfg.JWTSecret),
		refreshSecret: []byte(cfg.JWTRefreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *TokenCodec) AccessTTL() time.Duration {
	return c.accessTTL
}

func (c *TokenCodec) RefreshTTL() time.Duration {
	return c.refreshTTL
}

// Issue signs a token of the given kind for userID.
func (c *TokenCodec) Issue(userID int64, kind model.TokenKind) (string, error) {
	secret, ttl, err := c.paramsFor(kind)
	if err != nil {
		return "", err
	}

	now := c.now()
	claims := tokenClaims{
		UserID: userID,
		Type:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}

func (c *TokenCodec) IssuePair(userID int64) (model.TokenPair, error) {
	access, err := c.Issue(userID, model.TokenKindAccess)
	if err != nil {
		return model.TokenPair{}, err
	}
	refresh, err := c.Issue(userID, model.TokenKindRefresh)
	if err != nil {
		return model.TokenPair{}, err
	}
	return model.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Verify checks signature, expiry and kind. Every failure, whatever its
// cause, is reported as ErrInvalidToken. A token is expired at the instant
// now equals its exp claim.
func (c *TokenCodec) Verify(tokenStr string, kind model.TokenKind) (*model.Claims, error) {
	secret, _, err := c.paramsFor(kind)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if strings.TrimSpace(tokenStr) == "" {
		return nil, ErrInvalidToken
	}

	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != kind {
		return nil, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID != claims.UserID || userID <= 0 {
		return nil, ErrInvalidToken
	}

	out := &model.Claims{
		UserID:    userID,
		Kind:      claims.Type,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}

func (c *TokenCodec) paramsFor(kind model.TokenKind) ([]byte, time.Duration, error) {
	switch kind {
	case model.TokenKindAccess:
		return c.accessSecret, c.accessTTL, nil
	case model.TokenKindRefresh:
		return c.refreshSecret, c.refreshTTL, nil
	default:
		return nil, 0, fmt.Errorf("unknown token kind %q", kind)
	}
}

func parseTTL(value string, fallback time.Duration) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	ttl, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if ttl <= 0 {
		return 0, fmt.Errorf("ttl must be positive")
	}
	return ttl, nil
}
