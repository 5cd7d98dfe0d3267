package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/Aashish1107/TravelAgent/internal/db"
	"github.com/Aashish1107/TravelAgent/internal/model"
	"go.uber.org/zap"
)

const (
	maxEmailLength    = 254
	minPasswordLength = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordLength = 72
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrNotFound           = errors.New("not found")
	ErrMisconfigured      = errors.New("auth config invalid")
)

// AuthResult is returned by every operation that signs a user in.
type AuthResult struct {
	User   *model.User
	Tokens model.TokenPair
}

type AuthService struct {
	users      UserStore
	tokens     *TokenCodec
	hasher     *PasswordHasher
	strategies Strategies
	logger     *zap.Logger
}

func NewAuthService(users UserStore, tokens *TokenCodec, hasher *PasswordHasher, strategies Strategies, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      users,
		tokens:     tokens,
		hasher:     hasher,
		strategies: strategies,
		logger:     logger,
	}
}

func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*AuthResult, error) {
	email := normalizeEmail(req.Email)
	if err := validateCredentials(email, req.Password); err != nil {
		return nil, err
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !db.IsNoRows(err) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.CreateUser(ctx, model.NewUser{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
	})
	if err != nil {
		// lost a race with a concurrent registration of the same email
		if db.IsUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", zap.Int64("user_id", user.ID))
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.strategies.Authenticate(ctx, StrategyLocal, Credential{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

// FederatedLogin resolves a verified provider profile and signs the user in.
func (s *AuthService) FederatedLogin(ctx context.Context, strategy string, profile model.FederatedProfile) (*AuthResult, error) {
	user, err := s.strategies.Authenticate(ctx, strategy, Credential{Profile: &profile})
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

// Refresh trades a valid refresh token for a brand-new pair. The user store
// is not consulted. Old refresh tokens are not tracked, so a rotated token
// keeps working until it expires.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	claims, err := s.tokens.Verify(refreshToken, model.TokenKindRefresh)
	if err != nil {
		return model.TokenPair{}, ErrInvalidToken
	}
	return s.tokens.IssuePair(claims.UserID)
}

func (s *AuthService) VerifyAccessToken(token string) (*model.Identity, error) {
	claims, err := s.tokens.Verify(token, model.TokenKindAccess)
	if err != nil {
		return nil, err
	}
	identity := claims.Identity()
	return &identity, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Tokens: pair}, nil
}

func validateCredentials(email, password string) error {
	if email == "" || len(email) > maxEmailLength {
		return ErrInvalidInput
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidInput
	}
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return ErrInvalidInput
	}
	return nil
}
