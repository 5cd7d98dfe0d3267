package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Aashish1107/TravelAgent/internal/db"
	"github.com/Aashish1107/TravelAgent/internal/model"
)

const (
	StrategyLocal  = "local"
	StrategyGoogle = "google"
)

// UserStore is the credential store the auth core depends on. *db.Postgres
// satisfies it; lookups return pgx.ErrNoRows when nothing matches.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByProviderID(ctx context.Context, providerID string) (*model.User, error)
	GetUserByID(ctx context.Context, userID int64) (*model.User, error)
	CreateUser(ctx context.Context, user model.NewUser) (*model.User, error)
	UpsertUserByProviderID(ctx context.Context, profile model.FederatedProfile) (*model.User, error)
}

// Credential is what a client presents to a strategy. Local strategies read
// Email and Password, federated ones read Profile.
type Credential struct {
	Email    string
	Password string
	Profile  *model.FederatedProfile
}

// Strategy resolves a presented credential to a user.
type Strategy interface {
	Authenticate(ctx context.Context, cred Credential) (*model.User, error)
}

// Strategies maps strategy names to resolvers. It is built once at startup
// and handed to AuthService; nothing registers into it afterwards.
type Strategies map[string]Strategy

func (s Strategies) Authenticate(ctx context.Context, name string, cred Credential) (*model.User, error) {
	strategy, ok := s[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown auth strategy %q", ErrMisconfigured, name)
	}
	return strategy.Authenticate(ctx, cred)
}

type LocalStrategy struct {
	users  UserStore
	hasher *PasswordHasher
}

func NewLocalStrategy(users UserStore, hasher *PasswordHasher) *LocalStrategy {
	return &LocalStrategy{users: users, hasher: hasher}
}

// Authenticate fails with ErrInvalidCredentials for an unknown email and for
// a wrong password alike.
func (s *LocalStrategy) Authenticate(ctx context.Context, cred Credential) (*model.User, error) {
	email := normalizeEmail(cred.Email)
	if email == "" || cred.Password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if db.IsNoRows(err) {
			s.hasher.CompareDummy(cred.Password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !s.hasher.Compare(user.PasswordHash, cred.Password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

type FederatedStrategy struct {
	users UserStore
}

func NewFederatedStrategy(users UserStore) *FederatedStrategy {
	return &FederatedStrategy{users: users}
}

// Authenticate resolves the profile by provider id first, so a provider-side
// email change still lands on the same account. Otherwise it returns the
// user with the profile's email or provisions a verified, password-less one
// bound to the provider id.
func (s *FederatedStrategy) Authenticate(ctx context.Context, cred Credential) (*model.User, error) {
	if cred.Profile == nil {
		return nil, ErrInvalidCredentials
	}
	profile := *cred.Profile
	profile.Email = normalizeEmail(profile.Email)
	profile.ProviderID = strings.TrimSpace(profile.ProviderID)
	if profile.Email == "" || profile.ProviderID == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetUserByProviderID(ctx, profile.ProviderID)
	if err == nil {
		return user, nil
	}
	if !db.IsNoRows(err) {
		return nil, fmt.Errorf("lookup user by provider id: %w", err)
	}

	user, err = s.users.GetUserByEmail(ctx, profile.Email)
	if err == nil {
		return user, nil
	}
	if !db.IsNoRows(err) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	user, err = s.users.UpsertUserByProviderID(ctx, profile)
	if err == nil {
		return user, nil
	}
	if !db.IsUniqueViolation(err) {
		return nil, fmt.Errorf("provision federated user: %w", err)
	}
	// Lost a race with a concurrent first login for the same provider id.
	user, err = s.users.GetUserByProviderID(ctx, profile.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("provision federated user: %w", err)
	}
	return user, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
