package service

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/Aashish1107/TravelAgent/internal/config"
	"github.com/Aashish1107/TravelAgent/internal/model"
	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

const googleIssuer = "https://accounts.google.com"

// FederatedProvider is the redirect half of a federated login: it builds the
// provider's consent URL and turns the callback code into a verified profile.
type FederatedProvider interface {
	Name() string
	AuthCodeURL(state, nonce, verifier string) string
	Exchange(ctx context.Context, code, verifier, nonce string) (*model.FederatedProfile, error)
}

type GoogleProvider struct {
	oauth    *oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// NewGoogleProvider fetches Google's discovery document, so it needs network
// access at startup.
func NewGoogleProvider(ctx context.Context, cfg config.GoogleConfig) (*GoogleProvider, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("%w: GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET are required", ErrMisconfigured)
	}

	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("google discovery: %w", err)
	}

	return &GoogleProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
	}, nil
}

func (g *GoogleProvider) Name() string {
	return StrategyGoogle
}

func (g *GoogleProvider) AuthCodeURL(state, nonce, verifier string) string {
	return g.oauth.AuthCodeURL(state,
		oidc.Nonce(nonce),
		oauth2.S256ChallengeOption(verifier),
	)
}

func (g *GoogleProvider) Exchange(ctx context.Context, code, verifier, nonce string) (*model.FederatedProfile, error) {
	token, err := g.oauth.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("token exchange: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, fmt.Errorf("%w: no id_token in response", ErrInvalidCredentials)
	}

	idToken, err := g.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("%w: id token verification: %v", ErrInvalidCredentials, err)
	}

	var claims struct {
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		GivenName     string `json:"given_name"`
		FamilyName    string `json:"family_name"`
		Picture       string `json:"picture"`
		Nonce         string `json:"nonce"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: id token claims: %v", ErrInvalidCredentials, err)
	}
	if subtle.ConstantTimeCompare([]byte(claims.Nonce), []byte(nonce)) != 1 {
		return nil, fmt.Errorf("%w: nonce mismatch", ErrInvalidCredentials)
	}
	if !claims.EmailVerified {
		return nil, fmt.Errorf("%w: email not verified by provider", ErrInvalidCredentials)
	}

	return &model.FederatedProfile{
		Provider:   StrategyGoogle,
		ProviderID: claims.Sub,
		Email:      claims.Email,
		FirstName:  claims.GivenName,
		LastName:   claims.FamilyName,
		PictureURL: claims.Picture,
	}, nil
}
