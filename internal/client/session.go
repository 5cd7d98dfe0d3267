package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Aashish1107/TravelAgent/internal/model"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	refreshPath = "/api/auth/refresh"
	// cap on the buffered body of a 401 we may hand back to the caller
	maxUnauthorizedBody = 64 << 10
)

var ErrRefreshFailed = errors.New("token refresh failed")

// SessionClient holds the caller's token pair and wraps every request with
// one refresh and one retry when the API answers 401.
type SessionClient struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenStore
	logger     *zap.Logger
	refreshes  *singleflight.Group
}

type SessionOption func(*SessionClient)

func WithHTTPClient(hc *http.Client) SessionOption {
	return func(c *SessionClient) {
		c.httpClient = hc
	}
}

func WithLogger(logger *zap.Logger) SessionOption {
	return func(c *SessionClient) {
		c.logger = logger
	}
}

// WithRefreshDedup collapses concurrent refreshes of the same refresh token
// into one call. Without it every 401 refreshes on its own.
func WithRefreshDedup() SessionOption {
	return func(c *SessionClient) {
		c.refreshes = &singleflight.Group{}
	}
}

func NewSessionClient(baseURL string, tokens TokenStore, opts ...SessionOption) *SessionClient {
	c := &SessionClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     tokens,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do sends body (JSON-encoded when not nil) to path. On 401 it refreshes at
// most once and retries at most once, returning the retry's response as is.
// If the refresh fails, both tokens are cleared and the original 401 is
// returned. The caller closes the response body.
func (c *SessionClient) Do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	pair, err := c.tokens.Load()
	if err != nil {
		return nil, fmt.Errorf("load tokens: %w", err)
	}

	resp, err := c.send(ctx, method, path, payload, pair.AccessToken)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || isRefreshPath(path) {
		return resp, nil
	}

	if pair.RefreshToken == "" {
		c.clearTokens()
		return resp, nil
	}

	// Free the connection before refreshing; the 401 may still be returned.
	resp, err = bufferResponse(resp)
	if err != nil {
		return nil, err
	}

	fresh, err := c.refresh(ctx, pair.RefreshToken)
	if err != nil {
		// A caller that gave up says nothing about the refresh token.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.Info("token refresh failed, clearing session", zap.Error(err))
		c.clearTokens()
		return resp, nil
	}

	return c.send(ctx, method, path, payload, fresh.AccessToken)
}

// Register creates an account and stores the returned pair.
func (c *SessionClient) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	return c.authenticate(ctx, "/api/auth/register", req, http.StatusCreated)
}

// Login signs in with email and password and stores the returned pair.
func (c *SessionClient) Login(ctx context.Context, email, password string) (*model.AuthResponse, error) {
	return c.authenticate(ctx, "/api/auth/login", model.LoginRequest{Email: email, Password: password}, http.StatusOK)
}

// Logout tells the server and always forgets the local pair. The server keeps
// no token state, so local removal is what actually signs the user out.
func (c *SessionClient) Logout(ctx context.Context) error {
	resp, err := c.Do(ctx, http.MethodPost, "/api/auth/logout", nil)
	clearErr := c.tokens.Clear()
	if err != nil {
		return err
	}
	resp.Body.Close()
	if clearErr != nil {
		return fmt.Errorf("clear tokens: %w", clearErr)
	}
	return nil
}

// CurrentUser fetches GET /api/auth/user through Do.
func (c *SessionClient) CurrentUser(ctx context.Context) (*model.UserResponse, error) {
	resp, err := c.Do(ctx, http.MethodGet, "/api/auth/user", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}
	var user model.UserResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &user, nil
}

func (c *SessionClient) authenticate(ctx context.Context, path string, body any, want int) (*model.AuthResponse, error) {
	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}
	resp, err := c.send(ctx, http.MethodPost, path, payload, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return nil, statusError(resp)
	}
	var out model.AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode auth response: %w", err)
	}
	if err := c.tokens.Save(model.TokenPair{AccessToken: out.AccessToken, RefreshToken: out.RefreshToken}); err != nil {
		return nil, fmt.Errorf("save tokens: %w", err)
	}
	return &out, nil
}

func (c *SessionClient) refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	if c.refreshes == nil {
		return c.doRefresh(ctx, refreshToken)
	}
	// The shared call must not inherit whichever caller started it: one
	// cancellation would fail every waiter. The http client timeout bounds it.
	shared := context.WithoutCancel(ctx)
	ch := c.refreshes.DoChan(refreshToken, func() (any, error) {
		return c.doRefresh(shared, refreshToken)
	})
	select {
	case <-ctx.Done():
		return model.TokenPair{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return model.TokenPair{}, res.Err
		}
		return res.Val.(model.TokenPair), nil
	}
}

func (c *SessionClient) doRefresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	payload, err := encodeBody(model.RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return model.TokenPair{}, err
	}
	resp, err := c.send(ctx, http.MethodPost, refreshPath, payload, "")
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.TokenPair{}, fmt.Errorf("%w: status %d", ErrRefreshFailed, resp.StatusCode)
	}
	var pair model.TokenPair
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return model.TokenPair{}, fmt.Errorf("%w: decode: %v", ErrRefreshFailed, err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return model.TokenPair{}, fmt.Errorf("%w: incomplete token pair", ErrRefreshFailed)
	}
	if err := c.tokens.Save(pair); err != nil {
		return model.TokenPair{}, fmt.Errorf("save tokens: %w", err)
	}
	return pair, nil
}

func (c *SessionClient) send(ctx context.Context, method, path string, payload []byte, accessToken string) (*http.Response, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func (c *SessionClient) clearTokens() {
	if err := c.tokens.Clear(); err != nil {
		c.logger.Warn("clear tokens", zap.Error(err))
	}
}

func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return payload, nil
}

func isRefreshPath(path string) bool {
	p, _, _ := strings.Cut(path, "?")
	return strings.TrimRight(p, "/") == refreshPath
}

func bufferResponse(resp *http.Response) (*http.Response, error) {
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxUnauthorizedBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(data))
	return resp, nil
}

// StatusError is returned by the typed helpers for unexpected statuses.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned status %d", e.Code)
	}
	return fmt.Sprintf("server returned status %d: %s", e.Code, e.Message)
}

func statusError(resp *http.Response) error {
	var body model.ErrorResponse
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxUnauthorizedBody))
	if err := json.Unmarshal(data, &body); err != nil || body.Message == "" {
		body.Message = strings.TrimSpace(string(data))
	}
	return &StatusError{Code: resp.StatusCode, Message: body.Message}
}
