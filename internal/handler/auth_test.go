package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Aashish1107/TravelAgent/internal/config"
	"github.com/Aashish1107/TravelAgent/internal/model"
	"github.com/Aashish1107/TravelAgent/internal/service"
	"github.com/Aashish1107/TravelAgent/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserStore struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{nextID: 1, byID: map[int64]*model.User{}}
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserStore) GetUserByProviderID(_ context.Context, providerID string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.ProviderID != "" && u.ProviderID == providerID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserStore) GetUserByID(_ context.Context, userID int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) CreateUser(_ context.Context, nu model.NewUser) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == nu.Email {
			return nil, &pgconn.PgError{Code: "23505"}
		}
	}
	u := &model.User{
		ID:           f.nextID,
		Email:        nu.Email,
		PasswordHash: nu.PasswordHash,
		FirstName:    nu.FirstName,
		LastName:     nu.LastName,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	f.byID[u.ID] = u
	f.nextID++
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) UpsertUserByProviderID(_ context.Context, p model.FederatedProfile) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.ProviderID == p.ProviderID || u.Email == p.Email {
			u.ProviderID = p.ProviderID
			cp := *u
			return &cp, nil
		}
	}
	u := &model.User{
		ID:              f.nextID,
		Email:           p.Email,
		FirstName:       p.FirstName,
		LastName:        p.LastName,
		ProfileImageURL: p.PictureURL,
		ProviderID:      p.ProviderID,
		IsVerified:      true,
	}
	f.byID[u.ID] = u
	f.nextID++
	cp := *u
	return &cp, nil
}

type fakeProvider struct {
	lastState    string
	lastNonce    string
	lastVerifier string
	profile      *model.FederatedProfile
	err          error
}

func (p *fakeProvider) Name() string { return service.StrategyGoogle }

func (p *fakeProvider) AuthCodeURL(state, nonce, verifier string) string {
	p.lastState, p.lastNonce, p.lastVerifier = state, nonce, verifier
	return "https://provider.example/auth?state=" + url.QueryEscape(state)
}

func (p *fakeProvider) Exchange(_ context.Context, code, verifier, nonce string) (*model.FederatedProfile, error) {
	if p.err != nil {
		return nil, p.err
	}
	if code != "good-code" || verifier != p.lastVerifier || nonce != p.lastNonce {
		return nil, service.ErrInvalidCredentials
	}
	return p.profile, nil
}

type testServer struct {
	router   *gin.Engine
	users    *fakeUserStore
	tokens   *service.TokenCodec
	provider *fakeProvider
	now      time.Time
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ts := &testServer{
		users: newFakeUserStore(),
		// whole second so exp lands exactly on a boundary we can step to
		now: time.Now().Truncate(time.Second),
		provider: &fakeProvider{profile: &model.FederatedProfile{
			Provider:   service.StrategyGoogle,
			ProviderID: "google-sub-1",
			Email:      "bob@example.com",
			FirstName:  "Bob",
		}},
	}

	tokens, err := service.NewTokenCodec(config.AuthConfig{
		JWTSecret:        "access-secret-for-tests",
		JWTRefreshSecret: "refresh-secret-for-tests",
		JWTAccessTTL:     "15m",
		JWTRefreshTTL:    "168h",
	}, service.WithClock(func() time.Time { return ts.now }))
	require.NoError(t, err)
	ts.tokens = tokens

	hasher, err := service.NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)

	strategies := service.Strategies{
		service.StrategyLocal:  service.NewLocalStrategy(ts.users, hasher),
		service.StrategyGoogle: service.NewFederatedStrategy(ts.users),
	}
	logger := zap.NewNop()
	authSvc := service.NewAuthService(ts.users, tokens, hasher, strategies, logger)

	sessions, err := session.NewManager(session.NewMemoryStore(time.Minute), config.SessionConfig{
		Secret:         "0123456789abcdef0123456789abcdef",
		TTL:            "1h",
		CookieName:     "sid",
		CookieSecure:   "false",
		CookieSameSite: "lax",
	})
	require.NoError(t, err)

	auth := NewAuthHandler(authSvc, sessions, logger)
	oauth := NewOAuthHandler(authSvc, ts.provider, sessions, "http://frontend.test/", logger)
	weather := NewWeatherHandler(service.NewWeatherService(nil, logger), logger)

	r := gin.New()
	r.POST("/api/auth/register", auth.Register)
	r.POST("/api/auth/login", auth.Login)
	r.POST("/api/auth/refresh", auth.Refresh)
	r.POST("/api/auth/logout", auth.Logout)
	r.GET("/api/auth/user", RequireAuth(authSvc), auth.Me)
	r.GET("/api/auth/google", oauth.Start)
	r.GET("/api/auth/google/callback", oauth.Callback)
	r.GET("/api/weather/:location", OptionalAuth(authSvc), weather.GetWeather)
	r.GET("/api/whoami", OptionalAuth(authSvc), func(c *gin.Context) {
		id, ok := currentUserID(c)
		c.JSON(http.StatusOK, gin.H{"userId": id, "authenticated": ok})
	})
	ts.router = r
	return ts
}

func (ts *testServer) do(method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func bearer(token string) http.Header {
	return http.Header{"Authorization": []string{"Bearer " + token}}
}

func (ts *testServer) register(t *testing.T, email, password string) model.AuthResponse {
	t.Helper()
	w := ts.do(http.MethodPost, "/api/auth/register", model.RegisterRequest{Email: email, Password: password, FirstName: "Alice"}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp model.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestRegisterReturnsUserAndTokens(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.register(t, "Alice@Example.com", "correct horse")
	assert.Equal(t, "User registered successfully", resp.Message)
	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	login := ts.do(http.MethodPost, "/api/auth/login", model.LoginRequest{Email: "alice@example.com", Password: "correct horse"}, nil)
	assert.NotContains(t, login.Body.String(), "$2a$")

	claims, err := ts.tokens.Verify(resp.AccessToken, model.TokenKindAccess)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice@example.com", "correct horse")

	w := ts.do(http.MethodPost, "/api/auth/register", model.RegisterRequest{Email: "ALICE@example.com", Password: "another pass"}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	ts := newTestServer(t)

	cases := []model.RegisterRequest{
		{Email: "", Password: "correct horse"},
		{Email: "not-an-email", Password: "correct horse"},
		{Email: "alice@example.com", Password: "short"},
		{Email: "alice@example.com", Password: strings.Repeat("x", 73)},
	}
	for _, req := range cases {
		w := ts.do(http.MethodPost, "/api/auth/register", req, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, "email=%q", req.Email)
	}
}

func TestLoginSuccessAndWrongPassword(t *testing.T) {
	ts := newTestServer(t)
	registered := ts.register(t, "alice@example.com", "correct horse")

	w := ts.do(http.MethodPost, "/api/auth/login", model.LoginRequest{Email: "alice@example.com", Password: "correct horse"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp model.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Login successful", resp.Message)
	claims, err := ts.tokens.Verify(resp.AccessToken, model.TokenKindAccess)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.UserID)

	w = ts.do(http.MethodPost, "/api/auth/login", model.LoginRequest{Email: "alice@example.com", Password: "wrong horse"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginDoesNotRevealUnknownEmail(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice@example.com", "correct horse")

	wrongPassword := ts.do(http.MethodPost, "/api/auth/login", model.LoginRequest{Email: "alice@example.com", Password: "wrong horse"}, nil)
	unknownUser := ts.do(http.MethodPost, "/api/auth/login", model.LoginRequest{Email: "nobody@example.com", Password: "wrong horse"}, nil)

	assert.Equal(t, wrongPassword.Code, unknownUser.Code)
	assert.JSONEq(t, wrongPassword.Body.String(), unknownUser.Body.String())
}

func TestRequireAuth(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.register(t, "alice@example.com", "correct horse")

	w := ts.do(http.MethodGet, "/api/auth/user", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Access token required")

	w = ts.do(http.MethodGet, "/api/auth/user", nil, bearer("garbage"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid or expired token")

	// a refresh token is not an access token
	w = ts.do(http.MethodGet, "/api/auth/user", nil, bearer(resp.RefreshToken))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(http.MethodGet, "/api/auth/user", nil, bearer(resp.AccessToken))
	require.Equal(t, http.StatusOK, w.Code)
	var user model.UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, resp.User.ID, user.ID)
}

func TestMeReturnsNotFoundForDeletedUser(t *testing.T) {
	ts := newTestServer(t)
	token, err := ts.tokens.Issue(999, model.TokenKindAccess)
	require.NoError(t, err)

	w := ts.do(http.MethodGet, "/api/auth/user", nil, bearer(token))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExpiredAccessTokenThenRefreshAndRetry(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.register(t, "alice@example.com", "correct horse")

	// exactly at exp the token is already expired
	ts.now = ts.now.Add(15 * time.Minute)
	w := ts.do(http.MethodGet, "/api/auth/user", nil, bearer(resp.AccessToken))
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(http.MethodPost, "/api/auth/refresh", model.RefreshRequest{RefreshToken: resp.RefreshToken}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pair model.TokenPair
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pair))
	assert.NotEqual(t, resp.AccessToken, pair.AccessToken)
	assert.NotEqual(t, resp.RefreshToken, pair.RefreshToken)

	w = ts.do(http.MethodGet, "/api/auth/user", nil, bearer(pair.AccessToken))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRefreshRejectsAccessTokenAndMissingToken(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.register(t, "alice@example.com", "correct horse")

	w := ts.do(http.MethodPost, "/api/auth/refresh", model.RefreshRequest{RefreshToken: resp.AccessToken}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(http.MethodPost, "/api/auth/refresh", model.RefreshRequest{}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Refresh token required")
}

func TestOptionalAuthServesAnonymousCallers(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.register(t, "alice@example.com", "correct horse")

	w := ts.do(http.MethodGet, "/api/weather/Paris", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"location":"Paris"`)

	w = ts.do(http.MethodGet, "/api/weather/Paris", nil, bearer("garbage"))
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(http.MethodGet, "/api/whoami", nil, bearer("garbage"))
	assert.JSONEq(t, `{"userId":0,"authenticated":false}`, w.Body.String())

	w = ts.do(http.MethodGet, "/api/whoami", nil, bearer(resp.AccessToken))
	var body struct {
		UserID        int64 `json:"userId"`
		Authenticated bool  `json:"authenticated"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Authenticated)
	assert.Equal(t, resp.User.ID, body.UserID)
}

func TestLogoutLeavesIssuedTokensValid(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.register(t, "alice@example.com", "correct horse")

	w := ts.do(http.MethodPost, "/api/auth/logout", nil, bearer(resp.AccessToken))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Logout successful")

	w = ts.do(http.MethodGet, "/api/auth/user", nil, bearer(resp.AccessToken))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBearerToken(t *testing.T) {
	token, ok := bearerToken("Bearer abc.def")
	assert.True(t, ok)
	assert.Equal(t, "abc.def", token)

	token, ok = bearerToken("bearer  abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	for _, h := range []string{"", "Bearer", "Bearer ", "Basic abc", "abc"} {
		_, ok := bearerToken(h)
		assert.False(t, ok, "header %q", h)
	}
}

func TestIdentityFromContext(t *testing.T) {
	_, ok := IdentityFrom(context.Background())
	assert.False(t, ok)

	ctx := WithIdentity(context.Background(), model.Identity{UserID: 7})
	identity, ok := IdentityFrom(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(7), identity.UserID)
}
