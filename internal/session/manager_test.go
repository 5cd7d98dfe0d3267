package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Aashish1107/TravelAgent/internal/config"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.SessionConfig {
	return config.SessionConfig{
		Secret:         "0123456789abcdef0123456789abcdef",
		TTL:            "1h",
		CookieName:     "sid",
		CookieSecure:   "false",
		CookieSameSite: "lax",
	}
}

func newTestManager(t *testing.T) (*Manager, *MemoryStore, *time.Time) {
	t.Helper()
	store := NewMemoryStore(time.Minute)
	m, err := NewManager(store, testConfig())
	require.NoError(t, err)

	clock := time.Now()
	m.now = func() time.Time { return clock }
	store.now = func() time.Time { return clock }
	return m, store, &clock
}

func requestWith(cookies ...*http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	return r
}

func saveSession(t *testing.T, m *Manager, s *Session) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	require.NoError(t, m.Save(context.Background(), w, s))
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestLoadWithoutCookieReturnsNewSession(t *testing.T) {
	m, _, _ := newTestManager(t)

	s, err := m.Load(context.Background(), requestWith())
	require.NoError(t, err)
	assert.True(t, s.IsNew())
	assert.NotEmpty(t, s.ID)
	assert.Empty(t, s.Values)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	m, store, _ := newTestManager(t)
	ctx := context.Background()

	s, err := m.Load(ctx, requestWith())
	require.NoError(t, err)
	s.Set("oauth_state", "abc")
	s.SetUserID(42)

	cookie := saveSession(t, m, s)
	assert.Equal(t, "sid", cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, strings.HasPrefix(cookie.Value, s.ID+"."))
	assert.Equal(t, 1, store.Len())

	loaded, err := m.Load(ctx, requestWith(cookie))
	require.NoError(t, err)
	assert.False(t, loaded.IsNew())
	assert.Equal(t, s.ID, loaded.ID)
	assert.Equal(t, "abc", loaded.Get("oauth_state"))
	id, ok := loaded.UserID()
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)
}

func TestLoadRejectsTamperedCookie(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	s, _ := m.Load(ctx, requestWith())
	s.Set("k", "v")
	cookie := saveSession(t, m, s)

	forged := &http.Cookie{Name: cookie.Name, Value: "other-id" + cookie.Value[strings.LastIndexByte(cookie.Value, '.'):]}
	loaded, err := m.Load(ctx, requestWith(forged))
	require.NoError(t, err)
	assert.True(t, loaded.IsNew())

	unsigned := &http.Cookie{Name: cookie.Name, Value: s.ID}
	loaded, err = m.Load(ctx, requestWith(unsigned))
	require.NoError(t, err)
	assert.True(t, loaded.IsNew())
}

func TestExpiredSessionIsNotLoaded(t *testing.T) {
	m, _, clock := newTestManager(t)
	ctx := context.Background()

	s, _ := m.Load(ctx, requestWith())
	s.Set("k", "v")
	cookie := saveSession(t, m, s)

	*clock = clock.Add(time.Hour)

	loaded, err := m.Load(ctx, requestWith(cookie))
	require.NoError(t, err)
	assert.True(t, loaded.IsNew())
}

func TestSaveExtendsExpiry(t *testing.T) {
	m, _, clock := newTestManager(t)
	ctx := context.Background()

	s, _ := m.Load(ctx, requestWith())
	cookie := saveSession(t, m, s)

	*clock = clock.Add(50 * time.Minute)
	loaded, err := m.Load(ctx, requestWith(cookie))
	require.NoError(t, err)
	require.False(t, loaded.IsNew())
	cookie = saveSession(t, m, loaded)

	*clock = clock.Add(50 * time.Minute)
	loaded, err = m.Load(ctx, requestWith(cookie))
	require.NoError(t, err)
	assert.False(t, loaded.IsNew())
}

func TestDestroyRemovesRecordAndClearsCookie(t *testing.T) {
	m, store, _ := newTestManager(t)
	ctx := context.Background()

	s, _ := m.Load(ctx, requestWith())
	cookie := saveSession(t, m, s)
	loaded, err := m.Load(ctx, requestWith(cookie))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, m.Destroy(ctx, w, loaded))
	assert.Equal(t, 0, store.Len())

	cleared := w.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, -1, cleared[0].MaxAge)

	again, err := m.Load(ctx, requestWith(cookie))
	require.NoError(t, err)
	assert.True(t, again.IsNew())
}

func TestPopRemovesValue(t *testing.T) {
	s := &Session{Values: map[string]string{"state": "x"}}
	assert.Equal(t, "x", s.Pop("state"))
	assert.Equal(t, "", s.Get("state"))
}

func TestNewManagerValidation(t *testing.T) {
	store := NewMemoryStore(time.Minute)

	cfg := testConfig()
	cfg.Secret = "short"
	_, err := NewManager(store, cfg)
	assert.ErrorIs(t, err, ErrMisconfigured)

	cfg = testConfig()
	cfg.CookieSameSite = "none"
	cfg.CookieSecure = "false"
	_, err = NewManager(store, cfg)
	assert.ErrorIs(t, err, ErrMisconfigured)

	cfg = testConfig()
	cfg.TTL = "soon"
	_, err = NewManager(store, cfg)
	assert.ErrorIs(t, err, ErrMisconfigured)

	cfg = testConfig()
	cfg.CookieSameSite = "none"
	cfg.CookieSecure = "true"
	m, err := NewManager(store, cfg)
	require.NoError(t, err)
	assert.Equal(t, http.SameSiteNoneMode, m.cookie.SameSite)
}

type fakePostgresRepo struct {
	rows        map[string][]byte
	expire      map[string]time.Time
	sweptBefore time.Time
}

func newFakePostgresRepo() *fakePostgresRepo {
	return &fakePostgresRepo{rows: map[string][]byte{}, expire: map[string]time.Time{}}
}

func (f *fakePostgresRepo) GetSession(_ context.Context, sid string, now time.Time) ([]byte, error) {
	data, ok := f.rows[sid]
	if !ok || !f.expire[sid].After(now) {
		return nil, pgx.ErrNoRows
	}
	return data, nil
}

func (f *fakePostgresRepo) UpsertSession(_ context.Context, sid string, data []byte, expire time.Time) error {
	f.rows[sid] = data
	f.expire[sid] = expire
	return nil
}

func (f *fakePostgresRepo) DeleteSession(_ context.Context, sid string) error {
	delete(f.rows, sid)
	delete(f.expire, sid)
	return nil
}

func (f *fakePostgresRepo) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	f.sweptBefore = now
	var n int64
	for sid, exp := range f.expire {
		if !exp.After(now) {
			delete(f.rows, sid)
			delete(f.expire, sid)
			n++
		}
	}
	return n, nil
}

func TestPostgresStoreMapsNoRows(t *testing.T) {
	repo := newFakePostgresRepo()
	store := NewPostgresStore(repo)
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "a", []byte(`{}`), time.Now().Add(time.Hour)))
	data, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestPostgresStoreSweepsExpired(t *testing.T) {
	repo := newFakePostgresRepo()
	store := NewPostgresStore(repo)
	ctx := context.Background()

	now := time.Now()
	store.now = func() time.Time { return now }
	require.NoError(t, store.Set(ctx, "old", []byte(`{}`), now.Add(-time.Second)))
	require.NoError(t, store.Set(ctx, "live", []byte(`{}`), now.Add(time.Hour)))

	var _ Sweeper = store
	n, err := store.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, now, repo.sweptBefore)
	assert.Contains(t, repo.rows, "live")
}

func TestRegenerateMovesValuesToNewID(t *testing.T) {
	m, store, _ := newTestManager(t)
	ctx := context.Background()

	s, err := m.Load(ctx, requestWith())
	require.NoError(t, err)
	s.Set("oauth_state", "abc")
	before := saveSession(t, m, s)
	oldID := s.ID

	loaded, err := m.Load(ctx, requestWith(before))
	require.NoError(t, err)
	require.NoError(t, m.Regenerate(ctx, loaded))
	assert.NotEqual(t, oldID, loaded.ID)
	assert.True(t, loaded.IsNew())
	loaded.SetUserID(7)
	after := saveSession(t, m, loaded)
	assert.Equal(t, 1, store.Len())

	stale, err := m.Load(ctx, requestWith(before))
	require.NoError(t, err)
	assert.True(t, stale.IsNew())
	_, ok := stale.UserID()
	assert.False(t, ok)

	fresh, err := m.Load(ctx, requestWith(after))
	require.NoError(t, err)
	assert.Equal(t, "abc", fresh.Get("oauth_state"))
	id, ok := fresh.UserID()
	require.True(t, ok)
	assert.Equal(t, int64(7), id)
}
