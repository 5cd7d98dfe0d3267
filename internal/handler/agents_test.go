package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/Aashish1107/TravelAgent/internal/model"
	"github.com/Aashish1107/TravelAgent/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeConversationRepo struct {
	mu        sync.Mutex
	nextID    int64
	entries   []model.AgentConversation
	lastLimit int
}

func (f *fakeConversationRepo) SaveAgentConversation(_ context.Context, userID int64, conv model.NewAgentConversation) (*model.AgentConversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	entry := model.AgentConversation{
		ID:        f.nextID,
		UserID:    userID,
		AgentType: conv.AgentType,
		Message:   conv.Message,
		Response:  conv.Response,
		CreatedAt: time.Now(),
	}
	f.entries = append(f.entries, entry)
	return &entry, nil
}

func (f *fakeConversationRepo) ListAgentConversations(_ context.Context, userID int64, limit int) ([]model.AgentConversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLimit = limit
	out := []model.AgentConversation{}
	for _, e := range f.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeMessenger struct {
	reply      json.RawMessage
	err        error
	lastUserID int64
	lastAgent  string
}

func (f *fakeMessenger) IsConfigured() bool { return true }

func (f *fakeMessenger) SendMessage(_ context.Context, userID int64, agentType, _ string) (json.RawMessage, error) {
	f.lastUserID = userID
	f.lastAgent = agentType
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

func newAgentRoutes(t *testing.T, ts *testServer, agent service.AgentMessenger) *fakeConversationRepo {
	t.Helper()
	repo := &fakeConversationRepo{}
	verifier := service.NewAuthService(ts.users, ts.tokens, nil, nil, nil)
	h := NewAgentHandler(service.NewAgentService(repo, agent, zap.NewNop()), zap.NewNop())

	api := ts.router.Group("/api/agents", RequireAuth(verifier))
	api.POST("/message", h.SendMessage)
	api.GET("/conversations", h.ListConversations)
	return repo
}

func TestAgentConversationsAreScopedToAuthenticatedUser(t *testing.T) {
	ts := newTestServer(t)
	agent := &fakeMessenger{reply: json.RawMessage(`{"agent":"tourist","message":"I found 3 tourist attractions near Lisbon"}`)}
	repo := newAgentRoutes(t, ts, agent)

	alice := ts.register(t, "alice@example.com", "correct horse")
	mallory := ts.register(t, "mallory@example.com", "correct horse")

	w := ts.do(http.MethodPost, "/api/agents/message", map[string]any{
		"message":   "What should I see in Lisbon?",
		"agentType": "tourist",
		"userId":    mallory.User.ID,
	}, bearer(alice.AccessToken))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp model.AgentMessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.JSONEq(t, string(agent.reply), string(resp.Response))
	assert.Equal(t, alice.User.ID, agent.lastUserID)

	// the user's message and the agent's reply are both logged
	require.Len(t, repo.entries, 2)
	assert.Equal(t, resp.ConversationID, repo.entries[0].ID)
	assert.Equal(t, "What should I see in Lisbon?", repo.entries[0].Message)
	assert.Equal(t, "I found 3 tourist attractions near Lisbon", repo.entries[1].Message)
	for _, e := range repo.entries {
		assert.Equal(t, alice.User.ID, e.UserID)
	}

	w = ts.do(http.MethodGet, "/api/agents/conversations", nil, bearer(mallory.AccessToken))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = ts.do(http.MethodGet, "/api/agents/conversations?limit=1", nil, bearer(alice.AccessToken))
	require.Equal(t, http.StatusOK, w.Code)
	var log []model.AgentConversation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &log))
	require.Len(t, log, 1)
	assert.Equal(t, repo.entries[1].ID, log[0].ID)

	w = ts.do(http.MethodGet, "/api/agents/conversations", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAgentMessageDefaultsAndOutage(t *testing.T) {
	ts := newTestServer(t)
	agent := &fakeMessenger{err: errors.New("connection refused")}
	repo := newAgentRoutes(t, ts, agent)
	alice := ts.register(t, "alice@example.com", "correct horse")

	w := ts.do(http.MethodPost, "/api/agents/message", map[string]any{"message": "Plan a weekend in Porto"}, bearer(alice.AccessToken))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp model.AgentMessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, model.AgentSupervisor, agent.lastAgent)
	assert.Contains(t, string(resp.Response), "Agents are processing your request")
	assert.Contains(t, string(resp.Response), `"agent":"supervisor"`)
	require.Len(t, repo.entries, 1)
	assert.Equal(t, model.AgentSupervisor, repo.entries[0].AgentType)
}

func TestAgentRoutesValidation(t *testing.T) {
	ts := newTestServer(t)
	repo := newAgentRoutes(t, ts, &fakeMessenger{reply: json.RawMessage(`{"message":"hi"}`)})
	alice := ts.register(t, "alice@example.com", "correct horse")

	for _, body := range []map[string]any{
		{},
		{"message": "   "},
		{"message": "hello", "agentType": "travel-agent"},
	} {
		w := ts.do(http.MethodPost, "/api/agents/message", body, bearer(alice.AccessToken))
		assert.Equal(t, http.StatusBadRequest, w.Code, "%v", body)
	}
	assert.Empty(t, repo.entries)

	for _, limit := range []string{"abc", "0", "-5"} {
		w := ts.do(http.MethodGet, "/api/agents/conversations?limit="+limit, nil, bearer(alice.AccessToken))
		assert.Equal(t, http.StatusBadRequest, w.Code, limit)
	}

	w := ts.do(http.MethodGet, "/api/agents/conversations", nil, bearer(alice.AccessToken))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.DefaultConversationLimit, repo.lastLimit)

	w = ts.do(http.MethodGet, "/api/agents/conversations?limit=5000", nil, bearer(alice.AccessToken))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.MaxConversationLimit, repo.lastLimit)
}
