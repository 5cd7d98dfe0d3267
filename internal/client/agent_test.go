package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Aashish1107/TravelAgent/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAgentServer(t *testing.T, handler http.HandlerFunc) *AgentClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewAgentClient(config.AgentConfig{BaseURL: srv.URL + "/"})
}

func TestAgentClientFindTouristSpots(t *testing.T) {
	var got map[string]any
	c := newAgentServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tourist-spots", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"success":true,"location":"Lisbon","spots":[{"name":"Belem Tower"}],"count":1}`)
	})

	lat, lng := 38.69, -9.21
	spots, err := c.FindTouristSpots(context.Background(), "Lisbon", &lat, &lng)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"Belem Tower"}]`, string(spots))
	assert.Equal(t, "Lisbon", got["location"])
	assert.Equal(t, 38.69, got["latitude"])
	assert.Equal(t, 5.0, got["radius_km"])
	assert.Equal(t, 20.0, got["max_results"])
}

func TestAgentClientSendMessage(t *testing.T) {
	var got agentMessageRequest
	c := newAgentServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/agent-message", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"success":true,"agent":"weather","response":{"agent":"weather","message":"Sunny"}}`)
	})

	reply, err := c.SendMessage(context.Background(), 42, "weather", "Will it rain?")
	require.NoError(t, err)
	assert.JSONEq(t, `{"agent":"weather","message":"Sunny"}`, string(reply))
	assert.Equal(t, "weather", got.AgentType)
	assert.Equal(t, "Will it rain?", got.Message)
	assert.Equal(t, 42.0, got.Context["userId"])
}

func TestAgentClientErrors(t *testing.T) {
	c := newAgentServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/weather":
			_, _ = io.WriteString(w, `{"success":true}`)
		default:
			http.Error(w, `{"detail":"Unknown agent type: pirate"}`, http.StatusBadRequest)
		}
	})

	_, err := c.SendMessage(context.Background(), 1, "pirate", "ahoy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")

	_, err = c.GetWeather(context.Background(), "Lisbon")
	assert.ErrorContains(t, err, "no weather")

	assert.False(t, NewAgentClient(config.AgentConfig{}).IsConfigured())
}
