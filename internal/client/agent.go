// Client for the Python agent service.
//
// Env:
//   - PYTHON_SERVER_URL: agent base URL (default http://localhost:8000)

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

	"github.com/Aashish1107/TravelAgent/internal/config"
	"github.com/Aashish1107/TravelAgent/internal/model"
)

const (
	touristRadiusKM   = 5.0
	touristMaxResults = 20
)

type AgentClient struct {
	baseURL    string
	httpClient *http.Client
}

type locationRequest struct {
	Location   string   `json:"location"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	RadiusKM   float64  `json:"radius_km,omitempty"`
	MaxResults int      `json:"max_results,omitempty"`
}

type weatherResponse struct {
	Weather *model.Weather `json:"weather"`
}

type touristSpotsResponse struct {
	Spots json.RawMessage `json:"spots"`
}

type agentMessageRequest struct {
	Message   string         `json:"message"`
	AgentType string         `json:"agent_type"`
	Context   map[string]any `json:"context"`
}

type agentMessageResponse struct {
	Response json.RawMessage `json:"response"`
}

func NewAgentClient(cfg config.AgentConfig) *AgentClient {
	return &AgentClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *AgentClient) IsConfigured() bool {
	return c.baseURL != ""
}

// GetWeather calls POST /api/weather and unwraps the "weather" field.
func (c *AgentClient) GetWeather(ctx context.Context, location string) (*model.Weather, error) {
	return c.GetWeatherAt(ctx, location, nil, nil)
}

// GetWeatherAt is GetWeather with optional coordinates.
func (c *AgentClient) GetWeatherAt(ctx context.Context, location string, lat, lng *float64) (*model.Weather, error) {
	var out weatherResponse
	req := locationRequest{Location: location, Latitude: lat, Longitude: lng}
	if err := c.postJSON(ctx, "/api/weather", req, &out); err != nil {
		return nil, err
	}
	if out.Weather == nil {
		return nil, errors.New("agent response has no weather")
	}
	return out.Weather, nil
}

// FindTouristSpots calls POST /api/tourist-spots and returns the "spots"
// array as the agent sent it.
func (c *AgentClient) FindTouristSpots(ctx context.Context, location string, lat, lng *float64) (json.RawMessage, error) {
	var out touristSpotsResponse
	req := locationRequest{
		Location:   location,
		Latitude:   lat,
		Longitude:  lng,
		RadiusKM:   touristRadiusKM,
		MaxResults: touristMaxResults,
	}
	if err := c.postJSON(ctx, "/api/tourist-spots", req, &out); err != nil {
		return nil, err
	}
	if len(out.Spots) == 0 || string(out.Spots) == "null" {
		return nil, errors.New("agent response has no spots")
	}
	return out.Spots, nil
}

// SendMessage calls POST /api/agent-message and returns the agent's
// "response" object untouched.
func (c *AgentClient) SendMessage(ctx context.Context, userID int64, agentType, message string) (json.RawMessage, error) {
	var out agentMessageResponse
	req := agentMessageRequest{
		Message:   message,
		AgentType: agentType,
		Context:   map[string]any{"userId": userID},
	}
	if err := c.postJSON(ctx, "/api/agent-message", req, &out); err != nil {
		return nil, err
	}
	if len(out.Response) == 0 || string(out.Response) == "null" {
		return nil, errors.New("agent response is empty")
	}
	return out.Response, nil
}

func (c *AgentClient) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal agent request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request to agent: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("agent returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode agent response: %w", err)
	}
	return nil
}
