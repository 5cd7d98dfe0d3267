package model

import (
	"encoding/json"
	"time"
)

const (
	AgentTourist    = "tourist"
	AgentWeather    = "weather"
	AgentSupervisor = "supervisor"
)

type AgentMessageRequest struct {
	Message   string `json:"message" binding:"required"`
	AgentType string `json:"agentType" enums:"tourist,weather,supervisor"`
}

// AgentConversation is one line of a user's log with the agents: either the
// user's message, or an agent reply with its raw payload in Response.
type AgentConversation struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	AgentType string    `json:"agentType"`
	Message   string    `json:"message"`
	Response  string    `json:"response,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type NewAgentConversation struct {
	AgentType string
	Message   string
	Response  string
}

type AgentMessageResponse struct {
	Success        bool            `json:"success"`
	ConversationID int64           `json:"conversationId"`
	Response       json.RawMessage `json:"response" swaggertype:"object"`
}
