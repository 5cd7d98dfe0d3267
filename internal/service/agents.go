package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Aashish1107/TravelAgent/internal/model"
	"go.uber.org/zap"
)

const (
	DefaultConversationLimit = 50
	MaxConversationLimit     = 200
	maxAgentMessageLength    = 4000
)

type ConversationRepo interface {
	SaveAgentConversation(ctx context.Context, userID int64, conv model.NewAgentConversation) (*model.AgentConversation, error)
	ListAgentConversations(ctx context.Context, userID int64, limit int) ([]model.AgentConversation, error)
}

type AgentMessenger interface {
	IsConfigured() bool
	SendMessage(ctx context.Context, userID int64, agentType, message string) (json.RawMessage, error)
}

// AgentService relays a user's messages to the agents and keeps the
// exchange in that user's conversation log.
type AgentService struct {
	repo   ConversationRepo
	agent  AgentMessenger
	logger *zap.Logger
}

func NewAgentService(repo ConversationRepo, agent AgentMessenger, logger *zap.Logger) *AgentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AgentService{repo: repo, agent: agent, logger: logger}
}

// SendMessage stores the message, then the agent's reply if one came back.
// When the agents are unreachable the caller gets a holding reply.
func (s *AgentService) SendMessage(ctx context.Context, userID int64, req model.AgentMessageRequest) (*model.AgentMessageResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" || len(message) > maxAgentMessageLength {
		return nil, ErrInvalidInput
	}
	agentType := req.AgentType
	switch agentType {
	case "":
		agentType = model.AgentSupervisor
	case model.AgentTourist, model.AgentWeather, model.AgentSupervisor:
	default:
		return nil, ErrInvalidInput
	}

	conv, err := s.repo.SaveAgentConversation(ctx, userID, model.NewAgentConversation{
		AgentType: agentType,
		Message:   message,
	})
	if err != nil {
		return nil, fmt.Errorf("save agent message: %w", err)
	}

	reply := s.ask(ctx, userID, agentType, message)
	if reply == nil {
		reply, err = json.Marshal(map[string]string{
			"message": "Message received. Agents are processing your request...",
			"agent":   agentType,
		})
		if err != nil {
			return nil, err
		}
	}

	return &model.AgentMessageResponse{
		Success:        true,
		ConversationID: conv.ID,
		Response:       reply,
	}, nil
}

// Conversations returns the newest entries first. limit 0 means the default.
func (s *AgentService) Conversations(ctx context.Context, userID int64, limit int) ([]model.AgentConversation, error) {
	switch {
	case limit == 0:
		limit = DefaultConversationLimit
	case limit < 0:
		return nil, ErrInvalidInput
	case limit > MaxConversationLimit:
		limit = MaxConversationLimit
	}
	return s.repo.ListAgentConversations(ctx, userID, limit)
}

func (s *AgentService) ask(ctx context.Context, userID int64, agentType, message string) json.RawMessage {
	if s.agent == nil || !s.agent.IsConfigured() {
		return nil
	}
	reply, err := s.agent.SendMessage(ctx, userID, agentType, message)
	if err != nil {
		s.logger.Warn("agent message failed",
			zap.String("agent", agentType),
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return nil
	}

	var summary struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(reply, &summary)
	if summary.Message == "" {
		summary.Message = "Agent response received"
	}
	if _, err := s.repo.SaveAgentConversation(ctx, userID, model.NewAgentConversation{
		AgentType: agentType,
		Message:   summary.Message,
		Response:  string(reply),
	}); err != nil {
		s.logger.Error("save agent reply", zap.Int64("user_id", userID), zap.Error(err))
	}
	return reply
}
