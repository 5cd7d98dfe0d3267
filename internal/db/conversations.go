package db

import (
	"context"

	"github.com/Aashish1107/TravelAgent/internal/model"
)

const conversationColumns = `id, user_id, agent_type, message, COALESCE(response, ''), created_at`

func (db *Postgres) SaveAgentConversation(ctx context.Context, userID int64, conv model.NewAgentConversation) (*model.AgentConversation, error) {
	query := `
		INSERT INTO agent_conversations (user_id, agent_type, message, response, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NOW())
		RETURNING ` + conversationColumns
	return scanConversation(db.Pool.QueryRow(ctx, query, userID, conv.AgentType, conv.Message, conv.Response))
}

// ListAgentConversations returns the newest limit entries first.
func (db *Postgres) ListAgentConversations(ctx context.Context, userID int64, limit int) ([]model.AgentConversation, error) {
	query := `
		SELECT ` + conversationColumns + `
		FROM agent_conversations
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	rows, err := db.Pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []model.AgentConversation{}
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *conv)
	}
	return list, rows.Err()
}

func scanConversation(row rowScanner) (*model.AgentConversation, error) {
	var conv model.AgentConversation
	err := row.Scan(
		&conv.ID,
		&conv.UserID,
		&conv.AgentType,
		&conv.Message,
		&conv.Response,
		&conv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &conv, nil
}
