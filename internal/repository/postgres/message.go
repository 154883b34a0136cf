package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/Rrens/health-insights/internal/domain"
)

// AppendMessage inserts a message. The session foreign key rejects messages
// for sessions that do not exist.
func (s *ConversationStore) AppendMessage(ctx context.Context, message *domain.Message) error {
	query := `
		INSERT INTO chat_messages (id, session_id, role, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.pool.Exec(ctx, query,
		message.ID,
		message.SessionID,
		string(message.Role),
		message.Content,
		message.CreatedAt,
	)
	if err != nil {
		if pgCode(err) == codeForeignKeyViolation {
			return domain.ErrSessionNotFound
		}
		return storeErr("append message", err)
	}
	return nil
}

// ListMessages returns the session's messages in creation order
func (s *ConversationStore) ListMessages(ctx context.Context, sessionID uuid.UUID) ([]domain.Message, error) {
	query := `
		SELECT id, session_id, role, content, created_at
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY created_at ASC, seq ASC
	`
	rows, err := s.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, storeErr("list messages", err)
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		var m domain.Message
		var roleStr string

		if err := rows.Scan(&m.ID, &m.SessionID, &roleStr, &m.Content, &m.CreatedAt); err != nil {
			return nil, storeErr("scan message", err)
		}
		m.Role = domain.MessageRole(roleStr)
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list messages", err)
	}
	return messages, nil
}
