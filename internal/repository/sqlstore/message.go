package sqlstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/Rrens/health-insights/internal/domain"
)

// AppendMessage inserts a message. The session foreign key rejects messages
// for sessions that do not exist.
func (s *ConversationStore) AppendMessage(ctx context.Context, message *domain.Message) error {
	_, err := s.db.db.ExecContext(ctx,
		`INSERT INTO chat_messages (id, session_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		message.ID.String(), message.SessionID.String(), string(message.Role), message.Content, toUnix(message.CreatedAt))
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrSessionNotFound
		}
		return storeErr("append message", err)
	}
	return nil
}

// ListMessages returns the session's messages in creation order
func (s *ConversationStore) ListMessages(ctx context.Context, sessionID uuid.UUID) ([]domain.Message, error) {
	rows, err := s.db.db.QueryContext(ctx, `
		SELECT id, session_id, role, content, created_at
		FROM chat_messages
		WHERE session_id = ?
		ORDER BY created_at ASC, seq ASC
	`, sessionID.String())
	if err != nil {
		return nil, storeErr("list messages", err)
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		var m domain.Message
		var roleStr string
		var createdAt int64
		if err := rows.Scan(&m.ID, &m.SessionID, &roleStr, &m.Content, &createdAt); err != nil {
			return nil, storeErr("scan message", err)
		}
		m.Role = domain.MessageRole(roleStr)
		m.CreatedAt = fromUnix(createdAt)
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list messages", err)
	}
	return messages, nil
}

func (s *ConversationStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
