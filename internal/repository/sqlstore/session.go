package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/Rrens/health-insights/internal/domain"
)

// ConversationStore implements domain.ConversationStore
type ConversationStore struct {
	db *DB
}

// NewConversationStore creates a new conversation store
func NewConversationStore(db *DB) *ConversationStore {
	return &ConversationStore{db: db}
}

func (s *ConversationStore) CreateSession(ctx context.Context, session *domain.ChatSession) error {
	_, err := s.db.db.ExecContext(ctx,
		`INSERT INTO chat_sessions (id, user_id, title, created_at) VALUES (?, ?, ?, ?)`,
		session.ID.String(), session.UserID.String(), session.Title, toUnix(session.CreatedAt))
	if err != nil {
		return storeErr("create session", err)
	}
	return nil
}

func (s *ConversationStore) GetSession(ctx context.Context, id uuid.UUID) (*domain.ChatSession, error) {
	var cs domain.ChatSession
	var createdAt int64
	err := s.db.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, created_at FROM chat_sessions WHERE id = ?`, id.String()).
		Scan(&cs.ID, &cs.UserID, &cs.Title, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, storeErr("get session", err)
	}
	cs.CreatedAt = fromUnix(createdAt)
	return &cs, nil
}

func (s *ConversationStore) ListSessions(ctx context.Context, userID uuid.UUID) ([]domain.ChatSession, error) {
	rows, err := s.db.db.QueryContext(ctx, `
		SELECT id, user_id, title, created_at
		FROM chat_sessions
		WHERE user_id = ?
		ORDER BY created_at DESC, seq DESC
	`, userID.String())
	if err != nil {
		return nil, storeErr("list sessions", err)
	}
	defer rows.Close()

	sessions := []domain.ChatSession{}
	for rows.Next() {
		var cs domain.ChatSession
		var createdAt int64
		if err := rows.Scan(&cs.ID, &cs.UserID, &cs.Title, &createdAt); err != nil {
			return nil, storeErr("scan session", err)
		}
		cs.CreatedAt = fromUnix(createdAt)
		sessions = append(sessions, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list sessions", err)
	}
	return sessions, nil
}

// DeleteSession removes the messages and then the session in one transaction
func (s *ConversationStore) DeleteSession(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("begin delete session", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chat_messages WHERE session_id = ?`, id.String()); err != nil {
		return storeErr("delete session messages", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM chat_sessions WHERE id = ?`, id.String())
	if err != nil {
		return storeErr("delete session", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr("delete session", err)
	}
	if n == 0 {
		return domain.ErrSessionNotFound
	}

	if err := tx.Commit(); err != nil {
		return storeErr("commit delete session", err)
	}
	return nil
}
