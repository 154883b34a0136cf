package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Rrens/health-insights/internal/domain"
)

// ConversationStore implements domain.ConversationStore
type ConversationStore struct {
	pool *pgxpool.Pool
}

// NewConversationStore creates a new conversation store
func NewConversationStore(pool *pgxpool.Pool) *ConversationStore {
	return &ConversationStore{pool: pool}
}

func (s *ConversationStore) CreateSession(ctx context.Context, session *domain.ChatSession) error {
	query := `
		INSERT INTO chat_sessions (id, user_id, title, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.pool.Exec(ctx, query, session.ID, session.UserID, session.Title, session.CreatedAt)
	if err != nil {
		return storeErr("create session", err)
	}
	return nil
}

func (s *ConversationStore) GetSession(ctx context.Context, id uuid.UUID) (*domain.ChatSession, error) {
	query := `
		SELECT id, user_id, title, created_at
		FROM chat_sessions
		WHERE id = $1
	`
	var cs domain.ChatSession
	err := s.pool.QueryRow(ctx, query, id).Scan(&cs.ID, &cs.UserID, &cs.Title, &cs.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, storeErr("get session", err)
	}
	return &cs, nil
}

func (s *ConversationStore) ListSessions(ctx context.Context, userID uuid.UUID) ([]domain.ChatSession, error) {
	query := `
		SELECT id, user_id, title, created_at
		FROM chat_sessions
		WHERE user_id = $1
		ORDER BY created_at DESC, seq DESC
	`
	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, storeErr("list sessions", err)
	}
	defer rows.Close()

	sessions := []domain.ChatSession{}
	for rows.Next() {
		var cs domain.ChatSession
		if err := rows.Scan(&cs.ID, &cs.UserID, &cs.Title, &cs.CreatedAt); err != nil {
			return nil, storeErr("scan session", err)
		}
		sessions = append(sessions, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list sessions", err)
	}
	return sessions, nil
}

// DeleteSession removes the messages and then the session in one transaction
func (s *ConversationStore) DeleteSession(ctx context.Context, id uuid.UUID) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM chat_messages WHERE session_id = $1`, id); err != nil {
			return storeErr("delete session messages", err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM chat_sessions WHERE id = $1`, id)
		if err != nil {
			return storeErr("delete session", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrSessionNotFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, domain.ErrStore) && !errors.Is(err, domain.ErrSessionNotFound) {
		return storeErr("delete session", err)
	}
	return err
}

func (s *ConversationStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return storeErr("ping", err)
	}
	return nil
}
