package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SessionTitleLayout formats the default title of a conversation session
const SessionTitleLayout = "02-01-2006 | 15:04:05"

// ChatSession represents a conversation thread owned by one user
type ChatSession struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// DefaultSessionTitle returns the title used when none is supplied
func DefaultSessionTitle(createdAt time.Time) string {
	return createdAt.Format(SessionTitleLayout)
}

// ConversationStore is the durable store for sessions and their messages.
// Implementations must return errors wrapping ErrStore on any backend failure.
type ConversationStore interface {
	CreateSession(ctx context.Context, session *ChatSession) error
	GetSession(ctx context.Context, id uuid.UUID) (*ChatSession, error)
	// ListSessions returns the user's sessions, most recent first.
	ListSessions(ctx context.Context, userID uuid.UUID) ([]ChatSession, error)
	// AppendMessage fails with ErrSessionNotFound when the session does not exist.
	AppendMessage(ctx context.Context, message *Message) error
	// ListMessages returns the session's messages, oldest first.
	ListMessages(ctx context.Context, sessionID uuid.UUID) ([]Message, error)
	// DeleteSession removes the session and all its messages atomically.
	DeleteSession(ctx context.Context, id uuid.UUID) error
	Ping(ctx context.Context) error
}
