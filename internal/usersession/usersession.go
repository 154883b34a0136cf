// Package usersession holds the per-sign-in state of a user: the token that
// opened it, the selected conversation session and the analyses run so far.
package usersession

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Rrens/health-insights/internal/domain"
)

// State is the explicit context carried by an authenticated user between requests
type State struct {
	TokenID          string    `json:"token_id"`
	UserID           uuid.UUID `json:"user_id"`
	Email            string    `json:"email"`
	CurrentSessionID uuid.UUID `json:"current_session_id"`
	StartedAt        time.Time `json:"started_at"`
}

// HasCurrentSession reports whether a conversation session is selected
func (s *State) HasCurrentSession() bool {
	return s.CurrentSessionID != uuid.Nil
}

// Store keeps one State per user. Starting a new state discards the previous
// one along with its history. Lookups for a user without state fail with
// domain.ErrUnauthorized.
type Store interface {
	Start(ctx context.Context, state *State) error
	Get(ctx context.Context, userID uuid.UUID) (*State, error)
	SetCurrentSession(ctx context.Context, userID, sessionID uuid.UUID) error
	// AppendHistory adds a record after all earlier ones. History is never reordered.
	AppendHistory(ctx context.Context, userID uuid.UUID, record domain.AnalysisRecord) error
	History(ctx context.Context, userID uuid.UUID) ([]domain.AnalysisRecord, error)
	End(ctx context.Context, userID uuid.UUID) error
}
