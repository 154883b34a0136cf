package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/health-insights/internal/domain"
	"github.com/Rrens/health-insights/internal/usersession"
)

// CreateSessionInput represents a request to open a conversation session
type CreateSessionInput struct {
	Title string `json:"title" validate:"max=255"`
}

// ConversationService manages a user's conversation sessions and their messages
type ConversationService struct {
	store    domain.ConversationStore
	sessions usersession.Store
	now      func() time.Time
}

// NewConversationService creates a new conversation service
func NewConversationService(store domain.ConversationStore, sessions usersession.Store) *ConversationService {
	return &ConversationService{
		store:    store,
		sessions: sessions,
		now:      time.Now,
	}
}

// CreateSession opens a session and makes it the user's current one
func (s *ConversationService) CreateSession(ctx context.Context, userID uuid.UUID, input CreateSessionInput) (*domain.ChatSession, error) {
	if err := Validate(input); err != nil {
		return nil, err
	}

	createdAt := s.now()
	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = domain.DefaultSessionTitle(createdAt)
	}

	session := &domain.ChatSession{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		CreatedAt: createdAt.UTC(),
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	if err := s.sessions.SetCurrentSession(ctx, userID, session.ID); err != nil {
		return nil, err
	}

	log.Debug().Str("session_id", session.ID.String()).Str("user_id", userID.String()).Msg("Conversation session created")
	return session, nil
}

// ListSessions returns the user's sessions, most recent first
func (s *ConversationService) ListSessions(ctx context.Context, userID uuid.UUID) ([]domain.ChatSession, error) {
	return s.store.ListSessions(ctx, userID)
}

// SelectSession makes an owned session the current one
func (s *ConversationService) SelectSession(ctx context.Context, userID, sessionID uuid.UUID) (*domain.ChatSession, error) {
	session, err := s.owned(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.SetCurrentSession(ctx, userID, session.ID); err != nil {
		return nil, err
	}
	return session, nil
}

// Messages returns the messages of an owned session, oldest first
func (s *ConversationService) Messages(ctx context.Context, userID, sessionID uuid.UUID) ([]domain.Message, error) {
	if _, err := s.owned(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	return s.store.ListMessages(ctx, sessionID)
}

// DeleteSession removes an owned session with its messages, then verifies no
// message survived the delete
func (s *ConversationService) DeleteSession(ctx context.Context, userID, sessionID uuid.UUID) error {
	if _, err := s.owned(ctx, userID, sessionID); err != nil {
		return err
	}

	if err := s.store.DeleteSession(ctx, sessionID); err != nil {
		log.Error().Err(err).Str("session_id", sessionID.String()).Msg("Failed to delete session")
		return err
	}

	leftover, err := s.store.ListMessages(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("%w: failed to verify session deletion: %w", domain.ErrOrphanedRecords, err)
	}
	if len(leftover) > 0 {
		log.Error().Str("session_id", sessionID.String()).Int("messages", len(leftover)).Msg("Messages survived session deletion")
		return fmt.Errorf("%w: %d messages remain for session %s", domain.ErrOrphanedRecords, len(leftover), sessionID)
	}

	state, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return err
	}
	if state.CurrentSessionID == sessionID {
		if err := s.sessions.SetCurrentSession(ctx, userID, uuid.Nil); err != nil {
			return err
		}
	}

	log.Info().Str("session_id", sessionID.String()).Msg("Conversation session deleted")
	return nil
}

// ResolveSession returns the requested session when the user owns it, or the
// user's current session when none is requested
func (s *ConversationService) ResolveSession(ctx context.Context, userID, requested uuid.UUID) (*domain.ChatSession, error) {
	if requested != uuid.Nil {
		return s.owned(ctx, userID, requested)
	}

	state, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !state.HasCurrentSession() {
		return nil, domain.ErrNoActiveSession
	}

	session, err := s.owned(ctx, userID, state.CurrentSessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil, domain.ErrNoActiveSession
	}
	return session, err
}

// owned loads a session and hides sessions of other users behind ErrSessionNotFound
func (s *ConversationService) owned(ctx context.Context, userID, sessionID uuid.UUID) (*domain.ChatSession, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}
