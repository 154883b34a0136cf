package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/health-insights/internal/domain"
	"github.com/Rrens/health-insights/internal/usersession"
)

func newConversationFixture(t *testing.T) (*ConversationService, *MockConversationStore, *usersession.Memory, uuid.UUID) {
	t.Helper()

	store := new(MockConversationStore)
	sessions := usersession.NewMemory()
	userID := uuid.New()
	require.NoError(t, sessions.Start(context.Background(), &usersession.State{TokenID: "jti", UserID: userID}))

	return NewConversationService(store, sessions), store, sessions, userID
}

func TestConversationService_CreateSession(t *testing.T) {
	svc, store, sessions, userID := newConversationFixture(t)
	svc.now = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC) }
	ctx := context.Background()

	store.On("CreateSession", ctx, mock.AnythingOfType("*domain.ChatSession")).Return(nil)

	t.Run("default title", func(t *testing.T) {
		session, err := svc.CreateSession(ctx, userID, CreateSessionInput{})
		require.NoError(t, err)
		assert.Equal(t, "09-03-2024 | 14:05:07", session.Title)
		assert.Equal(t, userID, session.UserID)

		state, err := sessions.Get(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, session.ID, state.CurrentSessionID)
	})

	t.Run("custom title", func(t *testing.T) {
		session, err := svc.CreateSession(ctx, userID, CreateSessionInput{Title: "  Annual checkup "})
		require.NoError(t, err)
		assert.Equal(t, "Annual checkup", session.Title)
	})

	store.AssertNumberOfCalls(t, "CreateSession", 2)
}

func TestConversationService_Ownership(t *testing.T) {
	svc, store, _, userID := newConversationFixture(t)
	ctx := context.Background()

	foreign := &domain.ChatSession{ID: uuid.New(), UserID: uuid.New()}
	store.On("GetSession", ctx, foreign.ID).Return(foreign, nil)

	_, err := svc.SelectSession(ctx, userID, foreign.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = svc.Messages(ctx, userID, foreign.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	err = svc.DeleteSession(ctx, userID, foreign.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	store.AssertNotCalled(t, "ListMessages", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "DeleteSession", mock.Anything, mock.Anything)
}

func TestConversationService_DeleteSession(t *testing.T) {
	ctx := context.Background()

	t.Run("clears current session", func(t *testing.T) {
		svc, store, sessions, userID := newConversationFixture(t)
		session := &domain.ChatSession{ID: uuid.New(), UserID: userID}
		store.On("GetSession", ctx, session.ID).Return(session, nil)
		store.On("DeleteSession", ctx, session.ID).Return(nil)
		store.On("ListMessages", ctx, session.ID).Return([]domain.Message{}, nil)

		_, err := svc.SelectSession(ctx, userID, session.ID)
		require.NoError(t, err)

		require.NoError(t, svc.DeleteSession(ctx, userID, session.ID))

		state, err := sessions.Get(ctx, userID)
		require.NoError(t, err)
		assert.False(t, state.HasCurrentSession())
	})

	t.Run("store failure is surfaced", func(t *testing.T) {
		svc, store, _, userID := newConversationFixture(t)
		session := &domain.ChatSession{ID: uuid.New(), UserID: userID}
		store.On("GetSession", ctx, session.ID).Return(session, nil)
		store.On("DeleteSession", ctx, session.ID).Return(fmt.Errorf("%w: failed to delete session: tx aborted", domain.ErrStore))

		err := svc.DeleteSession(ctx, userID, session.ID)
		assert.ErrorIs(t, err, domain.ErrStore)
		store.AssertNotCalled(t, "ListMessages", mock.Anything, mock.Anything)
	})

	t.Run("orphaned messages are surfaced", func(t *testing.T) {
		svc, store, _, userID := newConversationFixture(t)
		session := &domain.ChatSession{ID: uuid.New(), UserID: userID}
		store.On("GetSession", ctx, session.ID).Return(session, nil)
		store.On("DeleteSession", ctx, session.ID).Return(nil)
		store.On("ListMessages", ctx, session.ID).Return([]domain.Message{{ID: uuid.New(), SessionID: session.ID}}, nil)

		err := svc.DeleteSession(ctx, userID, session.ID)
		assert.ErrorIs(t, err, domain.ErrOrphanedRecords)
	})
}

func TestConversationService_ResolveSession(t *testing.T) {
	svc, store, sessions, userID := newConversationFixture(t)
	ctx := context.Background()

	_, err := svc.ResolveSession(ctx, userID, uuid.Nil)
	assert.ErrorIs(t, err, domain.ErrNoActiveSession)

	current := &domain.ChatSession{ID: uuid.New(), UserID: userID}
	other := &domain.ChatSession{ID: uuid.New(), UserID: userID}
	store.On("GetSession", ctx, current.ID).Return(current, nil)
	store.On("GetSession", ctx, other.ID).Return(other, nil)
	require.NoError(t, sessions.SetCurrentSession(ctx, userID, current.ID))

	got, err := svc.ResolveSession(ctx, userID, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, current.ID, got.ID)

	got, err = svc.ResolveSession(ctx, userID, other.ID)
	require.NoError(t, err)
	assert.Equal(t, other.ID, got.ID)

	gone := uuid.New()
	store.On("GetSession", ctx, gone).Return(nil, domain.ErrSessionNotFound)
	require.NoError(t, sessions.SetCurrentSession(ctx, userID, gone))

	_, err = svc.ResolveSession(ctx, userID, uuid.Nil)
	assert.ErrorIs(t, err, domain.ErrNoActiveSession)
}
