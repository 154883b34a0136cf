package usersession

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/health-insights/internal/domain"
)

func TestMemory_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	userID := uuid.New()

	_, err := store.Get(ctx, userID)
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	require.NoError(t, store.Start(ctx, &State{TokenID: "t1", UserID: userID, StartedAt: time.Now()}))

	state, err := store.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "t1", state.TokenID)
	assert.False(t, state.HasCurrentSession())

	sessionID := uuid.New()
	require.NoError(t, store.SetCurrentSession(ctx, userID, sessionID))
	state, err = store.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, sessionID, state.CurrentSessionID)

	require.NoError(t, store.End(ctx, userID))
	_, err = store.Get(ctx, userID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	// ending twice is harmless
	assert.NoError(t, store.End(ctx, userID))
}

func TestMemory_HistoryOrderAndReset(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	userID := uuid.New()
	require.NoError(t, store.Start(ctx, &State{TokenID: "t1", UserID: userID}))

	for _, name := range []string{"Ann", "Ann", "Bob"} {
		require.NoError(t, store.AppendHistory(ctx, userID, domain.AnalysisRecord{PatientName: name}))
	}

	history, err := store.History(ctx, userID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "Ann", history[0].PatientName)
	assert.Equal(t, "Ann", history[1].PatientName)
	assert.Equal(t, "Bob", history[2].PatientName)

	// a new sign-in starts from an empty history
	require.NoError(t, store.Start(ctx, &State{TokenID: "t2", UserID: userID}))
	history, err = store.History(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestMemory_UnknownUser(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	userID := uuid.New()

	assert.ErrorIs(t, store.SetCurrentSession(ctx, userID, uuid.New()), domain.ErrUnauthorized)
	assert.ErrorIs(t, store.AppendHistory(ctx, userID, domain.AnalysisRecord{}), domain.ErrUnauthorized)
	_, err := store.History(ctx, userID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
