package sqlstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/health-insights/internal/domain"
	"github.com/Rrens/health-insights/internal/identity"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()

	db, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Migrate(ctx))
	// migrating twice is a no-op
	require.NoError(t, db.Migrate(ctx))
	return db
}

func seedUser(t *testing.T, db *DB, email string) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	id := uuid.New()
	now := time.Now()

	require.NoError(t, NewCredentialRepository(db).Create(ctx, &identity.Credential{
		UserID: id, Email: email, PasswordHash: "hash", CreatedAt: now,
	}))
	require.NoError(t, NewUserRepository(db).Create(ctx, &domain.User{
		ID: id, Email: email, Name: "Test", CreatedAt: now,
	}))
	return id
}

func newSession(t *testing.T, store *ConversationStore, userID uuid.UUID, createdAt time.Time) *domain.ChatSession {
	t.Helper()
	s := &domain.ChatSession{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     domain.DefaultSessionTitle(createdAt),
		CreatedAt: createdAt,
	}
	require.NoError(t, store.CreateSession(context.Background(), s))
	return s
}

func TestCredentials(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewCredentialRepository(db)
	userID := seedUser(t, db, "ann@example.com")

	cred, err := repo.GetByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, userID, cred.UserID)
	assert.Equal(t, "hash", cred.PasswordHash)

	err = repo.Create(ctx, &identity.Credential{UserID: uuid.New(), Email: "ann@example.com", PasswordHash: "x", CreatedAt: time.Now()})
	assert.ErrorIs(t, err, domain.ErrDuplicateUser)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	// deleting the credential cascades to the profile
	require.NoError(t, repo.Delete(ctx, userID))
	_, err = NewUserRepository(db).GetByID(ctx, userID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewUserRepository(db)
	userID := seedUser(t, db, "ann@example.com")

	require.NoError(t, repo.UpdateName(ctx, userID, "Ann Smith"))
	u, err := repo.GetByID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "Ann Smith", u.Name)
	assert.Equal(t, "ann@example.com", u.Email)

	assert.ErrorIs(t, repo.UpdateName(ctx, uuid.New(), "x"), domain.ErrUserNotFound)
}

func TestSessions_ListMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	store := NewConversationStore(db)
	userID := seedUser(t, db, "ann@example.com")
	otherID := seedUser(t, db, "bob@example.com")

	base := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	first := newSession(t, store, userID, base)
	second := newSession(t, store, userID, base.Add(time.Minute))
	// same timestamp falls back to insertion order
	third := newSession(t, store, userID, base.Add(time.Minute))
	newSession(t, store, otherID, base)

	sessions, err := store.ListSessions(ctx, userID)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, third.ID, sessions[0].ID)
	assert.Equal(t, second.ID, sessions[1].ID)
	assert.Equal(t, first.ID, sessions[2].ID)
	assert.Equal(t, "15-03-2024 | 09:00:00", sessions[2].Title)
	assert.True(t, base.Equal(sessions[2].CreatedAt))

	got, err := store.GetSession(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, userID, got.UserID)

	_, err = store.GetSession(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	empty, err := store.ListSessions(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMessages_RoundTripInOrder(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	store := NewConversationStore(db)
	userID := seedUser(t, db, "ann@example.com")
	session := newSession(t, store, userID, time.Now())

	now := time.Now()
	inputs := []domain.Message{
		{ID: uuid.New(), SessionID: session.ID, Role: domain.RoleUser, Content: "Analyzing report for patient: Jane", CreatedAt: now},
		{ID: uuid.New(), SessionID: session.ID, Role: domain.RoleAssistant, Content: "**What is good**\nHDL normal", CreatedAt: now},
		{ID: uuid.New(), SessionID: session.ID, Role: domain.RoleUser, Content: "again", CreatedAt: now.Add(time.Second)},
	}
	for i := range inputs {
		require.NoError(t, store.AppendMessage(ctx, &inputs[i]))
	}

	messages, err := store.ListMessages(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, messages, len(inputs))
	for i, m := range messages {
		assert.Equal(t, inputs[i].ID, m.ID)
		assert.Equal(t, inputs[i].Role, m.Role)
		assert.Equal(t, inputs[i].Content, m.Content)
	}
}

func TestMessages_UnknownSession(t *testing.T) {
	ctx := context.Background()
	store := NewConversationStore(openTestDB(t))

	err := store.AppendMessage(ctx, &domain.Message{
		ID: uuid.New(), SessionID: uuid.New(), Role: domain.RoleUser, Content: "x", CreatedAt: time.Now(),
	})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestDeleteSession(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	store := NewConversationStore(db)
	userID := seedUser(t, db, "ann@example.com")
	session := newSession(t, store, userID, time.Now())
	keep := newSession(t, store, userID, time.Now())

	for _, sid := range []uuid.UUID{session.ID, keep.ID} {
		require.NoError(t, store.AppendMessage(ctx, &domain.Message{
			ID: uuid.New(), SessionID: sid, Role: domain.RoleUser, Content: "hi", CreatedAt: time.Now(),
		}))
	}

	require.NoError(t, store.DeleteSession(ctx, session.ID))

	messages, err := store.ListMessages(ctx, session.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)
	_, err = store.GetSession(ctx, session.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	kept, err := store.ListMessages(ctx, keep.ID)
	require.NoError(t, err)
	assert.Len(t, kept, 1)

	assert.ErrorIs(t, store.DeleteSession(ctx, session.ID), domain.ErrSessionNotFound)
}

func TestDeleteSession_FailureRollsBack(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	store := NewConversationStore(db)
	userID := seedUser(t, db, "ann@example.com")
	session := newSession(t, store, userID, time.Now())
	require.NoError(t, store.AppendMessage(ctx, &domain.Message{
		ID: uuid.New(), SessionID: session.ID, Role: domain.RoleUser, Content: "hi", CreatedAt: time.Now(),
	}))

	// fail between the message delete and the session delete
	_, err := db.db.ExecContext(ctx, `
		CREATE TRIGGER abort_session_delete BEFORE DELETE ON chat_sessions
		BEGIN SELECT RAISE(ABORT, 'session delete blocked'); END`)
	require.NoError(t, err)

	err = store.DeleteSession(ctx, session.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStore)

	// nothing was removed
	_, err = store.GetSession(ctx, session.ID)
	require.NoError(t, err)
	messages, err := store.ListMessages(ctx, session.ID)
	require.NoError(t, err)
	assert.Len(t, messages, 1)
}
