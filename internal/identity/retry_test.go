package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/health-insights/internal/domain"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) SignUp(ctx context.Context, userID uuid.UUID, email, password string) error {
	return m.Called(ctx, userID, email, password).Error(0)
}

func (m *mockProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Session), args.Error(1)
}

func (m *mockProvider) Validate(ctx context.Context, token string) (*Identity, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Identity), args.Error(1)
}

func (m *mockProvider) SignOut(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockProvider) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func TestResilient_RetriesTransientFailures(t *testing.T) {
	next := new(mockProvider)
	session := &Session{AccessToken: "tok"}
	next.On("SignIn", mock.Anything, "a@b.c", "pw").Return(nil, errors.New("connection reset")).Twice()
	next.On("SignIn", mock.Anything, "a@b.c", "pw").Return(session, nil).Once()

	r := NewResilient(next, time.Second, 3).WithBackoff(time.Millisecond)
	got, err := r.SignIn(context.Background(), "a@b.c", "pw")

	require.NoError(t, err)
	assert.Equal(t, session, got)
	next.AssertNumberOfCalls(t, "SignIn", 3)
}

func TestResilient_GivesUpAfterRetries(t *testing.T) {
	next := new(mockProvider)
	next.On("SignOut", mock.Anything, mock.Anything).Return(errors.New("unavailable"))

	r := NewResilient(next, time.Second, 2).WithBackoff(time.Millisecond)
	err := r.SignOut(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrAuthProvider)
	next.AssertNumberOfCalls(t, "SignOut", 3)
}

func TestResilient_DoesNotRetryPermanentErrors(t *testing.T) {
	next := new(mockProvider)
	next.On("SignUp", mock.Anything, mock.Anything, "a@b.c", "pw").Return(domain.ErrDuplicateUser)

	r := NewResilient(next, time.Second, 3).WithBackoff(time.Millisecond)
	err := r.SignUp(context.Background(), uuid.New(), "a@b.c", "pw")

	assert.ErrorIs(t, err, domain.ErrDuplicateUser)
	assert.NotErrorIs(t, err, domain.ErrAuthProvider)
	next.AssertNumberOfCalls(t, "SignUp", 1)
}

func TestResilient_AttemptTimeout(t *testing.T) {
	next := new(mockProvider)
	next.On("Validate", mock.Anything, "tok").
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.DeadlineExceeded)

	r := NewResilient(next, 10*time.Millisecond, 1).WithBackoff(time.Millisecond)
	_, err := r.Validate(context.Background(), "tok")

	assert.ErrorIs(t, err, domain.ErrAuthProvider)
	next.AssertNumberOfCalls(t, "Validate", 2)
}
