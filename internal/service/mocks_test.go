package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/Rrens/health-insights/internal/domain"
	"github.com/Rrens/health-insights/internal/engine"
	"github.com/Rrens/health-insights/internal/identity"
	"github.com/Rrens/health-insights/internal/repository/mongo"
)

// MockConversationStore mocks the domain.ConversationStore interface
type MockConversationStore struct {
	mock.Mock
}

func (m *MockConversationStore) CreateSession(ctx context.Context, session *domain.ChatSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockConversationStore) GetSession(ctx context.Context, id uuid.UUID) (*domain.ChatSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChatSession), args.Error(1)
}

func (m *MockConversationStore) ListSessions(ctx context.Context, userID uuid.UUID) ([]domain.ChatSession, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.ChatSession), args.Error(1)
}

func (m *MockConversationStore) AppendMessage(ctx context.Context, message *domain.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockConversationStore) ListMessages(ctx context.Context, sessionID uuid.UUID) ([]domain.Message, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).([]domain.Message), args.Error(1)
}

func (m *MockConversationStore) DeleteSession(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockConversationStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockAnalyzer mocks the engine.Analyzer interface
type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) Analyze(ctx context.Context, req engine.Request) engine.Result {
	args := m.Called(ctx, req)
	return args.Get(0).(engine.Result)
}

// MockIdentityProvider mocks the identity.Provider interface
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) SignUp(ctx context.Context, userID uuid.UUID, email, password string) error {
	return m.Called(ctx, userID, email, password).Error(0)
}

func (m *MockIdentityProvider) SignIn(ctx context.Context, email, password string) (*identity.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Session), args.Error(1)
}

func (m *MockIdentityProvider) Validate(ctx context.Context, token string) (*identity.Identity, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Identity), args.Error(1)
}

func (m *MockIdentityProvider) SignOut(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockIdentityProvider) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockUserRepository mocks the domain.UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	args := m.Called(ctx, id, name)
	return args.Error(0)
}

// MockHistoryArchive mocks the HistoryArchive interface
type MockHistoryArchive struct {
	mock.Mock
}

func (m *MockHistoryArchive) Save(ctx context.Context, userID uuid.UUID, records []domain.AnalysisRecord) (*mongo.ArchiveEntry, error) {
	args := m.Called(ctx, userID, records)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mongo.ArchiveEntry), args.Error(1)
}

func (m *MockHistoryArchive) List(ctx context.Context, userID uuid.UUID) ([]mongo.ArchiveEntry, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]mongo.ArchiveEntry), args.Error(1)
}

func (m *MockHistoryArchive) Load(ctx context.Context, userID uuid.UUID, id string) ([]domain.AnalysisRecord, error) {
	args := m.Called(ctx, userID, id)
	return args.Get(0).([]domain.AnalysisRecord), args.Error(1)
}
