package usersession

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/Rrens/health-insights/internal/domain"
)

type entry struct {
	state   State
	history []domain.AnalysisRecord
}

// Memory is an in-process Store
type Memory struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*entry
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{entries: make(map[uuid.UUID]*entry)}
}

func (m *Memory) Start(_ context.Context, state *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[state.UserID] = &entry{state: *state}
	return nil
}

func (m *Memory) Get(_ context.Context, userID uuid.UUID) (*State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[userID]
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	state := e.state
	return &state, nil
}

func (m *Memory) SetCurrentSession(_ context.Context, userID, sessionID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[userID]
	if !ok {
		return domain.ErrUnauthorized
	}
	e.state.CurrentSessionID = sessionID
	return nil
}

func (m *Memory) AppendHistory(_ context.Context, userID uuid.UUID, record domain.AnalysisRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[userID]
	if !ok {
		return domain.ErrUnauthorized
	}
	e.history = append(e.history, record)
	return nil
}

func (m *Memory) History(_ context.Context, userID uuid.UUID) ([]domain.AnalysisRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[userID]
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	out := make([]domain.AnalysisRecord, len(e.history))
	copy(out, e.history)
	return out, nil
}

func (m *Memory) End(_ context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, userID)
	return nil
}
