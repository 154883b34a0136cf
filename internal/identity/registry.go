package identity

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type activeToken struct {
	id        string
	expiresAt time.Time
}

// MemoryRegistry is an in-process TokenRegistry
type MemoryRegistry struct {
	mu     sync.Mutex
	tokens map[uuid.UUID]activeToken
	now    func() time.Time
}

// NewMemoryRegistry creates an empty registry
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{tokens: make(map[uuid.UUID]activeToken), now: time.Now}
}

func (r *MemoryRegistry) Activate(_ context.Context, userID uuid.UUID, tokenID string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[userID] = activeToken{id: tokenID, expiresAt: r.now().Add(ttl)}
	return nil
}

func (r *MemoryRegistry) Active(_ context.Context, userID uuid.UUID) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tokens[userID]
	if !ok {
		return "", nil
	}
	if !r.now().Before(t.expiresAt) {
		delete(r.tokens, userID)
		return "", nil
	}
	return t.id, nil
}

func (r *MemoryRegistry) Revoke(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, userID)
	return nil
}
