package ratelimit

import (
	"context"
	"sync"
	"time"
)

type counter struct {
	windowStart time.Time
	count       int
}

// Memory is an in-process Limiter for single-instance deployments and tests
type Memory struct {
	mu       sync.Mutex
	limit    int
	window   Window
	counters map[string]*counter
	now      func() time.Time
}

// NewMemory creates an in-memory limiter allowing limit analyses per window
func NewMemory(limit int, window time.Duration) *Memory {
	return &Memory{
		limit:    limit,
		window:   Window{Size: window},
		counters: make(map[string]*counter),
		now:      time.Now,
	}
}

// WithClock overrides the time source
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	return m
}

func (m *Memory) current(userID string) (*counter, time.Time) {
	start, end := m.window.Bounds(m.now())
	c, ok := m.counters[userID]
	if !ok || !c.windowStart.Equal(start) {
		c = &counter{windowStart: start}
		m.counters[userID] = c
	}
	return c, end
}

func (m *Memory) Check(_ context.Context, userID string) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, end := m.current(userID)
	status := NewStatus(m.limit, c.count, end)
	if c.count >= m.limit {
		return status, Exceeded(status)
	}
	return status, nil
}

func (m *Memory) CheckAndConsume(_ context.Context, userID string) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, end := m.current(userID)
	if c.count >= m.limit {
		status := NewStatus(m.limit, c.count, end)
		return status, Exceeded(status)
	}
	c.count++
	return NewStatus(m.limit, c.count, end), nil
}

func (m *Memory) Release(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, _ := m.current(userID)
	if c.count > 0 {
		c.count--
	}
	return nil
}
