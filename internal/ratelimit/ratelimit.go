// Package ratelimit gates analysis requests per user with a fixed-window quota.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/Rrens/health-insights/internal/domain"
)

// Status describes a user's quota in the current window
type Status struct {
	Limit     int       `json:"limit"`
	Used      int       `json:"used"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
}

// Limiter is the per-user analysis quota gate.
//
// Check never mutates state. CheckAndConsume atomically verifies and takes one
// slot; it must be called exactly once per dispatched analysis. Both return an
// error wrapping domain.ErrRateLimitExceeded when the quota is exhausted.
type Limiter interface {
	Check(ctx context.Context, userID string) (Status, error)
	CheckAndConsume(ctx context.Context, userID string) (Status, error)
	// Release returns a slot taken by CheckAndConsume whose analysis was never dispatched.
	Release(ctx context.Context, userID string) error
}

// Window computes fixed window boundaries
type Window struct {
	Size time.Duration
}

// Bounds returns the start and end of the window containing t
func (w Window) Bounds(t time.Time) (start, end time.Time) {
	start = t.UTC().Truncate(w.Size)
	return start, start.Add(w.Size)
}

// Key builds the counter key for a user in the window containing t
func (w Window) Key(prefix, userID string, t time.Time) string {
	start, _ := w.Bounds(t)
	return fmt.Sprintf("%s%s:%d", prefix, userID, start.Unix())
}

// NewStatus derives a Status from a counter value
func NewStatus(limit, used int, resetAt time.Time) Status {
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return Status{Limit: limit, Used: used, Remaining: remaining, ResetAt: resetAt}
}

// Exceeded builds the error returned when a quota is exhausted
func Exceeded(status Status) error {
	return fmt.Errorf("%w: %d of %d analyses used, resets at %s",
		domain.ErrRateLimitExceeded, status.Used, status.Limit, status.ResetAt.Format(time.RFC3339))
}
