package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/health-insights/internal/domain"
)

// Resilient bounds every provider call with a timeout and retries
// transient failures. Exhausted retries surface as domain.ErrAuthProvider.
type Resilient struct {
	next    Provider
	timeout time.Duration
	retries int
	backoff time.Duration
}

// NewResilient wraps next. retries counts attempts after the first one.
func NewResilient(next Provider, timeout time.Duration, retries int) *Resilient {
	return &Resilient{next: next, timeout: timeout, retries: retries, backoff: 200 * time.Millisecond}
}

// WithBackoff sets the base delay between attempts
func (r *Resilient) WithBackoff(d time.Duration) *Resilient {
	r.backoff = d
	return r
}

// Errors that describe the caller's input rather than the provider's health.
func permanent(err error) bool {
	return errors.Is(err, domain.ErrDuplicateUser) ||
		errors.Is(err, domain.ErrInvalidCredentials) ||
		errors.Is(err, domain.ErrUnauthorized) ||
		errors.Is(err, domain.ErrUserNotFound) ||
		errors.Is(err, context.Canceled)
}

func (r *Resilient) do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= r.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %s: %v", domain.ErrAuthProvider, op, ctx.Err())
			case <-time.After(r.backoff * time.Duration(attempt)):
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, r.timeout)
		err := fn(attemptCtx)
		cancel()

		if err == nil {
			return nil
		}
		if permanent(err) {
			return err
		}

		lastErr = err
		log.Warn().Err(err).Str("op", op).Int("attempt", attempt+1).Msg("Identity provider call failed")
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrAuthProvider, op, lastErr)
}

// SignUp retries with the same userID on every attempt, which lets the
// provider recognise a write that committed before its reply was lost.
func (r *Resilient) SignUp(ctx context.Context, userID uuid.UUID, email, password string) error {
	return r.do(ctx, "sign_up", func(ctx context.Context) error {
		return r.next.SignUp(ctx, userID, email, password)
	})
}

func (r *Resilient) SignIn(ctx context.Context, email, password string) (*Session, error) {
	var session *Session
	err := r.do(ctx, "sign_in", func(ctx context.Context) error {
		var err error
		session, err = r.next.SignIn(ctx, email, password)
		return err
	})
	return session, err
}

func (r *Resilient) Validate(ctx context.Context, token string) (*Identity, error) {
	var id *Identity
	err := r.do(ctx, "validate", func(ctx context.Context) error {
		var err error
		id, err = r.next.Validate(ctx, token)
		return err
	})
	return id, err
}

func (r *Resilient) SignOut(ctx context.Context, userID uuid.UUID) error {
	return r.do(ctx, "sign_out", func(ctx context.Context) error {
		return r.next.SignOut(ctx, userID)
	})
}

func (r *Resilient) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	return r.do(ctx, "delete_user", func(ctx context.Context) error {
		return r.next.DeleteUser(ctx, userID)
	})
}
