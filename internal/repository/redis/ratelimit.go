package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Rrens/health-insights/internal/ratelimit"
)

const (
	rateLimitPrefix = "ratelimit:analysis:"
)

// Takes a slot only while the counter is below the limit. The expiry is set
// on the first increment so the key outlives its window by at most one window.
var consumeScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current >= tonumber(ARGV[1]) then
	return {0, current}
end
current = redis.call('INCR', KEYS[1])
if current == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return {1, current}
`)

var releaseScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current > 0 then
	return redis.call('DECR', KEYS[1])
end
return 0
`)

// RateLimiter implements ratelimit.Limiter with a fixed window counter per user
type RateLimiter struct {
	client *Client
	limit  int
	window ratelimit.Window
	now    func() time.Time
}

// NewRateLimiter creates a limiter allowing limit analyses per window
func NewRateLimiter(client *Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: ratelimit.Window{Size: window},
		now:    time.Now,
	}
}

func (r *RateLimiter) key(userID string) (string, time.Time) {
	now := r.now()
	_, end := r.window.Bounds(now)
	return r.window.Key(rateLimitPrefix, userID, now), end
}

// Check reports the user's quota without consuming it
func (r *RateLimiter) Check(ctx context.Context, userID string) (ratelimit.Status, error) {
	key, resetAt := r.key(userID)

	used, err := r.client.rdb.Get(ctx, key).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return ratelimit.Status{}, fmt.Errorf("failed to read rate limit: %w", err)
	}

	status := ratelimit.NewStatus(r.limit, used, resetAt)
	if used >= r.limit {
		return status, ratelimit.Exceeded(status)
	}
	return status, nil
}

// CheckAndConsume atomically verifies the quota and takes one slot
func (r *RateLimiter) CheckAndConsume(ctx context.Context, userID string) (ratelimit.Status, error) {
	key, resetAt := r.key(userID)

	res, err := consumeScript.Run(ctx, r.client.rdb, []string{key}, r.limit, r.window.Size.Milliseconds()).Int64Slice()
	if err != nil {
		return ratelimit.Status{}, fmt.Errorf("failed to execute rate limit check: %w", err)
	}
	if len(res) != 2 {
		return ratelimit.Status{}, fmt.Errorf("unexpected rate limit reply: %v", res)
	}

	status := ratelimit.NewStatus(r.limit, int(res[1]), resetAt)
	if res[0] == 0 {
		return status, ratelimit.Exceeded(status)
	}
	return status, nil
}

// Release gives back a slot taken in the current window
func (r *RateLimiter) Release(ctx context.Context, userID string) error {
	key, _ := r.key(userID)
	if err := releaseScript.Run(ctx, r.client.rdb, []string{key}).Err(); err != nil {
		return fmt.Errorf("failed to release rate limit slot: %w", err)
	}
	return nil
}
