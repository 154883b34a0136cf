package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Rrens/health-insights/internal/domain"
)

const (
	profileCachePrefix = "profile:"
	profileCacheTTL    = 5 * time.Minute
)

// ProfileCache caches user profiles in Redis
type ProfileCache struct {
	client *Client
}

// NewProfileCache creates a new profile cache
func NewProfileCache(client *Client) *ProfileCache {
	return &ProfileCache{client: client}
}

// Get retrieves a cached profile. A miss returns nil without error.
func (c *ProfileCache) Get(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	data, err := c.client.rdb.Get(ctx, profileCachePrefix+userID.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profile cache: %w", err)
	}

	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	return &user, nil
}

// Set caches a profile
func (c *ProfileCache) Set(ctx context.Context, user *domain.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	return c.client.rdb.Set(ctx, profileCachePrefix+user.ID.String(), data, profileCacheTTL).Err()
}

// Invalidate removes a cached profile
func (c *ProfileCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	return c.client.rdb.Del(ctx, profileCachePrefix+userID.String()).Err()
}
