package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const activeTokenPrefix = "auth:active:"

// TokenRegistry implements identity.TokenRegistry
type TokenRegistry struct {
	client *Client
}

// NewTokenRegistry creates a new token registry
func NewTokenRegistry(client *Client) *TokenRegistry {
	return &TokenRegistry{client: client}
}

func (r *TokenRegistry) Activate(ctx context.Context, userID uuid.UUID, tokenID string, ttl time.Duration) error {
	return r.client.rdb.Set(ctx, activeTokenPrefix+userID.String(), tokenID, ttl).Err()
}

func (r *TokenRegistry) Active(ctx context.Context, userID uuid.UUID) (string, error) {
	id, err := r.client.rdb.Get(ctx, activeTokenPrefix+userID.String()).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read active token: %w", err)
	}
	return id, nil
}

func (r *TokenRegistry) Revoke(ctx context.Context, userID uuid.UUID) error {
	return r.client.rdb.Del(ctx, activeTokenPrefix+userID.String()).Err()
}
