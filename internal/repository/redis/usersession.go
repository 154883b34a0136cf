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
	"github.com/Rrens/health-insights/internal/usersession"
)

const userSessionPrefix = "usersession:"

// UserSessionStore implements usersession.Store. The state is a JSON value and
// the analysis history a list, both expiring with the access token.
type UserSessionStore struct {
	client *Client
	ttl    time.Duration
}

// NewUserSessionStore creates a store whose entries live for ttl
func NewUserSessionStore(client *Client, ttl time.Duration) *UserSessionStore {
	return &UserSessionStore{client: client, ttl: ttl}
}

func stateKey(userID uuid.UUID) string {
	return userSessionPrefix + userID.String()
}

func historyKey(userID uuid.UUID) string {
	return userSessionPrefix + userID.String() + ":history"
}

func (s *UserSessionStore) Start(ctx context.Context, state *usersession.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal user session: %w", err)
	}

	_, err = s.client.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, stateKey(state.UserID), data, s.ttl)
		pipe.Del(ctx, historyKey(state.UserID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to start user session: %w", err)
	}
	return nil
}

func (s *UserSessionStore) Get(ctx context.Context, userID uuid.UUID) (*usersession.State, error) {
	data, err := s.client.rdb.Get(ctx, stateKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user session: %w", err)
	}

	var state usersession.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user session: %w", err)
	}
	return &state, nil
}

func (s *UserSessionStore) SetCurrentSession(ctx context.Context, userID, sessionID uuid.UUID) error {
	key := stateKey(userID)

	return s.client.rdb.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return domain.ErrUnauthorized
		}
		if err != nil {
			return fmt.Errorf("failed to read user session: %w", err)
		}

		var state usersession.State
		if err := json.Unmarshal(data, &state); err != nil {
			return fmt.Errorf("failed to unmarshal user session: %w", err)
		}
		state.CurrentSessionID = sessionID

		updated, err := json.Marshal(&state)
		if err != nil {
			return fmt.Errorf("failed to marshal user session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SetArgs(ctx, key, updated, redis.SetArgs{KeepTTL: true})
			return nil
		})
		return err
	}, key)
}

func (s *UserSessionStore) AppendHistory(ctx context.Context, userID uuid.UUID, record domain.AnalysisRecord) error {
	exists, err := s.client.rdb.Exists(ctx, stateKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("failed to read user session: %w", err)
	}
	if exists == 0 {
		return domain.ErrUnauthorized
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis record: %w", err)
	}

	key := historyKey(userID)
	_, err = s.client.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, data)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append analysis history: %w", err)
	}
	return nil
}

func (s *UserSessionStore) History(ctx context.Context, userID uuid.UUID) ([]domain.AnalysisRecord, error) {
	exists, err := s.client.rdb.Exists(ctx, stateKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read user session: %w", err)
	}
	if exists == 0 {
		return nil, domain.ErrUnauthorized
	}

	items, err := s.client.rdb.LRange(ctx, historyKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read analysis history: %w", err)
	}

	history := make([]domain.AnalysisRecord, 0, len(items))
	for _, item := range items {
		var record domain.AnalysisRecord
		if err := json.Unmarshal([]byte(item), &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal analysis record: %w", err)
		}
		history = append(history, record)
	}
	return history, nil
}

func (s *UserSessionStore) End(ctx context.Context, userID uuid.UUID) error {
	return s.client.rdb.Del(ctx, stateKey(userID), historyKey(userID)).Err()
}
