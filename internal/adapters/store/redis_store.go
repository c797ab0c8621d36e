package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mikey/inbox-triage/internal/core"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisKeyPrefix = "inbox-triage:result:"

// RedisStore is a Redis implementation of the ResultStore interface. Expiry
// is delegated to Redis key TTLs.
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
}

type redisRecord struct {
	Assignment core.CategoryAssignment `json:"assignment"`
	StoredAt   time.Time               `json:"stored_at"`
	ExpiresAt  time.Time               `json:"expires_at"`
}

// NewRedisStore creates a new Redis store and checks the connection
func NewRedisStore(ctx context.Context, addr, password string, db int, logger *zap.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Test the connection
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisStoreFromClient(client, logger), nil
}

// NewRedisStoreFromClient wraps an existing client
func NewRedisStoreFromClient(client *redis.Client, logger *zap.Logger) *RedisStore {
	return &RedisStore{client: client, logger: logger}
}

// Get retrieves the result stored for a session
func (s *RedisStore) Get(ctx context.Context, sessionID string) (*core.StoredResult, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, core.ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	var rec redisRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode stored result: %w", err)
	}

	return &core.StoredResult{
		SessionID:  sessionID,
		Assignment: rec.Assignment,
		StoredAt:   rec.StoredAt,
		ExpiresAt:  rec.ExpiresAt,
	}, nil
}

// Set stores a result, replacing any previous one for the session
func (s *RedisStore) Set(ctx context.Context, result *core.StoredResult) error {
	var ttl time.Duration
	if !result.ExpiresAt.IsZero() {
		ttl = time.Until(result.ExpiresAt)
		if ttl <= 0 {
			return s.Delete(ctx, result.SessionID)
		}
	}

	data, err := json.Marshal(redisRecord{
		Assignment: result.Assignment,
		StoredAt:   result.StoredAt,
		ExpiresAt:  result.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	if err := s.client.Set(ctx, redisKeyPrefix+result.SessionID, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store result: %w", err)
	}
	return nil
}

// Delete removes the result of a session
func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("failed to delete result: %w", err)
	}
	return nil
}

// Cleanup is a no-op; Redis evicts expired keys itself
func (s *RedisStore) Cleanup(ctx context.Context) error {
	return nil
}

// Stop closes the Redis client
func (s *RedisStore) Stop() {
	if err := s.client.Close(); err != nil {
		s.logger.Error("Failed to close Redis client", zap.Error(err))
	}
}
