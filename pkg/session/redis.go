package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/artwork-table/pkg/logging"
	"github.com/Sternrassler/artwork-table/pkg/table"
)

const backendRedis = "redis"

// RedisStore keeps snapshots in Redis as JSON with a TTL.
type RedisStore struct {
	redis  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisStore creates a Redis-backed store whose entries expire after ttl.
func NewRedisStore(redisClient *redis.Client, ttl time.Duration) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if ttl <= 0 {
		panic("session ttl must be positive")
	}
	return &RedisStore{
		redis:  redisClient,
		ttl:    ttl,
		logger: logging.NewLogger("session-store"),
	}
}

// Get retrieves the snapshot for id.
// Returns ErrNotFound if the key doesn't exist or has expired.
func (s *RedisStore) Get(ctx context.Context, id string) (*table.Snapshot, error) {
	data, err := s.redis.Get(ctx, Key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			Lookups.WithLabelValues(backendRedis, "miss").Inc()
			return nil, ErrNotFound
		}
		Errors.WithLabelValues(backendRedis, "get").Inc()
		s.logger.Error().Err(err).Str("key", Key(id)).Msg("Redis get failed")
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var snap table.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		Errors.WithLabelValues(backendRedis, "get").Inc()
		s.logger.Warn().Err(err).Str("key", Key(id)).Int("bytes", len(data)).Msg("Stored snapshot is not valid JSON")
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	Lookups.WithLabelValues(backendRedis, "hit").Inc()
	return &snap, nil
}

// Set stores snap and resets its TTL.
func (s *RedisStore) Set(ctx context.Context, id string, snap *table.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("session snapshot cannot be nil")
	}

	data, err := json.Marshal(snap)
	if err != nil {
		Errors.WithLabelValues(backendRedis, "set").Inc()
		return fmt.Errorf("marshal session snapshot: %w", err)
	}

	if err := s.redis.Set(ctx, Key(id), data, s.ttl).Err(); err != nil {
		Errors.WithLabelValues(backendRedis, "set").Inc()
		s.logger.Error().Err(err).Str("key", Key(id)).Msg("Redis set failed")
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes the snapshot for id.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.redis.Del(ctx, Key(id)).Err(); err != nil {
		Errors.WithLabelValues(backendRedis, "delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}
