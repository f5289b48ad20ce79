package gatechain

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisWindowStore implements WindowStore on a Redis sorted set per client,
// scored by request time in milliseconds. It allows the rate limit state to
// be shared across instances.
//
// The deny path only reads: a rejected attempt is never added to the set, so
// hammering a limited endpoint does not push recovery further out. Between
// the count and the insert two racing requests can briefly overshoot the
// limit by one; use MemoryWindowStore where strict admission is required on
// a single instance.
type RedisWindowStore struct {
	client *redis.Client
	prefix string
}

// Ensure RedisWindowStore implements WindowStore
var _ WindowStore = (*RedisWindowStore)(nil)

// NewRedisWindowStore creates a Redis-backed window store.
func NewRedisWindowStore(client *redis.Client) *RedisWindowStore {
	return &RedisWindowStore{
		client: client,
		prefix: "gatechain:window:",
	}
}

// Take implements WindowStore.
func (s *RedisWindowStore) Take(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (bool, int, error) {
	redisKey := s.prefix + key
	cutoff := strconv.FormatInt(now.Add(-window).UnixMilli(), 10)

	// Count only live timestamps: scores strictly after the cutoff.
	count, err := s.client.ZCount(ctx, redisKey, "("+cutoff, "+inf").Result()
	if err != nil {
		return false, 0, fmt.Errorf("%w: %v", ErrStoreFailed, err)
	}
	if int(count) >= limit {
		return false, int(count), nil
	}

	// Prune the expired prefix and record this request in one round trip.
	// Member ids are random so two requests in the same millisecond both count.
	p := s.client.Pipeline()
	p.ZRemRangeByScore(ctx, redisKey, "-inf", cutoff)
	p.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: uuid.NewString(),
	})
	card := p.ZCard(ctx, redisKey)
	p.Expire(ctx, redisKey, window)

	if _, err := p.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("%w: %v", ErrStoreFailed, err)
	}

	n, err := card.Result()
	if err != nil {
		return false, 0, fmt.Errorf("%w: %v", ErrStoreFailed, err)
	}
	return true, int(n), nil
}

// Ping checks the Redis connection.
func (s *RedisWindowStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying Redis client.
func (s *RedisWindowStore) Close() error {
	return s.client.Close()
}
