package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domainErrors "github.com/polkiloo/shoutout/internal/domain/errors"
	"github.com/polkiloo/shoutout/internal/domain/model"
)

const keyPrefix = "idem:"

var pending = []byte(`{"completed":false}`)

// RedisStore keeps idempotency records in Redis with an expiry.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to the Redis instance at rawURL.
func NewRedisStore(rawURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &RedisStore{client: redis.NewClient(opts)}, nil
}

// Reserve claims key for the first request. It reports false when the key is taken.
func (s *RedisStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, keyPrefix+key, pending, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("reserve idempotency key: %w", err)
	}
	return ok, nil
}

// Get returns the record stored under key.
func (s *RedisStore) Get(ctx context.Context, key string) (*model.IdempotentResponse, error) {
	data, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domainErrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get idempotency key: %w", err)
	}

	var resp model.IdempotentResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode idempotency record: %w", err)
	}
	return &resp, nil
}

// Complete stores the final response so duplicates can replay it.
func (s *RedisStore) Complete(ctx context.Context, key string, resp model.IdempotentResponse, ttl time.Duration) error {
	resp.Completed = true
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode idempotency record: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("store idempotency record: %w", err)
	}
	return nil
}

// Release drops the key so the request can be retried.
func (s *RedisStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}

// HealthCheck pings Redis.
func (s *RedisStore) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.client.Ping(ctx).Err()
}

// Close releases the connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
