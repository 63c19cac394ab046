package blob

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps blobs as plain Redis string values.
type RedisStore struct {
	client   *redis.Client
	maxBytes int64
}

// NewRedisStore wraps a connected client.
func NewRedisStore(client *redis.Client, maxBytes int64) *RedisStore {
	return &RedisStore{client: client, maxBytes: maxBytes}
}

// Read returns the blob stored under key.
func (s *RedisStore) Read(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return raw, nil
}

// Write replaces the blob stored under key. A Redis OOM reply (maxmemory
// reached) counts as a quota failure.
func (s *RedisStore) Write(ctx context.Context, key string, data []byte) error {
	if err := checkQuota(s.maxBytes, data); err != nil {
		return err
	}
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		if strings.HasPrefix(err.Error(), "OOM") {
			return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
		}
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes the blob stored under key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (s *RedisStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
