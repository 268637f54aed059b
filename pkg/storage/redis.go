package storage

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/btlive/pkg/errors"
)

// DefaultRedisPrefix namespaces keys written by RedisStorage.
const DefaultRedisPrefix = "btlive:"

// RedisStorage stores values as plain redis strings under a key prefix.
type RedisStorage struct {
	client *redis.Client
	prefix string
}

// NewRedisStorage wraps an existing client.
func NewRedisStorage(client *redis.Client, prefix string) *RedisStorage {
	return &RedisStorage{client: client, prefix: prefix}
}

// NewRedisStorageFromURL connects using a redis:// URL.
func NewRedisStorageFromURL(url string) (*RedisStorage, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse redis url")
	}
	return NewRedisStorage(redis.NewClient(opts), DefaultRedisPrefix), nil
}

func (s *RedisStorage) makeKey(key string) string {
	return s.prefix + key
}

// Get reads key.
func (s *RedisStorage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.makeKey(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeStorage, err, "redis GET %s", key)
	}
	return data, true, nil
}

// Set writes key without expiry.
func (s *RedisStorage) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.makeKey(key), value, 0).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "redis SET %s", key)
	}
	return nil
}

// Delete removes key.
func (s *RedisStorage) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.makeKey(key)).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "redis DEL %s", key)
	}
	return nil
}

// Close closes the client.
func (s *RedisStorage) Close() error { return s.client.Close() }

var _ Storage = (*RedisStorage)(nil)
