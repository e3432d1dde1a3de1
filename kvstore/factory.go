package kvstore

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rumik/ira"
)

// StoreType represents the type of key-value store.
type StoreType string

const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeRedis  StoreType = "redis"
)

// Default key prefix for Redis keys.
const defaultKeyPrefix = "ira:"

// NewStore creates a new Store based on the given type.
// Supports "memory" and "redis" driver types.
// For Redis, requires WithRedisClient option.
func NewStore(storeType StoreType, opts ...StoreOption) (Store, error) {
	config := &storeConfig{}

	// Apply options
	for _, opt := range opts {
		opt(config)
	}

	switch storeType {
	case StoreTypeMemory:
		return &inMemoryStore{
			values: make(map[string][]byte),
		}, nil

	case StoreTypeRedis:
		if config.redisClient == nil {
			return nil, ira.ErrInvalidConfig
		}
		ttl := config.redisTTL
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}
		prefix := config.keyPrefix
		if prefix == "" {
			prefix = defaultKeyPrefix
		}
		return &redisStore{
			client: config.redisClient,
			ttl:    ttl,
			prefix: prefix,
		}, nil

	default:
		return nil, ira.ErrInvalidStoreType
	}
}

// inMemoryStore implements Store using an in-memory map.
type inMemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// Get implements Store.
func (s *inMemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, exists := s.values[key]
	if !exists {
		return nil, nil
	}
	// Copy so callers cannot mutate the stored value.
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Set implements Store.
func (s *inMemoryStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	s.values[key] = stored
	return nil
}

// Delete implements Store.
func (s *inMemoryStore) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

// Close implements Store.
func (s *inMemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values = nil
	return nil
}

// redisStore implements Store using Redis with prefixed keys.
type redisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// Get implements Store.
func (s *redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	full := s.prefix + key
	val, err := s.client.Get(ctx, full).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	// Refresh TTL on read
	_ = s.client.Expire(ctx, full, s.ttl).Err()

	return val, nil
}

// Set implements Store.
func (s *redisStore) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, s.prefix+key, value, s.ttl).Err()
}

// Delete implements Store.
func (s *redisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, key := range keys {
		full[i] = s.prefix + key
	}
	return s.client.Del(ctx, full...).Err()
}

// Close implements Store.
func (s *redisStore) Close() error {
	return s.client.Close()
}
