package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Manager handles caching operations with Redis backend.
type Manager struct {
	redis *redis.Client
}

// NewManager creates a new cache manager with Redis backend.
func NewManager(redisClient *redis.Client) *Manager {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &Manager{
		redis: redisClient,
	}
}

// Get retrieves a cache entry by key.
// Returns ErrCacheMiss if the key doesn't exist or entry is expired.
func (m *Manager) Get(ctx context.Context, key Key) (*Entry, error) {
	data, err := m.redis.Get(ctx, key.String()).Bytes()
	if err != nil {
		if err == redis.Nil {
			CacheMisses.Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	// Redis TTL normally evicts expired entries, but clock skew can
	// leave a stale one behind.
	if entry.IsExpired() {
		_ = m.Delete(ctx, key)
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.Inc()
	return &entry, nil
}

// Set stores a cache entry with TTL based on the entry's Expires field.
// Already-expired entries are not stored.
func (m *Manager) Set(ctx context.Context, key Key, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}

	ttl := entry.TTL()
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(entry)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := m.redis.Set(ctx, key.String(), data, ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// Delete removes a cache entry.
func (m *Manager) Delete(ctx context.Context, key Key) error {
	if err := m.redis.Del(ctx, key.String()).Err(); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}

	return nil
}
