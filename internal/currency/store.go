package currency

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheEntry is the persisted shape of a detected currency.
type CacheEntry struct {
	CurrencyCode    string `json:"currency_code"`
	TimestampMillis int64  `json:"timestamp_millis"`
}

// Store persists detected currencies. Get returns (nil, nil) on cache miss.
type Store interface {
	Get(ctx context.Context, key string) (*CacheEntry, error)
	Set(ctx context.Context, key string, entry *CacheEntry, ttl time.Duration) error
}

// RedisStore is a redis-backed Store.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore returns redis-backed store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get reads a cached entry.
func (s *RedisStore) Get(ctx context.Context, key string) (*CacheEntry, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Set writes an entry with the given TTL.
func (s *RedisStore) Set(ctx context.Context, key string, entry *CacheEntry, ttl time.Duration) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

// MemoryStore is an in-process Store for tests and single-node setups.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]CacheEntry
}

// NewMemoryStore returns empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]CacheEntry)}
}

// Get reads a cached entry. Expiry is left to the caller's TTL check.
func (s *MemoryStore) Get(_ context.Context, key string) (*CacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	copied := entry
	return &copied, nil
}

// Set stores an entry. The TTL is ignored here; staleness is judged by timestamp.
func (s *MemoryStore) Set(_ context.Context, key string, entry *CacheEntry, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = *entry
	return nil
}
