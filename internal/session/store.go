// Package session keeps per-browser login state server side. Only an opaque
// id travels in the cookie, the stored value is encrypted.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

const namespace = "book-server:session"

// Store persists encrypted session values.
type Store interface {
	Set(ctx context.Context, id string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
}

// RedisStore keeps sessions in redis so they survive restarts and are shared
// between server instances.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(addr, password string) *RedisStore {
	return &RedisStore{client: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})}
}

func (s *RedisStore) Set(ctx context.Context, id string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, namespace+":"+id, value, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, id string) ([]byte, error) {
	value, err := s.client.Get(ctx, namespace+":"+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return value, err
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, namespace+":"+id).Err()
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: map[string]memoryEntry{}, now: time.Now}
}

func (s *MemoryStore) Set(_ context.Context, id string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = memoryEntry{value: append([]byte(nil), value...), expires: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !s.now().Before(entry.expires) {
		delete(s.entries, id)
		return nil, ErrNotFound
	}
	return entry.value, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}
