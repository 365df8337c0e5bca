package caching

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore keeps the serialized dashboard state of each browser session.
// A miss is reported as (nil, nil).
type SessionStore interface {
	Load(ctx context.Context, sessionID string) ([]byte, error)
	Save(ctx context.Context, sessionID string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, sessionID string) error
	Ping(ctx context.Context) error
	// Sweep drops expired sessions and reports how many were removed
	Sweep(ctx context.Context) (int, error)
}

type redisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore connects to redis. A failed ping is logged but not
// fatal so the dashboard can start before redis does.
func NewRedisSessionStore(addr, password string, db int) SessionStore {
	// Parse Redis URL to extract host:port if protocol is included
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsedAddr = strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")
	}

	log.Printf("DEBUG: Creating Redis client with address: %s (original: %s)", parsedAddr, addr)

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	} else {
		log.Printf("DEBUG: Redis connection established successfully")
	}

	return NewRedisSessionStoreFromClient(client)
}

func NewRedisSessionStoreFromClient(client *redis.Client) SessionStore {
	return &redisSessionStore{client: client}
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("batstats:session:%s", sessionID)
}

func (r *redisSessionStore) Load(ctx context.Context, sessionID string) ([]byte, error) {
	data, err := r.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	return data, nil
}

func (r *redisSessionStore) Save(ctx context.Context, sessionID string, data []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, sessionKey(sessionID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session %s: %w", sessionID, err)
	}
	return nil
}

func (r *redisSessionStore) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, sessionKey(sessionID)).Err()
}

func (r *redisSessionStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Sweep is a no-op: redis expires session keys on its own
func (r *redisSessionStore) Sweep(ctx context.Context) (int, error) {
	return 0, nil
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

type memorySessionStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemorySessionStore keeps sessions in process memory, for single-instance
// deployments without redis.
func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *memorySessionStore) Load(ctx context.Context, sessionID string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[sessionID]
	if !ok {
		return nil, nil
	}
	if !entry.expiresAt.IsZero() && m.now().After(entry.expiresAt) {
		delete(m.entries, sessionID)
		return nil, nil
	}
	out := make([]byte, len(entry.data))
	copy(out, entry.data)
	return out, nil
}

func (m *memorySessionStore) Save(ctx context.Context, sessionID string, data []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := memoryEntry{data: make([]byte, len(data))}
	copy(entry.data, data)
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.entries[sessionID] = entry
	return nil
}

func (m *memorySessionStore) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, sessionID)
	return nil
}

func (m *memorySessionStore) Ping(ctx context.Context) error {
	return nil
}

func (m *memorySessionStore) Sweep(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for id, entry := range m.entries {
		if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
			delete(m.entries, id)
			removed++
		}
	}
	return removed, nil
}
