// README: Session stores: in-process map for single instances, Redis with TTL for shared deployments.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("session not found")

const sessionKeyPrefix = "session:%s"

type Store interface {
	Get(ctx context.Context, id string) (Session, error)
	Save(ctx context.Context, s Session) error
}

// Load returns the stored session for id, or a fresh one when id is empty,
// malformed or expired.
func Load(ctx context.Context, store Store, id string) (Session, error) {
	if id == "" || !ValidID(id) {
		return New(), nil
	}
	s, err := store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		fresh := New()
		fresh.ID = id
		return fresh, nil
	}
	return s, err
}

type memoryItem struct {
	session   Session
	expiresAt time.Time
}

type MemoryStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]memoryItem
	now   func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, items: make(map[string]memoryItem), now: time.Now}
}

func (m *MemoryStore) Get(_ context.Context, id string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	if m.ttl > 0 && m.now().After(item.expiresAt) {
		delete(m.items, id)
		return Session{}, ErrNotFound
	}
	return item.session, nil
}

func (m *MemoryStore) Save(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[s.ID] = memoryItem{session: s, expiresAt: m.now().Add(m.ttl)}
	return nil
}

type RedisStore struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisStore(redis *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{redis: redis, ttl: ttl}
}

func (r *RedisStore) Get(ctx context.Context, id string) (Session, error) {
	val, err := r.redis.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, err
	}
	var s Session
	if err := json.Unmarshal(val, &s); err != nil {
		return Session{}, fmt.Errorf("decode session %s: %w", id, err)
	}
	return s, nil
}

// Save refreshes the TTL on every write.
func (r *RedisStore) Save(ctx context.Context, s Session) error {
	val, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.redis.Set(ctx, sessionKey(s.ID), val, r.ttl).Err()
}

func sessionKey(id string) string {
	return fmt.Sprintf(sessionKeyPrefix, id)
}
