package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Session is the server-side half of a login. Tokens are only honored while
// their session exists.
type Session struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Sessions stores sessions and failed-login counters.
type Sessions interface {
	Create(ctx context.Context, s Session, ttl time.Duration) error
	// Get returns ErrSessionNotFound for a missing or expired session.
	Get(ctx context.Context, id uuid.UUID) (*Session, error)
	Touch(ctx context.Context, id uuid.UUID, ttl time.Duration) error
	Delete(ctx context.Context, id uuid.UUID) error

	// RecordFailure bumps the counter for key, starting a window of length
	// window on the first failure, and returns the new count.
	RecordFailure(ctx context.Context, key string, window time.Duration) (int64, error)
	Failures(ctx context.Context, key string) (int64, error)
	ResetFailures(ctx context.Context, key string) error
}

func redisKeySession(id uuid.UUID) string { return "session:" + id.String() }

func redisKeyFailures(key string) string { return "login:failures:" + key }

// RedisSessions keeps sessions as JSON values with a TTL.
type RedisSessions struct {
	rdb *redis.Client
}

func NewRedisSessions(rdb *redis.Client) *RedisSessions {
	return &RedisSessions{rdb: rdb}
}

func (r *RedisSessions) Create(ctx context.Context, s Session, ttl time.Duration) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.rdb.Set(ctx, redisKeySession(s.ID), b, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (r *RedisSessions) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	b, err := r.rdb.Get(ctx, redisKeySession(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

func (r *RedisSessions) Touch(ctx context.Context, id uuid.UUID, ttl time.Duration) error {
	ok, err := r.rdb.Expire(ctx, redisKeySession(id), ttl).Result()
	if err != nil {
		return fmt.Errorf("extend session: %w", err)
	}
	if !ok {
		return ErrSessionNotFound
	}
	return nil
}

func (r *RedisSessions) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.rdb.Del(ctx, redisKeySession(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *RedisSessions) RecordFailure(ctx context.Context, key string, window time.Duration) (int64, error) {
	k := redisKeyFailures(key)
	pipe := r.rdb.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("record login failure: %w", err)
	}
	return incr.Val(), nil
}

func (r *RedisSessions) Failures(ctx context.Context, key string) (int64, error) {
	n, err := r.rdb.Get(ctx, redisKeyFailures(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read login failures: %w", err)
	}
	return n, nil
}

func (r *RedisSessions) ResetFailures(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, redisKeyFailures(key)).Err()
}

// MemorySessions is the single-process Sessions used when no Redis is
// configured.
type MemorySessions struct {
	mu       sync.Mutex
	now      func() time.Time
	sessions map[uuid.UUID]memoryEntry[Session]
	failures map[string]memoryEntry[int64]
}

type memoryEntry[T any] struct {
	value   T
	expires time.Time
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{
		now:      time.Now,
		sessions: map[uuid.UUID]memoryEntry[Session]{},
		failures: map[string]memoryEntry[int64]{},
	}
}

func (m *MemorySessions) Create(ctx context.Context, s Session, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = memoryEntry[Session]{value: s, expires: m.now().Add(ttl)}
	return nil
}

func (m *MemorySessions) live(id uuid.UUID) (memoryEntry[Session], bool) {
	e, ok := m.sessions[id]
	if !ok || !m.now().Before(e.expires) {
		delete(m.sessions, id)
		return e, false
	}
	return e, true
}

func (m *MemorySessions) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.live(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	s := e.value
	return &s, nil
}

func (m *MemorySessions) Touch(ctx context.Context, id uuid.UUID, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.live(id)
	if !ok {
		return ErrSessionNotFound
	}
	e.expires = m.now().Add(ttl)
	m.sessions[id] = e
	return nil
}

func (m *MemorySessions) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MemorySessions) RecordFailure(ctx context.Context, key string, window time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.failures[key]
	if !ok || !m.now().Before(e.expires) {
		e = memoryEntry[int64]{expires: m.now().Add(window)}
	}
	e.value++
	m.failures[key] = e
	return e.value, nil
}

func (m *MemorySessions) Failures(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.failures[key]
	if !ok || !m.now().Before(e.expires) {
		return 0, nil
	}
	return e.value, nil
}

func (m *MemorySessions) ResetFailures(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.failures, key)
	return nil
}
