package repository

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"trading_academy_backend/internal/model"
	"trading_academy_backend/internal/util"

	"github.com/go-redis/redis/v8"
)

// SessionRepository persists the signed-in flag of a session, keyed by
// session id. It is the only persisted state of the service.
type SessionRepository interface {
	Save(ctx context.Context, s *model.Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (*model.Session, error)
	Delete(ctx context.Context, id string) error
}

type RedisSessionRepository struct {
	Client *redis.Client
	Prefix string
}

func NewRedisSessionRepository(rdb *redis.Client, prefix string) *RedisSessionRepository {
	return &RedisSessionRepository{Client: rdb, Prefix: prefix}
}

func (r *RedisSessionRepository) key(id string) string {
	return r.Prefix + id
}

func (r *RedisSessionRepository) Save(ctx context.Context, s *model.Session, ttl time.Duration) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, r.key(s.ID), data, ttl).Err()
}

func (r *RedisSessionRepository) Get(ctx context.Context, id string) (*model.Session, error) {
	data, err := r.Client.Get(ctx, r.key(id)).Bytes()
	if err == redis.Nil {
		return nil, util.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var s model.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *RedisSessionRepository) Delete(ctx context.Context, id string) error {
	return r.Client.Del(ctx, r.key(id)).Err()
}

type memorySession struct {
	session   model.Session
	expiresAt time.Time
}

// MemorySessionRepository keeps sessions in process memory; used when Redis
// is disabled and in tests.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]memorySession
	Now      func() time.Time
}

func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[string]memorySession),
		Now:      time.Now,
	}
}

func (r *MemorySessionRepository) Save(ctx context.Context, s *model.Session, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := memorySession{session: *s}
	if ttl > 0 {
		entry.expiresAt = r.Now().Add(ttl)
	}
	r.sessions[s.ID] = entry
	return nil
}

func (r *MemorySessionRepository) Get(ctx context.Context, id string) (*model.Session, error) {
	r.mu.RLock()
	entry, ok := r.sessions[id]
	r.mu.RUnlock()

	if !ok {
		return nil, util.ErrSessionNotFound
	}
	if !entry.expiresAt.IsZero() && r.Now().After(entry.expiresAt) {
		r.Delete(ctx, id)
		return nil, util.ErrSessionNotFound
	}
	s := entry.session
	return &s, nil
}

func (r *MemorySessionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
	return nil
}
