package sessions

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revoker records session ids that were logged out before they expired.
type Revoker interface {
	Revoke(ctx context.Context, id string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, id string) (bool, error)
}

// MemoryRevoker keeps revoked ids in process memory until they would have expired.
// Every Revoke drops the ids that already have.
type MemoryRevoker struct {
	revoked map[string]time.Time
	mu      sync.RWMutex
	nowTime func() time.Time
}

type MemoryRevokerOption func(*MemoryRevoker)

func WithRevokerNowTime(nowFunc func() time.Time) MemoryRevokerOption {
	return func(r *MemoryRevoker) {
		r.nowTime = nowFunc
	}
}

func NewMemoryRevoker(options ...MemoryRevokerOption) *MemoryRevoker {
	r := &MemoryRevoker{
		revoked: make(map[string]time.Time),
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *MemoryRevoker) Revoke(_ context.Context, id string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked()
	r.revoked[id] = expiresAt
	return nil
}

func (r *MemoryRevoker) IsRevoked(_ context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.revoked[id]
	return ok, nil
}

// Cleanup drops ids whose sessions have expired anyway.
func (r *MemoryRevoker) Cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked()
}

func (r *MemoryRevoker) pruneLocked() {
	now := r.nowTime()
	for id, exp := range r.revoked {
		if !now.Before(exp) {
			delete(r.revoked, id)
		}
	}
}

// Len reports how many ids are currently held.
func (r *MemoryRevoker) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.revoked)
}

// redisCmds is the part of the go-redis client the revoker uses.
type redisCmds interface {
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// RedisRevoker shares the revocation list between server instances. Keys expire
// when the session would have, so the set never outgrows the live sessions.
// Key format: session:revoked:<id>
type RedisRevoker struct {
	client  redisCmds
	nowTime func() time.Time
}

func NewRedisRevoker(client redisCmds) *RedisRevoker {
	return &RedisRevoker{client: client, nowTime: time.Now}
}

func (r *RedisRevoker) Revoke(ctx context.Context, id string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(r.nowTime())
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, r.key(id), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, id string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(id)).Result()
	if err != nil {
		return false, fmt.Errorf("revocation check: %w", err)
	}
	return n > 0, nil
}

func (r *RedisRevoker) key(id string) string {
	return "session:revoked:" + id
}
