package sessions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	keys    map[string]time.Duration
	failErr error
}

func (f *fakeRedis) Exists(_ context.Context, keys ...string) *redis.IntCmd {
	if f.failErr != nil {
		return redis.NewIntResult(0, f.failErr)
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.keys[k]; ok {
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, _ any, ttl time.Duration) *redis.StatusCmd {
	if f.failErr != nil {
		return redis.NewStatusResult("", f.failErr)
	}
	f.keys[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func TestRedisRevoker(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	fake := &fakeRedis{keys: map[string]time.Duration{}}
	r := NewRedisRevoker(fake)
	r.nowTime = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, r.Revoke(ctx, "abc", now.Add(30*time.Minute)))
	require.Equal(t, 30*time.Minute, fake.keys["session:revoked:abc"])

	revoked, err := r.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	require.True(t, revoked)

	revoked, err = r.IsRevoked(ctx, "other")
	require.NoError(t, err)
	require.False(t, revoked)

	// already expired sessions are not stored
	require.NoError(t, r.Revoke(ctx, "stale", now.Add(-time.Second)))
	require.NotContains(t, fake.keys, "session:revoked:stale")
}

func TestRedisRevoker_Errors(t *testing.T) {
	fake := &fakeRedis{keys: map[string]time.Duration{}, failErr: errors.New("connection refused")}
	r := NewRedisRevoker(fake)
	ctx := context.Background()

	_, err := r.IsRevoked(ctx, "abc")
	require.ErrorContains(t, err, "connection refused")
	require.ErrorContains(t, r.Revoke(ctx, "abc", time.Now().Add(time.Hour)), "connection refused")
}
