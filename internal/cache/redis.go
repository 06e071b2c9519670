// Package cache connects to the Redis instance holding the shared session revocation list.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTimeout = 5 * time.Second

type Options struct {
	Addr    string
	DB      int
	Timeout time.Duration
}

// Connect returns a Redis client after confirming the server answers a ping.
func Connect(ctx context.Context, opts Options) (*redis.Client, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr: opts.Addr,
		DB:   opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("[cache Connect] ping %s: %w", opts.Addr, err)
	}
	return client, nil
}
