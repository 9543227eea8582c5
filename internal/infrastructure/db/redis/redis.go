package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultPingTimeout = 5 * time.Second
	defaultIOTimeout   = 3 * time.Second
)

// Config holds the connection settings for the throttle store.
type Config struct {
	Addr     string
	Password string
	DB       int
	// PoolSize <= 0 keeps the go-redis default of 10 per CPU.
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func (c Config) options() *redis.Options {
	return &redis.Options{
		Addr:         c.Addr,
		Password:     c.Password,
		DB:           c.DB,
		PoolSize:     c.PoolSize,
		DialTimeout:  orDefault(c.DialTimeout, defaultPingTimeout),
		ReadTimeout:  orDefault(c.ReadTimeout, defaultIOTimeout),
		WriteTimeout: orDefault(c.WriteTimeout, defaultIOTimeout),
	}
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}

// Connect opens a client and pings it within DialTimeout. The client is
// closed again when the ping fails.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	opts := cfg.options()
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}

	return client, nil
}
