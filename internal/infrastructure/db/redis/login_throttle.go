package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultMaxFailures   = 5
	DefaultFailureWindow = 15 * time.Minute
)

// LoginThrottle counts failed logins per email in Redis.
// Key format: login:fail:<email>
//
// The counter starts its window on the first failure and expires with it, so
// an email is locked out for at most one window after maxFailures misses.
type LoginThrottle struct {
	client      *redis.Client
	maxFailures int
	window      time.Duration
}

// NewLoginThrottle wraps client. maxFailures <= 0 disables throttling and a
// non-positive window falls back to DefaultFailureWindow.
func NewLoginThrottle(client *redis.Client, maxFailures int, window time.Duration) *LoginThrottle {
	if window <= 0 {
		window = DefaultFailureWindow
	}
	return &LoginThrottle{client: client, maxFailures: maxFailures, window: window}
}

// Allowed reports whether email is still under the failure limit.
func (t *LoginThrottle) Allowed(ctx context.Context, email string) (bool, error) {
	if t.disabled() {
		return true, nil
	}

	n, err := t.client.Get(ctx, t.key(email)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return true, nil
		}
		return false, fmt.Errorf("login throttle check: %w", err)
	}
	return n < t.maxFailures, nil
}

// RecordFailure increments the failure counter for email. INCR and EXPIRE NX
// run in one MULTI so the counter never outlives its window, and later
// failures do not extend it.
func (t *LoginThrottle) RecordFailure(ctx context.Context, email string) error {
	if t.disabled() {
		return nil
	}

	key := t.key(email)
	_, err := t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, t.window)
		return nil
	})
	if err != nil {
		return fmt.Errorf("login throttle record: %w", err)
	}
	return nil
}

// Reset clears the counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, email string) error {
	if t.disabled() {
		return nil
	}
	return t.client.Del(ctx, t.key(email)).Err()
}

func (t *LoginThrottle) disabled() bool {
	return t.maxFailures <= 0 || t.client == nil
}

func (t *LoginThrottle) key(email string) string {
	return fmt.Sprintf("login:fail:%s", email)
}
