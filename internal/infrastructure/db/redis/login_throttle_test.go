package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const throttledEmail = "john@example.com"

func newTestThrottle(t *testing.T, maxFailures int, window time.Duration) (*LoginThrottle, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLoginThrottle(client, maxFailures, window), mr
}

func recordFailures(t *testing.T, lt *LoginThrottle, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, lt.RecordFailure(context.Background(), throttledEmail))
	}
}

func TestLoginThrottle_Key(t *testing.T) {
	lt := NewLoginThrottle(nil, 3, time.Minute)

	assert.Equal(t, "login:fail:john@example.com", lt.key(throttledEmail))
	assert.NotEqual(t, lt.key("John@example.com"), lt.key(throttledEmail), "keys are case sensitive like email lookup")
}

func TestLoginThrottle_DefaultWindow(t *testing.T) {
	lt := NewLoginThrottle(nil, 3, 0)
	assert.Equal(t, DefaultFailureWindow, lt.window)
}

func TestLoginThrottle_DisabledNeverTouchesRedis(t *testing.T) {
	ctx := context.Background()
	lt := NewLoginThrottle(nil, 0, time.Minute)

	recordFailures(t, lt, 10)
	ok, err := lt.Allowed(ctx, throttledEmail)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, lt.Reset(ctx, throttledEmail))
}

func TestLoginThrottle_UnderLimit(t *testing.T) {
	lt, mr := newTestThrottle(t, 3, time.Minute)

	ok, err := lt.Allowed(context.Background(), throttledEmail)
	require.NoError(t, err)
	assert.True(t, ok, "no failures recorded yet")

	recordFailures(t, lt, 2)
	ok, err = lt.Allowed(context.Background(), throttledEmail)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := mr.Get(lt.key(throttledEmail))
	require.NoError(t, err)
	assert.Equal(t, "2", got)
}

func TestLoginThrottle_AtLimit(t *testing.T) {
	lt, _ := newTestThrottle(t, 3, time.Minute)

	recordFailures(t, lt, 3)
	ok, err := lt.Allowed(context.Background(), throttledEmail)
	require.NoError(t, err)
	assert.False(t, ok)

	other, err := lt.Allowed(context.Background(), "jane@example.com")
	require.NoError(t, err)
	assert.True(t, other, "counters are per email")
}

func TestLoginThrottle_ResetClearsCounter(t *testing.T) {
	lt, mr := newTestThrottle(t, 3, time.Minute)
	recordFailures(t, lt, 3)

	require.NoError(t, lt.Reset(context.Background(), throttledEmail))
	assert.False(t, mr.Exists(lt.key(throttledEmail)))

	ok, err := lt.Allowed(context.Background(), throttledEmail)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoginThrottle_WindowStartsOnFirstFailure(t *testing.T) {
	lt, mr := newTestThrottle(t, 3, time.Minute)
	key := lt.key(throttledEmail)

	recordFailures(t, lt, 1)
	assert.Equal(t, time.Minute, mr.TTL(key), "first failure sets the window")

	mr.FastForward(10 * time.Second)
	recordFailures(t, lt, 1)
	assert.Equal(t, 50*time.Second, mr.TTL(key), "later failures keep the original deadline")
}

func TestLoginThrottle_WindowExpiryUnlocks(t *testing.T) {
	lt, mr := newTestThrottle(t, 3, time.Minute)
	recordFailures(t, lt, 3)

	mr.FastForward(time.Minute)
	assert.False(t, mr.Exists(lt.key(throttledEmail)))

	ok, err := lt.Allowed(context.Background(), throttledEmail)
	require.NoError(t, err)
	assert.True(t, ok)

	recordFailures(t, lt, 1)
	assert.Equal(t, time.Minute, mr.TTL(lt.key(throttledEmail)), "a new window starts after expiry")
}

func TestLoginThrottle_RedisErrors(t *testing.T) {
	lt, mr := newTestThrottle(t, 3, time.Minute)
	mr.SetError("ERR server unavailable")

	_, err := lt.Allowed(context.Background(), throttledEmail)
	assert.ErrorContains(t, err, "login throttle check")

	err = lt.RecordFailure(context.Background(), throttledEmail)
	assert.ErrorContains(t, err, "login throttle record")
}
