package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodSecret = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": goodSecret,
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.LogPretty)
	assert.Equal(t, "library-system", cfg.Auth.JWTIssuer)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 8, cfg.Auth.MinPasswordLength)
	assert.Equal(t, 5, cfg.Auth.LoginMaxFailures)
	assert.Equal(t, 15*time.Minute, cfg.Auth.LoginWindow)
	assert.Equal(t, 4, cfg.Auth.AuditWorkers)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	assert.Equal(t, "library", cfg.Mongo.Database)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Empty(t, cfg.Redis.Password)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
	assert.Equal(t, 3*time.Second, cfg.Redis.Timeout)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":           goodSecret,
		"ENV":                  "production",
		"TOKEN_TTL":            "1h",
		"MIN_PASSWORD_LENGTH":  "12",
		"LOGIN_MAX_FAILURES":   "0",
		"LOGIN_FAILURE_WINDOW": "5m",
		"AUTH_RATE_LIMIT":      "2.5",
		"MONGO_DB":             "library_test",
		"REDIS_DB":             "3",
		"REDIS_PASSWORD":       "s3cret",
		"REDIS_POOL_SIZE":      "32",
		"REDIS_TIMEOUT":        "500ms",
	}))
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 12, cfg.Auth.MinPasswordLength)
	assert.Equal(t, 0, cfg.Auth.LoginMaxFailures)
	assert.Equal(t, 5*time.Minute, cfg.Auth.LoginWindow)
	assert.InDelta(t, 2.5, cfg.Auth.RateLimit, 1e-9)
	assert.Equal(t, "library_test", cfg.Mongo.Database)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, "s3cret", cfg.Redis.Password)
	assert.Equal(t, 32, cfg.Redis.PoolSize)
	assert.Equal(t, 500*time.Millisecond, cfg.Redis.Timeout)
}

func TestLoad_RejectsWeakSecret(t *testing.T) {
	for _, secret := range []string{"", "short"} {
		_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
			"JWT_SECRET": secret,
		}))
		require.Error(t, err, "secret %q", secret)
		assert.Contains(t, err.Error(), "JWT_SECRET")
	}
}

func TestLoad_MalformedDuration(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": goodSecret,
		"TOKEN_TTL":  "forever",
	}))
	require.Error(t, err)
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := &Config{Auth: AuthConfig{TokenTTL: -time.Second, LoginMaxFailures: -1, RateLimit: -1}}

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"JWT_SECRET", "TOKEN_TTL", "MIN_PASSWORD_LENGTH", "LOGIN_MAX_FAILURES", "AUTH_RATE_LIMIT", "REDIS_POOL_SIZE", "REDIS_TIMEOUT"} {
		assert.True(t, strings.Contains(err.Error(), want), "missing %s in %q", want, err)
	}
}

func TestPrettyLogs(t *testing.T) {
	cases := []struct {
		env    string
		pretty bool
		want   bool
	}{
		{"development", true, true},
		{"development", false, false},
		{"production", true, false},
		{"production", false, false},
	}
	for _, tc := range cases {
		cfg := &Config{Env: tc.env, LogPretty: tc.pretty}
		assert.Equal(t, tc.want, cfg.PrettyLogs(), "ENV=%s LOG_PRETTY=%v", tc.env, tc.pretty)
	}
}
