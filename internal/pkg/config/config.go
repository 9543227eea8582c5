package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// minSecretLength mirrors the token service's HS256 key requirement.
const minSecretLength = 32

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`

	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
}

type AuthConfig struct {
	JWTSecret         string        `env:"JWT_SECRET"`
	JWTIssuer         string        `env:"JWT_ISSUER,           default=library-system"`
	TokenTTL          time.Duration `env:"TOKEN_TTL,            default=24h"`
	MinPasswordLength int           `env:"MIN_PASSWORD_LENGTH,  default=8"`
	BcryptCost        int           `env:"BCRYPT_COST,          default=10"`
	LoginMaxFailures  int           `env:"LOGIN_MAX_FAILURES,   default=5"`
	LoginWindow       time.Duration `env:"LOGIN_FAILURE_WINDOW, default=15m"`
	RateLimit         float64       `env:"AUTH_RATE_LIMIT,      default=5"`
	AuditWorkers      int           `env:"AUDIT_WORKERS,        default=4"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=library"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR,      default=localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,        default=0"`
	PoolSize int           `env:"REDIS_POOL_SIZE, default=10"`
	Timeout  time.Duration `env:"REDIS_TIMEOUT,   default=3s"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot run safely with.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Auth.JWTSecret) < minSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", minSecretLength))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.Auth.MinPasswordLength < 1 {
		errs = append(errs, errors.New("MIN_PASSWORD_LENGTH must be at least 1"))
	}
	if c.Auth.LoginMaxFailures < 0 {
		errs = append(errs, errors.New("LOGIN_MAX_FAILURES must not be negative"))
	}
	if c.Auth.RateLimit < 0 {
		errs = append(errs, errors.New("AUTH_RATE_LIMIT must not be negative"))
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, errors.New("REDIS_POOL_SIZE must be at least 1"))
	}
	if c.Redis.Timeout <= 0 {
		errs = append(errs, errors.New("REDIS_TIMEOUT must be positive"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// PrettyLogs reports whether console output is wanted. Production always
// logs JSON, whatever LOG_PRETTY says.
func (c *Config) PrettyLogs() bool {
	return c.LogPretty && !c.IsProduction()
}
