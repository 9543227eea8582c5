// @title        Library API
// @version      1.0
// @description  Book and client management behind email/password authentication.
// @BasePath     /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	_ "github.com/biblioteca/library-system/docs"
	"github.com/biblioteca/library-system/internal/api"
	"github.com/biblioteca/library-system/internal/api/handler"
	"github.com/biblioteca/library-system/internal/core/service"
	mongodb "github.com/biblioteca/library-system/internal/infrastructure/db/mongo"
	redisdb "github.com/biblioteca/library-system/internal/infrastructure/db/redis"
	"github.com/biblioteca/library-system/internal/infrastructure/queue"
	"github.com/biblioteca/library-system/internal/pkg/config"
	"github.com/biblioteca/library-system/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		// logger may not be initialised yet
		_, _ = os.Stderr.WriteString("library-api: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.PrettyLogs(),
		Service: "library-api",
	})

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		ReadTimeout:  cfg.Redis.Timeout,
		WriteTimeout: cfg.Redis.Timeout,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	users := mongodb.NewUserRepository(db)
	books := mongodb.NewBookRepository(db)
	clients := mongodb.NewClientRepository(db)
	audits := mongodb.NewAuditRepository(db)
	if err := mongodb.EnsureIndexes(ctx, users, books, clients, audits); err != nil {
		return err
	}

	// --- Audit trail ---
	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	dispatcher := queue.NewAuditDispatcher(cfg.Auth.AuditWorkers, audits, log)
	dispatcher.Start(dispatchCtx)

	// --- Services ---
	tokens, err := service.NewJWTTokenService(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL, log)
	if err != nil {
		stopDispatch()
		return err
	}
	authService := service.NewAuthService(
		users,
		service.NewBcryptHasher(cfg.Auth.BcryptCost),
		tokens,
		log,
		service.WithLoginThrottle(redisdb.NewLoginThrottle(rdb, cfg.Auth.LoginMaxFailures, cfg.Auth.LoginWindow)),
		service.WithAuditRecorder(dispatcher),
		service.WithMinPasswordLength(cfg.Auth.MinPasswordLength),
	)

	router := api.NewRouter(api.Dependencies{
		Auth:    authService,
		Books:   service.NewBookService(books, clients, log),
		Clients: service.NewClientService(clients, log),
		Readiness: map[string]handler.Pinger{
			"mongodb": func(ctx context.Context) error {
				return db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
			},
			"redis": func(ctx context.Context) error {
				return rdb.Ping(ctx).Err()
			},
		},
		AuthRateLimit: cfg.Auth.RateLimit,
		Log:           log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case serveErr = <-errCh:
		if serveErr != nil {
			log.Error().Err(serveErr).Msg("http server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}

	stopDispatch()
	dispatcher.Wait()
	log.Info().Msg("shutdown complete")
	return serveErr
}
