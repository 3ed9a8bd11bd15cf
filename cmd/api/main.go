// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the greeter HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis when it backs the session or remember-me store.
//  5. Run database migrations (idempotent).
//  6. Wire stores, services and the guest account.
//  7. Start the rate-limit sweeper, the session purge and the HTTP server with
//     graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/taibuivan/greeter/internal/api"
	"github.com/taibuivan/greeter/internal/greeting"
	"github.com/taibuivan/greeter/internal/platform/config"
	"github.com/taibuivan/greeter/internal/platform/constants"
	"github.com/taibuivan/greeter/internal/platform/metrics"
	"github.com/taibuivan/greeter/internal/platform/migration"
	pgstore "github.com/taibuivan/greeter/internal/platform/postgres"
	redisstore "github.com/taibuivan/greeter/internal/platform/redis"
	"github.com/taibuivan/greeter/internal/platform/sec"
	"github.com/taibuivan/greeter/internal/ratelimit"
	"github.com/taibuivan/greeter/internal/users/auth"
	"github.com/taibuivan/greeter/internal/users/rememberme"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("remember_me_store", cfg.RememberMeStore),
		slog.String("session_store", cfg.SessionStore),
		slog.Int("rate_limit_capacity", cfg.RateLimitCapacity),
	)

	// Startup deadline so misconfiguration fails fast instead of hanging.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	readinessChecks := []api.ReadinessCheck{{
		Name: "postgres",
		Ping: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) },
	}}

	// ── 4. Redis (optional) ───────────────────────────────────────────────
	var rdb *goredis.Client
	if cfg.UsesRedis() {
		rdb, err = redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing redis client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()

		readinessChecks = append(readinessChecks, api.ReadinessCheck{
			Name: "redis",
			Ping: func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) },
		})
	}

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Metrics ────────────────────────────────────────────────────────
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	authService := auth.NewService(auth.NewUserRepository(pool))

	guest, err := authService.EnsureGuest(startupCtx)
	must(log, err, "bootstrap guest account")
	log.Info("guest_account_ready", slog.Int64("guest_id", guest.ID))

	tokenRepository := newTokenRepository(cfg, pool, rdb)
	rememberMe := rememberme.NewService(rememberme.NewEngine(tokenRepository), cfg.RememberMeValidity())

	signer := sec.NewSessionSigner(cfg.SessionSecret, cfg.RememberMeKey, constants.SessionIssuer, cfg.SessionTTL)
	sessions := auth.NewSessions(signer, newSessionRepository(cfg, pool, rdb), rememberMe, authService, collector, auth.SessionOptions{
		Secure:         cfg.IsProduction(),
		AlwaysRemember: cfg.RememberMeAlways,
	})

	greetingService := greeting.NewService(greeting.NewPostgresStore(pool))

	// ── 8. Rate Limiter and Session Purge ─────────────────────────────────
	limiter := ratelimit.New(ratelimit.Config{
		Capacity: cfg.RateLimitCapacity,
		Period:   constants.RateLimitPeriod,
		IdleTTL:  cfg.RateLimitIdleTTL,
	}, ratelimit.SystemClock)
	collector.WatchBuckets(limiter.Len)

	runCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()
	go limiter.Run(runCtx, constants.RateLimitSweepInterval)
	go sessions.RunPurge(runCtx, constants.SessionPurgeInterval, log)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	liveness, readiness := api.NewHealthHandlers(readinessChecks, log)

	server := api.NewServer(cfg, log,
		api.Guard{Sessions: sessions, Limiter: limiter, Metrics: collector},
		api.Handlers{
			Liveness:  liveness,
			Readiness: readiness,
			Metrics:   metrics.Handler(registry),
			Auth:      auth.NewHandler(authService, sessions),
			Greeting:  greeting.NewHandler(greetingService, guest.ID),
		},
	)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	stopBackground()

	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// newTokenRepository selects the remember-me backend named by REMEMBER_ME_STORE.
func newTokenRepository(cfg *config.Config, pool pgstore.DB, rdb *goredis.Client) rememberme.TokenRepository {
	switch cfg.RememberMeStore {
	case config.StoreRedis:
		return rememberme.NewRedisTokenRepository(rdb)
	case config.StoreMemory:
		return rememberme.NewMemoryTokenRepository()
	default:
		return rememberme.NewPostgresTokenRepository(pool)
	}
}

// newSessionRepository selects the session record backend named by SESSION_STORE.
func newSessionRepository(cfg *config.Config, pool pgstore.DB, rdb *goredis.Client) auth.SessionRepository {
	switch cfg.SessionStore {
	case config.StoreRedis:
		return auth.NewRedisSessionRepository(rdb)
	case config.StoreMemory:
		return auth.NewMemorySessionRepository()
	default:
		return auth.NewSessionRepository(pool)
	}
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned and
// handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
