// Copyright (c) 2026 Sentra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Sentra HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Build the guard manager (guards, providers, session infrastructure).
//  7. Wire HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
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

	"github.com/taibuivan/sentra/internal/api"
	"github.com/taibuivan/sentra/internal/auth"
	"github.com/taibuivan/sentra/internal/platform/config"
	"github.com/taibuivan/sentra/internal/platform/constants"
	"github.com/taibuivan/sentra/internal/platform/migration"
	pgstore "github.com/taibuivan/sentra/internal/platform/postgres"
	redisstore "github.com/taibuivan/sentra/internal/platform/redis"
	"github.com/taibuivan/sentra/internal/platform/sec"
	"github.com/taibuivan/sentra/internal/platform/session"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "sentra"))
	slog.SetDefault(log)

	log.Info("[Sentra] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "sentra"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Guard Manager ──────────────────────────────────────────────────
	codec, err := sec.NewCookieCodec(cfg.AppKey)
	must(log, err, "initialize cookie codec")

	sessions := session.NewManager(rdb, codec, constants.SessionTTL)

	manager, err := auth.NewManager(auth.Config{
		Default: cfg.DefaultGuard,
		Guards: map[string]auth.GuardMapping{
			// Browser traffic: cookie session plus remember-me.
			"web": {
				Driver:   auth.DriverSession,
				Provider: auth.ProviderMapping{Driver: auth.ProviderDatabase},
			},
			// Programmatic clients: revocable opaque bearer tokens.
			"api": {
				Driver:     auth.DriverOAT,
				Provider:   auth.ProviderMapping{Driver: auth.ProviderDatabase},
				TokenStore: auth.TokenStoreRedis,
			},
			// Internal tooling: credentials on every request.
			"basic": {
				Driver:   auth.DriverBasic,
				Provider: auth.ProviderMapping{Driver: auth.ProviderDatabase},
			},
		},
	}, auth.Dependencies{
		Pool:    pool,
		Redis:   rdb,
		Hasher:  sec.BcryptHasher{},
		Emitter: &auth.LogEmitter{Logger: log},
		Sessions: func(w http.ResponseWriter, r *http.Request) auth.SessionStore {
			return sessions.ForRequest(w, r)
		},
		Cookies: func(w http.ResponseWriter, r *http.Request) auth.CookieJar {
			return session.NewCookieJar(w, r, codec, cfg.IsProduction())
		},
	})
	must(log, err, "build guard manager")

	// Optional "jwt" guard driver, registered through the manager's
	// extension point when an RSA key pair is configured.
	if cfg.JWTPrivKeyPath != "" && cfg.JWTPubKeyPath != "" {
		jwtSvc, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
		must(log, err, "initialize jwt service")

		manager.Extend("jwt", func(gc auth.GuardContext) (auth.Guard, error) {
			return auth.NewJWTGuard(gc.Name, gc.Provider, jwtSvc, gc.Request, time.Hour), nil
		})
		log.Info("jwt_guard_driver_registered")
	}

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	authHandler := auth.NewHandler(manager, "web", "api")

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
	}

	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, manager, handlers)

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

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
