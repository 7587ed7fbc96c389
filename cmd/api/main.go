// Copyright (c) 2026 Gravity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Gravity auth HTTP server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Open the user store (MongoDB, or PostgreSQL plus migrations).
//  4. Build the password hasher, token service and mailer.
//  5. Wire HTTP handlers.
//  6. Start HTTP server with graceful shutdown.
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

	"github.com/taibuivan/gravity/internal/api"
	"github.com/taibuivan/gravity/internal/platform/config"
	"github.com/taibuivan/gravity/internal/platform/constants"
	"github.com/taibuivan/gravity/internal/platform/mailer"
	"github.com/taibuivan/gravity/internal/platform/migration"
	"github.com/taibuivan/gravity/internal/platform/mongodb"
	pgstore "github.com/taibuivan/gravity/internal/platform/postgres"
	"github.com/taibuivan/gravity/internal/platform/sec"
	"github.com/taibuivan/gravity/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("store", cfg.StoreDriver),
		slog.Bool("admin_enabled", cfg.AdminEnabled()),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. User Store ─────────────────────────────────────────────────────
	users, closeStore, err := openStore(startupCtx, cfg, log)
	must(log, err, "open user store")
	defer closeStore()

	// ── 4. Security & Mail ────────────────────────────────────────────────
	hasher, err := sec.NewPasswordHasher(cfg.BcryptCost)
	must(log, err, "initialize password hasher")

	admin := auth.AdminCredentials{}
	adminKey := sec.SigningKey{}
	if cfg.AdminEnabled() {
		admin = auth.AdminCredentials{Email: cfg.AdminEmail, Password: cfg.AdminPassword}
		adminKey = sec.SigningKey{Secret: cfg.AdminTokenSecret, TTL: cfg.AdminTokenExpiry}
	}

	tokens, err := sec.NewTokenService(constants.AuthIssuer,
		sec.SigningKey{Secret: cfg.AccessTokenSecret, TTL: cfg.AccessTokenExpiry},
		sec.SigningKey{Secret: cfg.RefreshTokenSecret, TTL: cfg.RefreshTokenExpiry},
		adminKey,
	)
	must(log, err, "initialize token service")

	var sender mailer.Sender = mailer.NewLogSender(log)
	if cfg.SMTP.Host != "" {
		smtpClient, err := mailer.NewSMTPClient(cfg.SMTP)
		must(log, err, "initialize smtp client")
		sender = smtpClient
	} else {
		log.Warn("smtp_not_configured", slog.String("fallback", "log"))
	}

	// ── 5. Domain Wiring ──────────────────────────────────────────────────
	authService := auth.NewService(auth.ServiceDeps{
		Users:  users,
		Hasher: hasher,
		Tokens: tokens,
		Mailer: sender,
		Policy: auth.Policy{
			PasswordMinLength:    cfg.PasswordMinLength,
			ResetTokenTTL:        cfg.ResetTokenExpiry,
			ResetURL:             cfg.PasswordResetURL,
			StrictForgotPassword: cfg.ForgotPasswordStrict,
		},
		Admin:  admin,
		Logger: log,
	})
	authHandler := auth.NewHandler(authService, tokens,
		auth.NewCookiePolicy(cfg.IsProduction(), cfg.AccessTokenExpiry, cfg.RefreshTokenExpiry))

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		StoreName:  cfg.StoreDriver,
		CheckStore: users.Ping,
	}, log)

	// ── 6. HTTP Server ────────────────────────────────────────────────────
	server := api.NewServer(api.Options{Port: cfg.ServerPort, CORS: cfg}, log, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
	})

	// ── 7. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	exitCode := 0
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
		exitCode = 1
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting_down_server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
		exitCode = 1
	}

	// Let queued password reset mails finish before the store closes.
	authService.Wait()

	if exitCode != 0 {
		closeStore()
		os.Exit(exitCode)
	}
	log.Info("server_stopped_cleanly")
}

// openStore connects the configured user store and returns it with its
// release function.
func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (auth.UserRepository, func(), error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, nil, err
		}

		if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
			pool.Close()
			return nil, nil, err
		}

		release := func() {
			log.Info("closing_postgres_pool")
			pool.Close()
		}
		return auth.NewPostgresUserRepository(pool), release, nil

	default:
		client, err := mongodb.NewClient(ctx, cfg.MongoURL, log)
		if err != nil {
			return nil, nil, err
		}

		repository, err := auth.NewMongoUserRepository(ctx, client.Database(cfg.MongoDatabase))
		if err != nil {
			_ = client.Disconnect(context.WithoutCancel(ctx))
			return nil, nil, err
		}

		release := func() {
			log.Info("closing_mongo_client")
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(disconnectCtx); err != nil {
				log.Error("mongo_disconnect_error", slog.Any("error", err))
			}
		}
		return repository, release, nil
	}
}

func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.AppName))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
