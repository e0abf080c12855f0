// Package server initializes and runs the academy backend: configuration,
// database and migrations, the credential services and the HTTP server, with
// graceful shutdown on interrupt.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tatame/backend/internal/logging"
	"github.com/tatame/backend/internal/server/auth"
	"github.com/tatame/backend/internal/server/config"
	"github.com/tatame/backend/internal/server/mail"
	"github.com/tatame/backend/internal/server/repositories/repomanager"
	"github.com/tatame/backend/internal/server/security"
	"github.com/tatame/backend/internal/server/services"
	"github.com/tatame/backend/internal/server/web"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *http.Server
}

// NewApp wires the application. A missing signing secret or an unreachable
// database is fatal: the credential subsystem must not start degraded.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	signer, err := auth.NewSigner([]byte(cfg.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("signer init error: %w", err)
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	tokens := services.NewTokenService(db, repos, signer, logger, cfg)
	hasher := security.NewArgon2Hasher()
	mailer := mail.NewLogDispatcher(logger)
	authService := services.NewAuthService(db, repos, tokens, signer, hasher, mailer, logger)

	handler := web.NewAuthHandler(authService, logger)
	router := web.NewRouter(handler, authService, db, logger)

	srv := &http.Server{
		Addr:    cfg.EndpointAddrHTTP,
		Handler: router,
	}

	return &App{config: cfg, logger: logger, db: db, server: srv}, nil
}

// Run serves HTTP until the context is cancelled or an interrupt arrives,
// then shuts down gracefully.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()
	defer app.db.Close()

	app.logger.Info(ctx, "starting server", "addr", app.config.EndpointAddrHTTP)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- app.server.ListenAndServe()
	}()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		app.logger.Info(ctx, "shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := app.server.Shutdown(shutdownCtx); err != nil {
			return err
		}

		app.logger.Info(ctx, "shutdown completed")
	}

	return nil
}
