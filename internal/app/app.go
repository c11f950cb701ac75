package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/heartmarshall/userdir-backend/internal/adapter/postgres"
	pgdirectory "github.com/heartmarshall/userdir-backend/internal/adapter/postgres/directory"
	"github.com/heartmarshall/userdir-backend/internal/auth"
	"github.com/heartmarshall/userdir-backend/internal/config"
	"github.com/heartmarshall/userdir-backend/internal/service/directory"
	"github.com/heartmarshall/userdir-backend/internal/transport/middleware"
	"github.com/heartmarshall/userdir-backend/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, connects to
// the database, wires the directory service and serves HTTP until ctx is
// cancelled, then shuts down gracefully.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.Bool("snapshot_reads", cfg.Directory.SnapshotReads),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	svc := directory.NewService(logger, pgdirectory.New(pool), postgres.NewTxManager(pool), cfg.Directory)

	limiter := middleware.NewRateLimiter(time.Minute)
	defer limiter.Stop()

	handler := newRouter(routerDeps{
		users:    rest.NewUsersHandler(svc, logger),
		health:   rest.NewHealthHandler(Version, rest.HealthCheck{Name: "database", Ping: pool.Ping}),
		verifier: auth.NewTokenVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer),
		limiter:  limiter,
		logger:   logger,
		cfg:      cfg,
	})

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	return serve(ctx, srv, cfg.Server.ShutdownTimeout, logger)
}

// serve runs srv until ctx is done or the listener fails.
func serve(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down http server")

	// ctx is already cancelled; the drain gets its own deadline.
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	logger.Info("http server stopped")
	return nil
}
