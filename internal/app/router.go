package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/heartmarshall/userdir-backend/internal/config"
	"github.com/heartmarshall/userdir-backend/internal/transport/middleware"
	"github.com/heartmarshall/userdir-backend/internal/transport/rest"
)

type tokenVerifier interface {
	Verify(ctx context.Context, token string) (uuid.UUID, string, error)
}

type routerDeps struct {
	users    *rest.UsersHandler
	health   *rest.HealthHandler
	verifier tokenVerifier
	limiter  *middleware.RateLimiter
	logger   *slog.Logger
	cfg      *config.Config
}

// newRouter mounts the endpoints behind the global middleware chain.
// Probes are public; the directory requires a valid bearer token.
func newRouter(d routerDeps) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", d.health.Live)
	mux.HandleFunc("GET /ready", d.health.Ready)
	mux.HandleFunc("GET /health", d.health.Health)

	mux.Handle("GET /users", middleware.RequireAuth(http.HandlerFunc(d.users.List)))
	mux.Handle("GET /users/{id}", middleware.RequireAuth(http.HandlerFunc(d.users.Get)))

	return middleware.Chain(
		middleware.Recovery(d.logger),
		middleware.RequestID(),
		middleware.CORS(d.cfg.CORS),
		middleware.Auth(d.verifier),
		middleware.Logger(d.logger),
		d.limiter.Limit(d.cfg.Server.RateLimitPerMinute),
	)(mux)
}
