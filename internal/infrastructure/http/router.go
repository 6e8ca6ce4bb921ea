package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"pagos-service/pkg/middleware"
	"pagos-service/pkg/response"

	"github.com/go-chi/chi/v5"
)

// Pinger is a dependency the health endpoint checks
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterConfig wires the HTTP surface
type RouterConfig struct {
	Logger         *slog.Logger
	Pagos          *PagosController
	JWTSecret      string
	RequestTimeout time.Duration
	Health         map[string]Pinger
}

// NewRouter builds the chi router. Bearer auth is enabled only when a JWT
// secret is configured; /health is always public.
func NewRouter(config RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.LoggingMiddleware(config.Logger))
	r.Use(middleware.RecoveryMiddleware)
	r.Use(middleware.TimeoutMiddleware(config.RequestTimeout))

	r.Get("/health", healthHandler(config.Health))

	r.Route("/api/Pagos", func(r chi.Router) {
		var adminOnly func(http.Handler) http.Handler
		if config.JWTSecret != "" {
			r.Use(middleware.JWTAuthMiddleware([]byte(config.JWTSecret)))
			adminOnly = middleware.RequireAdmin
		}
		config.Pagos.Routes(r, adminOnly)
	})

	return r
}

func healthHandler(checks map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := map[string]string{"status": "ok"}
		for name, check := range checks {
			if err := check.Ping(ctx); err != nil {
				middleware.LoggerFrom(r.Context()).Warn("health check failed", "dependency", name, "error", err)
				response.SendServiceUnavailable(w, r, name+" unavailable")
				return
			}
			status[name] = "ok"
		}
		response.SendSuccess(w, r, status)
	}
}
