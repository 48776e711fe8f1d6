package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"sqllab/internal/config"
	"sqllab/internal/metrics"
	"sqllab/internal/middleware"
)

// RouterDeps are the collaborators of NewRouter.
type RouterDeps struct {
	Handler *APIHandler
	Auth    *middleware.Authenticator
	Config  *config.Config
	Logger  *slog.Logger
}

// NewRouter builds the HTTP handler. ctx bounds background work started by
// middleware.
func NewRouter(ctx context.Context, deps RouterDeps) (http.Handler, error) {
	cfg := deps.Config

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(deps.Logger.With("component", "http")))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler())
	r.Get("/openapi.json", OpenAPIHandler)

	var validate func(http.Handler) http.Handler
	if cfg.FeatureRequestValidation {
		v, err := RequestValidator()
		if err != nil {
			return nil, err
		}
		validate = v
	}

	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = int(cfg.RateLimitRPS) * 2
	}
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Middleware())
		r.Use(middleware.RateLimiter(ctx, middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimitRPS,
			Burst:             burst,
		}))
		if validate != nil {
			r.Use(validate)
		}
		deps.Handler.Routes(r)
	})
	return r, nil
}
