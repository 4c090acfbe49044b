package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kenobul/portfolio/internal/content"
	"github.com/kenobul/portfolio/internal/http/handlers"
	httpmiddleware "github.com/kenobul/portfolio/internal/http/middleware"
	"github.com/kenobul/portfolio/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	SendEmail      *handlers.SendEmailHandler
	Content        *content.Handler
	ContactLimiter httpmiddleware.Limiter
	MetricsHandler http.Handler
	CORS           httpmiddleware.CORSOptions
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if cfg.CORS.Enabled() {
		r.Use(httpmiddleware.CORS(cfg.CORS))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", handlers.HealthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		if cfg.SendEmail != nil {
			var limits []func(http.Handler) http.Handler
			if cfg.ContactLimiter != nil {
				limits = append(limits, httpmiddleware.RateLimit(cfg.ContactLimiter, cfg.Logger))
			}
			api.With(limits...).Method(http.MethodPost, "/send-email", cfg.SendEmail)
		}
		if cfg.Content != nil {
			api.Mount("/", cfg.Content.Routes())
		}
	})

	return r
}
