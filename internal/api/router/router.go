package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/vibe-check-lab/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/vibe-check-lab/internal/http/middleware"
	"github.com/wolfman30/vibe-check-lab/internal/ratelimit"
	"github.com/wolfman30/vibe-check-lab/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger          *logging.Logger
	AnalyzeHandler  http.Handler
	SamplesHandler  *handlers.SamplesHandler
	ModelConfigured bool
	MetricsHandler  http.Handler

	// CORS is applied to every response. Empty means no cross-origin access.
	CORSAllowedOrigins []string

	// Rate limiting for the analyze endpoint (optional)
	RateLimiter       ratelimit.Limiter
	RateLimitRecorder httpmiddleware.RejectionRecorder
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Get("/health", handlers.Health(cfg.ModelConfigured))
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		if cfg.AnalyzeHandler != nil {
			var analyze chi.Router = api
			if cfg.RateLimiter != nil {
				analyze = api.With(httpmiddleware.RateLimit(cfg.RateLimiter, cfg.RateLimitRecorder, cfg.Logger))
			}
			analyze.Method(http.MethodPost, "/analyze", cfg.AnalyzeHandler)
		}
		if cfg.SamplesHandler != nil {
			api.Get("/samples", cfg.SamplesHandler.List)
			api.Get("/samples/{id}", cfg.SamplesHandler.Get)
		}
	})

	return r
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
