package mainconfig

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/vibe-check-lab/internal/analysis"
	"github.com/wolfman30/vibe-check-lab/internal/api/router"
	appconfig "github.com/wolfman30/vibe-check-lab/internal/config"
	"github.com/wolfman30/vibe-check-lab/internal/http/handlers"
	"github.com/wolfman30/vibe-check-lab/internal/observability/metrics"
	"github.com/wolfman30/vibe-check-lab/pkg/logging"
)

// NewHTTPHandler wires configuration into the HTTP handler tree. The cleanup
// function releases the rate limiter and model client.
func NewHTTPHandler(ctx context.Context, cfg *appconfig.Config, reg *prometheus.Registry, logger *logging.Logger) (http.Handler, func(), error) {
	gen, err := NewGenerator(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	samples, err := analysis.LoadSamples()
	if err != nil {
		return nil, nil, err
	}

	var (
		analysisMetrics *metrics.AnalysisMetrics
		metricsHandler  http.Handler
	)
	if cfg.MetricsEnabled {
		analysisMetrics, metricsHandler = SetupAnalysisMetrics(reg)
	}

	svc := NewService(gen, cfg, analysisMetrics, logger)
	limiter, stopLimiter := NewLimiter(cfg, logger)

	routerCfg := &router.Config{
		Logger:             logger,
		AnalyzeHandler:     handlers.NewAnalyzeHandler(svc, analysisMetrics, logger),
		SamplesHandler:     handlers.NewSamplesHandler(samples),
		ModelConfigured:    gen != nil,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimiter:        limiter,
		RateLimitRecorder:  analysisMetrics,
	}

	cleanup := func() {
		stopLimiter()
		if closer, ok := gen.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
	}
	return router.New(routerCfg), cleanup, nil
}

// SetupAnalysisMetrics registers the pipeline metrics on reg and returns the
// handler that exposes them.
func SetupAnalysisMetrics(reg *prometheus.Registry) (*metrics.AnalysisMetrics, http.Handler) {
	m := metrics.NewAnalysisMetrics(reg)
	return m, promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Serve runs handler on addr until ctx is canceled, then shuts down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *logging.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Model calls routinely take tens of seconds.
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
