package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wolfman30/vibe-check-lab/cmd/mainconfig"
	appconfig "github.com/wolfman30/vibe-check-lab/internal/config"
	"github.com/wolfman30/vibe-check-lab/pkg/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting vibe-check-lab API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	handler, cleanup, err := mainconfig.NewHTTPHandler(context.Background(), cfg, prometheus.NewRegistry(), logger)
	if err != nil {
		logger.Error("failed to initialize server", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	// Stop on interrupt so deferred cleanup runs after a graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := mainconfig.Serve(ctx, ":"+cfg.Port, handler, logger); err != nil {
		logger.Error("server error", "error", err)
		cleanup()
		os.Exit(1)
	}
	fmt.Println("Server exited gracefully")
}
