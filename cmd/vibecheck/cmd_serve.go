package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/wolfman30/vibe-check-lab/cmd/mainconfig"
)

var serveFlags struct {
	port string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the HTTP API (POST /api/analyze, GET /api/samples, /health, /metrics).
The server shuts down gracefully on interrupt.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.port, "port", "", "Listen port (default: $PORT or 3001)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger := loadConfig()
	if serveFlags.port != "" {
		cfg.Port = serveFlags.port
	}

	handler, cleanup, err := mainconfig.NewHTTPHandler(cmd.Context(), cfg, prometheus.NewRegistry(), logger)
	if err != nil {
		return err
	}
	defer cleanup()

	logger.Info("starting vibe-check-lab API server", "env", cfg.Env, "port", cfg.Port)
	return mainconfig.Serve(cmd.Context(), ":"+cfg.Port, handler, logger)
}
