package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	appconfig "github.com/wolfman30/vibe-check-lab/internal/config"
	"github.com/wolfman30/vibe-check-lab/pkg/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	envFile  string
	logLevel string
}

var rootCmd = &cobra.Command{
	Use:   "vibecheck",
	Short: "Analyze the conversational vibe of a chat transcript",
	Long: "vibecheck runs the Vibe Check Lab analysis pipeline locally:\n" +
		"transcript validation, PII screening, the model call and response repair.",
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := godotenv.Load(rootFlags.envFile); err != nil && cmd.Flags().Changed("env-file") {
			return fmt.Errorf("load %s: %w", rootFlags.envFile, err)
		}
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.envFile, "env-file", ".env", "Environment file to load before reading configuration")
	pf.StringVar(&rootFlags.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}

// loadConfig reads configuration after the env file has been applied.
func loadConfig() (*appconfig.Config, *logging.Logger) {
	cfg := appconfig.Load()
	level := cfg.LogLevel
	if rootFlags.logLevel != "" {
		level = rootFlags.logLevel
	}
	// Logs go to stderr so stdout carries only the result JSON.
	return cfg, logging.NewWithWriter(os.Stderr, level)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
