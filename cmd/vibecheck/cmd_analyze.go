package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wolfman30/vibe-check-lab/cmd/mainconfig"
	"github.com/wolfman30/vibe-check-lab/internal/analysis"
	"github.com/wolfman30/vibe-check-lab/internal/http/handlers"
)

var analyzeFlags struct {
	sample string
	pretty bool
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file|-]",
	Short: "Analyze a transcript and print the result JSON",
	Long: `Run the full pipeline on a transcript read from a file or stdin and print
the analysis as JSON.

Usage:
  vibecheck analyze chat.txt
  cat chat.txt | vibecheck analyze -
  vibecheck analyze --sample gen-002        # precomputed, no model call

The model credential is read from API_KEY (or GEMINI_API_KEY). Set
MODEL_PROVIDER=bedrock and BEDROCK_MODEL_ID to use AWS Bedrock instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&analyzeFlags.sample, "sample", "", "Print a bundled precomputed analysis by ID instead of calling the model")
	f.BoolVar(&analyzeFlags.pretty, "pretty", true, "Indent the JSON output")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if analyzeFlags.sample != "" {
		set, err := analysis.LoadSamples()
		if err != nil {
			return err
		}
		sample, ok := set.Get(analyzeFlags.sample)
		if !ok {
			return fmt.Errorf("unknown sample %q", analyzeFlags.sample)
		}
		return writeResult(cmd, sample.Analysis)
	}

	transcript, err := readTranscript(cmd, args)
	if err != nil {
		return err
	}

	cfg, logger := loadConfig()
	gen, err := mainconfig.NewGenerator(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	svc := mainconfig.NewService(gen, cfg, nil, logger)

	result, err := svc.Analyze(cmd.Context(), transcript)
	if err != nil {
		status, message := handlers.ErrorResponse(err)
		logger.Debug("analysis failed", "error", err)
		return fmt.Errorf("analysis failed (%d): %s", status, message)
	}
	return writeResult(cmd, result)
}

func writeResult(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	if analyzeFlags.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
