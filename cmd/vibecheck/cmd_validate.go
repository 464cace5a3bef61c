package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wolfman30/vibe-check-lab/cmd/mainconfig"
	"github.com/wolfman30/vibe-check-lab/internal/analysis"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file|-]",
	Short: "Check a transcript's length, shape and PII without calling the model",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	transcript, err := readTranscript(cmd, args)
	if err != nil {
		return err
	}

	cfg, logger := loadConfig()
	svc := mainconfig.NewService(nil, cfg, nil, logger)

	sanitized, err := svc.Check(transcript)
	if err != nil {
		var e *analysis.Error
		if errors.As(err, &e) {
			return fmt.Errorf("invalid transcript: %s", e.Message)
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "ok: %d lines, %d characters\n",
		len(analysis.NonEmptyLines(sanitized)), len([]rune(sanitized)))
	return nil
}
