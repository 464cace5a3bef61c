package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// readTranscript reads the transcript from the named file, or from stdin when
// the argument is "-" or absent.
func readTranscript(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read transcript: %w", err)
	}
	return string(data), nil
}
