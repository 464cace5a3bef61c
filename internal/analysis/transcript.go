package analysis

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	DefaultMinTranscriptLength = 25
	DefaultMaxTranscriptLength = 10000
)

// Limits bounds transcript size in characters (code points).
type Limits struct {
	Min int
	Max int
}

// DefaultLimits returns the standard 25..10,000 character bounds.
func DefaultLimits() Limits {
	return Limits{Min: DefaultMinTranscriptLength, Max: DefaultMaxTranscriptLength}
}

func (l Limits) normalized() Limits {
	if l.Min < 0 {
		l.Min = 0
	}
	if l.Max <= 0 {
		l.Max = DefaultMaxTranscriptLength
	}
	return l
}

// ValidateTranscript returns the trimmed transcript, or an invalid-input error
// for the first constraint it breaks.
func ValidateTranscript(raw string, limits Limits) (string, error) {
	limits = limits.normalized()
	trimmed := strings.TrimSpace(raw)

	if trimmed == "" {
		return "", invalidInput("A transcript is required.")
	}
	if utf8.RuneCountInString(trimmed) < limits.Min {
		return "", invalidInput(fmt.Sprintf("Transcript is too short for meaningful analysis. Please provide at least %d characters.", limits.Min))
	}
	if utf8.RuneCountInString(raw) > limits.Max {
		return "", invalidInput(fmt.Sprintf("Transcript exceeds the maximum length of %d characters.", limits.Max))
	}
	if len(NonEmptyLines(trimmed)) < 2 {
		return "", invalidInput("Transcript needs at least two lines of conversation to analyze.")
	}
	return trimmed, nil
}

// NonEmptyLines splits text on newlines and drops blank lines.
func NonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
