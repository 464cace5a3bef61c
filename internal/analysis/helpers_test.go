package analysis

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const testTranscript = "User: Hi, I need help resetting my password.\nBot: Sure, I can help with that. What is your username?\nUser: It is skywalker77."

// modelOutput builds a complete, well-formed model reply. mutate may edit the
// decoded map before it is re-encoded.
func modelOutput(t *testing.T, mutate func(map[string]any)) string {
	t.Helper()

	metrics := make([]any, 0, len(MetricNames))
	for i, name := range MetricNames {
		metrics = append(metrics, map[string]any{
			"metric":     name,
			"score":      60 + i*5,
			"keyFinding": name + " was solid.",
			"analysis":   "The exchange showed good " + strings.ToLower(name) + ".",
		})
	}

	doc := map[string]any{
		"vibeTitle": "Quick and Helpful",
		"keyFormulations": []any{
			map[string]any{"title": "Clear Request", "description": "The user stated the goal up front."},
			map[string]any{"title": "Prompt Follow-up", "description": "The bot asked for the one missing detail."},
			map[string]any{"title": "Polite Tone", "description": "Both sides stayed courteous."},
		},
		"dashboardMetrics": metrics,
		"keyMoment": map[string]any{
			"transcriptSnippet": "What is your username?",
			"analysis":          "The bot moved straight to the next step.",
		},
		"annotatedTranscript": []any{
			map[string]any{
				"speaker":    "User",
				"text":       "Hi, I need help resetting my password.",
				"turnNumber": 1,
				"analysis": []any{
					map[string]any{"keyFormulationTitle": "Clear Request", "tooltipText": "Goal stated.", "snippetToHighlight": "resetting my password"},
				},
			},
			map[string]any{
				"speaker":    "Bot",
				"text":       "Sure, I can help with that. What is your username?",
				"turnNumber": 2,
				"analysis": []any{
					map[string]any{"keyFormulationTitle": "Polite Tone", "tooltipText": "Warm opener.", "snippetToHighlight": "Sure, I can help"},
					map[string]any{"keyFormulationTitle": "Prompt Follow-up", "tooltipText": "Asks for one detail.", "snippetToHighlight": "What is your username?"},
				},
			},
			map[string]any{
				"speaker":    "User",
				"text":       "It is skywalker77.",
				"turnNumber": 3,
				"analysis":   []any{},
			},
		},
	}
	if mutate != nil {
		mutate(doc)
	}

	b, err := json.Marshal(doc)
	require.NoError(t, err)
	return string(b)
}

func requireKind(t *testing.T, err error, want Kind) *Error {
	t.Helper()
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, want, e.Kind, "error: %v", err)
	return e
}
