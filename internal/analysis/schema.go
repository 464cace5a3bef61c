package analysis

import "github.com/wolfman30/vibe-check-lab/internal/llm"

// ResultSchema is the structured-output contract handed to the model.
var ResultSchema = &llm.Schema{
	Type: llm.TypeObject,
	Properties: map[string]*llm.Schema{
		"vibeTitle": {
			Type:        llm.TypeString,
			Description: `A short, catchy, vibe-based title for the conversation analysis. (e.g., "Efficient but Impersonal," "Frustrating Loop," "Helpful and Proactive").`,
		},
		"keyFormulations": {
			Type:        llm.TypeArray,
			Description: "Identify the top 3 most important, high-level design takeaways that define the conversational dynamics. These are the core findings.",
			Items: &llm.Schema{
				Type: llm.TypeObject,
				Properties: map[string]*llm.Schema{
					"title":       {Type: llm.TypeString, Description: `A short title for the design takeaway. (e.g., "Clarity through Confirmation," "Lack of Empathy").`},
					"description": {Type: llm.TypeString, Description: "A one-sentence explanation of this design principle in the context of the transcript."},
				},
				Required: []string{"title", "description"},
			},
		},
		"dashboardMetrics": {
			Type:        llm.TypeArray,
			Description: "An array of 6 specific conversational metrics.",
			Items: &llm.Schema{
				Type: llm.TypeObject,
				Properties: map[string]*llm.Schema{
					"metric":     {Type: llm.TypeString, Description: "The name of the metric. Must be one of: Rapport, Purpose, Flow, Implicature, Cohesion, Accommodation."},
					"score":      {Type: llm.TypeInteger, Description: "A score from 1-10 representing the performance on this metric."},
					"keyFinding": {Type: llm.TypeString, Description: "A very short (2-5 word) summary of the key finding for this metric."},
					"analysis":   {Type: llm.TypeString, Description: "A one-sentence analysis explaining the score and key finding."},
				},
				Required: []string{"metric", "score", "keyFinding", "analysis"},
			},
		},
		"keyMoment": {
			Type:        llm.TypeObject,
			Description: "The single most critical moment or exchange in the transcript that acts as a catalyst for the overall vibe.",
			Properties: map[string]*llm.Schema{
				"transcriptSnippet": {Type: llm.TypeString, Description: "An exact quote of 1-3 turns from the transcript representing the key moment."},
				"analysis":          {Type: llm.TypeString, Description: "A one or two-sentence analysis of why this moment is so pivotal."},
			},
			Required: []string{"transcriptSnippet", "analysis"},
		},
		"annotatedTranscript": {
			Type:        llm.TypeArray,
			Description: "The original transcript, annotated with specific insights. Every turn must be included.",
			Items: &llm.Schema{
				Type: llm.TypeObject,
				Properties: map[string]*llm.Schema{
					"speaker":    {Type: llm.TypeString, Description: `The speaker of the turn (e.g., "User", "AI").`},
					"text":       {Type: llm.TypeString, Description: "The exact text of the turn."},
					"turnNumber": {Type: llm.TypeInteger, Description: "The number of the turn, starting from 1."},
					"analysis": {
						Type:        llm.TypeArray,
						Description: "An array of highlighted analyses within this turn. Can be empty.",
						Items: &llm.Schema{
							Type: llm.TypeObject,
							Properties: map[string]*llm.Schema{
								"keyFormulationTitle": {Type: llm.TypeString, Description: "The title of the Key Formulation this highlight relates to. Must be one of the titles from the top-level keyFormulations array."},
								"tooltipText":         {Type: llm.TypeString, Description: "A short (10-15 word) explanation of why this specific phrase is significant."},
								"snippetToHighlight":  {Type: llm.TypeString, Description: "The exact substring from the turn's text that should be highlighted."},
							},
							Required: []string{"keyFormulationTitle", "tooltipText", "snippetToHighlight"},
						},
					},
				},
				Required: []string{"speaker", "text", "turnNumber"},
			},
		},
	},
	Required: []string{"vibeTitle", "keyFormulations", "dashboardMetrics", "keyMoment", "annotatedTranscript"},
}
