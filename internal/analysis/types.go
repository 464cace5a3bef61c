package analysis

// RequiredMetricCount is the number of dashboard metrics a usable analysis carries.
const RequiredMetricCount = 6

// MetricNames are the dashboard dimensions the model is asked to score.
var MetricNames = []string{"Rapport", "Purpose", "Flow", "Implicature", "Cohesion", "Accommodation"}

// Result is a validated conversation analysis.
type Result struct {
	VibeTitle           string            `json:"vibeTitle"`
	KeyFormulations     []KeyFormulation  `json:"keyFormulations"`
	DashboardMetrics    []DashboardMetric `json:"dashboardMetrics"`
	KeyMoment           KeyMoment         `json:"keyMoment"`
	AnnotatedTranscript []AnnotatedTurn   `json:"annotatedTranscript"`
	DeepDive            []DeepDiveConcept `json:"deepDive"`
}

// KeyFormulation is a top-level design takeaway; highlights reference it by title.
type KeyFormulation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type DashboardMetric struct {
	Metric     string `json:"metric"`
	Score      *int   `json:"score,omitempty"`
	KeyFinding string `json:"keyFinding"`
	Analysis   string `json:"analysis"`
}

type KeyMoment struct {
	TranscriptSnippet string `json:"transcriptSnippet"`
	Analysis          string `json:"analysis"`
}

// AnnotatedTurn is one transcript turn with its non-overlapping highlights.
type AnnotatedTurn struct {
	Speaker    string      `json:"speaker"`
	Text       string      `json:"text"`
	TurnNumber int         `json:"turnNumber"`
	Analysis   []Highlight `json:"analysis"`
}

// Highlight marks an exact substring of a turn.
type Highlight struct {
	KeyFormulationTitle string `json:"keyFormulationTitle"`
	TooltipText         string `json:"tooltipText"`
	SnippetToHighlight  string `json:"snippetToHighlight"`
}

// DeepDiveConcept ties a metric to the theory behind it.
type DeepDiveConcept struct {
	Concept     string `json:"concept"`
	Explanation string `json:"explanation"`
	Analysis    string `json:"analysis"`
	Source      string `json:"source"`
}

// FormulationTitles returns the set of formulation titles.
func (r *Result) FormulationTitles() map[string]struct{} {
	titles := make(map[string]struct{}, len(r.KeyFormulations))
	for _, f := range r.KeyFormulations {
		titles[f.Title] = struct{}{}
	}
	return titles
}

// HighlightCount totals accepted highlights across all turns.
func (r *Result) HighlightCount() int {
	n := 0
	for _, turn := range r.AnnotatedTranscript {
		n += len(turn.Analysis)
	}
	return n
}
