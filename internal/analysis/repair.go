package analysis

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strings"
)

const (
	PlaceholderTitle          = "Analysis Incomplete"
	PlaceholderMomentSnippet  = "N/A"
	PlaceholderMomentAnalysis = "Could not determine a key moment."
)

// RepairReport counts what the repair step discarded or substituted.
type RepairReport struct {
	DroppedFormulations    int
	DroppedMetrics         int
	DroppedTurns           int
	DroppedHighlights      int
	DroppedDeepDive        int
	UnknownFormulationRefs int
	TitlePlaceholder       bool
	KeyMomentPlaceholder   bool
}

// Dropped totals the discarded fragments.
func (r RepairReport) Dropped() int {
	return r.DroppedFormulations + r.DroppedMetrics + r.DroppedTurns + r.DroppedHighlights + r.DroppedDeepDive
}

// Repair parses raw model output and keeps only self-consistent fragments.
// Each field degrades on its own, but the result is rejected as a whole when
// formulations, metrics or transcript turns do not survive.
func Repair(raw string) (*Result, RepairReport, error) {
	var report RepairReport

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &fields); err != nil {
		return nil, report, newError(KindMalformedResponse, MsgMalformedResponse, err)
	}

	result := &Result{}

	if title, ok := jsonString(fields["vibeTitle"]); ok {
		result.VibeTitle = title
	} else {
		result.VibeTitle = PlaceholderTitle
		report.TitlePlaceholder = true
	}

	result.KeyFormulations, report.DroppedFormulations = repairFormulations(fields["keyFormulations"])
	result.DashboardMetrics, report.DroppedMetrics = repairMetrics(fields["dashboardMetrics"])

	if moment, ok := repairKeyMoment(fields["keyMoment"]); ok {
		result.KeyMoment = moment
	} else {
		result.KeyMoment = KeyMoment{TranscriptSnippet: PlaceholderMomentSnippet, Analysis: PlaceholderMomentAnalysis}
		report.KeyMomentPlaceholder = true
	}

	result.AnnotatedTranscript, report.DroppedTurns, report.DroppedHighlights = repairTranscript(fields["annotatedTranscript"])
	result.DeepDive, report.DroppedDeepDive = repairDeepDive(fields["deepDive"])

	titles := result.FormulationTitles()
	for _, turn := range result.AnnotatedTranscript {
		for _, h := range turn.Analysis {
			if _, ok := titles[h.KeyFormulationTitle]; !ok {
				report.UnknownFormulationRefs++
			}
		}
	}

	if len(result.KeyFormulations) == 0 ||
		len(result.DashboardMetrics) < RequiredMetricCount ||
		len(result.AnnotatedTranscript) == 0 {
		return nil, report, newError(KindIncompleteAnalysis, MsgIncompleteAnalysis, nil)
	}

	return result, report, nil
}

func repairFormulations(raw json.RawMessage) ([]KeyFormulation, int) {
	items, _ := jsonArray(raw)
	out := make([]KeyFormulation, 0, len(items))
	for _, item := range items {
		obj, _ := jsonObject(item)
		title, okTitle := jsonString(obj["title"])
		desc, okDesc := jsonString(obj["description"])
		if !okTitle || !okDesc || strings.TrimSpace(title) == "" || strings.TrimSpace(desc) == "" {
			continue
		}
		out = append(out, KeyFormulation{Title: title, Description: desc})
	}
	return out, len(items) - len(out)
}

func repairMetrics(raw json.RawMessage) ([]DashboardMetric, int) {
	items, _ := jsonArray(raw)
	out := make([]DashboardMetric, 0, len(items))
	for _, item := range items {
		obj, _ := jsonObject(item)
		name, okName := jsonString(obj["metric"])
		finding, okFinding := jsonString(obj["keyFinding"])
		if !okName || !okFinding || strings.TrimSpace(name) == "" {
			continue
		}
		metric := DashboardMetric{Metric: name, KeyFinding: finding}
		if score, ok := jsonNumber(obj["score"]); ok {
			s := int(math.Round(score))
			metric.Score = &s
		}
		metric.Analysis, _ = jsonString(obj["analysis"])
		out = append(out, metric)
	}
	return out, len(items) - len(out)
}

func repairKeyMoment(raw json.RawMessage) (KeyMoment, bool) {
	obj, ok := jsonObject(raw)
	if !ok {
		return KeyMoment{}, false
	}
	snippet, ok := jsonString(obj["transcriptSnippet"])
	if !ok {
		return KeyMoment{}, false
	}
	analysis, _ := jsonString(obj["analysis"])
	return KeyMoment{TranscriptSnippet: snippet, Analysis: analysis}, true
}

func repairTranscript(raw json.RawMessage) ([]AnnotatedTurn, int, int) {
	items, _ := jsonArray(raw)
	out := make([]AnnotatedTurn, 0, len(items))
	droppedHighlights := 0
	for _, item := range items {
		obj, _ := jsonObject(item)
		speaker, okSpeaker := jsonString(obj["speaker"])
		text, okText := jsonString(obj["text"])
		number, okNumber := jsonNumber(obj["turnNumber"])
		if !okSpeaker || !okText || !okNumber {
			continue
		}
		highlights, dropped := resolveHighlights(text, obj["analysis"])
		droppedHighlights += dropped
		out = append(out, AnnotatedTurn{
			Speaker:    speaker,
			Text:       text,
			TurnNumber: int(number),
			Analysis:   highlights,
		})
	}
	return out, len(items) - len(out), droppedHighlights
}

type highlightCandidate struct {
	highlight Highlight
	first     int
}

// resolveHighlights keeps highlights whose snippet occurs in text, ordered by
// first occurrence, accepting each only if it can be found at or after the end
// of the previously accepted one. Accepted highlights never overlap.
func resolveHighlights(text string, raw json.RawMessage) ([]Highlight, int) {
	items, _ := jsonArray(raw)
	candidates := make([]highlightCandidate, 0, len(items))
	for _, item := range items {
		obj, _ := jsonObject(item)
		snippet, ok := jsonString(obj["snippetToHighlight"])
		if !ok || snippet == "" {
			continue
		}
		first := strings.Index(text, snippet)
		if first < 0 {
			continue
		}
		title, _ := jsonString(obj["keyFormulationTitle"])
		tooltip, _ := jsonString(obj["tooltipText"])
		candidates = append(candidates, highlightCandidate{
			highlight: Highlight{KeyFormulationTitle: title, TooltipText: tooltip, SnippetToHighlight: snippet},
			first:     first,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].first < candidates[j].first
	})

	accepted := make([]Highlight, 0, len(candidates))
	cursor := 0
	for _, c := range candidates {
		idx := strings.Index(text[cursor:], c.highlight.SnippetToHighlight)
		if idx < 0 {
			continue
		}
		accepted = append(accepted, c.highlight)
		cursor += idx + len(c.highlight.SnippetToHighlight)
	}
	return accepted, len(items) - len(accepted)
}

func repairDeepDive(raw json.RawMessage) ([]DeepDiveConcept, int) {
	items, _ := jsonArray(raw)
	out := make([]DeepDiveConcept, 0, len(items))
	for _, item := range items {
		obj, _ := jsonObject(item)
		concept, okConcept := jsonString(obj["concept"])
		analysis, okAnalysis := jsonString(obj["analysis"])
		if !okConcept || !okAnalysis {
			continue
		}
		explanation, _ := jsonString(obj["explanation"])
		source, _ := jsonString(obj["source"])
		out = append(out, DeepDiveConcept{Concept: concept, Explanation: explanation, Analysis: analysis, Source: source})
	}
	return out, len(items) - len(out)
}

// stripCodeFence removes a markdown fence some models wrap around JSON.
func stripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// The json* helpers check the leading token so that null or a value of the
// wrong JSON type never decodes into a zero value.

func jsonString(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func jsonNumber(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || (raw[0] != '-' && (raw[0] < '0' || raw[0] > '9')) {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	return f, true
}

func jsonArray(raw json.RawMessage) ([]json.RawMessage, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}

func jsonObject(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	return obj, true
}
