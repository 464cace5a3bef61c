package analysis

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"sort"
)

//go:embed samples/*.json
var sampleFS embed.FS

// Sample is a bundled transcript with a precomputed analysis, served without
// a model call.
type Sample struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Transcript string  `json:"transcript"`
	Analysis   *Result `json:"analysis"`
}

// SampleSummary is the list view of a sample.
type SampleSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// SampleSet is an immutable, ID-ordered collection of samples.
type SampleSet struct {
	ordered []*Sample
	byID    map[string]*Sample
}

// LoadSamples reads the embedded samples. Each analysis goes through Repair
// and Enrich so bundled data obeys the same invariants as live results.
func LoadSamples() (*SampleSet, error) {
	entries, err := sampleFS.ReadDir("samples")
	if err != nil {
		return nil, fmt.Errorf("analysis: read samples: %w", err)
	}

	set := &SampleSet{byID: make(map[string]*Sample, len(entries))}
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := sampleFS.ReadFile(path.Join("samples", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("analysis: read sample %s: %w", entry.Name(), err)
		}
		sample, err := parseSample(data)
		if err != nil {
			return nil, fmt.Errorf("analysis: sample %s: %w", entry.Name(), err)
		}
		if _, dup := set.byID[sample.ID]; dup {
			return nil, fmt.Errorf("analysis: duplicate sample id %q", sample.ID)
		}
		set.byID[sample.ID] = sample
		set.ordered = append(set.ordered, sample)
	}
	sort.Slice(set.ordered, func(i, j int) bool { return set.ordered[i].ID < set.ordered[j].ID })
	return set, nil
}

func parseSample(data []byte) (*Sample, error) {
	var file struct {
		ID         string          `json:"id"`
		Transcript string          `json:"transcript"`
		Analysis   json.RawMessage `json:"analysis"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if file.ID == "" {
		return nil, fmt.Errorf("missing id")
	}
	result, _, err := Repair(string(file.Analysis))
	if err != nil {
		return nil, err
	}
	Enrich(result)
	return &Sample{
		ID:         file.ID,
		Title:      result.VibeTitle,
		Transcript: file.Transcript,
		Analysis:   result,
	}, nil
}

// List returns summaries in ID order.
func (s *SampleSet) List() []SampleSummary {
	out := make([]SampleSummary, 0, len(s.ordered))
	for _, sample := range s.ordered {
		out = append(out, SampleSummary{ID: sample.ID, Title: sample.Title})
	}
	return out
}

// Get looks up a sample by ID.
func (s *SampleSet) Get(id string) (*Sample, bool) {
	sample, ok := s.byID[id]
	return sample, ok
}
