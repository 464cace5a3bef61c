package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/vibe-check-lab/internal/analysis"
)

// SamplesHandler serves the bundled precomputed analyses.
type SamplesHandler struct {
	samples *analysis.SampleSet
}

func NewSamplesHandler(samples *analysis.SampleSet) *SamplesHandler {
	return &SamplesHandler{samples: samples}
}

// List handles GET /api/samples.
func (h *SamplesHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"samples": h.samples.List()})
}

// Get handles GET /api/samples/{id}.
func (h *SamplesHandler) Get(w http.ResponseWriter, r *http.Request) {
	sample, ok := h.samples.Get(chi.URLParam(r, "id"))
	if !ok {
		jsonError(w, "Sample not found.", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, sample)
}
