package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/wolfman30/vibe-check-lab/internal/analysis"
	"github.com/wolfman30/vibe-check-lab/pkg/logging"
)

// maxAnalyzeBody caps the request body well above the transcript limit so an
// over-long transcript still gets the length message rather than a read error.
const maxAnalyzeBody = 1 << 20

const msgUnexpected = "An unexpected error occurred. Please try again."

// Analyzer runs the analysis pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, transcript string) (*analysis.Result, error)
}

// OutcomeRecorder counts finished requests by outcome. A nil recorder is ignored.
type OutcomeRecorder interface {
	ObserveRequest(outcome string)
}

// AnalyzeHandler serves POST /api/analyze.
type AnalyzeHandler struct {
	analyzer Analyzer
	recorder OutcomeRecorder
	logger   *logging.Logger
}

func NewAnalyzeHandler(analyzer Analyzer, recorder OutcomeRecorder, logger *logging.Logger) *AnalyzeHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AnalyzeHandler{analyzer: analyzer, recorder: recorder, logger: logger}
}

func (h *AnalyzeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST, OPTIONS")
		jsonError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxAnalyzeBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(w, analysis.InvalidInput("Request body is too large.", err))
			return
		}
		h.fail(w, analysis.InvalidInput("Request body could not be read.", err))
		return
	}

	req, err := analysis.DecodeRequest(body)
	if err != nil {
		h.fail(w, err)
		return
	}

	result, err := h.analyzer.Analyze(r.Context(), req.Transcript)
	if err != nil {
		h.fail(w, err)
		return
	}

	h.observe("success")
	writeJSON(w, http.StatusOK, result)
}

func (h *AnalyzeHandler) fail(w http.ResponseWriter, err error) {
	status, message := ErrorResponse(err)
	kind := analysis.KindOf(err)
	outcome := string(kind)
	if outcome == "" {
		outcome = "internal_error"
	}
	h.observe(outcome)

	if status >= http.StatusInternalServerError {
		h.logger.Error("analyze request failed", "kind", outcome, "status", status, "error", err)
	} else {
		h.logger.Info("analyze request rejected", "kind", outcome, "status", status)
	}

	if retry := RetryAfter(err); retry > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retry))
	}
	jsonError(w, message, status)
}

func (h *AnalyzeHandler) observe(outcome string) {
	if h.recorder != nil {
		h.recorder.ObserveRequest(outcome)
	}
}

// ErrorResponse maps a pipeline error to the HTTP status and the message safe
// to return to callers. Wrapped causes never reach the message.
func ErrorResponse(err error) (int, string) {
	var e *analysis.Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError, msgUnexpected
	}
	switch e.Kind {
	case analysis.KindInvalidInput, analysis.KindPotentialPII:
		return http.StatusBadRequest, e.Message
	case analysis.KindTooManyRequests:
		return http.StatusTooManyRequests, analysis.MsgTooManyRequests
	case analysis.KindConfiguration:
		return http.StatusInternalServerError, analysis.MsgConfiguration
	case analysis.KindInvalidCredential:
		return http.StatusUnauthorized, analysis.MsgInvalidCredential
	case analysis.KindEmptyResponse:
		return http.StatusBadGateway, analysis.MsgEmptyResponse
	case analysis.KindUpstream:
		return http.StatusBadGateway, analysis.MsgUpstream
	case analysis.KindMalformedResponse:
		return http.StatusBadGateway, analysis.MsgMalformedResponse
	case analysis.KindIncompleteAnalysis:
		return http.StatusBadGateway, analysis.MsgIncompleteAnalysis
	default:
		return http.StatusInternalServerError, msgUnexpected
	}
}

// RetryAfter returns the whole seconds a rate-limited caller should wait, or 0.
func RetryAfter(err error) int {
	var e *analysis.Error
	if !errors.As(err, &e) || e.Kind != analysis.KindTooManyRequests || e.RetryAfter <= 0 {
		return 0
	}
	return int(math.Ceil(e.RetryAfter.Seconds()))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func jsonError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}
