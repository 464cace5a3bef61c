package analysis

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/vibe-check-lab/pkg/logging"
)

var serviceTracer = otel.Tracer("vibecheck.internal.analysis")

// Recorder receives pipeline measurements. Implementations must be nil-safe.
type Recorder interface {
	ObserveStage(stage string, seconds float64)
	ObserveRepairDropped(section string, count int)
}

// Service runs validate -> screen -> generate -> repair -> enrich.
type Service struct {
	gateway         *Gateway
	logger          *logging.Logger
	limits          Limits
	recorder        Recorder
	upstreamTimeout time.Duration
}

// Option configures a Service.
type Option func(*Service)

func WithLimits(limits Limits) Option {
	return func(s *Service) { s.limits = limits }
}

func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithUpstreamTimeout bounds the model call. Zero leaves it to the caller's context.
func WithUpstreamTimeout(d time.Duration) Option {
	return func(s *Service) { s.upstreamTimeout = d }
}

// NewService creates the analysis pipeline.
func NewService(gateway *Gateway, logger *logging.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	s := &Service{
		gateway: gateway,
		logger:  logger,
		limits:  DefaultLimits(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Check runs only the local stages: validation and PII screening. It never
// touches the network.
func (s *Service) Check(transcript string) (string, error) {
	start := time.Now()
	defer s.observe("validate", start)

	trimmed, err := ValidateTranscript(transcript, s.limits)
	if err != nil {
		return "", err
	}
	return ScreenPII(trimmed)
}

// Analyze produces a validated analysis for a raw transcript.
func (s *Service) Analyze(ctx context.Context, transcript string) (*Result, error) {
	ctx, span := serviceTracer.Start(ctx, "analysis.analyze")
	defer span.End()

	result, err := s.analyze(ctx, transcript)
	if err != nil {
		span.SetStatus(codes.Error, string(KindOf(err)))
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("analysis.turns", len(result.AnnotatedTranscript)),
		attribute.Int("analysis.highlights", result.HighlightCount()),
	)
	return result, nil
}

func (s *Service) analyze(ctx context.Context, transcript string) (*Result, error) {
	sanitized, err := s.Check(transcript)
	if err != nil {
		s.logger.Info("transcript rejected", "kind", KindOf(err))
		return nil, err
	}

	if s.upstreamTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.upstreamTimeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := s.gateway.Generate(ctx, sanitized)
	s.observe("generate", start)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	result, report, err := Repair(raw)
	s.observe("repair", start)
	s.observeRepair(report)
	if err != nil {
		s.logger.Warn("model output rejected",
			"kind", KindOf(err),
			"dropped", report.Dropped(),
			"response_chars", len(raw),
		)
		return nil, err
	}
	if report.Dropped() > 0 || report.UnknownFormulationRefs > 0 {
		s.logger.Info("model output repaired",
			"dropped_formulations", report.DroppedFormulations,
			"dropped_metrics", report.DroppedMetrics,
			"dropped_turns", report.DroppedTurns,
			"dropped_highlights", report.DroppedHighlights,
			"unknown_formulation_refs", report.UnknownFormulationRefs,
		)
	}

	Enrich(result)
	return result, nil
}

func (s *Service) observe(stage string, start time.Time) {
	if s.recorder == nil {
		return
	}
	s.recorder.ObserveStage(stage, time.Since(start).Seconds())
}

func (s *Service) observeRepair(report RepairReport) {
	if s.recorder == nil {
		return
	}
	s.recorder.ObserveRepairDropped("keyFormulations", report.DroppedFormulations)
	s.recorder.ObserveRepairDropped("dashboardMetrics", report.DroppedMetrics)
	s.recorder.ObserveRepairDropped("annotatedTranscript", report.DroppedTurns)
	s.recorder.ObserveRepairDropped("highlights", report.DroppedHighlights)
	s.recorder.ObserveRepairDropped("deepDive", report.DroppedDeepDive)
}
