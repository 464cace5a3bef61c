package analysis

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/vibe-check-lab/internal/llm"
	"github.com/wolfman30/vibe-check-lab/pkg/logging"
)

var gatewayTracer = otel.Tracer("vibecheck.internal.analysis.gateway")

// Gateway makes the single outbound model call per analysis. It never retries.
type Gateway struct {
	generator llm.Generator
	logger    *logging.Logger
}

// NewGateway wraps a generator. A nil generator means no credential was
// configured; every call then fails with a configuration error.
func NewGateway(generator llm.Generator, logger *logging.Logger) *Gateway {
	if logger == nil {
		logger = logging.Default()
	}
	return &Gateway{generator: generator, logger: logger}
}

// Configured reports whether a generator is available.
func (g *Gateway) Configured() bool {
	return g != nil && g.generator != nil
}

// Generate returns the model's raw text for a sanitized transcript.
func (g *Gateway) Generate(ctx context.Context, transcript string) (string, error) {
	if !g.Configured() {
		g.logger.Error("model credential is not configured")
		return "", newError(KindConfiguration, MsgConfiguration, errors.New("analysis: no model generator configured"))
	}

	ctx, span := gatewayTracer.Start(ctx, "analysis.gateway.generate", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.Int("analysis.transcript_chars", len(transcript)))

	start := time.Now()
	text, err := g.generator.Generate(ctx, llm.Request{
		Instruction: Instruction,
		Schema:      ResultSchema,
		Text:        transcript,
	})
	elapsed := time.Since(start)

	if err == nil && strings.TrimSpace(text) == "" {
		err = llm.ErrEmptyResponse
	}
	if err != nil {
		classified := classifyGatewayError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(classified.Kind))
		g.logger.Error("model generation failed",
			"kind", classified.Kind,
			"error", err,
			"duration_ms", elapsed.Milliseconds(),
		)
		return "", classified
	}

	span.SetAttributes(attribute.Int("analysis.response_chars", len(text)))
	g.logger.Debug("model generation succeeded",
		"response_chars", len(text),
		"duration_ms", elapsed.Milliseconds(),
	)
	return text, nil
}

func classifyGatewayError(err error) *Error {
	switch {
	case errors.Is(err, llm.ErrInvalidCredential):
		return newError(KindInvalidCredential, MsgInvalidCredential, err)
	case errors.Is(err, llm.ErrEmptyResponse):
		return newError(KindEmptyResponse, MsgEmptyResponse, err)
	default:
		return newError(KindUpstream, MsgUpstream, err)
	}
}
