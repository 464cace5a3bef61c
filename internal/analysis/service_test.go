package analysis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/vibe-check-lab/internal/llm"
)

type countingGenerator struct {
	mu    sync.Mutex
	calls int
	reply func(ctx context.Context) (string, error)
}

func (g *countingGenerator) Generate(ctx context.Context, req llm.Request) (string, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	return g.reply(ctx)
}

func (g *countingGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type stubRecorder struct {
	mu      sync.Mutex
	stages  []string
	dropped map[string]int
}

func (r *stubRecorder) ObserveStage(stage string, seconds float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, stage)
}

func (r *stubRecorder) ObserveRepairDropped(section string, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dropped == nil {
		r.dropped = make(map[string]int)
	}
	r.dropped[section] += count
}

func TestService_Analyze(t *testing.T) {
	gen := &countingGenerator{reply: func(context.Context) (string, error) {
		return modelOutput(t, nil), nil
	}}
	rec := &stubRecorder{}
	svc := NewService(NewGateway(gen, nil), nil, WithRecorder(rec))

	result, err := svc.Analyze(context.Background(), "  "+testTranscript+"\n\n")
	require.NoError(t, err)
	assert.Equal(t, "Quick and Helpful", result.VibeTitle)
	assert.Len(t, result.DeepDive, 6, "deep dive is filled from metrics")
	assert.Equal(t, 1, gen.Calls())
	assert.Equal(t, []string{"validate", "generate", "repair"}, rec.stages)
}

func TestService_RejectsBeforeCallingModel(t *testing.T) {
	tests := []struct {
		name       string
		transcript string
		wantKind   Kind
	}{
		{name: "too short", transcript: "Hi\nHello", wantKind: KindInvalidInput},
		{name: "too long", transcript: longText(10001), wantKind: KindInvalidInput},
		{name: "email", transcript: "User: write to me@example.com\nBot: will do, thanks", wantKind: KindPotentialPII},
		{name: "phone", transcript: "User: call 555-123-4567\nBot: will do, thanks", wantKind: KindPotentialPII},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &countingGenerator{reply: func(context.Context) (string, error) {
				return modelOutput(t, nil), nil
			}}
			svc := NewService(NewGateway(gen, nil), nil)

			_, err := svc.Analyze(context.Background(), tt.transcript)
			requireKind(t, err, tt.wantKind)
			assert.Zero(t, gen.Calls())
		})
	}
}

func TestService_TooLongSkipsScreener(t *testing.T) {
	// Over-long input containing PII still reports the length problem.
	text := "User: me@example.com\nBot: ok " + longText(10001)
	svc := NewService(NewGateway(nil, nil), nil)

	_, err := svc.Analyze(context.Background(), text)
	e := requireKind(t, err, KindInvalidInput)
	assert.Contains(t, e.Message, "maximum length")
}

func TestService_UnconfiguredGateway(t *testing.T) {
	svc := NewService(NewGateway(nil, nil), nil)

	_, err := svc.Analyze(context.Background(), testTranscript)
	requireKind(t, err, KindConfiguration)
}

func TestService_MalformedModelOutput(t *testing.T) {
	gen := &countingGenerator{reply: func(context.Context) (string, error) { return "not json", nil }}
	rec := &stubRecorder{}
	svc := NewService(NewGateway(gen, nil), nil, WithRecorder(rec))

	_, err := svc.Analyze(context.Background(), testTranscript)
	requireKind(t, err, KindMalformedResponse)
	assert.Contains(t, rec.stages, "repair")
}

func TestService_ReportsRepairDrops(t *testing.T) {
	gen := &countingGenerator{reply: func(context.Context) (string, error) {
		return modelOutput(t, func(d map[string]any) {
			turn := d["annotatedTranscript"].([]any)[0].(map[string]any)
			turn["analysis"] = append(turn["analysis"].([]any), hl("not present"))
		}), nil
	}}
	rec := &stubRecorder{}
	svc := NewService(NewGateway(gen, nil), nil, WithRecorder(rec))

	_, err := svc.Analyze(context.Background(), testTranscript)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.dropped["highlights"])
	assert.Zero(t, rec.dropped["keyFormulations"])
}

func TestService_UpstreamTimeout(t *testing.T) {
	gen := &countingGenerator{reply: func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	svc := NewService(NewGateway(gen, nil), nil, WithUpstreamTimeout(20*time.Millisecond))

	start := time.Now()
	_, err := svc.Analyze(context.Background(), testTranscript)
	requireKind(t, err, KindUpstream)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestService_CustomLimits(t *testing.T) {
	svc := NewService(NewGateway(nil, nil), nil, WithLimits(Limits{Min: 200, Max: 1000}))

	_, err := svc.Check(testTranscript)
	e := requireKind(t, err, KindInvalidInput)
	assert.Contains(t, e.Message, "200 characters")
}

func TestService_Check(t *testing.T) {
	svc := NewService(nil, nil)

	out, err := svc.Check("\n" + testTranscript + "\n")
	require.NoError(t, err)
	assert.Equal(t, testTranscript, out)
}

func longText(n int) string {
	b := make([]byte, n)
	for i := range b {
		if i%80 == 79 {
			b[i] = '\n'
			continue
		}
		b[i] = 'a'
	}
	return string(b)
}
