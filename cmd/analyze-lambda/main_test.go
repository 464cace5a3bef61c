package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/wolfman30/vibe-check-lab/internal/analysis"
	"github.com/wolfman30/vibe-check-lab/internal/ratelimit"
	"github.com/wolfman30/vibe-check-lab/pkg/logging"
)

type stubAnalyzer struct {
	calls      int
	transcript string
	err        error
}

func (s *stubAnalyzer) Analyze(ctx context.Context, transcript string) (*analysis.Result, error) {
	s.calls++
	s.transcript = transcript
	if s.err != nil {
		return nil, s.err
	}
	return &analysis.Result{VibeTitle: "Stubbed"}, nil
}

func newEvent(method, path, body string) events.APIGatewayV2HTTPRequest {
	return events.APIGatewayV2HTTPRequest{
		RawPath: path,
		Body:    body,
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{
				Method:   method,
				Path:     path,
				SourceIP: "198.51.100.23",
			},
		},
	}
}

func testDeps(analyzer *stubAnalyzer, limiter ratelimit.Limiter) deps {
	return deps{analyzer: analyzer, limiter: limiter, logger: logging.New("error")}
}

func decodeError(t *testing.T, resp events.APIGatewayV2HTTPResponse) string {
	t.Helper()
	var payload map[string]string
	if err := json.Unmarshal([]byte(resp.Body), &payload); err != nil {
		t.Fatalf("failed to decode body %q: %v", resp.Body, err)
	}
	return payload["error"]
}

func TestHandleHealth(t *testing.T) {
	resp, err := handle(context.Background(), testDeps(&stubAnalyzer{}, nil), newEvent(http.MethodGet, "/health", ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if resp.Body != "ok" {
		t.Fatalf("expected ok body, got %q", resp.Body)
	}
}

func TestHandlePreflight(t *testing.T) {
	analyzer := &stubAnalyzer{}
	resp, err := handle(context.Background(), testDeps(analyzer, nil), newEvent(http.MethodOptions, "/api/analyze", ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, resp.StatusCode)
	}
	if resp.Headers["Access-Control-Allow-Origin"] != "*" {
		t.Fatalf("expected CORS header, got %v", resp.Headers)
	}
	if resp.Body != "" || analyzer.calls != 0 {
		t.Fatalf("expected empty preflight that skips the analyzer")
	}
}

func TestHandleRejectsNonPost(t *testing.T) {
	resp, err := handle(context.Background(), testDeps(&stubAnalyzer{}, nil), newEvent(http.MethodGet, "/api/analyze", ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected status %d, got %d", http.StatusMethodNotAllowed, resp.StatusCode)
	}
	if resp.Headers["Access-Control-Allow-Origin"] != "*" {
		t.Fatalf("expected CORS header on 405")
	}
}

func TestHandleRejectsUnknownPath(t *testing.T) {
	resp, err := handle(context.Background(), testDeps(&stubAnalyzer{}, nil), newEvent(http.MethodPost, "/webhooks/unknown", "{}"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
}

func TestHandleInvalidBase64Body(t *testing.T) {
	evt := newEvent(http.MethodPost, "/api/analyze", "not-base64!")
	evt.IsBase64Encoded = true

	analyzer := &stubAnalyzer{}
	resp, err := handle(context.Background(), testDeps(analyzer, nil), evt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
	if analyzer.calls != 0 {
		t.Fatalf("expected analyzer to be skipped")
	}
}

func TestHandleAnalyzeBase64Body(t *testing.T) {
	raw := `{"transcript":"A: hello there\nB: hi back"}`
	evt := newEvent(http.MethodPost, "/api/analyze", base64.StdEncoding.EncodeToString([]byte(raw)))
	evt.IsBase64Encoded = true

	analyzer := &stubAnalyzer{}
	resp, err := handle(context.Background(), testDeps(analyzer, nil), evt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, resp.StatusCode, resp.Body)
	}
	if analyzer.transcript != "A: hello there\nB: hi back" {
		t.Fatalf("unexpected transcript %q", analyzer.transcript)
	}
	var result analysis.Result
	if err := json.Unmarshal([]byte(resp.Body), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.VibeTitle != "Stubbed" {
		t.Fatalf("unexpected title %q", result.VibeTitle)
	}
}

func TestHandleMapsPipelineErrors(t *testing.T) {
	analyzer := &stubAnalyzer{err: &analysis.Error{Kind: analysis.KindMalformedResponse}}
	resp, err := handle(context.Background(), testDeps(analyzer, nil), newEvent(http.MethodPost, "/api/analyze", `{"transcript":"x"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected status %d, got %d", http.StatusBadGateway, resp.StatusCode)
	}
	if got := decodeError(t, resp); got != analysis.MsgMalformedResponse {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestHandleRateLimited(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter(ratelimit.Config{MaxRequests: 1, Window: time.Minute})
	defer limiter.Stop()
	analyzer := &stubAnalyzer{}
	d := testDeps(analyzer, limiter)

	first, _ := handle(context.Background(), d, newEvent(http.MethodPost, "/api/analyze", `{}`))
	if first.StatusCode != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", first.StatusCode)
	}
	if first.Headers["X-Ratelimit-Remaining"] != "0" {
		t.Fatalf("expected remaining header, got %v", first.Headers)
	}

	second, _ := handle(context.Background(), d, newEvent(http.MethodPost, "/api/analyze", `{}`))
	if second.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected status %d, got %d", http.StatusTooManyRequests, second.StatusCode)
	}
	if second.Headers["Retry-After"] == "" {
		t.Fatalf("expected Retry-After header")
	}
	if got := decodeError(t, second); got != analysis.MsgTooManyRequests {
		t.Fatalf("unexpected message %q", got)
	}
	if analyzer.calls != 1 {
		t.Fatalf("expected limiter to run before the analyzer, got %d calls", analyzer.calls)
	}
}

func TestDecodeBodyBase64(t *testing.T) {
	raw := []byte("hello")
	evt := events.APIGatewayV2HTTPRequest{
		Body:            base64.StdEncoding.EncodeToString(raw),
		IsBase64Encoded: true,
	}

	decoded, err := decodeBody(evt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(decoded) != "hello" {
		t.Fatalf("expected decoded body, got %q", string(decoded))
	}
}

func TestClientIPFallsBackToForwardedFor(t *testing.T) {
	evt := events.APIGatewayV2HTTPRequest{Headers: map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"}}
	if got := clientIP(evt); got != "203.0.113.5" {
		t.Fatalf("expected first forwarded address, got %q", got)
	}
}
