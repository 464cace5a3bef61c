package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/wolfman30/vibe-check-lab/cmd/mainconfig"
	"github.com/wolfman30/vibe-check-lab/internal/analysis"
	appconfig "github.com/wolfman30/vibe-check-lab/internal/config"
	"github.com/wolfman30/vibe-check-lab/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/vibe-check-lab/internal/http/middleware"
	"github.com/wolfman30/vibe-check-lab/internal/ratelimit"
	"github.com/wolfman30/vibe-check-lab/pkg/logging"
)

// deps is built once per container and reused across invocations.
type deps struct {
	analyzer handlers.Analyzer
	limiter  ratelimit.Limiter
	logger   *logging.Logger
}

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()
	gen, err := mainconfig.NewGenerator(ctx, cfg, logger)
	if err != nil {
		panic(err)
	}
	limiter, stop := mainconfig.NewLimiter(cfg, logger)
	defer stop()

	d := deps{
		analyzer: mainconfig.NewService(gen, cfg, nil, logger),
		limiter:  limiter,
		logger:   logger,
	}
	lambda.Start(func(ctx context.Context, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		return handle(ctx, d, evt)
	})
}

func handle(ctx context.Context, d deps, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	method := strings.ToUpper(strings.TrimSpace(evt.RequestContext.HTTP.Method))
	path := strings.TrimSpace(evt.RawPath)
	if path == "" {
		path = strings.TrimSpace(evt.RequestContext.HTTP.Path)
	}

	if path == "/health" || path == "/_health" {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusOK, Headers: corsHeaders(), Body: "ok"}, nil
	}

	switch path {
	case "", "/", "/api/analyze":
	default:
		return jsonResponse(http.StatusNotFound, map[string]string{"error": "Not Found"}, nil), nil
	}

	if method == http.MethodOptions {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusNoContent, Headers: corsHeaders()}, nil
	}
	if method != http.MethodPost {
		return jsonResponse(http.StatusMethodNotAllowed, map[string]string{"error": "Method Not Allowed"},
			map[string]string{"Allow": "POST, OPTIONS"}), nil
	}

	extra := map[string]string{}
	if d.limiter != nil {
		res, err := d.limiter.Check(ctx, clientIP(evt))
		if err != nil {
			d.logger.Error("rate limiter unavailable", "error", err)
		} else {
			h := http.Header{}
			httpmiddleware.SetRateLimitHeaders(h, res)
			for k := range h {
				extra[k] = h.Get(k)
			}
			if !res.Allowed {
				return errorResponse(d.logger, analysis.TooManyRequests(res.RetryAfter(time.Now())), extra), nil
			}
		}
	}

	body, err := decodeBody(evt)
	if err != nil {
		return errorResponse(d.logger, analysis.InvalidInput("Request body must be valid JSON.", err), extra), nil
	}

	req, err := analysis.DecodeRequest(body)
	if err != nil {
		return errorResponse(d.logger, err, extra), nil
	}

	result, err := d.analyzer.Analyze(ctx, req.Transcript)
	if err != nil {
		return errorResponse(d.logger, err, extra), nil
	}
	return jsonResponse(http.StatusOK, result, extra), nil
}

func errorResponse(logger *logging.Logger, err error, extra map[string]string) events.APIGatewayV2HTTPResponse {
	status, message := handlers.ErrorResponse(err)
	if status >= http.StatusInternalServerError {
		logger.Error("analyze request failed", "kind", analysis.KindOf(err), "status", status, "error", err)
	}
	if retry := handlers.RetryAfter(err); retry > 0 {
		extra["Retry-After"] = strconv.Itoa(retry)
	}
	return jsonResponse(status, map[string]string{"error": message}, extra)
}

func jsonResponse(status int, payload any, extra map[string]string) events.APIGatewayV2HTTPResponse {
	headers := corsHeaders()
	headers["Content-Type"] = "application/json"
	for k, v := range extra {
		headers[k] = v
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusInternalServerError, Headers: headers}
	}
	return events.APIGatewayV2HTTPResponse{StatusCode: status, Headers: headers, Body: string(body)}
}

func corsHeaders() map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin":   "*",
		"Access-Control-Allow-Methods":  "POST, OPTIONS",
		"Access-Control-Allow-Headers":  "Content-Type",
		"Access-Control-Expose-Headers": "Retry-After, X-RateLimit-Limit, X-RateLimit-Remaining, X-RateLimit-Reset",
	}
}

func clientIP(evt events.APIGatewayV2HTTPRequest) string {
	if ip := strings.TrimSpace(evt.RequestContext.HTTP.SourceIP); ip != "" {
		return ip
	}
	if fwd := headerValue(evt.Headers, "x-forwarded-for"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return "unknown"
}

func decodeBody(evt events.APIGatewayV2HTTPRequest) ([]byte, error) {
	if !evt.IsBase64Encoded {
		return []byte(evt.Body), nil
	}
	decoded, err := base64.StdEncoding.DecodeString(evt.Body)
	if err != nil {
		return nil, err
	}
	return decoded, nil
}

func headerValue(headers map[string]string, key string) string {
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}
