package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/wolfman30/vibe-check-lab/internal/analysis"
	"github.com/wolfman30/vibe-check-lab/internal/ratelimit"
	"github.com/wolfman30/vibe-check-lab/pkg/logging"
)

// RejectionRecorder counts rate-limited requests. A nil recorder is ignored.
type RejectionRecorder interface {
	ObserveRateLimited()
}

// RateLimit returns an HTTP middleware that counts each request against the
// client IP and rejects requests over budget with 429 Too Many Requests.
// Every response carries the X-RateLimit-* headers.
func RateLimit(limiter ratelimit.Limiter, recorder RejectionRecorder, logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)
			res, err := limiter.Check(r.Context(), ip)
			if err != nil {
				logger.Error("rate limiter unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			SetRateLimitHeaders(w.Header(), res)

			if !res.Allowed {
				if recorder != nil {
					recorder.ObserveRateLimited()
				}
				logger.Warn("rate limit exceeded", "remote_ip", ip, "limit", res.Limit)
				retryAfter := res.RetryAfter(time.Now())
				w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": analysis.MsgTooManyRequests})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SetRateLimitHeaders writes the budget headers for res.
func SetRateLimitHeaders(h http.Header, res ratelimit.Result) {
	h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))
}

// ClientIP returns the request's client address without the port.
// Prefer X-Real-Ip set by chi's RealIP middleware.
func ClientIP(r *http.Request) string {
	if xri := r.Header.Get("X-Real-Ip"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
