package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/xavierca1/vibe-registration/internal/infra/http/middleware"
	"github.com/xavierca1/vibe-registration/internal/security"
)

// ErrorResponse is the error body of every endpoint.
type ErrorResponse struct {
	Error      string            `json:"error"`
	Message    string            `json:"message,omitempty"`
	Reasons    []string          `json:"reasons,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"`
	RetryAfter int               `json:"retryAfter,omitempty"`
	NextReset  string            `json:"nextReset,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

// securityEvent logs a refused or suspicious request at WARN.
func securityEvent(r *http.Request, event string, attrs ...any) {
	args := append([]any{
		"event", event,
		"ip", security.ClientIP(r),
		"user_agent", r.UserAgent(),
		"path", r.URL.Path,
	}, attrs...)
	middleware.Logger(r.Context()).Warn("[SECURITY] "+event, args...)
	middleware.RecordSecurityEvent(event)
}

// allow applies a rate limiter keyed by client IP and writes the 429 when
// the window is used up.
func allow(w http.ResponseWriter, r *http.Request, rl *security.RateLimiter, code, message string) bool {
	res := rl.Allow(security.ClientIP(r))
	if res.Allowed {
		return true
	}

	retry := res.RetryAfter(time.Now())
	securityEvent(r, "RATE_LIMIT_EXCEEDED", "limit", res.Limit)

	w.Header().Set("Retry-After", strconv.Itoa(retry))
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	if message == "" {
		message = "Too many requests. Try again in " + strconv.Itoa(retry) + " seconds."
	}
	writeJSON(w, http.StatusTooManyRequests, ErrorResponse{Error: code, Message: message, RetryAfter: retry})
	return false
}

func logger(r *http.Request) *slog.Logger {
	return middleware.Logger(r.Context())
}
