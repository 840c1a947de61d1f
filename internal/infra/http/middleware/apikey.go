package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/xavierca1/vibe-registration/internal/security"
)

// RequireAPIKey guards internal routes with X-API-Key. An empty key leaves the
// route open, so /metrics works out of the box in development.
func RequireAPIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if key == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !security.ValidAPIKey(r, key) {
				Logger(r.Context()).Warn("[SECURITY] INVALID_API_KEY",
					"event", "INVALID_API_KEY",
					"ip", security.ClientIP(r),
					"user_agent", r.UserAgent(),
					"path", r.URL.Path,
				)
				RecordSecurityEvent("INVALID_API_KEY")

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{
					"error":   "unauthorized",
					"message": "Invalid or missing API key",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
