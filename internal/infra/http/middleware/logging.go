package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger gives every request an id and a logger carrying it.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := uuid.New()
			w.Header().Set(RequestIDHeader, id.String())

			ctx := WithRequestID(r.Context(), id)
			ctx = WithLogger(ctx, base.With(slog.String("request_id", id.String())))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := wrapResponseWriter(w)

		next.ServeHTTP(rw, r)

		Logger(r.Context()).InfoContext(r.Context(),
			"Access log",
			slog.String("latency", formatDuration(time.Since(start))),
			slog.Int64("request-content-length", r.ContentLength),
			slog.Int("resp-body-size", rw.responseSize),
			slog.String("host", r.Host),
			slog.String("method", r.Method),
			slog.Int("status-code", rw.statusCode),
			slog.String("path", r.URL.Path),
		)
	})
}

// formatDuration formats a duration to one decimal point.
func formatDuration(d time.Duration) string {
	div := time.Duration(10)
	switch {
	case d > time.Second:
		d = d.Round(time.Second / div)
	case d > time.Millisecond:
		d = d.Round(time.Millisecond / div)
	case d > time.Microsecond:
		d = d.Round(time.Microsecond / div)
	}
	return d.String()
}
