package security

import (
	"crypto/subtle"
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

// ClientIP picks the caller address from proxy headers, first hop of
// X-Forwarded-For first. Requests without any of them share the "unknown"
// bucket.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	if cf := strings.TrimSpace(r.Header.Get("CF-Connecting-IP")); cf != "" {
		return cf
	}

	return "unknown"
}

var BlockedCountries = []string{"CN", "RU", "IR"}

// GeoBlocked reports the Cloudflare country of the request when it is in
// BlockedCountries.
func GeoBlocked(r *http.Request) (string, bool) {
	country := strings.ToUpper(strings.TrimSpace(r.Header.Get("CF-IPCountry")))
	if country == "" {
		return "", false
	}
	for _, c := range BlockedCountries {
		if c == country {
			return country, true
		}
	}
	return country, false
}

var botPatterns = regexp.MustCompile(`(?i)bot|crawl|spider|scrape|python-requests|curl|wget|postman|insomnia`)

// LooksLikeBot flags known automation user agents and requests missing the
// headers every browser sends.
func LooksLikeBot(r *http.Request) bool {
	if botPatterns.MatchString(r.UserAgent()) {
		return true
	}
	return r.Header.Get("Accept") == "" ||
		r.Header.Get("Accept-Language") == "" ||
		r.Header.Get("Accept-Encoding") == ""
}

const MaxPayloadBytes = 50 * 1024

// PayloadTooLarge checks the declared Content-Length.
func PayloadTooLarge(r *http.Request) bool {
	if r.ContentLength > MaxPayloadBytes {
		return true
	}
	if raw := r.Header.Get("Content-Length"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		return err == nil && n > MaxPayloadBytes
	}
	return false
}

// EstimateTokens approximates prompt size at four characters per token.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}

const APIKeyHeader = "X-API-Key"

// ValidAPIKey compares X-API-Key in constant time. An unset expected key never
// matches.
func ValidAPIKey(r *http.Request, expected string) bool {
	if expected == "" {
		return false
	}
	got := r.Header.Get(APIKeyHeader)
	return subtle.ConstantTimeCompare([]byte(got), []byte(expected)) == 1
}
