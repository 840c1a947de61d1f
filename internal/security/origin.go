package security

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

var DefaultAllowedOrigins = []string{
	"http://localhost:3000",
	"https://vibe-coding.pages.dev",
	"https://*.pages.dev",
}

// OriginValidator checks the Origin (or Referer) header against an
// allow-list. Entries may contain '*', which matches any run of characters.
type OriginValidator struct {
	exact      map[string]struct{}
	patterns   []*regexp.Regexp
	allowEmpty bool
}

// NewOriginValidator builds the allow-list. allowEmpty lets requests without
// Origin and Referer through, which is only wanted in local development.
func NewOriginValidator(allowed []string, allowEmpty bool) *OriginValidator {
	v := &OriginValidator{
		exact:      make(map[string]struct{}),
		allowEmpty: allowEmpty,
	}
	for _, a := range allowed {
		a = strings.TrimRight(strings.TrimSpace(a), "/")
		if a == "" {
			continue
		}
		if strings.Contains(a, "*") {
			expr := "^" + strings.ReplaceAll(regexp.QuoteMeta(a), `\*`, ".*") + "$"
			v.patterns = append(v.patterns, regexp.MustCompile(expr))
			continue
		}
		v.exact[a] = struct{}{}
	}
	return v
}

// AllowedOrigin matches a bare origin string.
func (v *OriginValidator) AllowedOrigin(origin string) bool {
	if _, ok := v.exact[origin]; ok {
		return true
	}
	for _, p := range v.patterns {
		if p.MatchString(origin) {
			return true
		}
	}
	return false
}

func (v *OriginValidator) Allowed(r *http.Request) bool {
	origin := RequestOrigin(r)
	if origin == "" {
		return v.allowEmpty
	}
	return v.AllowedOrigin(origin)
}

// RequestOrigin returns the Origin header, falling back to the origin part of
// the Referer.
func RequestOrigin(r *http.Request) string {
	if origin := r.Header.Get("Origin"); origin != "" {
		return origin
	}
	referer := r.Header.Get("Referer")
	if referer == "" {
		return ""
	}
	u, err := url.Parse(referer)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
