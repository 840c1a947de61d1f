// Package reference builds the human-readable registration references and
// recovers what it can from them later. A reference is the only identity a
// registration has: it is shown to the participant, used as the PayNow
// payment reference and echoed back by the operator in bot commands.
package reference

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/xavierca1/vibe-registration/internal/entity"
)

var ErrInvalidFormat = errors.New("Invalid reference format")

var (
	nonLetters     = regexp.MustCompile(`[^a-zA-Z]`)
	nonAlnum       = regexp.MustCompile(`[^a-zA-Z0-9]`)
	nonHandle      = regexp.MustCompile(`[^a-zA-Z0-9\-]`)
	linkedinPrefix = regexp.MustCompile(`^https?://(www\.)?linkedin\.com/in/`)
	allDigits      = regexp.MustCompile(`^[0-9]+$`)
)

// New returns NAME_EMAIL_SUFFIX: the name's letters uppercased, the full
// email uppercased and either the LinkedIn handle or the last four digits of
// the millisecond timestamp.
func New(name, email, linkedinProfile string, now time.Time) string {
	suffix := LinkedInHandle(linkedinProfile)
	if suffix == "" {
		suffix = timestampSuffix(now)
	}
	return cleanName(name) + "_" + strings.ToUpper(strings.TrimSpace(email)) + "_" + suffix
}

// NewShort returns NAME_LOCALPART_TTTT, with the email local part reduced to
// alphanumerics. Bank transfer references reject '@' and '.', so this is the
// variant printed on PayNow QR codes.
func NewShort(name, email string, now time.Time) string {
	local := strings.TrimSpace(email)
	if at := strings.Index(local, "@"); at >= 0 {
		local = local[:at]
	}
	local = strings.ToUpper(nonAlnum.ReplaceAllString(local, ""))
	return cleanName(name) + "_" + local + "_" + timestampSuffix(now)
}

// BankReference shortens a reference to NAME_LOCALPART_SUFFIX for the PayNow
// transfer. It depends on the reference alone, so every email sent for one
// registration carries the same bank reference.
func BankReference(ref string) string {
	parts := strings.Split(strings.TrimSpace(ref), "_")
	if len(parts) < 3 {
		return strings.ToUpper(nonAlnum.ReplaceAllString(ref, ""))
	}

	middle := strings.Join(parts[1:len(parts)-1], "_")
	if at := strings.Index(middle, "@"); at >= 0 {
		middle = middle[:at]
	}

	return strings.ToUpper(nonAlnum.ReplaceAllString(parts[0], "")) + "_" +
		strings.ToUpper(nonAlnum.ReplaceAllString(middle, "")) + "_" +
		strings.ToUpper(nonAlnum.ReplaceAllString(parts[len(parts)-1], ""))
}

// LinkedInHandle strips the profile URL prefix and anything that is not
// alphanumeric or a hyphen.
func LinkedInHandle(profile string) string {
	profile = strings.TrimSpace(profile)
	if profile == "" {
		return ""
	}
	handle := linkedinPrefix.ReplaceAllString(profile, "")
	handle = strings.TrimSuffix(handle, "/")
	handle = nonHandle.ReplaceAllString(handle, "")
	return strings.ToLower(handle)
}

// anonymousName stands in for names without any latin letter ("李小明"), so the
// reference still has a non-empty first segment.
const anonymousName = "PARTICIPANT"

func cleanName(name string) string {
	clean := strings.ToUpper(nonLetters.ReplaceAllString(name, ""))
	if clean == "" {
		return anonymousName
	}
	return clean
}

func timestampSuffix(now time.Time) string {
	ms := strconv.FormatInt(now.UnixMilli(), 10)
	if len(ms) <= 4 {
		return ms
	}
	return ms[len(ms)-4:]
}

// Parsed is the best-effort content of a reference.
type Parsed struct {
	Raw            string
	Name           string
	Email          string
	EmailFragment  string
	LinkedInHandle string
	Timestamp      string
}

// Parse splits a reference on '_'. The first segment is the name, the last is
// either a timestamp or a LinkedIn handle and everything in between is the
// email (or, for short references, only its local part).
func Parse(ref string) (Parsed, error) {
	ref = strings.TrimSpace(ref)
	parts := strings.Split(ref, "_")
	if len(parts) < 3 || parts[len(parts)-1] == "" {
		return Parsed{}, ErrInvalidFormat
	}

	p := Parsed{Raw: ref}
	// Sem nome recuperável: o e-mail usa "Participant".
	if parts[0] != anonymousName {
		p.Name = unCamel(parts[0])
	}

	middle := strings.Join(parts[1:len(parts)-1], "_")
	if strings.Contains(middle, "@") {
		p.Email = strings.ToLower(middle)
	} else {
		p.EmailFragment = middle
	}

	last := parts[len(parts)-1]
	if allDigits.MatchString(last) {
		p.Timestamp = last
	} else {
		p.LinkedInHandle = strings.ToLower(last)
	}

	return p, nil
}

// Registration turns the parsed fragments into a partial registration.
// Fields that cannot be recovered stay empty.
func (p Parsed) Registration() *entity.Registration {
	reg := &entity.Registration{
		Name:      p.Name,
		Email:     p.Email,
		Reference: p.Raw,
	}
	if p.LinkedInHandle != "" {
		reg.LinkedInProfile = "https://linkedin.com/in/" + p.LinkedInHandle
	}
	return reg
}

// unCamel puts a space before every capital that follows a lower-case letter,
// so "JohnDoe" reads "John Doe". Uppercase-only names are returned unchanged.
func unCamel(s string) string {
	var b strings.Builder
	var prev rune
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) && unicode.IsLower(prev) {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}
