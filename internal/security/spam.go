package security

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/xavierca1/vibe-registration/internal/entity"
)

const (
	SpamThreshold     = 8
	PreCheckThreshold = 5
)

type SpamResult struct {
	IsSpam  bool     `json:"isSpam"`
	Reasons []string `json:"reasons"`
	Score   int      `json:"score"`
}

var (
	validName    = regexp.MustCompile(`^[a-zA-Z\s'-]+$`)
	validPhone   = regexp.MustCompile(`^[+]?[\d\s\-()]{8,15}$`)
	nonDigits    = regexp.MustCompile(`\D`)
	whitespace   = regexp.MustCompile(`\s+`)
	consonantsRe = regexp.MustCompile(`[bcdfghjklmnpqrstvwxyzBCDFGHJKLMNPQRSTVWXYZ]`)
	vowelsRe     = regexp.MustCompile(`[aeiouAEIOU]`)
)

var suspiciousDomains = []string{
	"tempmail",
	"10minutemail",
	"guerrillamail",
	"mailinator",
	"throwaway",
}

var spamKeywords = []string{"spam", "test", "fake", "bot", "scam", "money", "crypto", "bitcoin"}

var preCheckKeywords = []string{"spam", "test", "fake", "bot", "scam"}

// Score runs the server-side heuristics over a submission.
func Score(form entity.FormData) SpamResult {
	var reasons []string
	score := 0

	name := form.Name
	switch nameLen := utf8.RuneCountInString(name); {
	case nameLen < 2:
		reasons = append(reasons, "Name too short")
		score += 2
	case nameLen > 50:
		reasons = append(reasons, "Name too long")
		score += 1
	}

	if !validName.MatchString(name) {
		reasons = append(reasons, "Name contains invalid characters")
		score += 3
	}

	if strings.Contains(strings.ToLower(name), "spam") {
		reasons = append(reasons, "Suspicious name content")
		score += 5
	}

	if at := strings.Index(form.Email, "@"); at >= 0 {
		domain := strings.ToLower(form.Email[at+1:])
		for _, d := range suspiciousDomains {
			if strings.Contains(domain, d) {
				reasons = append(reasons, "Suspicious email domain")
				score += 4
				break
			}
		}
	}

	// Plus aliases make it easy to register several times with one inbox.
	if plus := strings.Index(form.Email, "+"); plus >= 0 && strings.Contains(form.Email[plus+1:], "@") {
		score += 1
	}

	if !validPhone.MatchString(form.Phone) {
		reasons = append(reasons, "Invalid phone format")
		score += 2
	}

	digits := nonDigits.ReplaceAllString(form.Phone, "")
	if len(digits) >= 8 && uniqueRunes(digits) <= 3 {
		reasons = append(reasons, "Phone number has too many repeated digits")
		score += 3
	}

	idea := form.ProjectIdea
	switch ideaLen := utf8.RuneCountInString(idea); {
	case ideaLen < 10:
		reasons = append(reasons, "Project idea too short")
		score += 2
	case ideaLen > 500:
		reasons = append(reasons, "Project idea too long")
		score += 1
	}

	if found := matchKeywords(strings.ToLower(idea), spamKeywords); len(found) > 0 {
		reasons = append(reasons, fmt.Sprintf("Suspicious keywords: %s", strings.Join(found, ", ")))
		score += len(found) * 2
	}

	if maxWordRepetition(idea) > 3 {
		reasons = append(reasons, "Excessive word repetition")
		score += 2
	}

	consonants := len(consonantsRe.FindAllString(idea, -1))
	vowels := len(vowelsRe.FindAllString(idea, -1))
	if consonants > 0 && vowels > 0 {
		if float64(consonants)/float64(consonants+vowels) > 0.8 {
			reasons = append(reasons, "Text appears to be gibberish")
			score += 3
		}
	}

	return SpamResult{
		IsSpam:  score >= SpamThreshold,
		Reasons: reasons,
		Score:   score,
	}
}

// PreCheck is the lighter heuristic the signup form runs before submitting.
// It flags at a lower threshold than Score.
func PreCheck(form entity.FormData) SpamResult {
	var reasons []string
	score := 0

	if n := utf8.RuneCountInString(form.Name); n < 2 || n > 50 {
		reasons = append(reasons, "Invalid name length")
		score += 2
	}

	if n := utf8.RuneCountInString(form.ProjectIdea); n < 10 || n > 500 {
		reasons = append(reasons, "Invalid project idea length")
		score += 2
	}

	text := strings.ToLower(form.Name + " " + form.ProjectIdea)
	for _, kw := range matchKeywords(text, preCheckKeywords) {
		reasons = append(reasons, "Contains suspicious keyword: "+kw)
		score += 3
	}

	return SpamResult{
		IsSpam:  score >= PreCheckThreshold,
		Reasons: reasons,
		Score:   score,
	}
}

func matchKeywords(text string, keywords []string) []string {
	var found []string
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			found = append(found, kw)
		}
	}
	return found
}

func maxWordRepetition(text string) int {
	counts := make(map[string]int)
	best := 0
	for _, w := range whitespace.Split(strings.ToLower(text), -1) {
		if len(w) <= 3 {
			continue
		}
		counts[w]++
		if counts[w] > best {
			best = counts[w]
		}
	}
	return best
}

func uniqueRunes(s string) int {
	seen := make(map[rune]struct{})
	for _, r := range s {
		seen[r] = struct{}{}
	}
	return len(seen)
}
