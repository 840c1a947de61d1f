package security

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	captchaAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	captchaLength   = 5
	CaptchaTTL      = 10 * time.Minute
)

type Challenge struct {
	ID        string
	Text      string
	ExpiresAt time.Time
}

// CaptchaStore holds issued challenges until they are answered or expire.
// Each challenge can be verified once.
type CaptchaStore struct {
	mu         sync.Mutex
	challenges map[string]Challenge
	ttl        time.Duration
	now        func() time.Time
}

func NewCaptchaStore(ttl time.Duration) *CaptchaStore {
	return &CaptchaStore{
		challenges: make(map[string]Challenge),
		ttl:        ttl,
		now:        time.Now,
	}
}

func (s *CaptchaStore) New() Challenge {
	var b strings.Builder
	for i := 0; i < captchaLength; i++ {
		b.WriteByte(captchaAlphabet[rand.IntN(len(captchaAlphabet))])
	}

	c := Challenge{
		ID:        uuid.NewString(),
		Text:      b.String(),
		ExpiresAt: s.now().Add(s.ttl),
	}

	s.mu.Lock()
	s.challenges[c.ID] = c
	s.mu.Unlock()

	return c
}

// Verify consumes the challenge whatever the answer. Comparison ignores case
// and surrounding spaces.
func (s *CaptchaStore) Verify(id, answer string) bool {
	s.mu.Lock()
	c, ok := s.challenges[id]
	delete(s.challenges, id)
	s.mu.Unlock()

	if !ok || s.now().After(c.ExpiresAt) {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(answer), c.Text)
}

func (s *CaptchaStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, c := range s.challenges {
		if now.After(c.ExpiresAt) {
			delete(s.challenges, id)
			removed++
		}
	}
	return removed
}

var captchaColors = []string{"#8b5cf6", "#3b82f6", "#10b981", "#f59e0b", "#ef4444"}

type glyphPoint struct{ x, y float64 }

// Traços de cada caractere numa grade 4x6 (y cresce para baixo). Desenhar
// como <path> mantém a resposta fora do texto do SVG.
var glyphStrokes = map[rune]string{
	'A': "0,6 2,0 4,6|1,3 3,3",
	'B': "0,0 0,6 3,6 4,5 4,4 3,3 0,3|0,0 3,0 4,1 4,2 3,3",
	'C': "4,1 3,0 1,0 0,1 0,5 1,6 3,6 4,5",
	'D': "0,0 0,6 2,6 4,4 4,2 2,0 0,0",
	'E': "4,0 0,0 0,6 4,6|0,3 3,3",
	'F': "4,0 0,0 0,6|0,3 3,3",
	'G': "4,1 3,0 1,0 0,1 0,5 1,6 3,6 4,5 4,3 2,3",
	'H': "0,0 0,6|4,0 4,6|0,3 4,3",
	'J': "1,0 4,0|3,0 3,5 2,6 1,6 0,5",
	'K': "0,0 0,6|4,0 0,3 4,6",
	'L': "0,0 0,6 4,6",
	'M': "0,6 0,0 2,3 4,0 4,6",
	'N': "0,6 0,0 4,6 4,0",
	'P': "0,6 0,0 3,0 4,1 4,2 3,3 0,3",
	'Q': "1,0 3,0 4,1 4,5 3,6 1,6 0,5 0,1 1,0|2,4 4,6",
	'R': "0,6 0,0 3,0 4,1 4,2 3,3 0,3|2,3 4,6",
	'S': "4,1 3,0 1,0 0,1 0,2 1,3 3,3 4,4 4,5 3,6 1,6 0,5",
	'T': "0,0 4,0|2,0 2,6",
	'U': "0,0 0,5 1,6 3,6 4,5 4,0",
	'V': "0,0 2,6 4,0",
	'W': "0,0 1,6 2,3 3,6 4,0",
	'X': "0,0 4,6|4,0 0,6",
	'Y': "0,0 2,3 4,0|2,3 2,6",
	'Z': "0,0 4,0 0,6 4,6",
	'2': "0,1 1,0 3,0 4,1 4,2 0,6 4,6",
	'3': "0,1 1,0 3,0 4,1 4,2 3,3 1,3|3,3 4,4 4,5 3,6 1,6 0,5",
	'4': "3,6 3,0 0,4 4,4",
	'5': "4,0 0,0 0,3 3,3 4,4 4,5 3,6 0,6",
	'6': "4,1 3,0 1,0 0,1 0,5 1,6 3,6 4,5 4,4 3,3 0,3",
	'7': "0,0 4,0 1,6",
	'8': "1,3 0,2 0,1 1,0 3,0 4,1 4,2 3,3 1,3 0,4 0,5 1,6 3,6 4,5 4,4 3,3",
	'9': "4,3 1,3 0,2 0,1 1,0 3,0 4,1 4,5 3,6 1,6",
}

var glyphs = parseGlyphs(glyphStrokes)

func parseGlyphs(src map[rune]string) map[rune][][]glyphPoint {
	out := make(map[rune][][]glyphPoint, len(src))
	for ch, def := range src {
		for _, stroke := range strings.Split(def, "|") {
			var pts []glyphPoint
			for _, pair := range strings.Fields(stroke) {
				var p glyphPoint
				if _, err := fmt.Sscanf(pair, "%g,%g", &p.x, &p.y); err != nil {
					panic(fmt.Sprintf("captcha glyph %q: %v", ch, err))
				}
				pts = append(pts, p)
			}
			out[ch] = append(out[ch], pts)
		}
	}
	return out
}

// RenderSVG draws the challenge as jittered stroke outlines over noise lines.
// No glyph is emitted as text, so the answer cannot be read from the markup.
func RenderSVG(text string) string {
	const (
		width, height = 200, 70
		scaleX        = 6.0
		scaleY        = 7.0
	)

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`, width, height, width, height)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="#f8fafc"/>`, width, height)

	for i := 0; i < 6; i++ {
		fmt.Fprintf(&b, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="1" opacity="0.5"/>`,
			rand.IntN(width), rand.IntN(height), rand.IntN(width), rand.IntN(height),
			captchaColors[rand.IntN(len(captchaColors))])
	}

	for i, ch := range text {
		strokes, ok := glyphs[ch]
		if !ok {
			continue
		}
		ox := float64(20 + i*35 + rand.IntN(8))
		oy := float64(14 + rand.IntN(8))
		cx, cy := ox+2*scaleX, oy+3*scaleY
		rotate := rand.IntN(31) - 15

		var d strings.Builder
		for _, stroke := range strokes {
			for j, p := range stroke {
				cmd := "L"
				if j == 0 {
					cmd = "M"
				}
				fmt.Fprintf(&d, "%s%.1f %.1f ", cmd, ox+p.x*scaleX+jitter(), oy+p.y*scaleY+jitter())
			}
		}

		fmt.Fprintf(&b, `<path d="%s" fill="none" stroke="%s" stroke-width="3" stroke-linecap="round" stroke-linejoin="round" transform="rotate(%d %.1f %.1f)"/>`,
			strings.TrimSpace(d.String()), captchaColors[rand.IntN(len(captchaColors))], rotate, cx, cy)
	}

	b.WriteString(`</svg>`)
	return b.String()
}

func jitter() float64 {
	return rand.Float64()*2 - 1
}
