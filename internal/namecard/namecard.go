// Package namecard renders the attendee badge handed out at the door.
package namecard

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"regexp"
	"strings"

	"github.com/xavierca1/vibe-registration/internal/entity"
	"github.com/xavierca1/vibe-registration/internal/infra/integration/qr"
)

const (
	Width  = 800
	Height = 500

	qrSize = 180
)

type QRCoder interface {
	Code(ctx context.Context, data string, size int) (qr.Image, error)
}

type Card struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	LinkedInProfile string `json:"linkedinProfile,omitempty"`
}

// QRData is what the badge QR points at: the LinkedIn profile when there is
// one, otherwise a mailto: link.
func (c Card) QRData() string {
	if p := strings.TrimSpace(c.LinkedInProfile); p != "" {
		return p
	}
	return "mailto:" + c.Email
}

type Generator struct {
	qr     QRCoder
	event  entity.Event
	logger *slog.Logger
}

func NewGenerator(coder QRCoder, event entity.Event, logger *slog.Logger) *Generator {
	return &Generator{qr: coder, event: event, logger: logger}
}

var cardTemplate = template.Must(template.New("namecard").Parse(`<svg width="{{.Width}}" height="{{.Height}}" xmlns="http://www.w3.org/2000/svg">
  <defs>
    <linearGradient id="bg-gradient" x1="0%" y1="0%" x2="100%" y2="100%">
      <stop offset="0%" style="stop-color:#1a1a2e"/>
      <stop offset="50%" style="stop-color:#16213e"/>
      <stop offset="100%" style="stop-color:#0f3460"/>
    </linearGradient>
  </defs>
  <rect width="{{.Width}}" height="{{.Height}}" fill="url(#bg-gradient)"/>
  <rect x="20" y="20" width="760" height="460" fill="none" stroke="#8b5cf6" stroke-width="4"/>
  <text x="400" y="80" text-anchor="middle" font-family="Arial" font-size="32" font-weight="bold" fill="#ffffff">{{.Title}}</text>
  <text x="400" y="140" text-anchor="middle" font-family="Arial" font-size="48" font-weight="bold" fill="#10b981">{{.Name}}</text>
  <text x="400" y="200" text-anchor="middle" font-family="Arial" font-size="28" fill="#ffffff">{{.Email}}</text>
  <g transform="translate(310, 260)">
    {{.QR}}
  </g>
</svg>
`))

// Render builds the SVG badge. A QR provider failure degrades to a
// placeholder square; only template errors are returned.
func (g *Generator) Render(ctx context.Context, card Card) ([]byte, error) {
	var buf bytes.Buffer
	err := cardTemplate.Execute(&buf, map[string]any{
		"Width":  Width,
		"Height": Height,
		"Title":  "VIBE CODING WORKSHOP - " + g.event.Start.Format("2 Jan 2006"),
		"Name":   strings.ToUpper(strings.TrimSpace(card.Name)),
		"Email":  strings.TrimSpace(card.Email),
		"QR":     template.HTML(g.qrMarkup(ctx, card.QRData())),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render namecard: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	xmlProlog  = regexp.MustCompile(`(?s)<\?xml.*?\?>`)
	svgOpenTag = regexp.MustCompile(`(?s)<svg[^>]*>`)
	scriptTag  = regexp.MustCompile(`(?is)<script.*?</script>`)
)

func (g *Generator) qrMarkup(ctx context.Context, data string) string {
	img, err := g.qr.Code(ctx, data, qrSize)
	if err != nil {
		g.logger.Warn("namecard qr unavailable, using placeholder", "error", err)
		return placeholder
	}
	return innerSVG(string(img.Data))
}

// innerSVG strips the outer <svg> element so the code can be nested in a <g>.
func innerSVG(doc string) string {
	doc = xmlProlog.ReplaceAllString(doc, "")
	doc = scriptTag.ReplaceAllString(doc, "")
	doc = svgOpenTag.ReplaceAllString(doc, "")
	doc = strings.ReplaceAll(doc, "</svg>", "")
	return strings.TrimSpace(doc)
}

const placeholder = `<rect width="180" height="180" fill="#ffffff"/>
    <text x="90" y="98" text-anchor="middle" font-family="Arial" font-size="24" fill="#000000">QR</text>`

var unsafeFilename = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Filename is the download name for a badge, e.g. "Jane_Doe_namecard.svg".
func Filename(name string) string {
	return unsafeFilename.ReplaceAllString(name, "_") + "_namecard.svg"
}
