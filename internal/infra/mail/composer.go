package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"strconv"
	"time"

	"github.com/xavierca1/vibe-registration/internal/entity"
	"github.com/xavierca1/vibe-registration/internal/infra/integration/qr"
	"github.com/xavierca1/vibe-registration/internal/namecard"
	"github.com/xavierca1/vibe-registration/internal/reference"
)

//go:embed templates
var templates embed.FS

var emailTemplates = template.Must(template.ParseFS(templates, "templates/*.html"))

const (
	PaymentSubject      = "🎨 Vibe Coding - Payment Required to Secure Your Spot"
	ConfirmationSubject = "🎉 Vibe Coding - You're Confirmed! Event Details Inside"

	qrContentID = "paynow-qr"
)

type QRProvider interface {
	PayNow(ctx context.Context, amount, ref, mobile string) (qr.Image, error)
}

type NamecardRenderer interface {
	Render(ctx context.Context, card namecard.Card) ([]byte, error)
}

// Composer turns a registration into a ready-to-send Message. It never sends.
type Composer struct {
	from         string
	event        entity.Event
	payNowMobile string
	qr           QRProvider
	cards        NamecardRenderer
	logger       *slog.Logger
}

func NewComposer(from string, event entity.Event, payNowMobile string, qrProvider QRProvider, cards NamecardRenderer, logger *slog.Logger) *Composer {
	return &Composer{
		from:         from,
		event:        event,
		payNowMobile: payNowMobile,
		qr:           qrProvider,
		cards:        cards,
		logger:       logger,
	}
}

// PaymentEmail carries the PayNow instructions. The QR is attached inline;
// if the QR service fails the body falls back to manual transfer details.
func (c *Composer) PaymentEmail(ctx context.Context, reg *entity.Registration) (Message, error) {
	bankRef := reference.BankReference(reg.Reference)

	data := paymentEmailData{
		Name:         reg.DisplayName(),
		Reference:    reg.Reference,
		BankRef:      bankRef,
		Event:        c.eventView(),
		Amount:       fmt.Sprintf("%d.%02d %s", c.event.PriceCents/100, c.event.PriceCents%100, c.event.Currency),
		PayNowMobile: c.payNowMobile,
		QRContentID:  qrContentID,
	}

	msg := Message{
		From:    c.from,
		To:      []string{reg.Email},
		Subject: PaymentSubject,
	}

	img, err := c.qr.PayNow(ctx, c.event.Amount(), bankRef, c.payNowMobile)
	if err != nil {
		c.logger.WarnContext(ctx, "paynow qr unavailable, sending without it", "reference", reg.Reference, "error", err)
	} else {
		data.QRAvailable = true
		msg.Attachments = append(msg.Attachments, Attachment{
			Filename:    "paynow-qr.png",
			ContentType: img.ContentType,
			ContentID:   qrContentID,
			Data:        img.Data,
		})
	}

	html, err := render("payment.html", data)
	if err != nil {
		return Message{}, err
	}
	msg.HTML = html

	return msg, nil
}

// ConfirmationEmail goes out once payment is confirmed, with the namecard and
// a calendar invite attached.
func (c *Composer) ConfirmationEmail(ctx context.Context, reg *entity.Registration) (Message, error) {
	html, err := render("confirmation.html", confirmationEmailData{
		Name:        reg.DisplayName(),
		Reference:   reg.Reference,
		ProjectIdea: reg.ProjectIdea,
		Event:       c.eventView(),
		Timeline:    Timeline(c.event),
	})
	if err != nil {
		return Message{}, err
	}

	card, err := c.cards.Render(ctx, namecard.Card{
		Name:            reg.DisplayName(),
		Email:           reg.Email,
		LinkedInProfile: reg.LinkedInProfile,
	})
	if err != nil {
		return Message{}, err
	}

	return Message{
		From:    c.from,
		To:      []string{reg.Email},
		Subject: ConfirmationSubject,
		HTML:    html,
		Attachments: []Attachment{
			{Filename: "namecard.svg", ContentType: "image/svg+xml", Data: card},
			{Filename: "vibe-coding.ics", ContentType: "text/calendar; charset=utf-8; method=REQUEST", Data: Calendar(c.event, reg, time.Now())},
		},
	}, nil
}

func (c *Composer) eventView() eventView {
	return eventView{
		Title:     c.event.Title,
		Date:      c.event.DateLabel(),
		Time:      c.event.TimeLabel(),
		Location:  c.event.Location,
		Duration:  duration(c.event.End.Sub(c.event.Start)),
		Organizer: c.event.OrganizedBy,
		Year:      c.event.Start.Year(),
	}
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

// duration renders e.g. "2.5 hours".
func duration(d time.Duration) string {
	h := strconv.FormatFloat(d.Hours(), 'f', -1, 64)
	if h == "1" {
		return "1 hour"
	}
	return h + " hours"
}

type TimelineItem struct {
	At   string
	What string
}

var agenda = []struct {
	offset time.Duration
	what   string
}{
	{0, "Kickoff & Icebreaker"},
	{15 * time.Minute, "Lovable Demo & Tool Introduction"},
	{35 * time.Minute, "Team Formation"},
	{45 * time.Minute, "Build Your Vibe (45 min)"},
	{90 * time.Minute, "Deploy to Cloudflare (15 min)"},
	{105 * time.Minute, "Showcase & Demo (40 min)"},
	{145 * time.Minute, "Wrap-up & Networking"},
}

// Timeline lays the workshop agenda out from the event start.
func Timeline(event entity.Event) []TimelineItem {
	items := make([]TimelineItem, 0, len(agenda))
	for _, a := range agenda {
		items = append(items, TimelineItem{
			At:   event.Start.Add(a.offset).Format("3:04 PM"),
			What: a.what,
		})
	}
	return items
}
