package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xavierca1/vibe-registration/internal/entity"
)

const (
	EnvLocal = "local"
	EnvProd  = "prod"
)

type Config struct {
	Env      string
	HTTPAddr string
	AppURL   string

	TelegramToken       string
	TelegramAdminChatID int64

	EmailProvider string
	EmailFrom     string
	ResendAPIKey  string
	MailHost      string
	MailPort      int
	MailUser      string
	MailPass      string

	PayNowMobile string
	PayNowAPIKey string
	PayNowQRURL  string
	QRAPIURL     string

	OpenAIAPIKey string

	AdminAPIKey    string
	InternalAPIKey string

	SignupsDisabled bool
	CaptchaRequired bool

	VibingWebhookURL    string
	VibingWebhookSecret string

	DatabaseURL string
	AMQPURL     string

	PayloadSigningSecret string

	Event entity.Event
}

func (c Config) IsLocal() bool {
	return c.Env == EnvLocal
}

// TelegramConfigured is checked by the handlers that talk to the bot. The
// service still boots without it.
func (c Config) TelegramConfigured() bool {
	return c.TelegramToken != "" && c.TelegramAdminChatID != 0
}

func FromEnv() (Config, error) {
	var c Config

	c.Env = strings.ToLower(env("APP_ENV", EnvProd))
	if c.Env != EnvLocal && c.Env != EnvProd {
		return c, fmt.Errorf("APP_ENV must be %q or %q, got %q", EnvLocal, EnvProd, c.Env)
	}

	c.HTTPAddr = env("HTTP_ADDR", ":8080")
	c.AppURL = strings.TrimRight(env("NEXT_PUBLIC_APP_URL", ""), "/")

	c.TelegramToken = env("TELEGRAM_BOT_TOKEN", "")
	if raw := env("TELEGRAM_ADMIN_CHAT_ID", ""); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return c, fmt.Errorf("TELEGRAM_ADMIN_CHAT_ID is not a number: %w", err)
		}
		c.TelegramAdminChatID = id
	}

	c.EmailProvider = strings.ToLower(env("EMAIL_PROVIDER", "resend"))
	c.EmailFrom = env("EMAIL_FROM", "Vibe Coding <noreply@vibecoding.sg>")
	c.ResendAPIKey = env("RESEND_API_KEY", "")
	c.MailHost = env("MAIL_HOST", "")
	c.MailUser = env("MAIL_USER", "")
	c.MailPass = env("MAIL_PASS", "")
	port, err := strconv.Atoi(env("MAIL_PORT", "587"))
	if err != nil {
		return c, fmt.Errorf("MAIL_PORT is not a number: %w", err)
	}
	c.MailPort = port

	switch c.EmailProvider {
	case "resend", "smtp", "log":
	default:
		return c, fmt.Errorf("EMAIL_PROVIDER must be resend, smtp or log, got %q", c.EmailProvider)
	}

	c.PayNowMobile = env("PAYNOW_MOBILE", "+65 9123 4567")
	c.PayNowAPIKey = env("PAYNOW_API_KEY", "")
	c.PayNowQRURL = env("PAYNOW_QR_URL", "https://paynow.now.sh/api/qr")
	c.QRAPIURL = env("QR_API_URL", "https://api.qrserver.com/v1/create-qr-code/")

	c.OpenAIAPIKey = env("OPENAI_API_KEY", "")
	c.AdminAPIKey = env("ADMIN_API_KEY", "")
	c.InternalAPIKey = env("INTERNAL_API_KEY", "")

	c.SignupsDisabled = env("SIGNUPS_DISABLED", "") == "true"
	c.CaptchaRequired = env("CAPTCHA_REQUIRED", "true") == "true"

	c.VibingWebhookURL = env("VIBING_WEBHOOK_URL", "")
	c.VibingWebhookSecret = env("VIBING_WEBHOOK_SECRET", "")

	c.DatabaseURL = env("DATABASE_URL", "")
	c.AMQPURL = env("AMQP_URL", "")
	c.PayloadSigningSecret = env("PAYLOAD_SIGNING_SECRET", "")

	c.Event, err = eventFromEnv()
	if err != nil {
		return c, err
	}

	return c, nil
}

func eventFromEnv() (entity.Event, error) {
	loc, err := time.LoadLocation(env("EVENT_TIMEZONE", "Asia/Singapore"))
	if err != nil {
		// Containers without tzdata still get the right offset.
		loc = time.FixedZone("SGT", 8*60*60)
	}

	start, err := time.ParseInLocation("2006-01-02 15:04", env("EVENT_START", "2025-11-06 18:30"), loc)
	if err != nil {
		return entity.Event{}, fmt.Errorf("EVENT_START must be YYYY-MM-DD HH:MM: %w", err)
	}
	end, err := time.ParseInLocation("2006-01-02 15:04", env("EVENT_END", "2025-11-06 21:00"), loc)
	if err != nil {
		return entity.Event{}, fmt.Errorf("EVENT_END must be YYYY-MM-DD HH:MM: %w", err)
	}
	if !end.After(start) {
		return entity.Event{}, fmt.Errorf("EVENT_END must be after EVENT_START")
	}

	price, err := strconv.Atoi(env("EVENT_PRICE_CENTS", "1000"))
	if err != nil || price < 0 {
		return entity.Event{}, fmt.Errorf("EVENT_PRICE_CENTS must be a non-negative integer")
	}

	return entity.Event{
		Title:       env("EVENT_NAME", "Vibe Coding Nov 2025"),
		Start:       start,
		End:         end,
		Location:    env("EVENT_LOCATION", "182 Cecil St, #35-01 Frasers Tower, Singapore 069547"),
		PriceCents:  price,
		Currency:    env("EVENT_CURRENCY", "SGD"),
		OrganizedBy: env("EVENT_ORGANIZER", "IndoTechSg"),
	}, nil
}

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
