package usecase

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/xavierca1/vibe-registration/internal/entity"
	"github.com/xavierca1/vibe-registration/internal/infra/integration/telegram"
	"github.com/xavierca1/vibe-registration/internal/reference"
	"github.com/xavierca1/vibe-registration/internal/security"
)

const SignupsClosedMessage = "Registration is currently closed. Thank you for your interest!"

type RegisterUseCase struct {
	SignupsDisabled bool
	AdminChatID     int64

	// Captcha nil desliga a verificação (CAPTCHA_REQUIRED=false).
	Captcha    CaptchaVerifier
	Duplicates DuplicateChecker
	Codec      PayloadCodec
	Mailer     Mailer
	Notifier   Notifier
	Events     EventPublisher

	Event  entity.Event
	Logger *slog.Logger
	Now    func() time.Time
}

func NewRegisterUseCase(
	signupsDisabled bool,
	adminChatID int64,
	captcha CaptchaVerifier,
	duplicates DuplicateChecker,
	codec PayloadCodec,
	mailer Mailer,
	notifier Notifier,
	events EventPublisher,
	event entity.Event,
	logger *slog.Logger,
) *RegisterUseCase {
	return &RegisterUseCase{
		SignupsDisabled: signupsDisabled,
		AdminChatID:     adminChatID,
		Captcha:         captcha,
		Duplicates:      duplicates,
		Codec:           codec,
		Mailer:          mailer,
		Notifier:        notifier,
		Events:          events,
		Event:           event,
		Logger:          logger,
		Now:             time.Now,
	}
}

func (uc *RegisterUseCase) Execute(ctx context.Context, input RegisterInput) (*RegisterOutput, error) {
	if uc.SignupsDisabled {
		return nil, &DomainError{Code: CodeSignupsClosed, Message: SignupsClosedMessage}
	}

	if uc.Notifier == nil || uc.AdminChatID == 0 {
		return nil, &TechnicalError{Code: CodeTelegramConfig, Message: "Telegram configuration missing"}
	}

	form := input.FormData

	if errs := ValidateRegistration(form); len(errs) > 0 {
		return nil, &DomainError{
			Code:    CodeValidation,
			Message: "Please check the highlighted fields",
			Fields:  fieldErrors(errs),
		}
	}

	if uc.Captcha != nil && !uc.Captcha.Verify(form.CaptchaID, form.CaptchaAnswer) {
		return nil, &DomainError{Code: CodeCaptcha, Message: "CAPTCHA verification failed. Please try again."}
	}

	if spam := security.Score(form); spam.IsSpam {
		uc.Logger.Warn("spam detected", "score", spam.Score, "reasons", spam.Reasons)
		return nil, &DomainError{
			Code:    CodeSpam,
			Message: "Submission flagged as spam",
			Reasons: spam.Reasons,
		}
	}

	dup, err := uc.Duplicates.IsDuplicate(ctx, form.Email, form.Phone)
	if err != nil {
		return nil, &TechnicalError{Code: CodeDuplicateStore, Message: "duplicate check failed", Err: err}
	}
	if dup {
		return nil, &DomainError{
			Code:    CodeDuplicate,
			Message: "You have already registered with this email/phone combination",
		}
	}

	now := uc.Now()
	ref := reference.New(form.Name, form.Email, form.LinkedInProfile, now)
	reg := entity.NewRegistration(form, ref, now)

	// Webhook externo: falha não bloqueia a inscrição.
	if uc.Events != nil {
		event := entity.NewRegistrationEvent(reg, uc.Event.Title, uc.Event.ISODate(), entity.StatusPending)
		if err := uc.Events.PublishRegistration(ctx, event); err != nil {
			uc.Logger.Error("failed to publish registration event", "reference", ref, "error", err)
		}
	}

	payload, err := uc.Codec.Encode(reg)
	if err != nil {
		return nil, &TechnicalError{Code: CodeEncodeFailed, Message: "failed to encode registration", Err: err}
	}

	emailErr := error(nil)
	if _, err := uc.Mailer.SendPayment(ctx, reg); err != nil {
		emailErr = err
		uc.Logger.Error("failed to send payment email", "reference", ref, "error", err)
	} else {
		uc.Logger.Info("payment email sent", "reference", ref)
	}

	text := uc.operatorMessage(reg, payload, emailErr, now)

	var buttons []telegram.Button
	if data := "paid_" + ref; len(data) <= telegram.MaxCallbackData {
		buttons = append(buttons, telegram.Button{Text: "💳 Mark as Paid", Data: data})
	}

	if err := uc.Notifier.SendHTML(uc.AdminChatID, text, buttons); err != nil {
		return nil, &TechnicalError{Code: CodeNotifyFailed, Message: "Failed to send message to Telegram", Err: err}
	}

	return &RegisterOutput{Success: true, Reference: ref}, nil
}

func (uc *RegisterUseCase) operatorMessage(reg *entity.Registration, payload string, emailErr error, now time.Time) string {
	var b strings.Builder

	b.WriteString("🎨 <b>NEW VIBE CODING REGISTRATION</b>\n\n")
	fmt.Fprintf(&b, "👤 <b>Name:</b> %s\n", html.EscapeString(reg.Name))
	fmt.Fprintf(&b, "📧 <b>Email:</b> %s\n", html.EscapeString(reg.Email))
	fmt.Fprintf(&b, "📱 <b>Phone:</b> %s\n", html.EscapeString(reg.Phone))
	if reg.Company != "" {
		fmt.Fprintf(&b, "🏢 <b>Company:</b> %s\n", html.EscapeString(reg.Company))
	}
	if reg.LinkedInProfile != "" {
		fmt.Fprintf(&b, "🔗 <b>LinkedIn:</b> %s\n", html.EscapeString(reg.LinkedInProfile))
	}
	if reg.HasExperience {
		tools := reg.ToolsUsed
		if tools == "" {
			tools = "Not specified"
		}
		fmt.Fprintf(&b, "🔧 <b>Experience:</b> Yes - %s\n", html.EscapeString(tools))
	} else {
		b.WriteString("🔧 <b>Experience:</b> No\n")
	}
	fmt.Fprintf(&b, "💡 <b>Project Idea:</b> %s\n\n", html.EscapeString(reg.ProjectIdea))

	fmt.Fprintf(&b, "🆔 <b>Reference:</b> %s\n", html.EscapeString(reg.Reference))
	fmt.Fprintf(&b, "💰 <b>Payment:</b> %s\n", uc.Event.DisplayPrice())
	fmt.Fprintf(&b, "📅 <b>Submitted:</b> %s\n\n", uc.localTime(now).Format("2 Jan 2006, 3:04:05 PM"))

	if emailErr != nil {
		fmt.Fprintf(&b, "⚠️ <b>Payment email failed:</b> %s\n\n", html.EscapeString(emailErr.Error()))
	} else {
		b.WriteString("✅ <b>Payment email sent to participant!</b>\n\n")
	}

	// Telegram só torna clicável [A-Za-z0-9_] num comando; '@', '.' e '-'
	// cortariam o argumento, então os comandos vão em <code> para copiar.
	ref := html.EscapeString(reg.Reference)
	fmt.Fprintf(&b, "Mark as paid: <code>/paid_%s</code>\n", ref)
	fmt.Fprintf(&b, "Resend payment email: <code>/approve_%s</code>\n", payload)
	fmt.Fprintf(&b, "Reject: <code>/reject_%s</code>", ref)

	return b.String()
}

func (uc *RegisterUseCase) localTime(t time.Time) time.Time {
	if loc := uc.Event.Start.Location(); loc != nil {
		return t.In(loc)
	}
	return t
}
