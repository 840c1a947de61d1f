package usecase

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/xavierca1/vibe-registration/internal/entity"
	"github.com/xavierca1/vibe-registration/internal/infra/integration/telegram"
	"github.com/xavierca1/vibe-registration/internal/reference"
)

// Commands the operator can send, as text or as button callback data.
const (
	CmdApprove      = "approve"
	CmdReject       = "reject"
	CmdPaid         = "paid"
	CmdConfirm      = "confirm"
	CmdResend       = "resend"
	CmdHelp         = "help"
	CmdPipe         = "pipe"
	CmdUnknown      = "unknown"
	CmdUnauthorized = "unauthorized"
)

var prefixed = []string{CmdApprove, CmdReject, CmdPaid, CmdConfirm, CmdResend}

// Command is a parsed operator message.
type Command struct {
	Name string
	Arg  string
}

// ParseCommand accepts "/paid_REF", "paid_REF", "PAID_REF" and so on. The
// argument keeps its case since payloads are base64.
func ParseCommand(text string) Command {
	text = strings.TrimSpace(text)
	body := strings.TrimPrefix(text, "/")
	lower := strings.ToLower(body)

	for _, name := range prefixed {
		if strings.HasPrefix(lower, name+"_") {
			return Command{Name: name, Arg: strings.TrimSpace(body[len(name)+1:])}
		}
	}

	// @botname só aparece em comandos sem argumento nos grupos.
	bare := lower
	if at := strings.Index(bare, "@"); at >= 0 && !strings.Contains(bare, "|") {
		bare = bare[:at]
	}
	if bare == "help" || bare == "start" {
		return Command{Name: CmdHelp}
	}

	if strings.Contains(body, "|") {
		return Command{Name: CmdPipe, Arg: text}
	}

	return Command{Name: CmdUnknown, Arg: text}
}

type OperatorUseCase struct {
	AdminChatID  int64
	Codec        PayloadCodec
	Mailer       Mailer
	Notifier     Notifier
	Events       EventPublisher
	Event        entity.Event
	PayNowMobile string
	// QRLinkURL is the image endpoint linked from the PayNow instructions.
	QRLinkURL string
	Logger    *slog.Logger
}

func NewOperatorUseCase(
	adminChatID int64,
	codec PayloadCodec,
	mailer Mailer,
	notifier Notifier,
	events EventPublisher,
	event entity.Event,
	payNowMobile string,
	qrLinkURL string,
	logger *slog.Logger,
) *OperatorUseCase {
	return &OperatorUseCase{
		AdminChatID:  adminChatID,
		Codec:        codec,
		Mailer:       mailer,
		Notifier:     notifier,
		Events:       events,
		Event:        event,
		PayNowMobile: payNowMobile,
		QRLinkURL:    qrLinkURL,
		Logger:       logger,
	}
}

// Execute runs one operator message. Nothing is stored: the same reference can
// be paid, rejected or approved any number of times.
func (uc *OperatorUseCase) Execute(ctx context.Context, in telegram.Inbound) OperatorResult {
	if in.ChatID != uc.AdminChatID {
		uc.Logger.Warn("operator command from unknown chat", "chat_id", in.ChatID)
		return OperatorResult{Status: http.StatusOK, OK: true, Command: CmdUnauthorized}
	}

	cmd := ParseCommand(in.Text)

	var res OperatorResult
	switch cmd.Name {
	case CmdApprove:
		res = uc.approve(ctx, cmd.Arg)
	case CmdReject:
		res = uc.reject(ctx, cmd.Arg)
	case CmdPaid:
		res = uc.paid(ctx, cmd.Arg)
	case CmdConfirm:
		res = uc.confirm(ctx, cmd.Arg)
	case CmdResend:
		res = uc.resend(ctx, cmd.Arg)
	case CmdHelp:
		uc.reply(helpMessage())
		res = OperatorResult{Status: http.StatusOK, Success: true, Action: "help"}
	case CmdPipe:
		res = uc.pipe(ctx, cmd.Arg)
	default:
		uc.reply("❓ Unknown command. Send /help for available commands.")
		res = OperatorResult{Status: http.StatusOK, OK: true}
	}
	res.Command = cmd.Name

	if in.IsCallback {
		uc.answer(in.CallbackID, res)
	}

	uc.Logger.Info("operator command handled",
		"command", cmd.Name,
		"action", res.Action,
		"reference", res.Reference,
		"status", res.Status,
	)
	return res
}

func (uc *OperatorUseCase) approve(ctx context.Context, arg string) OperatorResult {
	reg, ok := uc.Codec.Decode(arg)
	if !ok {
		uc.reply("❌ Invalid registration data. Please use the original approve command.")
		return OperatorResult{Status: http.StatusBadRequest, Error: "Invalid data"}
	}

	if _, err := uc.Mailer.SendPayment(ctx, reg); err != nil {
		uc.Logger.Error("failed to send payment email", "reference", reg.Reference, "error", err)
		uc.reply(paymentEmailErrorMessage(reg, err))
		return OperatorResult{Status: http.StatusInternalServerError, Error: "Email sending failed"}
	}

	uc.reply(approvedMessage(reg))
	return OperatorResult{Status: http.StatusOK, Success: true, Action: "approved", Reference: reg.Reference}
}

func (uc *OperatorUseCase) reject(ctx context.Context, arg string) OperatorResult {
	reg, _, err := uc.Codec.Recover(arg)
	if err != nil {
		uc.reply("❌ Invalid registration data.")
		return OperatorResult{Status: http.StatusBadRequest, Error: "Invalid data"}
	}

	uc.reply(rejectedMessage(reg))
	uc.publish(ctx, reg, entity.StatusRejected)

	return OperatorResult{Status: http.StatusOK, Success: true, Action: "rejected", Reference: reg.Reference}
}

func (uc *OperatorUseCase) paid(ctx context.Context, arg string) OperatorResult {
	reg, _, err := uc.Codec.Recover(arg)
	if err != nil {
		uc.reply(invalidReferenceMessage(arg))
		return OperatorResult{Status: http.StatusBadRequest, Error: reference.ErrInvalidFormat.Error()}
	}

	if !reg.HasEmail() {
		uc.reply(limitedInfoMessage(reg.Reference))
		return OperatorResult{Status: http.StatusOK, Success: true, Action: "paid_partial", Reference: reg.Reference}
	}

	return uc.markPaid(ctx, reg)
}

// pipe handles "REFERENCE|email[|linkedin-handle]", the reply to a LIMITED
// INFO message.
func (uc *OperatorUseCase) pipe(ctx context.Context, text string) OperatorResult {
	parts := strings.Split(strings.TrimPrefix(text, "/"), "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	parsed, err := reference.Parse(parts[0])
	if err != nil {
		uc.reply(invalidReferenceMessage(parts[0]))
		return OperatorResult{Status: http.StatusBadRequest, Error: reference.ErrInvalidFormat.Error()}
	}

	email := parts[1]
	if !isValidEmail(email) {
		uc.reply("❌ Invalid email address. Use: <code>REFERENCE|email@example.com</code>")
		return OperatorResult{Status: http.StatusBadRequest, Error: "Invalid email"}
	}

	reg := parsed.Registration()
	reg.Email = email
	if len(parts) > 2 && parts[2] != "" {
		reg.LinkedInProfile = "https://linkedin.com/in/" + reference.LinkedInHandle(parts[2])
	}

	return uc.markPaid(ctx, reg)
}

func (uc *OperatorUseCase) markPaid(ctx context.Context, reg *entity.Registration) OperatorResult {
	if _, err := uc.Mailer.SendConfirmation(ctx, reg); err != nil {
		uc.Logger.Error("failed to send confirmation email", "reference", reg.Reference, "error", err)
		uc.reply(confirmationEmailErrorMessage(reg.Reference, err))
		return OperatorResult{Status: http.StatusInternalServerError, Error: "Email sending failed", Reference: reg.Reference}
	}

	uc.reply(paidMessage(reg))
	uc.publish(ctx, reg, entity.StatusPaid)

	return OperatorResult{Status: http.StatusOK, Success: true, Action: "paid", Reference: reg.Reference}
}

func (uc *OperatorUseCase) confirm(ctx context.Context, arg string) OperatorResult {
	reg, _, err := uc.Codec.Recover(arg)
	if err != nil {
		uc.reply(invalidReferenceMessage(arg))
		return OperatorResult{Status: http.StatusBadRequest, Error: reference.ErrInvalidFormat.Error()}
	}

	emailSent := false
	if reg.HasEmail() {
		if _, err := uc.Mailer.SendPayment(ctx, reg); err != nil {
			uc.Logger.Error("failed to send payment email", "reference", reg.Reference, "error", err)
			uc.reply(paymentEmailErrorMessage(reg, err))
			return OperatorResult{Status: http.StatusInternalServerError, Error: "Email sending failed", Reference: reg.Reference}
		}
		emailSent = true
	}

	bankRef := reference.BankReference(reg.Reference)
	uc.reply(confirmedMessage(reg, emailSent, paymentInstructions(uc.Event, uc.PayNowMobile, bankRef, uc.qrLink(bankRef))))

	return OperatorResult{Status: http.StatusOK, Success: true, Action: "confirmed", Reference: reg.Reference}
}

func (uc *OperatorUseCase) resend(ctx context.Context, arg string) OperatorResult {
	reg, _, err := uc.Codec.Recover(arg)
	if err != nil {
		uc.reply(invalidReferenceMessage(arg))
		return OperatorResult{Status: http.StatusBadRequest, Error: reference.ErrInvalidFormat.Error()}
	}

	if !reg.HasEmail() {
		uc.reply(noEmailMessage(reg.Reference))
		return OperatorResult{Status: http.StatusBadRequest, Error: "Email address unavailable", Reference: reg.Reference}
	}

	if _, err := uc.Mailer.SendPayment(ctx, reg); err != nil {
		uc.Logger.Error("failed to resend payment email", "reference", reg.Reference, "error", err)
		uc.reply(paymentEmailErrorMessage(reg, err))
		return OperatorResult{Status: http.StatusInternalServerError, Error: "Email sending failed", Reference: reg.Reference}
	}

	uc.reply(resentMessage(reg))
	return OperatorResult{Status: http.StatusOK, Success: true, Action: "resent", Reference: reg.Reference}
}

func (uc *OperatorUseCase) qrLink(bankRef string) string {
	if uc.QRLinkURL == "" {
		return ""
	}
	data := "paynow://pay?mobile=" + uc.PayNowMobile + "&amount=" + uc.Event.Amount() + "&ref=" + bankRef + "&editable=0"
	sep := "?"
	if strings.Contains(uc.QRLinkURL, "?") {
		sep = "&"
	}
	return uc.QRLinkURL + sep + "size=300x300&data=" + url.QueryEscape(data)
}

func (uc *OperatorUseCase) publish(ctx context.Context, reg *entity.Registration, status string) {
	if uc.Events == nil {
		return
	}
	event := entity.NewRegistrationEvent(reg, uc.Event.Title, uc.Event.ISODate(), status)
	if err := uc.Events.PublishRegistration(ctx, event); err != nil {
		uc.Logger.Error("failed to publish registration event", "reference", reg.Reference, "status", status, "error", err)
	}
}

// reply nunca falha o comando: o e-mail já foi enviado a essa altura.
func (uc *OperatorUseCase) reply(text string) {
	if err := uc.Notifier.SendHTML(uc.AdminChatID, text, nil); err != nil {
		uc.Logger.Error("failed to reply to operator", "error", err)
	}
}

func (uc *OperatorUseCase) answer(callbackID string, res OperatorResult) {
	text := "✅ Done"
	if res.Error != "" {
		text = "❌ " + res.Error
	}
	if err := uc.Notifier.AnswerCallback(callbackID, text); err != nil {
		uc.Logger.Error("failed to answer callback", "error", err)
	}
}
