package mail

import (
	"context"
	"fmt"

	"github.com/xavierca1/vibe-registration/internal/entity"
)

// Mailer composes and sends. Each call performs exactly one Sender.Send and
// never retries; the caller decides what a failure means.
type Mailer struct {
	composer *Composer
	sender   Sender
	observe  func(kind, status string)
}

func NewMailer(composer *Composer, sender Sender, observe func(kind, status string)) *Mailer {
	if observe == nil {
		observe = func(string, string) {}
	}
	return &Mailer{composer: composer, sender: sender, observe: observe}
}

func (m *Mailer) SendPayment(ctx context.Context, reg *entity.Registration) (string, error) {
	msg, err := m.composer.PaymentEmail(ctx, reg)
	if err != nil {
		return "", err
	}
	return m.send(ctx, KindPayment, msg)
}

func (m *Mailer) SendConfirmation(ctx context.Context, reg *entity.Registration) (string, error) {
	msg, err := m.composer.ConfirmationEmail(ctx, reg)
	if err != nil {
		return "", err
	}
	return m.send(ctx, KindConfirmation, msg)
}

func (m *Mailer) send(ctx context.Context, kind string, msg Message) (string, error) {
	if len(msg.To) == 0 || msg.To[0] == "" {
		m.observe(kind, "skipped")
		return "", fmt.Errorf("no recipient for %s email", kind)
	}

	id, err := m.sender.Send(ctx, msg)
	if err != nil {
		m.observe(kind, "failed")
		return "", fmt.Errorf("failed to send %s email: %w", kind, err)
	}

	m.observe(kind, "sent")
	return id, nil
}
