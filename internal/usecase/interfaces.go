package usecase

import (
	"context"

	"github.com/xavierca1/vibe-registration/internal/entity"
	"github.com/xavierca1/vibe-registration/internal/infra/integration/telegram"
)

type Mailer interface {
	SendPayment(ctx context.Context, reg *entity.Registration) (string, error)
	SendConfirmation(ctx context.Context, reg *entity.Registration) (string, error)
}

// Notifier is the operator chat.
type Notifier interface {
	SendHTML(chatID int64, text string, buttons []telegram.Button) error
	AnswerCallback(callbackID, text string) error
}

type EventPublisher interface {
	PublishRegistration(ctx context.Context, event entity.RegistrationEvent) error
}

type CaptchaVerifier interface {
	Verify(id, answer string) bool
}

type DuplicateChecker interface {
	IsDuplicate(ctx context.Context, email, phone string) (bool, error)
}

type PayloadCodec interface {
	Encode(reg *entity.Registration) (string, error)
	Decode(token string) (*entity.Registration, bool)
	Recover(arg string) (reg *entity.Registration, complete bool, err error)
}
