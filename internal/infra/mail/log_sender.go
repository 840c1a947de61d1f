package mail

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// LogSender only logs. It backs APP_ENV=local and EMAIL_PROVIDER=log.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg Message) (string, error) {
	id := "log-" + uuid.NewString()

	names := make([]string, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		names = append(names, a.Filename)
	}

	s.logger.InfoContext(ctx, "email not sent, logging only",
		"id", id,
		"to", msg.To,
		"subject", msg.Subject,
		"html_bytes", len(msg.HTML),
		"attachments", names,
	)
	return id, nil
}
