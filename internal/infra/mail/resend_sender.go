package mail

import (
	"context"

	"github.com/xavierca1/vibe-registration/internal/infra/integration/resend"
)

type ResendSender struct {
	client *resend.Client
}

func NewResendSender(client *resend.Client) *ResendSender {
	return &ResendSender{client: client}
}

func (s *ResendSender) Send(ctx context.Context, msg Message) (string, error) {
	input := resend.SendEmailInput{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
	}
	for _, a := range msg.Attachments {
		input.Attachments = append(input.Attachments, resend.Attachment{
			Filename:    a.Filename,
			Content:     a.Data,
			ContentType: a.ContentType,
			ContentID:   a.ContentID,
		})
	}

	return s.client.SendEmail(ctx, input)
}
