package mail

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/gomail.v2"
)

// SMTPSender is used when EMAIL_PROVIDER=smtp.
type SMTPSender struct {
	Host     string
	Port     int
	User     string
	Password string
}

func NewSMTPSender(host string, port int, user, password string) *SMTPSender {
	return &SMTPSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m := buildMessage(msg)

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)
	if err := d.DialAndSend(m); err != nil {
		return "", fmt.Errorf("failed to send email over SMTP: %w", err)
	}

	return "", nil
}

func buildMessage(msg Message) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	for _, a := range msg.Attachments {
		data := a.Data
		header := map[string][]string{"Content-Type": {a.ContentType}}
		copyData := gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		})

		if a.ContentID != "" {
			header["Content-ID"] = []string{"<" + a.ContentID + ">"}
			m.Embed(a.Filename, copyData, gomail.SetHeader(header))
			continue
		}
		m.Attach(a.Filename, copyData, gomail.SetHeader(header))
	}

	return m
}
