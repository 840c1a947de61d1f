package resend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	resendsdk "github.com/resend/resend-go/v2"
)

const DefaultBaseURL = "https://api.resend.com"

type Attachment struct {
	Filename    string
	Content     []byte
	ContentType string
	ContentID   string
}

type SendEmailInput struct {
	From        string
	To          []string
	Subject     string
	HTML        string
	Attachments []Attachment
}

type Client struct {
	apiKey string
	api    *resendsdk.Client
}

// NewClient wraps the Resend SDK. baseURL overrides the API host, tests
// point it at an httptest server.
func NewClient(apiKey, baseURL string) *Client {
	api := resendsdk.NewCustomClient(&http.Client{Timeout: 15 * time.Second}, apiKey)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if u, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/"); err == nil {
		api.BaseURL = u
	}
	return &Client{apiKey: apiKey, api: api}
}

// SendEmail posts one email and returns the provider message id.
func (c *Client) SendEmail(ctx context.Context, input SendEmailInput) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("RESEND_API_KEY not set")
	}

	req := &resendsdk.SendEmailRequest{
		From:    input.From,
		To:      input.To,
		Subject: input.Subject,
		Html:    input.HTML,
	}
	for _, a := range input.Attachments {
		req.Attachments = append(req.Attachments, &resendsdk.Attachment{
			Filename:    a.Filename,
			Content:     a.Content,
			ContentType: a.ContentType,
			ContentId:   a.ContentID,
		})
	}

	sent, err := c.api.Emails.SendWithContext(ctx, req)
	if err != nil {
		return "", fmt.Errorf("resend rejected email: %w", err)
	}

	return sent.Id, nil
}
