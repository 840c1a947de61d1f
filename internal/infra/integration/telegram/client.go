package telegram

import (
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MaxCallbackData is Telegram's limit for inline button payloads, in bytes.
const MaxCallbackData = 64

type Client struct {
	bot *tgbotapi.BotAPI
}

// NewClient builds the Bot API client without calling getMe, so the service
// boots even when Telegram is unreachable. apiEndpoint follows the library
// format ("https://api.telegram.org/bot%s/%s"); empty means the default.
func NewClient(token, apiEndpoint string) *Client {
	if apiEndpoint == "" {
		apiEndpoint = tgbotapi.APIEndpoint
	}
	bot := &tgbotapi.BotAPI{
		Token:  token,
		Client: &http.Client{Timeout: 10 * time.Second},
		Buffer: 100,
	}
	bot.SetAPIEndpoint(apiEndpoint)
	return &Client{bot: bot}
}

// SendHTML posts an HTML message, with one inline button per row.
func (c *Client) SendHTML(chatID int64, text string, buttons []Button) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if len(buttons) > 0 {
		rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(buttons))
		for _, b := range buttons {
			if len(b.Data) > MaxCallbackData {
				return fmt.Errorf("callback data for %q exceeds %d bytes", b.Text, MaxCallbackData)
			}
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data),
			))
		}
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	}

	if _, err := c.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram sendMessage failed: %w", err)
	}
	return nil
}

// AnswerCallback stops the loading spinner on the pressed button.
func (c *Client) AnswerCallback(callbackID, text string) error {
	if _, err := c.bot.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		return fmt.Errorf("telegram answerCallbackQuery failed: %w", err)
	}
	return nil
}

func (c *Client) SetWebhook(url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("invalid webhook url: %w", err)
	}
	wh.AllowedUpdates = AllowedUpdates

	if _, err := c.bot.Request(wh); err != nil {
		return fmt.Errorf("telegram setWebhook failed: %w", err)
	}
	return nil
}

func (c *Client) GetWebhookInfo() (WebhookInfo, error) {
	info, err := c.bot.GetWebhookInfo()
	if err != nil {
		return WebhookInfo{}, fmt.Errorf("telegram getWebhookInfo failed: %w", err)
	}
	return WebhookInfo{
		URL:                info.URL,
		PendingUpdateCount: info.PendingUpdateCount,
		LastErrorDate:      info.LastErrorDate,
		LastErrorMessage:   info.LastErrorMessage,
		MaxConnections:     info.MaxConnections,
		AllowedUpdates:     info.AllowedUpdates,
	}, nil
}
