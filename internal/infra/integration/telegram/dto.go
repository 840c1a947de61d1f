package telegram

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

var AllowedUpdates = []string{"message", "callback_query"}

type Button struct {
	Text string
	Data string
}

type WebhookInfo struct {
	URL                string   `json:"url"`
	PendingUpdateCount int      `json:"pending_update_count"`
	LastErrorDate      int      `json:"last_error_date,omitempty"`
	LastErrorMessage   string   `json:"last_error_message,omitempty"`
	MaxConnections     int      `json:"max_connections,omitempty"`
	AllowedUpdates     []string `json:"allowed_updates,omitempty"`
}

// Update is the webhook body. The library type already matches the Bot API
// JSON, so it is decoded as is.
type Update = tgbotapi.Update

// Inbound is the part of an update the operator workflow acts on.
type Inbound struct {
	ChatID     int64
	Text       string
	CallbackID string
	IsCallback bool
}

// InboundFrom extracts a text message or a button press. ok is false for
// updates carrying neither.
func InboundFrom(u Update) (Inbound, bool) {
	if q := u.CallbackQuery; q != nil {
		in := Inbound{CallbackID: q.ID, Text: q.Data, IsCallback: true}
		if q.Message != nil && q.Message.Chat != nil {
			in.ChatID = q.Message.Chat.ID
		} else if q.From != nil {
			in.ChatID = q.From.ID
		}
		return in, q.Data != ""
	}

	if m := u.Message; m != nil && m.Text != "" && m.Chat != nil {
		return Inbound{ChatID: m.Chat.ID, Text: m.Text}, true
	}

	return Inbound{}, false
}
