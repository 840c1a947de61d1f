package usecase

import "github.com/xavierca1/vibe-registration/internal/entity"

// RegisterInput is the intake request body.
type RegisterInput struct {
	FormData  entity.FormData `json:"formData"`
	Timestamp string          `json:"timestamp,omitempty"`
	UserAgent string          `json:"userAgent,omitempty"`
}

type RegisterOutput struct {
	Success   bool   `json:"success"`
	Reference string `json:"reference"`
}

// OperatorResult is what the webhook answers Telegram with. Status is the
// HTTP status; the rest is the JSON body.
type OperatorResult struct {
	Status    int    `json:"-"`
	Command   string `json:"-"`
	OK        bool   `json:"ok,omitempty"`
	Success   bool   `json:"success,omitempty"`
	Action    string `json:"action,omitempty"`
	Reference string `json:"reference,omitempty"`
	Error     string `json:"error,omitempty"`
}
