package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/xavierca1/vibe-registration/internal/infra/http/middleware"
	"github.com/xavierca1/vibe-registration/internal/infra/integration/telegram"
	"github.com/xavierca1/vibe-registration/internal/security"
)

type WebhookAdmin interface {
	SetWebhook(url string) error
	GetWebhookInfo() (telegram.WebhookInfo, error)
}

// SetWebhookHandler registers this service as the bot's webhook.
type SetWebhookHandler struct {
	Bot         WebhookAdmin
	AdminAPIKey string
	AppURL      string
	Limiter     *security.RateLimiter
}

func NewSetWebhookHandler(bot WebhookAdmin, adminAPIKey, appURL string, limiter *security.RateLimiter) *SetWebhookHandler {
	return &SetWebhookHandler{Bot: bot, AdminAPIKey: adminAPIKey, AppURL: appURL, Limiter: limiter}
}

func (h *SetWebhookHandler) guard(w http.ResponseWriter, r *http.Request) bool {
	if !allow(w, r, h.Limiter, "rate_limit_exceeded", "") {
		return false
	}
	if !security.ValidAPIKey(r, h.AdminAPIKey) {
		securityEvent(r, "INVALID_API_KEY", "required_level", "admin")
		writeErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Invalid or missing API key")
		return false
	}
	if h.Bot == nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Bot token not configured"})
		return false
	}
	return true
}

func (h *SetWebhookHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if !h.guard(w, r) {
		return
	}

	info, err := h.Bot.GetWebhookInfo()
	if err != nil {
		logger(r).Error("failed to get webhook info", "error", err)
		middleware.RecordIntegrationError("telegram")
		writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "result": info})
}

func (h *SetWebhookHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	if !h.guard(w, r) {
		return
	}

	var input struct {
		WebhookURL string `json:"webhookUrl"`
	}
	// Corpo vazio é permitido: usa a URL padrão.
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil && !errors.Is(err, io.EOF) {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_json", "Bad JSON")
		return
	}

	url := strings.TrimSpace(input.WebhookURL)
	if url == "" && h.AppURL != "" {
		url = h.AppURL + "/api/telegram-bot"
	}
	if !strings.HasPrefix(url, "https://") {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Valid HTTPS webhook URL required"})
		return
	}

	if err := h.Bot.SetWebhook(url); err != nil {
		logger(r).Error("failed to set webhook", "url", url, "error", err)
		middleware.RecordIntegrationError("telegram")
		writeErrorResponse(w, http.StatusBadRequest, "Failed to set webhook", err.Error())
		return
	}

	logger(r).Info("telegram webhook set", "url", url)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     "Webhook set successfully",
		"webhook_url": url,
	})
}
