package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/xavierca1/vibe-registration/internal/infra/http/middleware"
	"github.com/xavierca1/vibe-registration/internal/infra/integration/telegram"
	"github.com/xavierca1/vibe-registration/internal/usecase"
)

// TelegramHandler receives bot updates on both /api/telegram-bot and
// /api/telegram-webhook.
type TelegramHandler struct {
	OperatorUC *usecase.OperatorUseCase
}

func NewTelegramHandler(uc *usecase.OperatorUseCase) *TelegramHandler {
	return &TelegramHandler{OperatorUC: uc}
}

func (h *TelegramHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.OperatorUC == nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Telegram configuration missing"})
		return
	}

	var update telegram.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_json", "Bad JSON")
		return
	}

	in, ok := telegram.InboundFrom(update)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		return
	}

	res := h.OperatorUC.Execute(r.Context(), in)
	middleware.RecordOperatorCommand(res.Command)

	writeJSON(w, res.Status, res)
}
