package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/xavierca1/vibe-registration/internal/namecard"
	"github.com/xavierca1/vibe-registration/internal/security"
)

type NamecardHandler struct {
	Cards   *namecard.Generator
	Limiter *security.RateLimiter
}

func NewNamecardHandler(cards *namecard.Generator, limiter *security.RateLimiter) *NamecardHandler {
	return &NamecardHandler{Cards: cards, Limiter: limiter}
}

func (h *NamecardHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, h.Limiter, "rate_limit_exceeded", "") {
		return
	}

	var card namecard.Card
	if err := json.NewDecoder(r.Body).Decode(&card); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_json", "Bad JSON")
		return
	}

	if strings.TrimSpace(card.Name) == "" || strings.TrimSpace(card.Email) == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Name and email are required"})
		return
	}

	svg, err := h.Cards.Render(r.Context(), card)
	if err != nil {
		logger(r).Error("namecard generation failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to generate namecard"})
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Content-Disposition", `attachment; filename="`+namecard.Filename(card.Name)+`"`)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(svg)
}
