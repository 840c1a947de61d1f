package handlers

import (
	"net/http"

	"github.com/xavierca1/vibe-registration/internal/security"
)

type CaptchaResponse struct {
	ID  string `json:"id"`
	SVG string `json:"svg"`
}

type CaptchaHandler struct {
	Store   *security.CaptchaStore
	Limiter *security.RateLimiter
}

func NewCaptchaHandler(store *security.CaptchaStore, limiter *security.RateLimiter) *CaptchaHandler {
	return &CaptchaHandler{Store: store, Limiter: limiter}
}

// Handle issues a challenge. The answer only lives in the store.
func (h *CaptchaHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, h.Limiter, "rate_limit_exceeded", "") {
		return
	}

	c := h.Store.New()

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, CaptchaResponse{ID: c.ID, SVG: security.RenderSVG(c.Text)})
}
