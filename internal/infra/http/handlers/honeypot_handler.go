package handlers

import (
	"net/http"
	"time"
)

const HoneypotDelay = 5 * time.Second

// HoneypotHandler answers scanners probing /api/admin. It logs the hit and
// holds the connection before a fake success.
type HoneypotHandler struct {
	Delay time.Duration
}

func NewHoneypotHandler() *HoneypotHandler {
	return &HoneypotHandler{Delay: HoneypotDelay}
}

func (h *HoneypotHandler) Handle(w http.ResponseWriter, r *http.Request) {
	securityEvent(r, "HONEYPOT_TRIGGERED", "method", r.Method)

	timer := time.NewTimer(h.Delay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-r.Context().Done():
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
