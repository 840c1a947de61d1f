package handlers

import (
	"net/http"

	"github.com/xavierca1/vibe-registration/internal/usecase"
)

type SignupStatusResponse struct {
	Enabled bool   `json:"enabled"`
	Message string `json:"message,omitempty"`
}

type SignupStatusHandler struct {
	Disabled bool
}

func NewSignupStatusHandler(disabled bool) *SignupStatusHandler {
	return &SignupStatusHandler{Disabled: disabled}
}

func (h *SignupStatusHandler) Handle(w http.ResponseWriter, r *http.Request) {
	resp := SignupStatusResponse{Enabled: !h.Disabled}
	if h.Disabled {
		resp.Message = usecase.SignupsClosedMessage
	}
	writeJSON(w, http.StatusOK, resp)
}
