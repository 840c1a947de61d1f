package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/xavierca1/vibe-registration/internal/infra/http/middleware"
	"github.com/xavierca1/vibe-registration/internal/security"
	"github.com/xavierca1/vibe-registration/internal/usecase"
)

type RegistrationHandler struct {
	RegisterUC *usecase.RegisterUseCase
	Limiter    *security.RateLimiter
}

func NewRegistrationHandler(uc *usecase.RegisterUseCase, limiter *security.RateLimiter) *RegistrationHandler {
	return &RegistrationHandler{RegisterUC: uc, Limiter: limiter}
}

// Handle is POST /api/telegram-simple, the signup form submission.
func (h *RegistrationHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, h.Limiter, "rate_limited", "Too many submissions. Please try again later.") {
		middleware.RecordRegistration("rate_limited")
		return
	}

	var input usecase.RegisterInput
	r.Body = http.MaxBytesReader(w, r.Body, security.MaxPayloadBytes)
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.RecordRegistration("invalid_json")
		writeErrorResponse(w, http.StatusBadRequest, "invalid_json", "Request body must be JSON with a formData object")
		return
	}
	if input.UserAgent == "" {
		input.UserAgent = r.UserAgent()
	}

	output, err := h.RegisterUC.Execute(r.Context(), input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	middleware.RecordRegistration("accepted")
	logger(r).Info("registration accepted", "reference", output.Reference)
	writeJSON(w, http.StatusOK, output)
}

func (h *RegistrationHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var de *usecase.DomainError
	if errors.As(err, &de) {
		middleware.RecordRegistration(de.Code)

		status := http.StatusBadRequest
		switch de.Code {
		case usecase.CodeSignupsClosed:
			status = http.StatusForbidden
		case usecase.CodeDuplicate:
			status = http.StatusConflict
		case usecase.CodeSpam:
			securityEvent(r, "SPAM_DETECTED", "reasons", de.Reasons)
		case usecase.CodeCaptcha:
			securityEvent(r, "CAPTCHA_FAILED")
		}

		writeJSON(w, status, ErrorResponse{
			Error:   de.Code,
			Message: de.Message,
			Reasons: de.Reasons,
			Errors:  de.Fields,
		})
		return
	}

	middleware.RecordRegistration("error")

	var te *usecase.TechnicalError
	if errors.As(err, &te) {
		logger(r).Error("registration failed", "code", te.Code, "error", err)
		if te.Code == usecase.CodeTelegramConfig {
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Telegram configuration missing"})
			return
		}
		if te.Code == usecase.CodeNotifyFailed {
			middleware.RecordIntegrationError("telegram")
		}
	} else {
		logger(r).Error("registration failed", "error", err)
	}

	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to process registration"})
}
