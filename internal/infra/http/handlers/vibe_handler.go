package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/xavierca1/vibe-registration/internal/infra/http/middleware"
	"github.com/xavierca1/vibe-registration/internal/security"
	"github.com/xavierca1/vibe-registration/internal/vibe"
)

// VibeHandler is POST /api/generate-vibe. Every call costs an OpenAI request,
// so the request goes through the full defense chain first.
type VibeHandler struct {
	Generator  *vibe.Generator
	Limiter    *security.RateLimiter
	Origins    *security.OriginValidator
	DailyUsage *security.DailyUsage
}

func NewVibeHandler(gen *vibe.Generator, limiter *security.RateLimiter, origins *security.OriginValidator, daily *security.DailyUsage) *VibeHandler {
	return &VibeHandler{Generator: gen, Limiter: limiter, Origins: origins, DailyUsage: daily}
}

func (h *VibeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if security.PayloadTooLarge(r) {
		securityEvent(r, "LARGE_PAYLOAD_BLOCKED", "size", r.ContentLength)
		writeErrorResponse(w, http.StatusRequestEntityTooLarge, "payload_too_large", "Request body too large")
		return
	}

	if country, blocked := security.GeoBlocked(r); blocked {
		securityEvent(r, "GEO_BLOCKED", "country", country)
		writeErrorResponse(w, http.StatusForbidden, "geo_restricted", "Service not available in your region")
		return
	}

	// Só registra; navegadores com extensões também caem aqui.
	if security.LooksLikeBot(r) {
		securityEvent(r, "BOT_DETECTED")
	}

	if !allow(w, r, h.Limiter, "rate_limit_exceeded", "") {
		return
	}

	if !h.Origins.Allowed(r) {
		securityEvent(r, "INVALID_ORIGIN", "origin", r.Header.Get("Origin"), "referer", r.Header.Get("Referer"))
		writeErrorResponse(w, http.StatusForbidden, "forbidden", "Request origin not allowed")
		return
	}

	var body map[string]any
	r.Body = http.MaxBytesReader(w, r.Body, security.MaxPayloadBytes)
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_json", "Request body must be a JSON object")
		return
	}

	input, errs := vibe.Validate(body)
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid input",
			Errors:  errs,
		})
		return
	}

	prompt := vibe.Prompt(input)
	if tokens := security.EstimateTokens(prompt); tokens > vibe.MaxPromptTokens {
		securityEvent(r, "LARGE_PROMPT_BLOCKED", "estimated_tokens", tokens)
		writeErrorResponse(w, http.StatusBadRequest, "prompt_too_large", "Request too complex")
		return
	}

	ip := security.ClientIP(r)
	if !h.DailyUsage.Reserve(ip) {
		securityEvent(r, "DAILY_LIMIT_EXCEEDED")
		writeJSON(w, http.StatusTooManyRequests, ErrorResponse{
			Error:     "daily_limit_exceeded",
			Message:   "Daily AI generation limit reached. Try again tomorrow.",
			NextReset: h.DailyUsage.NextReset().Format(time.RFC3339),
		})
		return
	}

	result, err := h.Generator.Generate(r.Context(), prompt)
	if err != nil {
		// Só gerações bem-sucedidas contam para o limite diário.
		h.DailyUsage.Release(ip)
		if errors.Is(err, vibe.ErrUnavailable) {
			logger(r).Error("OpenAI API key not configured")
			writeErrorResponse(w, http.StatusServiceUnavailable, "service_unavailable", "AI service not configured")
			return
		}
		logger(r).Error("vibe generation failed", "error", err)
		middleware.RecordIntegrationError("openai")
		writeErrorResponse(w, http.StatusInternalServerError, "generation_failed", "Failed to generate vibe code")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
