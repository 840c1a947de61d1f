package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/vibe-registration/internal/infra/http/handlers"
	"github.com/xavierca1/vibe-registration/internal/infra/http/middleware"
	"github.com/xavierca1/vibe-registration/internal/security"
)

type application struct {
	logger         *slog.Logger
	origins        *security.OriginValidator
	internalAPIKey string

	registration *handlers.RegistrationHandler
	telegram     *handlers.TelegramHandler
	setWebhook   *handlers.SetWebhookHandler
	vibe         *handlers.VibeHandler
	namecard     *handlers.NamecardHandler
	signupStatus *handlers.SignupStatusHandler
	honeypot     *handlers.HoneypotHandler
	captcha      *handlers.CaptchaHandler
	health       *handlers.HealthHandler
}

func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.CleanPath)
	r.Use(middleware.RequestLogger(app.logger))
	r.Use(middleware.AccessLog)
	r.Use(middleware.Recover)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc: func(_ *http.Request, origin string) bool {
			return app.origins.AllowedOrigin(origin)
		},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", security.APIKeyHeader, middleware.RequestIDHeader},
		ExposedHeaders: []string{"Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/health", app.health.Handle)
	r.With(middleware.RequireAPIKey(app.internalAPIKey)).Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/telegram-simple", app.registration.Handle)

		// Os dois caminhos já foram registrados como webhook do bot.
		r.Post("/telegram-bot", app.telegram.Handle)
		r.Post("/telegram-webhook", app.telegram.Handle)

		r.Get("/set-webhook", app.setWebhook.HandleGet)
		r.Post("/set-webhook", app.setWebhook.HandlePost)

		r.With(chimiddleware.Timeout(90*time.Second)).Post("/generate-vibe", app.vibe.Handle)
		r.Post("/namecard", app.namecard.Handle)
		r.Get("/signup-status", app.signupStatus.Handle)
		r.Get("/captcha", app.captcha.Handle)

		r.Get("/admin", app.honeypot.Handle)
		r.Post("/admin", app.honeypot.Handle)
	})

	return r
}
