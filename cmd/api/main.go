package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/vibe-registration/internal/config"
	"github.com/xavierca1/vibe-registration/internal/infra/database"
	"github.com/xavierca1/vibe-registration/internal/infra/http/handlers"
	"github.com/xavierca1/vibe-registration/internal/infra/http/middleware"
	"github.com/xavierca1/vibe-registration/internal/infra/integration/openai"
	"github.com/xavierca1/vibe-registration/internal/infra/integration/qr"
	"github.com/xavierca1/vibe-registration/internal/infra/integration/resend"
	"github.com/xavierca1/vibe-registration/internal/infra/integration/telegram"
	"github.com/xavierca1/vibe-registration/internal/infra/integration/vibing"
	"github.com/xavierca1/vibe-registration/internal/infra/mail"
	"github.com/xavierca1/vibe-registration/internal/infra/queue"
	"github.com/xavierca1/vibe-registration/internal/infra/worker"
	"github.com/xavierca1/vibe-registration/internal/namecard"
	"github.com/xavierca1/vibe-registration/internal/reference"
	"github.com/xavierca1/vibe-registration/internal/security"
	"github.com/xavierca1/vibe-registration/internal/usecase"
	"github.com/xavierca1/vibe-registration/internal/vibe"
)

func main() {
	godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Armazenamento de duplicidade: Postgres quando configurado
	var db *sql.DB
	var submissions security.SubmissionStore = security.NewMemorySubmissionStore()
	if cfg.DatabaseURL != "" {
		db, err = database.NewDBConnection(cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := database.Migrate(ctx, db); err != nil {
			logger.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
		submissions = database.NewSubmissionRepository(db)
	}
	duplicates := security.NewDuplicateChecker(submissions)

	// 2. Gateways e Adapters
	qrClient := qr.NewClient(cfg.PayNowQRURL, cfg.PayNowAPIKey, cfg.QRAPIURL)
	cards := namecard.NewGenerator(qrClient, cfg.Event, logger)
	composer := mail.NewComposer(cfg.EmailFrom, cfg.Event, cfg.PayNowMobile, qrClient, cards, logger)
	mailer := mail.NewMailer(composer, newMailSender(cfg, logger), middleware.RecordEmail)

	var bot *telegram.Client
	var notifier usecase.Notifier
	var webhookAdmin handlers.WebhookAdmin
	if cfg.TelegramToken != "" {
		bot = telegram.NewClient(cfg.TelegramToken, "")
		webhookAdmin = bot
		if cfg.TelegramAdminChatID != 0 {
			notifier = bot
		}
	} else {
		logger.Warn("TELEGRAM_BOT_TOKEN not set, registrations will be refused")
	}

	ai := openai.NewClient(cfg.OpenAIAPIKey, "")
	vibingClient := vibing.NewClient(cfg.VibingWebhookURL, cfg.VibingWebhookSecret)

	// 3. Eventos de inscrição: fila quando há broker, entrega direta caso contrário
	var events usecase.EventPublisher
	var amqpConn *amqp.Connection
	switch {
	case cfg.AMQPURL != "":
		rabbitMQ, err := queue.NewRabbitMQ(cfg.AMQPURL)
		if err != nil {
			logger.Error("failed to connect to RabbitMQ", "error", err)
			os.Exit(1)
		}
		defer rabbitMQ.Close()
		amqpConn = rabbitMQ.Conn

		// Canal próprio para o consumidor
		consumeCh, err := rabbitMQ.Conn.Channel()
		if err != nil {
			logger.Error("failed to open consumer channel", "error", err)
			os.Exit(1)
		}

		events = queue.NewProducer(rabbitMQ.Ch)
		eventWorker := queue.NewWorker(consumeCh, vibingClient, logger)
		go func() {
			if err := eventWorker.Start(ctx, queue.QueueName); err != nil {
				logger.Error("registration event worker stopped", "error", err)
			}
		}()
	case vibingClient.Configured():
		events = queue.NewDirectPublisher(vibingClient)
	}

	// 4. Defesas
	codec := reference.NewCodec(reference.NewSigner(cfg.PayloadSigningSecret))
	limiters := security.NewLimiters()
	captchas := security.NewCaptchaStore(security.CaptchaTTL)
	daily := security.NewDailyUsage(security.DailyAILimit)

	allowed := append([]string(nil), security.DefaultAllowedOrigins...)
	if cfg.AppURL != "" {
		allowed = append(allowed, cfg.AppURL)
	}
	origins := security.NewOriginValidator(allowed, cfg.IsLocal())

	var captcha usecase.CaptchaVerifier
	if cfg.CaptchaRequired {
		captcha = captchas
	}

	// 5. UseCases
	registerUC := usecase.NewRegisterUseCase(
		cfg.SignupsDisabled,
		cfg.TelegramAdminChatID,
		captcha,
		duplicates,
		codec,
		mailer,
		notifier,
		events,
		cfg.Event,
		logger,
	)

	var operatorUC *usecase.OperatorUseCase
	if notifier != nil {
		operatorUC = usecase.NewOperatorUseCase(
			cfg.TelegramAdminChatID,
			codec,
			mailer,
			notifier,
			events,
			cfg.Event,
			cfg.PayNowMobile,
			cfg.QRAPIURL,
			logger,
		)
	}

	// 6. Housekeeping
	housekeeper := worker.NewHousekeeper(logger)
	schedule := []error{
		housekeeper.Every(time.Minute, worker.SweepJob("rate_limits", limiters.Sweep)),
		housekeeper.Every(time.Minute, worker.SweepJob("captcha", captchas.Sweep)),
		housekeeper.Daily(0, 5, worker.SweepJob("daily_usage", daily.Sweep)),
		housekeeper.Every(time.Hour, worker.Job{Name: "duplicates", Run: duplicates.Purge}),
	}
	if err := errors.Join(schedule...); err != nil {
		logger.Error("failed to schedule housekeeping", "error", err)
		os.Exit(1)
	}
	go housekeeper.Start(ctx)

	// 7. Handlers e Router
	app := &application{
		logger:         logger,
		origins:        origins,
		internalAPIKey: cfg.InternalAPIKey,
		registration:   handlers.NewRegistrationHandler(registerUC, limiters.Registration),
		telegram:       handlers.NewTelegramHandler(operatorUC),
		setWebhook:     handlers.NewSetWebhookHandler(webhookAdmin, cfg.AdminAPIKey, cfg.AppURL, limiters.Admin),
		vibe:           handlers.NewVibeHandler(vibe.NewGenerator(ai), limiters.AI, origins, daily),
		namecard:       handlers.NewNamecardHandler(cards, limiters.Public),
		signupStatus:   handlers.NewSignupStatusHandler(cfg.SignupsDisabled),
		honeypot:       handlers.NewHoneypotHandler(),
		captcha:        handlers.NewCaptchaHandler(captchas, limiters.Public),
		health: handlers.NewHealthHandler(db, amqpConn, map[string]bool{
			"telegram": cfg.TelegramConfigured(),
			"openai":   ai.Configured(),
			"vibing":   vibingClient.Configured(),
		}),
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           app.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("🔥 vibe registration server listening", "addr", cfg.HTTPAddr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	logger.Info("shutdown complete")
}

func newLogger(cfg config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.IsLocal() {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

func newMailSender(cfg config.Config, logger *slog.Logger) mail.Sender {
	switch cfg.EmailProvider {
	case "smtp":
		return mail.NewSMTPSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass)
	case "log":
		return mail.NewLogSender(logger)
	}

	if cfg.ResendAPIKey == "" && cfg.IsLocal() {
		logger.Warn("RESEND_API_KEY not set, emails will only be logged")
		return mail.NewLogSender(logger)
	}
	return mail.NewResendSender(resend.NewClient(cfg.ResendAPIKey, ""))
}
