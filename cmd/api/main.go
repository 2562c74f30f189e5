package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	supa "github.com/supabase-community/supabase-go"

	"pairconnect/api/config"
	"pairconnect/api/handlers"
	"pairconnect/api/internal/application"
	"pairconnect/api/internal/db"
	"pairconnect/api/internal/identity"
	"pairconnect/api/internal/notify"
	"pairconnect/api/internal/worker"
)

// @title Pair Connect API
// @version 1.0
// @description Projects, pair-programming sessions and join requests for Pair Connect.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	log, err := config.NewLogger(cfg.LogLevel, os.Stdout)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize logger")
	}

	store, err := db.New(cfg.SupabaseURL, cfg.SupabaseServiceKey)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database client")
	}

	serviceClient, err := config.NewSupabaseClient(cfg.SupabaseURL, cfg.SupabaseServiceKey)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize Supabase service client")
	}
	anonClient, err := config.NewSupabaseClient(cfg.SupabaseURL, cfg.SupabaseAnonKey)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize Supabase anonymous client")
	}

	var verifier identity.Verifier
	if cfg.SupabaseJWTSecret != "" {
		verifier = identity.NewJWTVerifier(cfg.SupabaseJWTSecret)
		log.Info("Verifying access tokens locally")
	} else {
		verifier = identity.NewGoTrueVerifier(anonClient.Auth)
		log.Info("Verifying access tokens against Supabase Auth")
	}
	provider := identity.NewProvider(serviceClient.Auth.WithToken(cfg.SupabaseServiceKey), anonClient.Auth)

	mailer, err := notify.NewMailer(notify.MailerOptions{
		Transport:      cfg.EmailTransport,
		ResendAPIKey:   cfg.ResendAPIKey,
		FunctionsURL:   strings.TrimRight(cfg.SupabaseURL, "/") + supa.FUNCTIONS_URL,
		FunctionsToken: cfg.SupabaseServiceKey,
	}, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize mailer")
	}

	dispatcher := worker.NewDispatcher(cfg.NotifyWorkers, cfg.NotifyQueueSize, cfg.NotifyTimeout, log)
	dispatcher.Run()
	notifier := notify.NewNotifier(dispatcher, mailer, cfg.EmailFrom, cfg.AppBaseURL, log)

	h := handlers.NewApplicationHandler(
		application.NewAuthService(store, provider, log),
		application.NewUserService(store, provider, db.NewAvatars(serviceClient.Storage), log),
		application.NewProjectService(store, provider, log),
		application.NewSessionService(store, provider, log),
		application.NewRequestService(store, notifier, log),
		log,
	)
	app := handlers.NewApp(h, verifier, strings.Join(cfg.CORSOriginList(), ","))

	go func() {
		log.WithField("port", cfg.Port).Info("Starting Pair Connect API")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.WithError(err).Fatal("Server stopped")
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.WithField("signal", sig.String()).Info("Shutting down")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
	dispatcher.Stop()
	log.Info("Pair Connect API stopped")
}
