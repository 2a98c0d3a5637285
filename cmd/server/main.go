package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"investmate-backend/internal/aiclient"
	"investmate-backend/internal/config"
	"investmate-backend/internal/database"
	"investmate-backend/internal/handlers"
	"investmate-backend/internal/logging"
	"investmate-backend/internal/matchmaking"
	"investmate-backend/internal/media"
	"investmate-backend/internal/metrics"
	"investmate-backend/internal/notify"
	"investmate-backend/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Default(false, "info").Error(context.Background(), "invalid configuration", "err", err)
		os.Exit(1)
	}

	logger := logging.Default(cfg.IsProduction(), cfg.LogLevel)
	ctx := context.Background()

	// Connect to MongoDB
	if err := database.Connect(cfg.MongoURI, cfg.DBName); err != nil {
		logger.Error(ctx, "failed to connect to MongoDB", "err", err)
		os.Exit(1)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepo()
	startupRepo := repository.NewStartupRepo()
	investorRepo := repository.NewInvestorRepo()
	connectionRepo := repository.NewConnectionRepo()

	// Ensure indexes
	idxCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	for name, ensure := range map[string]func(context.Context) error{
		"users":       userRepo.EnsureIndexes,
		"startups":    startupRepo.EnsureIndexes,
		"investors":   investorRepo.EnsureIndexes,
		"connections": connectionRepo.EnsureIndexes,
	} {
		if err := ensure(idxCtx); err != nil {
			logger.Warn(ctx, "failed to create indexes", "collection", name, "err", err)
		}
	}
	cancel()

	// External services
	aiClient := aiclient.New(cfg.AIBaseURL, cfg.AITimeout)
	if !cfg.AIEnabled() {
		logger.Warn(ctx, "INVESTMATE_AI_API_URL not set, AI routes will serve fallbacks")
	}

	uploader, err := media.NewCloudinary(cfg.CloudinaryURL, cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		logger.Error(ctx, "failed to configure media host", "err", err)
		os.Exit(1)
	}
	var imageUploader media.Uploader
	if uploader != nil {
		imageUploader = uploader
	} else {
		logger.Warn(ctx, "Cloudinary not configured, uploads will fail")
	}

	notifier := notify.New(cfg.ResendAPIKey, cfg.FromEmail, logger)
	m := metrics.New()
	advisor := matchmaking.NewService(aiClient, startupRepo, investorRepo, m, logger.With("component", "matchmaking"))

	// Initialize handlers
	connectionHandler := handlers.NewConnectionHandler(connectionRepo, startupRepo, investorRepo, userRepo, notifier, logger)
	router := handlers.NewRouter(handlers.RouterConfig{
		JWTSecret:       cfg.JWTSecret,
		CORSOrigins:     cfg.CORSOrigins,
		TrustProxy:      cfg.TrustProxy,
		LoginRatePerMin: cfg.LoginRatePerMin,
		Metrics:         m,
		Auth:            handlers.NewAuthHandler(userRepo, startupRepo, investorRepo, cfg.JWTSecret, cfg.IsProduction(), logger),
		Profiles:        handlers.NewProfileHandler(startupRepo, investorRepo, logger),
		Startups:        handlers.NewStartupHandler(startupRepo, logger),
		Uploads:         handlers.NewUploadHandler(imageUploader, startupRepo, investorRepo, cfg.JWTSecret, logger),
		Connections:     connectionHandler,
		AI:              handlers.NewAIHandler(advisor, startupRepo, investorRepo, logger),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.AITimeout + 15*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "InvestMate backend starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Error(ctx, "server failed", "err", err)
	case sig := <-stop:
		logger.Info(ctx, "shutting down", "signal", sig.String())
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(ctx, 15*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "graceful shutdown failed", "err", err)
	}
	if err := connectionHandler.Wait(shutdownCtx); err != nil {
		logger.Warn(ctx, "notifications still in flight at shutdown", "err", err)
	}
	if err := database.Disconnect(shutdownCtx); err != nil {
		logger.Error(ctx, "disconnect MongoDB", "err", err)
	}
}
