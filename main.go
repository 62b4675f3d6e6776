package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/isdelr/bill-tracker-be/internal/api"
	"github.com/isdelr/bill-tracker-be/internal/auth"
	"github.com/isdelr/bill-tracker-be/internal/config"
	"github.com/isdelr/bill-tracker-be/internal/database"
	"github.com/isdelr/bill-tracker-be/internal/logger"
	"github.com/isdelr/bill-tracker-be/internal/metrics"
	"github.com/isdelr/bill-tracker-be/internal/monitoring"
	"github.com/isdelr/bill-tracker-be/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init(cfg.AppEnv, cfg.LogLevel)

	// Ensure the upload directory exists
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.UploadDir).Msg("Failed to create upload directory")
	}

	// Set up database
	dsn := cfg.DatabasePath
	if cfg.DatabaseURL != "" {
		dsn = cfg.DatabaseURL
	}
	db, err := database.New(dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}
	log.Info().Stringer("dialect", db.Dialect()).Msg("Database ready")

	// Set up services
	eventService := services.NewEventService(db)
	userService := services.NewUserService(db)
	sessionService := services.NewSessionService(db)
	categoryService := services.NewCategoryService(db, eventService)
	uploadService := services.NewUploadService(cfg.UploadDir, cfg.MaxUploadBytes)
	billService := services.NewBillService(db, eventService, uploadService)

	authManager := auth.NewManager(cfg.JWTSecret, cfg.SessionTTL, cfg.IsProduction(), sessionService)
	var google *auth.GoogleOAuth
	if cfg.GoogleEnabled() {
		google = auth.NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL, cfg.OAuthStateSecret)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.MustRegister(registry)

	// Set up and run the optional background status sweep
	var scheduler *monitoring.Scheduler
	if cfg.StatusSweepCron != "" {
		scheduler, err = monitoring.NewScheduler(cfg.StatusSweepCron, billService, sessionService)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to configure status sweep")
		}
		go scheduler.Run()
	}

	// Set up router
	router := api.NewRouter(api.Dependencies{
		DB:             db,
		Users:          userService,
		Categories:     categoryService,
		Bills:          billService,
		Events:         eventService,
		Uploads:        uploadService,
		Auth:           authManager,
		Google:         google,
		UploadDir:      cfg.UploadDir,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         log.Logger,
		Registry:       registry,
	})

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	if scheduler != nil {
		scheduler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
