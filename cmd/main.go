package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avdeenko/club-system/config"
	"github.com/avdeenko/club-system/db"
	"github.com/avdeenko/club-system/handlers"
	"github.com/avdeenko/club-system/live"
	"github.com/avdeenko/club-system/metrics"
	"github.com/avdeenko/club-system/repositories"
	api "github.com/avdeenko/club-system/routes"
	"github.com/avdeenko/club-system/services"
	"github.com/avdeenko/club-system/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Crest uploads are optional; without R2 settings the endpoint reports
	// uploads as disabled.
	var uploader storage.FileUploader
	if cfg.CrestUploadsEnabled() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Info("crest uploads disabled: R2 configuration incomplete")
	}

	wsHub := live.NewHub()
	go wsHub.Run()
	logger.Info("websocket hub started")

	metricsService := metrics.NewService()

	txManager := repositories.NewTxManager(dbConn)
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	confirmationRepo := repositories.NewPostgresConfirmationRepository(dbConn)
	rosterRepo := repositories.NewPostgresRosterRepository(dbConn)
	logger.Info("repositories initialized")

	matchService := services.NewMatchService(matchRepo, teamRepo)
	attendanceService := services.NewAttendanceService(
		txManager, matchRepo, confirmationRepo, userRepo, wsHub, metricsService, logger)
	rosterService := services.NewRosterService(
		txManager, matchRepo, rosterRepo, confirmationRepo, logger)
	statsService := services.NewStatsService(
		txManager, matchRepo, rosterRepo, wsHub, metricsService, logger)
	standingsService := services.NewStandingsService(rosterRepo, userRepo, metricsService)
	teamService := services.NewTeamService(teamRepo, uploader)
	logger.Info("services initialized")

	matchHandler := handlers.NewMatchHandler(matchService, attendanceService, rosterService, statsService)
	standingsHandler := handlers.NewStandingsHandler(standingsService)
	teamHandler := handlers.NewTeamHandler(teamService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, matchService)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		matchHandler,
		standingsHandler,
		teamHandler,
		webSocketHandler,
		metrics.NewMetricsHandler(),
		[]byte(cfg.JWTSecretKey),
		cfg.CORSAllowedOrigins,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
