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

	"github.com/Dosada05/fest-portal/config"
	"github.com/Dosada05/fest-portal/db"
	"github.com/Dosada05/fest-portal/handlers"
	"github.com/Dosada05/fest-portal/leaderboard"
	"github.com/Dosada05/fest-portal/logging"
	"github.com/Dosada05/fest-portal/repositories"
	api "github.com/Dosada05/fest-portal/routes"
	"github.com/Dosada05/fest-portal/services"
	"github.com/Dosada05/fest-portal/storage"
	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

// @title       Fest Portal API
// @version     1.0
// @description Festival teams, events, results and live standings.
// @BasePath    /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	if err := run(cfg, logger); err != nil {
		logger.Error("application stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("application exited")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if err := db.InitSchema(ctx, dbConn); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	uploader, err := newUploader(ctx, cfg, logger)
	if err != nil {
		return err
	}

	// Репозитории
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	candidateRepo := repositories.NewPostgresCandidateRepository(dbConn)
	eventRepo := repositories.NewPostgresEventRepository(dbConn)
	resultRepo := repositories.NewPostgresResultRepository(dbConn)

	// Live-табло и пересчёт лидерборда
	wsHub := leaderboard.NewHub(logger)
	refresher := leaderboard.NewRefresher(leaderboard.RefresherConfig{
		Source:         resultRepo,
		Logger:         logger,
		OnUpdate:       wsHub.PublishStandings,
		ResubscribeMin: cfg.FeedMinReconnect,
		ResubscribeMax: cfg.FeedMaxReconnect,
	})

	// Сервисы
	authService := services.NewAuthService(userRepo, logger)
	teamService := services.NewTeamService(teamRepo, candidateRepo, uploader, logger)
	candidateService := services.NewCandidateService(candidateRepo, teamRepo, resultRepo, uploader, logger)
	eventService := services.NewEventService(eventRepo)
	resultService := services.NewResultService(resultRepo, eventRepo, teamRepo, candidateRepo)
	standingsService := services.NewStandingsService(refresher)
	dashboardService := services.NewDashboardService(teamRepo, candidateRepo, eventRepo)

	if cfg.AdminEmail != "" {
		if _, err := authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return fmt.Errorf("failed to ensure admin account: %w", err)
		}
	}

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Auth:      handlers.NewAuthHandler(authService, cfg.JWTSecretKey),
		Team:      handlers.NewTeamHandler(teamService),
		Candidate: handlers.NewCandidateHandler(candidateService),
		Event:     handlers.NewEventHandler(eventService),
		Result:    handlers.NewResultHandler(resultService),
		Standings: handlers.NewStandingsHandler(standingsService),
		Dashboard: handlers.NewDashboardHandler(dashboardService, dbConn),
		WebSocket: handlers.NewWebSocketHandler(wsHub, standingsService, cfg.CORSAllowedOrigins, logger),
	}, api.Options{
		JWTSecret:      cfg.JWTSecretKey,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:         logger,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		wsHub.Run(gCtx)
		return nil
	})

	g.Go(func() error {
		refresher.Watch(gCtx, pqSubscriber(cfg, logger))
		return nil
	})

	g.Go(func() error {
		logger.Info("starting server", slog.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			return server.Close()
		}
		logger.Info("server shutdown complete")
		return nil
	})

	return g.Wait()
}

func newUploader(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.FileUploader, error) {
	r2 := storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	}
	if r2.Empty() {
		logger.Warn("R2 storage is not configured, photo uploads are disabled")
		return storage.NewDisabledUploader(), nil
	}

	uploader, err := storage.NewCloudflareR2Uploader(ctx, r2)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudflare R2 uploader: %w", err)
	}
	logger.Info("Cloudflare R2 uploader initialized", slog.String("bucket", cfg.R2BucketName))
	return uploader, nil
}

func pqSubscriber(cfg *config.Config, logger *slog.Logger) leaderboard.Subscriber {
	return func(context.Context) (leaderboard.ChangeFeed, error) {
		feed, err := leaderboard.NewPQFeed(cfg.DatabaseURL, cfg.FeedMinReconnect, cfg.FeedMaxReconnect, logger)
		if err != nil {
			return nil, err
		}
		return feed, nil
	}
}
