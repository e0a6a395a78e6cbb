package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/SAP-F-2025/exercise-authoring-service/internal/cache"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/client"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/config"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/handlers"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/repositories"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/services"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/storage"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/utils"
	"github.com/SAP-F-2025/exercise-authoring-service/internal/validator"
	"github.com/SAP-F-2025/exercise-authoring-service/pkg"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server exited: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var logger utils.Logger
	var zapLogger *zap.Logger
	if cfg.IsProduction() {
		logger = utils.NewDefaultLogger()
		zapLogger, err = zap.NewProduction()
		gin.SetMode(gin.ReleaseMode)
	} else {
		logger = utils.NewDevelopmentLogger()
		zapLogger, err = zap.NewDevelopment()
	}
	if err != nil {
		return fmt.Errorf("failed to create zap logger: %w", err)
	}
	defer zapLogger.Sync()
	slogger := utils.ToSlogLogger(logger)

	casdoorClient := pkg.NewCasdoorClient(&cfg.Auth)

	repo, closeRepo, err := newActivityRepository(cfg, casdoorClient, slogger)
	if err != nil {
		return err
	}
	defer closeRepo()

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	provider, err := storage.NewProvider(&cfg.Storage, slogger)
	if err != nil {
		return fmt.Errorf("failed to create storage provider: %w", err)
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		return fmt.Errorf("failed to create event publisher: %w", err)
	}
	defer publisher.Close()

	v := validator.New()
	activityService := services.NewActivityService(repo, publisher, slogger, v)
	authoringService := services.NewAuthoringService(activityService, cache.NewRedisCache(redisClient, zapLogger), v, slogger, services.AuthoringConfig{
		AutosaveTTL: cfg.Drafts.AutosaveTTL,
		QueueSize:   cfg.Drafts.QueueSize,
		StepDelay:   cfg.Drafts.StepDelay,
		StepGap:     cfg.Drafts.StepGap,
		Autoplay:    cfg.Drafts.Autoplay,
	})
	serviceManager := services.NewServiceManager(
		activityService,
		authoringService,
		services.NewMediaService(provider, cfg.Storage.MaxUploadBytes, slogger, v),
		services.NewExportService(activityService, slogger),
	)
	defer serviceManager.Close()

	router := gin.New()
	router.Use(gin.Recovery(), utils.LoggerMiddleware(logger))
	if cfg.Storage.Provider == "local" && strings.HasPrefix(cfg.Storage.LocalBaseURL, "/") {
		router.Static(cfg.Storage.LocalBaseURL, cfg.Storage.LocalDir)
	}

	var parser handlers.TokenParser
	if casdoorClient != nil {
		parser = casdoorClient
	}
	handlers.NewHandlerManager(serviceManager, parser, logger).SetupRoutes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "port", cfg.Port, "environment", cfg.Environment, "persistence", cfg.Persistence.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-quit:
		logger.Info("Shutting down server", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exited")
	return nil
}

// newActivityRepository picks the activity store: the local database, or the lesson
// platform's REST API authenticated with a casdoor token pair.
func newActivityRepository(cfg *config.Config, casdoorClient *casdoorsdk.Client, logger *slog.Logger) (repositories.ActivityRepository, func(), error) {
	switch cfg.Persistence.Backend {
	case "api":
		token := &oauth2.Token{
			AccessToken:  cfg.Auth.AccessToken,
			RefreshToken: cfg.Auth.RefreshToken,
			TokenType:    "Bearer",
		}
		var refresher client.Refresher
		if casdoorClient != nil {
			refresher = client.NewCasdoorRefresher(casdoorClient)
		}
		tokens := client.NewTokenQueue(token, refresher, logger)
		return client.NewActivityAPI(cfg.Persistence.APIBaseURL, cfg.Persistence.APITimeout, tokens), tokens.Close, nil
	case "postgres", "":
		db, err := pkg.InitDatabase(cfg)
		if err != nil {
			return nil, nil, err
		}
		closeDB := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		if err := postgres.AutoMigrate(db); err != nil {
			closeDB()
			return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		return postgres.NewActivityPostgreSQL(db), closeDB, nil
	default:
		return nil, nil, fmt.Errorf("unknown persistence backend %q", cfg.Persistence.Backend)
	}
}
