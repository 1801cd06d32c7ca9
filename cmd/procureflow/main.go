package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/procureflow/procureflow/internal/app"
	"github.com/procureflow/procureflow/internal/audit"
	"github.com/procureflow/procureflow/internal/auth"
	"github.com/procureflow/procureflow/internal/backend"
	"github.com/procureflow/procureflow/internal/badges"
	"github.com/procureflow/procureflow/internal/observability"
	"github.com/procureflow/procureflow/internal/pipeline"
	"github.com/procureflow/procureflow/internal/platform/cache"
	"github.com/procureflow/procureflow/internal/platform/db"
	"github.com/procureflow/procureflow/internal/registry"
	"github.com/procureflow/procureflow/internal/shared"
	"github.com/procureflow/procureflow/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "procureflow_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	backendClient := backend.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout)
	if err := backendClient.Ping(ctx); err != nil {
		logger.Warn("backend ping", slog.Any("error", err))
	}

	authService := auth.NewService(backendClient)
	authHandler := auth.NewHandler(logger, authService, sessionManager)

	auditRecorder := audit.NewRecorder(dbpool, logger)
	auditHandler := audit.NewHandler(logger, auditRecorder)

	pipelineService := pipeline.NewService(backendClient, auditRecorder, logger)
	pipelineHandler := pipeline.NewHandler(logger, pipelineService, cfg.GatewaySecret)

	badgeService := badges.NewService(backendClient, redisClient, cfg.BadgeTTL, logger)
	badgesHandler := badges.NewHandler(logger, badgeService)

	registryService := registry.NewService(backendClient)
	registryHandler := registry.NewHandler(logger, registryService)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		SessionManager:  sessionManager,
		CSRFManager:     csrfManager,
		AuthHandler:     authHandler,
		PipelineHandler: pipelineHandler,
		BadgesHandler:   badgesHandler,
		RegistryHandler: registryHandler,
		AuditHandler:    auditHandler,
		JobHandler:      jobHandler,
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
