package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/procureflow/procureflow/internal/app"
	"github.com/procureflow/procureflow/internal/backend"
	"github.com/procureflow/procureflow/internal/badges"
	jobmetrics "github.com/procureflow/procureflow/internal/jobs"
	"github.com/procureflow/procureflow/internal/platform/cache"
	"github.com/procureflow/procureflow/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	if cfg.BackendServiceToken == "" {
		logger.Error("backend service token must be provided for the worker")
		os.Exit(1)
	}

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

	backendClient := backend.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout)
	badgeService := badges.NewService(backendClient, redisClient, cfg.BadgeTTL, logger)
	refreshJob := jobs.NewBadgeRefreshJob(badgeService, cfg.BackendServiceToken, logger, jobmetrics.NewMetrics(nil))

	refreshTask, err := jobs.NewBadgeRefreshTask(jobs.BadgeRefreshPayload{})
	if err != nil {
		logger.Error("build badge refresh task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskBadgeRefresh, Handler: refreshJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.BadgeCronSpec, Task: refreshTask, Options: []asynq.Option{asynq.MaxRetry(1)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
