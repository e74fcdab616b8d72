package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/uniformdesk/uniformdesk/internal/app"
	jobmetrics "github.com/uniformdesk/uniformdesk/internal/jobs"
	"github.com/uniformdesk/uniformdesk/internal/notify"
	"github.com/uniformdesk/uniformdesk/internal/observability"
	"github.com/uniformdesk/uniformdesk/internal/platform/cache"
	"github.com/uniformdesk/uniformdesk/internal/platform/db"
	"github.com/uniformdesk/uniformdesk/jobs"
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
	slog.SetDefault(logger)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

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

	metrics := observability.NewMetrics()
	stockService := app.NewStockService(cfg, pool, redisClient, metrics.Registerer(), logger)
	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobClient := jobs.NewClient(redisOpts)
	defer func() {
		_ = jobClient.Close()
	}()

	refreshJob := jobs.NewRefreshJob(stockService, logger, jobmetrics.NewMetrics(metrics.Registerer()))
	nightly, err := jobs.NewStockRefreshTask(jobs.StockRefreshPayload{Reason: jobs.ReasonSchedule})
	if err != nil {
		logger.Error("build refresh task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   redisOpts,
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskStockRefresh, Handler: refreshJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.RefreshCron, Task: nightly},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	subscriber, err := app.NewSubscriber(cfg, redisClient, logger)
	if err != nil {
		logger.Error("init notifications", slog.Any("error", err))
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.Run(gctx)
	})
	if subscriber != nil {
		dispatcher := notify.NewDispatcher(subscriber, app.RecomputeTrigger(stockService, jobClient), logger)
		g.Go(func() error {
			return dispatcher.Run(gctx)
		})
	} else {
		logger.Info("change notifications disabled")
	}
	if cfg.WorkerMetricsAddr != "" {
		server := &http.Server{
			Handler: app.NewRouter(app.RouterParams{
				Logger:  logger,
				Config:  cfg,
				Metrics: metrics,
				Checks: map[string]app.Pinger{
					"postgres": pool,
					"redis":    app.PingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }),
				},
			}),
			ReadTimeout:  cfg.AppReadTimeout,
			WriteTimeout: cfg.AppWriteTimeout,
		}
		g.Go(func() error {
			return app.ListenAndServe(gctx, server, cfg.WorkerMetricsAddr, logger)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
