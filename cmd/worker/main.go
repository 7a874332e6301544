package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/dongphonui/sigma-vie-shop/internal/app"
	"github.com/dongphonui/sigma-vie-shop/internal/bus"
	"github.com/dongphonui/sigma-vie-shop/internal/catalog"
	"github.com/dongphonui/sigma-vie-shop/internal/customers"
	"github.com/dongphonui/sigma-vie-shop/internal/inventory"
	"github.com/dongphonui/sigma-vie-shop/internal/observability"
	"github.com/dongphonui/sigma-vie-shop/internal/orders"
	"github.com/dongphonui/sigma-vie-shop/internal/platform/cache"
	"github.com/dongphonui/sigma-vie-shop/internal/remote"
	"github.com/dongphonui/sigma-vie-shop/internal/store"
	"github.com/dongphonui/sigma-vie-shop/internal/syncer"
	"github.com/dongphonui/sigma-vie-shop/jobs"
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

	events := bus.New()
	outbox := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := outbox.Close(); err != nil {
			logger.Warn("outbox close", slog.Any("error", err))
		}
	}()

	productColl := store.NewCollection[catalog.Product](redisClient, "shop:products", bus.EntityProducts, events, outbox, logger)
	orderColl := store.NewCollection[orders.Order](redisClient, "shop:orders", bus.EntityOrders, events, outbox, logger)
	txColl := store.NewCollection[inventory.Transaction](redisClient, "shop:inventory", bus.EntityInventory, events, outbox, logger)
	customerColl := store.NewCollection[customers.Customer](redisClient, "shop:customers", bus.EntityCustomers, events, outbox, logger)

	remoteClient := remote.NewClient(remote.Config{
		BaseURL: cfg.RemoteBaseURL,
		APIKey:  cfg.RemoteAPIKey,
		Timeout: cfg.RemoteTimeout,
	}, logger)

	syncOpts := syncer.Options{FreshFor: cfg.SyncFreshFor}
	reconcilers := []syncer.EntityReconciler{
		syncer.New(productColl, remoteClient, outbox, syncOpts, logger),
		syncer.New(orderColl, remoteClient, outbox, syncer.Options{FreshFor: cfg.SyncFreshFor, GuardEmptyRemote: true}, logger),
		syncer.New(txColl, remoteClient, outbox, syncOpts, logger),
		syncer.New(customerColl, remoteClient, outbox, syncOpts, logger),
	}

	metrics := observability.NewMetrics()
	syncHandlers := jobs.NewSyncHandlers(remoteClient, logger, metrics, reconcilers...)

	reconcileTask, err := jobs.NewSyncReconcileTask("", false)
	if err != nil {
		logger.Error("build reconcile task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Sync:      syncHandlers,
		Cron: []jobs.CronRegistration{
			{Spec: "*/5 * * * *", Task: reconcileTask, Options: []asynq.Option{asynq.Queue(jobs.QueueSync), asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting sync worker", slog.String("redis", cfg.RedisAddr))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
