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
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dongphonui/sigma-vie-shop/internal/app"
	"github.com/dongphonui/sigma-vie-shop/internal/auth"
	"github.com/dongphonui/sigma-vie-shop/internal/bus"
	"github.com/dongphonui/sigma-vie-shop/internal/catalog"
	"github.com/dongphonui/sigma-vie-shop/internal/customers"
	"github.com/dongphonui/sigma-vie-shop/internal/inventory"
	"github.com/dongphonui/sigma-vie-shop/internal/observability"
	"github.com/dongphonui/sigma-vie-shop/internal/orders"
	"github.com/dongphonui/sigma-vie-shop/internal/platform/cache"
	"github.com/dongphonui/sigma-vie-shop/internal/platform/db"
	"github.com/dongphonui/sigma-vie-shop/internal/remote"
	"github.com/dongphonui/sigma-vie-shop/internal/reports"
	"github.com/dongphonui/sigma-vie-shop/internal/shared"
	"github.com/dongphonui/sigma-vie-shop/internal/store"
	"github.com/dongphonui/sigma-vie-shop/internal/syncer"
	"github.com/dongphonui/sigma-vie-shop/jobs"
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

	// Postgres only backs the audit trail and the idempotency guard; the
	// console runs without it when PG_DSN is empty.
	var dbpool *pgxpool.Pool
	if cfg.PGDSN != "" {
		dbpool, err = db.New(ctx, cfg.PGDSN)
		if err != nil {
			logger.Error("connect postgres", slog.Any("error", err))
			os.Exit(1)
		}
		defer dbpool.Close()
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

	sessionManager := shared.NewSessionManager(redisClient, "shop_session", cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	auditLogger := shared.NewAuditLogger(dbpool, logger)
	idempotencyStore := shared.NewIdempotencyStore(dbpool)

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
	productSync := syncer.New(productColl, remoteClient, outbox, syncOpts, logger)
	orderSync := syncer.New(orderColl, remoteClient, outbox, syncer.Options{FreshFor: cfg.SyncFreshFor, GuardEmptyRemote: true}, logger)
	txSync := syncer.New(txColl, remoteClient, outbox, syncOpts, logger)
	customerSync := syncer.New(customerColl, remoteClient, outbox, syncOpts, logger)

	catalogSvc := catalog.NewService(productColl, shared.NewKeyedMutex(), auditLogger, logger)
	ledger := inventory.NewService(txColl, catalogSvc, logger)
	orderSvc := orders.NewService(orderColl, catalogSvc, ledger, idempotencyStore, auditLogger,
		orders.ServiceConfig{DefaultShippingFee: cfg.DefaultShippingFee}, logger)
	customerSvc := customers.NewService(customerColl, auditLogger, logger)

	reportCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	reportSvc := reports.NewService(orderSvc, customerSvc, reportCache, logger)
	go reportSvc.WatchInvalidation(ctx, events)

	authSvc := auth.NewService(auth.Credentials{Username: cfg.AdminUser, PasswordHash: cfg.AdminPasswordHash})

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		Metrics:        metrics,

		AuthHandler:      auth.NewHandler(logger, authSvc, csrfManager),
		CatalogHandler:   catalog.NewHandler(logger, catalogSvc),
		OrdersHandler:    orders.NewHandler(logger, orderSvc),
		InventoryHandler: inventory.NewHandler(logger, ledger),
		CustomersHandler: customers.NewHandler(logger, customerSvc),
		ReportsHandler:   reports.NewHandler(logger, reportSvc),
		SyncHandler:      syncer.NewHandler(logger, productSync, orderSync, txSync, customerSync),
		JobHandler:       jobs.NewHandler(inspector, logger),
	})

	// Kick off a background reconcile so the cache warms without blocking
	// startup.
	if err := outbox.EnqueueReconcile(ctx, "", false); err != nil {
		logger.Warn("enqueue startup reconcile", slog.Any("error", err))
	}

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
