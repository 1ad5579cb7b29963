package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/omexplus/dropship-backend/internal/catalog"
	relayconsumer "github.com/omexplus/dropship-backend/internal/consumers/relay"
	"github.com/omexplus/dropship-backend/internal/orders"
	"github.com/omexplus/dropship-backend/internal/relay"
	"github.com/omexplus/dropship-backend/internal/supplierorders"
	"github.com/omexplus/dropship-backend/internal/suppliers"
	"github.com/omexplus/dropship-backend/pkg/config"
	"github.com/omexplus/dropship-backend/pkg/db"
	"github.com/omexplus/dropship-backend/pkg/instance"
	"github.com/omexplus/dropship-backend/pkg/logger"
	"github.com/omexplus/dropship-backend/pkg/outbox"
	"github.com/omexplus/dropship-backend/pkg/outbox/idempotency"
	"github.com/omexplus/dropship-backend/pkg/pubsub"
	"github.com/omexplus/dropship-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "relay-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "relay-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub", err)
		}
	}()

	idempotencyManager, err := idempotency.NewManager(redisClient, cfg.Relay.IdempotencyTTL)
	if err != nil {
		logg.Error(ctx, "failed to create idempotency manager", err)
		os.Exit(1)
	}

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	suppliersRepo := suppliers.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	catalogRepo := catalog.NewRepository(dbClient.DB())

	ledgerService, err := supplierorders.NewService(supplierorders.ServiceParams{
		Repo:        supplierorders.NewRepository(dbClient.DB()),
		Suppliers:   suppliersRepo,
		Orders:      ordersRepo,
		DB:          dbClient,
		Events:      outboxService,
		Logger:      logg,
		SendTimeout: cfg.Relay.SendTimeout,
	})
	if err != nil {
		logg.Error(ctx, "failed to create supplier order service", err)
		os.Exit(1)
	}

	orchestrator, err := relay.NewOrchestrator(relay.OrchestratorParams{
		Orders:    ordersRepo,
		Suppliers: suppliersRepo,
		Links:     catalogRepo,
		Ledger:    ledgerService,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create relay orchestrator", err)
		os.Exit(1)
	}

	consumer, err := relayconsumer.NewConsumer(orchestrator, idempotencyManager, logg)
	if err != nil {
		logg.Error(ctx, "failed to create relay consumer", err)
		os.Exit(1)
	}

	service, err := NewService(ServiceParams{
		Config:        cfg,
		Logger:        logg,
		DB:            dbClient,
		Redis:         redisClient,
		PubSub:        pubsubClient,
		RelayConsumer: consumer,
	})
	if err != nil {
		logg.Error(ctx, "failed to create worker service", err)
		os.Exit(1)
	}

	logg.Info(logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"instance": instance.GetID(),
	}), "starting relay worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "relay worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(context.Background(), "relay worker shut down")
}
