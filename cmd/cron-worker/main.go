package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/omexplus/dropship-backend/internal/cron"
	"github.com/omexplus/dropship-backend/internal/orders"
	"github.com/omexplus/dropship-backend/internal/supplierorders"
	"github.com/omexplus/dropship-backend/internal/suppliers"
	"github.com/omexplus/dropship-backend/pkg/config"
	"github.com/omexplus/dropship-backend/pkg/db"
	"github.com/omexplus/dropship-backend/pkg/instance"
	"github.com/omexplus/dropship-backend/pkg/logger"
	"github.com/omexplus/dropship-backend/pkg/metrics"
	"github.com/omexplus/dropship-backend/pkg/migrate"
	"github.com/omexplus/dropship-backend/pkg/outbox"
	"github.com/omexplus/dropship-backend/pkg/redis"
)

const lockKeyFormat = "omex:cron-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	outboxRepo := outbox.NewRepository(dbClient.DB())
	outboxService := outbox.NewService(outboxRepo, logg)
	ledgerRepo := supplierorders.NewRepository(dbClient.DB())

	ledgerService, err := supplierorders.NewService(supplierorders.ServiceParams{
		Repo:        ledgerRepo,
		Suppliers:   suppliers.NewRepository(dbClient.DB()),
		Orders:      orders.NewRepository(dbClient.DB()),
		DB:          dbClient,
		Events:      outboxService,
		Logger:      logg,
		SendTimeout: cfg.Relay.SendTimeout,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create supplier order service", err)
		os.Exit(1)
	}

	retentionJob, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:        logg,
		Repository:    outboxRepo,
		RetentionDays: cfg.Cron.OutboxRetentionDays,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create outbox retention job", err)
		os.Exit(1)
	}

	statusSyncJob, err := cron.NewStatusSyncJob(cron.StatusSyncJobParams{
		Logger:    logg,
		Ledger:    ledgerRepo,
		Checker:   ledgerService,
		BatchSize: cfg.Cron.StatusSyncBatchSize,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create status sync job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create maintenance lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(statusSyncJob, retentionJob),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create maintenance service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
