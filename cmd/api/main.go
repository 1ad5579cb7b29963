package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/omexplus/dropship-backend/api/routes"
	"github.com/omexplus/dropship-backend/internal/catalog"
	"github.com/omexplus/dropship-backend/internal/orders"
	"github.com/omexplus/dropship-backend/internal/relay"
	"github.com/omexplus/dropship-backend/internal/supplierorders"
	"github.com/omexplus/dropship-backend/internal/suppliers"
	"github.com/omexplus/dropship-backend/pkg/config"
	"github.com/omexplus/dropship-backend/pkg/db"
	"github.com/omexplus/dropship-backend/pkg/logger"
	"github.com/omexplus/dropship-backend/pkg/metrics"
	"github.com/omexplus/dropship-backend/pkg/migrate"
	"github.com/omexplus/dropship-backend/pkg/outbox"
	"github.com/omexplus/dropship-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	relayMetrics := metrics.NewRelayMetrics(registry)

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	suppliersRepo := suppliers.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	catalogRepo := catalog.NewRepository(dbClient.DB())
	ledgerRepo := supplierorders.NewRepository(dbClient.DB())

	supplierService, err := suppliers.NewService(suppliersRepo, ledgerRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create supplier service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalog.ServiceParams{
		Repo:      catalogRepo,
		Suppliers: suppliersRepo,
		DB:        dbClient,
		Events:    outboxService,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(ordersRepo, dbClient, outboxService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	supplierOrderService, err := supplierorders.NewService(supplierorders.ServiceParams{
		Repo:        ledgerRepo,
		Suppliers:   suppliersRepo,
		Orders:      ordersRepo,
		DB:          dbClient,
		Events:      outboxService,
		Metrics:     relayMetrics,
		Logger:      logg,
		SendTimeout: cfg.Relay.SendTimeout,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create supplier order service", err)
		os.Exit(1)
	}

	orchestrator, err := relay.NewOrchestrator(relay.OrchestratorParams{
		Orders:    ordersRepo,
		Suppliers: suppliersRepo,
		Links:     catalogRepo,
		Ledger:    supplierOrderService,
		Metrics:   relayMetrics,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create relay orchestrator", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			registry,
			supplierService,
			catalogService,
			orderService,
			supplierOrderService,
			orchestrator,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
