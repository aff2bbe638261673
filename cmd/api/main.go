package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rajivmenon/tailorbooks-backend/api/controllers"
	"github.com/rajivmenon/tailorbooks-backend/api/routes"
	"github.com/rajivmenon/tailorbooks-backend/internal/catalog"
	"github.com/rajivmenon/tailorbooks-backend/internal/customers"
	"github.com/rajivmenon/tailorbooks-backend/internal/efficiency"
	"github.com/rajivmenon/tailorbooks-backend/internal/orders"
	"github.com/rajivmenon/tailorbooks-backend/internal/stock"
	"github.com/rajivmenon/tailorbooks-backend/pkg/config"
	"github.com/rajivmenon/tailorbooks-backend/pkg/db"
	"github.com/rajivmenon/tailorbooks-backend/pkg/logger"
	"github.com/rajivmenon/tailorbooks-backend/pkg/metrics"
	"github.com/rajivmenon/tailorbooks-backend/pkg/migrate"
	"github.com/rajivmenon/tailorbooks-backend/pkg/outbox"
	"github.com/rajivmenon/tailorbooks-backend/pkg/redis"
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

	redisClient, err := redis.New(context.Background(), cfg.Redis)
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
	engineMetrics := metrics.NewEngineMetrics(registry)

	gormDB := dbClient.DB()
	emitter := outbox.NewService(outbox.NewRepository(gormDB), logg)
	catalogRepo := catalog.NewRepository(gormDB)
	ledger := stock.NewLedger(logg, engineMetrics, emitter)

	ordersSvc, err := orders.NewService(
		orders.NewRepository(gormDB),
		catalogRepo,
		ledger,
		dbClient,
		emitter,
		engineMetrics,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	stockSvc, err := stock.NewService(catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create stock service", err)
		os.Exit(1)
	}

	efficiencySvc, err := efficiency.NewService(efficiency.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create efficiency service", err)
		os.Exit(1)
	}

	customersSvc, err := customers.NewService(
		customers.NewRepository(gormDB),
		redisClient,
		cfg.Reports.RankingCacheTTL,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create customers service", err)
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
		Handler: routes.NewRouter(routes.Deps{
			Config:      cfg,
			Logger:      logg,
			Registry:    registry,
			ReadyChecks: controllers.HealthReady(cfg, logg, controllers.ReadyDeps(dbClient, redisClient, nil)),
			Catalog:     catalogRepo,
			Orders:      ordersSvc,
			Stock:       stockSvc,
			Efficiency:  efficiencySvc,
			Customers:   customersSvc,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
