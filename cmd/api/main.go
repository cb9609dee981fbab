package main

import (
	"context"
	"net/http"
	"os"

	"github.com/angelmondragon/miniapp-storefront/api/routes"
	"github.com/angelmondragon/miniapp-storefront/internal/shop"
	"github.com/angelmondragon/miniapp-storefront/pkg/config"
	"github.com/angelmondragon/miniapp-storefront/pkg/db"
	"github.com/angelmondragon/miniapp-storefront/pkg/env"
	"github.com/angelmondragon/miniapp-storefront/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
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

	if err := bootstrapShop(context.Background(), dbClient); err != nil {
		logg.Error(context.Background(), "failed to prepare shop schema", err)
		os.Exit(1)
	}

	shopService, err := shop.NewService(dbClient, cfg.Payments, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create shop service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting storefront api")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, shopService, registry),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func bootstrapShop(ctx context.Context, dbClient *db.Client) error {
	if err := shop.Migrate(dbClient.DB()); err != nil {
		return err
	}
	return shop.Seed(ctx, dbClient.DB())
}
