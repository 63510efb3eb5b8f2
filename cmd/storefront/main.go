package main

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"storefront/internal/admin"
	"storefront/internal/app"
	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/store"
	"storefront/pkg/kit"
)

func main() {
	service := "storefront"

	boot := kit.NewLogger(service, "local", os.Getenv("LOG_LEVEL"))
	cfg, err := config.Load(boot)
	if err != nil {
		boot.Fatal("config", zap.Error(err))
	}
	_ = boot.Sync()

	log := kit.NewLogger(service, cfg.Env, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	var (
		products  catalog.Store
		cartItems cart.Store
	)
	if cfg.DatabaseURL != "" {
		db, err := store.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatal("open postgres", zap.Error(err))
		}
		defer func() { _ = db.Close() }()

		products = catalog.NewPostgresStore(db, log)
		cartItems = cart.NewPostgresStore(db, log)
		log.Info("stores: postgres")
	} else {
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			log.Fatal("create data dir", zap.Error(err), zap.String("dir", cfg.DataDir))
		}
		products = catalog.NewFileStore(cfg.DataDir, log)
		cartItems = cart.NewFileStore(cfg.DataDir, log)
		log.Info("stores: json files", zap.String("dir", cfg.DataDir))
	}

	gate := admin.NewGate(cfg.AdminKey, cfg.AdminKeyHash)
	gate.Log = log

	deps := app.Deps{
		Gate:           gate,
		Catalog:        &catalog.Server{Store: products, Log: log},
		Cart:           &cart.Server{Store: cartItems, Log: log},
		AllowedOrigins: cfg.AllowedOrigins,
	}

	h := app.NewHandler(deps, app.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       prometheus.NewRegistry(),
		MetricsEnabled: cfg.MetricsEnabled,
		MetricsToken:   cfg.MetricsToken,
	})

	if err := kit.RunHTTPServer(":"+cfg.Port, h, log, cfg.ShutdownTimeout); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}
