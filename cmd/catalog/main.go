package main

import (
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"ShopFlow/internal/catalog"
	"ShopFlow/pkg/kit"
)

func main() {
	service := "catalog"
	log := kit.NewLogger(service, kit.Getenv("LOG_LEVEL", "info"))
	defer func() { _ = log.Sync() }()

	port := kit.Getenv("PORT", "8082")
	delay := kit.GetenvDuration("CATALOG_DELAY", 0)

	var store catalog.Store
	if dsn := kit.Getenv("DATABASE_URL", ""); dsn != "" {
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			log.Fatal("open database failed", zap.Error(err))
		}
		defer db.Close()
		store = catalog.NewPostgresStore(db)
	} else {
		seed, err := catalog.NewSeedStore()
		if err != nil {
			log.Fatal("load seed catalog failed", zap.Error(err))
		}
		store = seed
	}

	s := &catalog.Server{Catalog: catalog.NewService(store, delay), Log: log}

	h := catalog.NewHandler(s, catalog.HTTPDeps{
		Log: log,
		Metrics: kit.MetricsDeps{
			Service:  service,
			Registry: prometheus.NewRegistry(),
			Expose:   kit.GetenvBool("METRICS_ENABLED", true),
			Token:    kit.Getenv("METRICS_TOKEN", ""),
		},
	})

	log.Info("catalog configured", zap.Duration("delay", delay), zap.Bool("postgres", kit.Getenv("DATABASE_URL", "") != ""))
	if err := kit.RunHTTPServer(":"+port, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}
