package main

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"ShopFlow/internal/gateway"
	"ShopFlow/pkg/kit"
)

func main() {
	service := "gateway"
	log := kit.NewLogger(service, kit.Getenv("LOG_LEVEL", "info"))
	defer func() { _ = log.Sync() }()

	port := kit.Getenv("PORT", "8080")

	deps := gateway.Deps{
		CatalogURL:     kit.Getenv("CATALOG_URL", "http://catalog:8082"),
		CartURL:        kit.Getenv("CART_URL", "http://cart:8083"),
		MutationLimit:  kit.GetenvInt("CART_RATE_LIMIT", 60),
		MutationWindow: kit.GetenvDuration("CART_RATE_WINDOW", time.Minute),
	}

	h, err := gateway.NewHandler(deps, gateway.HTTPDeps{
		Log: log,
		Metrics: kit.MetricsDeps{
			Service:  service,
			Registry: prometheus.NewRegistry(),
			Expose:   kit.GetenvBool("METRICS_ENABLED", true),
			Token:    kit.Getenv("METRICS_TOKEN", ""),
		},
	})
	if err != nil {
		log.Fatal("init gateway handler failed", zap.Error(err))
	}

	if err := kit.RunHTTPServer(":"+port, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}
