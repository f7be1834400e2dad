package main

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"ShopFlow/internal/cart"
	"ShopFlow/internal/cartsvc"
	"ShopFlow/internal/order"
	"ShopFlow/pkg/kit"
)

func main() {
	service := "cart"
	log := kit.NewLogger(service, kit.Getenv("LOG_LEVEL", "info"))
	defer func() { _ = log.Sync() }()

	port := kit.Getenv("PORT", "8083")
	catalogURL := kit.Getenv("CATALOG_URL", "http://localhost:8082")

	tokenSecret := kit.Getenv("ORDER_TOKEN_SECRET", "")
	if len(tokenSecret) < 32 {
		log.Fatal("ORDER_TOKEN_SECRET is required and must be at least 32 chars")
	}

	kv, closeKV, err := openKV(kit.Getenv("CART_BACKEND", "memory"))
	if err != nil {
		log.Fatal("open cart storage failed", zap.Error(err))
	}
	defer closeKV()

	var orders order.Store = order.NewMemStore()
	if dsn := kit.Getenv("DATABASE_URL", ""); dsn != "" {
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			log.Fatal("open database failed", zap.Error(err))
		}
		defer db.Close()
		orders = order.NewPostgresStore(db)
	}

	reg := prometheus.NewRegistry()
	feed := cart.NewFeed(kit.GetenvInt("CART_FEED_SIZE", 32))

	store := cart.NewStore(context.Background(), cart.Options{
		Persister: cart.NewSlotPersister(kv, kit.Getenv("CART_KEY", cart.DefaultSlotKey)),
		Notifier:  cart.MultiNotifier{feed, cart.LogNotifier{Log: log}},
		Log:       log,
		Metrics:   cart.NewMetrics(reg),
		AddDelay:  kit.GetenvDuration("CART_ADD_DELAY", 0),
	})

	cs := &cart.Server{
		Store:    store,
		Products: cart.NewCatalogClient(catalogURL),
		Feed:     feed,
		Log:      log,
	}
	orderSrv := &order.Server{
		Checkout: order.NewCheckout(store, orders, log),
		Tokens:   order.NewTokenMaker(tokenSecret, kit.GetenvDuration("ORDER_TOKEN_TTL", order.DefaultTokenTTL)),
		Log:      log,
	}

	h := cartsvc.NewHandler(cs, orderSrv, cartsvc.HTTPDeps{
		Log: log,
		Metrics: kit.MetricsDeps{
			Service:  service,
			Registry: reg,
			Expose:   kit.GetenvBool("METRICS_ENABLED", true),
			Token:    kit.Getenv("METRICS_TOKEN", ""),
		},
	})

	if err := kit.RunHTTPServer(":"+port, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func openKV(backend string) (cart.KV, func(), error) {
	switch backend {
	case "memory":
		return cart.NewMemKV(), func() {}, nil
	case "file":
		kv, err := cart.NewFileKV(kit.Getenv("CART_DATA_DIR", "./data"))
		if err != nil {
			return nil, nil, err
		}
		return kv, func() {}, nil
	case "sqlite":
		kv, err := cart.OpenSQLiteKV(kit.Getenv("CART_SQLITE_PATH", "./data/cart.db"))
		if err != nil {
			return nil, nil, err
		}
		return kv, func() { _ = kv.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown CART_BACKEND %q (memory, file, sqlite)", backend)
	}
}
