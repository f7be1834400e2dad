// Package cartsvc assembles the cart service: the cart API and checkout
// behind one router.
package cartsvc

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ShopFlow/internal/cart"
	"ShopFlow/internal/order"
	"ShopFlow/pkg/kit"
)

type HTTPDeps struct {
	Log     *zap.Logger
	Metrics kit.MetricsDeps
}

func NewHandler(c *cart.Server, o *order.Server, deps HTTPDeps) http.Handler {
	r := chi.NewRouter()

	kit.UseDefaults(r, deps.Log)
	kit.InstallMetrics(r, deps.Metrics)

	r.Get("/healthz", kit.Healthz)
	r.Get("/readyz", readyz(c, o, deps.Log))

	c.Register(r)
	o.Register(r)
	return r
}

func readyz(c *cart.Server, o *order.Server, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()

		if err := c.Store.Ping(ctx); err != nil {
			if log != nil {
				log.Warn("readyz failed: cart slot", zap.Error(err))
			}
			kit.WriteError(w, r, http.StatusServiceUnavailable, "cart storage not ready", nil)
			return
		}
		if err := o.Checkout.Orders.Ping(ctx); err != nil {
			if log != nil {
				log.Warn("readyz failed: orders", zap.Error(err))
			}
			kit.WriteError(w, r, http.StatusServiceUnavailable, "orders not ready", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
