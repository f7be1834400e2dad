package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ShopFlow/pkg/kit"
)

type HTTPDeps struct {
	Log     *zap.Logger
	Metrics kit.MetricsDeps
}

type Deps struct {
	CatalogURL string
	CartURL    string

	// MutationLimit caps cart and checkout writes per client IP within
	// MutationWindow. Zero disables the limit.
	MutationLimit  int
	MutationWindow time.Duration
}

const (
	readyTimeout      = 2 * time.Second
	readyProbeTimeout = 700 * time.Millisecond
)

var readyClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     30 * time.Second,
	},
}

func NewHandler(deps Deps, httpDeps HTTPDeps) (http.Handler, error) {
	catalogProxy, err := NewReverseProxy(deps.CatalogURL, httpDeps.Log)
	if err != nil {
		return nil, fmt.Errorf("catalog proxy: %w", err)
	}
	cartProxy, err := NewReverseProxy(deps.CartURL, httpDeps.Log)
	if err != nil {
		return nil, fmt.Errorf("cart proxy: %w", err)
	}

	r := chi.NewRouter()
	kit.UseDefaults(r, httpDeps.Log)
	kit.InstallMetrics(r, httpDeps.Metrics)

	r.Get("/healthz", kit.Healthz)
	r.Get("/readyz", readyz(deps, httpDeps.Log))

	r.Handle("/products", catalogProxy)
	r.Handle("/products/*", catalogProxy)
	r.Handle("/categories", catalogProxy)
	r.Handle("/categories/*", catalogProxy)

	r.Get("/cart", cartProxy.ServeHTTP)
	r.Get("/cart/notifications", cartProxy.ServeHTTP)
	r.Get("/orders/{id}", cartProxy.ServeHTTP)

	r.Group(func(mr chi.Router) {
		if deps.MutationLimit > 0 {
			mr.Use(kit.NewIPRateLimiter(deps.MutationLimit, deps.MutationWindow).Middleware)
		}
		mr.Delete("/cart", cartProxy.ServeHTTP)
		mr.Handle("/cart/items", cartProxy)
		mr.Handle("/cart/items/*", cartProxy)
		mr.Post("/checkout", cartProxy.ServeHTTP)
	})

	return r, nil
}

func readyz(deps Deps, log *zap.Logger) http.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if err := checkReady(ctx, deps.CatalogURL+"/readyz"); err != nil {
			log.Warn("readyz failed: catalog", zap.Error(err))
			kit.WriteError(w, r, http.StatusServiceUnavailable, "catalog not ready", nil)
			return
		}

		if err := checkReady(ctx, deps.CartURL+"/readyz"); err != nil {
			log.Warn("readyz failed: cart", zap.Error(err))
			kit.WriteError(w, r, http.StatusServiceUnavailable, "cart not ready", nil)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

func checkReady(ctx context.Context, url string) error {
	cctx, cancel := context.WithTimeout(ctx, readyProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(cctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := readyClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status=%d", resp.StatusCode)
	}
	return nil
}
