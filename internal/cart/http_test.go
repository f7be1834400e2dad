package cart_test

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ShopFlow/internal/cart"
	"ShopFlow/internal/catalog"
)

func newCatalogTS(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := catalog.NewSeedStore()
	if err != nil {
		t.Fatalf("seed store: %v", err)
	}
	s := &catalog.Server{Catalog: catalog.NewService(store, 0)}
	h := catalog.NewHandler(s, catalog.HTTPDeps{Log: zap.NewNop()})

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func newCartTS(t *testing.T, products cart.ProductSource) (*httptest.Server, *cart.Store) {
	t.Helper()

	feed := cart.NewFeed(0)
	store := cart.NewStore(t.Context(), cart.Options{Notifier: feed})
	s := &cart.Server{Store: store, Products: products, Feed: feed, Log: zap.NewNop()}

	r := chi.NewRouter()
	s.Register(r)

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts, store
}

func doJSON(t *testing.T, method, url string, body any, out any) int {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.Unmarshal(raw, out); err != nil {
			t.Fatalf("decode: %v body=%s", err, raw)
		}
	}
	return resp.StatusCode
}

func TestCartHTTP_AddViaCatalogService(t *testing.T) {
	catalogTS := newCatalogTS(t)
	cartTS, store := newCartTS(t, cart.NewCatalogClient(catalogTS.URL))

	var v cart.View
	code := doJSON(t, http.MethodPost, cartTS.URL+"/cart/items", map[string]any{"product_id": "2", "quantity": 2}, &v)
	if code != http.StatusOK {
		t.Fatalf("add status=%d", code)
	}
	if v.Count != 2 || v.TotalCents != 79998 {
		t.Fatalf("view=%+v", v)
	}
	if v.Summary.ShippingCents != 0 {
		t.Fatalf("expected free shipping, got %d", v.Summary.ShippingCents)
	}

	code = doJSON(t, http.MethodPost, cartTS.URL+"/cart/items", map[string]any{"product_id": "2"}, &v)
	if code != http.StatusOK || v.Count != 3 {
		t.Fatalf("default quantity: status=%d count=%d", code, v.Count)
	}

	if code := doJSON(t, http.MethodPost, cartTS.URL+"/cart/items", map[string]any{"product_id": "nope"}, nil); code != http.StatusBadRequest {
		t.Fatalf("unknown product status=%d", code)
	}
	if code := doJSON(t, http.MethodPost, cartTS.URL+"/cart/items", map[string]any{"product_id": "2", "quantity": -1}, nil); code != http.StatusBadRequest {
		t.Fatalf("negative quantity status=%d", code)
	}
	if code := doJSON(t, http.MethodPost, cartTS.URL+"/cart/items", map[string]any{"product_id": "2", "quantity": math.MaxInt}, nil); code != http.StatusBadRequest {
		t.Fatalf("huge quantity status=%d", code)
	}
	if code := doJSON(t, http.MethodPost, cartTS.URL+"/cart/items", map[string]any{"product_id": "2", "quantity": cart.MaxQuantity}, nil); code != http.StatusBadRequest {
		t.Fatalf("merge past cap status=%d", code)
	}
	if code := doJSON(t, http.MethodPost, cartTS.URL+"/cart/items", map[string]any{"product_id": "2", "extra": 1}, nil); code != http.StatusBadRequest {
		t.Fatalf("unknown field status=%d", code)
	}

	if store.Count() != 3 {
		t.Fatalf("store count=%d", store.Count())
	}
}

func TestCartHTTP_UpdateRemoveClear(t *testing.T) {
	store, err := catalog.NewSeedStore()
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	cartTS, _ := newCartTS(t, catalog.NewService(store, 0))

	var v cart.View
	doJSON(t, http.MethodPost, cartTS.URL+"/cart/items", map[string]any{"product_id": "11", "quantity": 1}, &v)
	doJSON(t, http.MethodPost, cartTS.URL+"/cart/items", map[string]any{"product_id": "9", "quantity": 1}, &v)

	if code := doJSON(t, http.MethodPatch, cartTS.URL+"/cart/items/11", map[string]any{"quantity": 3}, &v); code != http.StatusOK {
		t.Fatalf("patch status=%d", code)
	}
	if v.Count != 4 {
		t.Fatalf("count=%d", v.Count)
	}

	if code := doJSON(t, http.MethodPatch, cartTS.URL+"/cart/items/11", map[string]any{"quantity": cart.MaxQuantity + 1}, nil); code != http.StatusBadRequest {
		t.Fatalf("patch past cap status=%d", code)
	}

	if code := doJSON(t, http.MethodPatch, cartTS.URL+"/cart/items/absent", map[string]any{"quantity": 3}, &v); code != http.StatusOK || v.Count != 4 {
		t.Fatalf("absent patch status=%d count=%d", code, v.Count)
	}

	doJSON(t, http.MethodPatch, cartTS.URL+"/cart/items/11", map[string]any{"quantity": 0}, &v)
	if len(v.Items) != 1 || v.Items[0].ProductID != "9" {
		t.Fatalf("items=%+v", v.Items)
	}

	doJSON(t, http.MethodDelete, cartTS.URL+"/cart/items/9", nil, &v)
	if len(v.Items) != 0 {
		t.Fatalf("items=%+v", v.Items)
	}

	doJSON(t, http.MethodPost, cartTS.URL+"/cart/items", map[string]any{"product_id": "1"}, &v)
	doJSON(t, http.MethodDelete, cartTS.URL+"/cart", nil, &v)
	if v.Count != 0 {
		t.Fatalf("count after clear=%d", v.Count)
	}

	var notes []cart.Notification
	doJSON(t, http.MethodGet, cartTS.URL+"/cart/notifications", nil, &notes)
	want := []cart.Action{
		cart.ActionAdded, cart.ActionAdded, cart.ActionRemoved, cart.ActionRemoved,
		cart.ActionAdded, cart.ActionCleared,
	}
	if len(notes) != len(want) {
		t.Fatalf("notifications=%+v", notes)
	}
	for i, n := range notes {
		if n.Action != want[i] {
			t.Fatalf("notification %d: %s want %s", i, n.Action, want[i])
		}
	}

	doJSON(t, http.MethodGet, cartTS.URL+"/cart/notifications", nil, &notes)
	if len(notes) != 0 {
		t.Fatalf("feed not drained: %+v", notes)
	}
}

func TestCatalogClient_Errors(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(down.Close)

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	t.Cleanup(broken.Close)

	tests := []struct {
		name string
		url  string
		want int
	}{
		{"unavailable", down.URL, http.StatusServiceUnavailable},
		{"bad status", broken.URL, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cartTS, _ := newCartTS(t, cart.NewCatalogClient(tt.url))
			if code := doJSON(t, http.MethodPost, cartTS.URL+"/cart/items", map[string]any{"product_id": "1"}, nil); code != tt.want {
				t.Fatalf("status=%d want=%d", code, tt.want)
			}
		})
	}
}
