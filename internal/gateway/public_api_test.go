package gateway_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"ShopFlow/internal/cart"
	"ShopFlow/internal/cartsvc"
	"ShopFlow/internal/catalog"
	"ShopFlow/internal/gateway"
	"ShopFlow/internal/order"
)

func newCatalogTS(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := catalog.NewSeedStore()
	if err != nil {
		t.Fatalf("seed store: %v", err)
	}
	s := &catalog.Server{Catalog: catalog.NewService(store, 0), Log: zap.NewNop()}

	ts := httptest.NewServer(catalog.NewHandler(s, catalog.HTTPDeps{Log: zap.NewNop()}))
	t.Cleanup(ts.Close)
	return ts
}

func newCartTS(t *testing.T, catalogURL string) *httptest.Server {
	t.Helper()

	feed := cart.NewFeed(0)
	store := cart.NewStore(t.Context(), cart.Options{Notifier: feed})
	cs := &cart.Server{
		Store:    store,
		Products: cart.NewCatalogClient(catalogURL),
		Feed:     feed,
		Log:      zap.NewNop(),
	}
	orderSrv := &order.Server{
		Checkout: order.NewCheckout(store, order.NewMemStore(), zap.NewNop()),
		Tokens:   order.NewTokenMaker("gateway-test-order-secret-0123456789", time.Hour),
	}

	ts := httptest.NewServer(cartsvc.NewHandler(cs, orderSrv, cartsvc.HTTPDeps{Log: zap.NewNop()}))
	t.Cleanup(ts.Close)
	return ts
}

func newGatewayTS(t *testing.T, deps gateway.Deps) *httptest.Server {
	t.Helper()

	h, err := gateway.NewHandler(deps, gateway.HTTPDeps{Log: zap.NewNop()})
	if err != nil {
		t.Fatalf("gateway.NewHandler: %v", err)
	}
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, c *http.Client, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	return doJSONAuth(t, c, method, url, body, "")
}

func doJSONAuth(t *testing.T, c *http.Client, method, url string, body any, token string) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

func TestGateway_PublicAPI_HappyPath(t *testing.T) {
	catalogTS := newCatalogTS(t)
	cartTS := newCartTS(t, catalogTS.URL)
	gwTS := newGatewayTS(t, gateway.Deps{CatalogURL: catalogTS.URL, CartURL: cartTS.URL})

	c := &http.Client{}

	{
		resp, raw := doJSON(t, c, http.MethodGet, gwTS.URL+"/products?q=bluetooth&sort=price-low", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("search status=%d body=%s", resp.StatusCode, raw)
		}
		var got []catalog.Product
		if err := json.Unmarshal(raw, &got); err != nil {
			t.Fatalf("decode products: %v body=%s", err, raw)
		}
		if len(got) != 2 || got[0].ID != "4" || got[1].ID != "1" {
			t.Fatalf("search results=%+v", got)
		}
	}

	{
		resp, raw := doJSON(t, c, http.MethodGet, gwTS.URL+"/categories/slug/sports", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("category status=%d body=%s", resp.StatusCode, raw)
		}
	}

	{
		resp, raw := doJSON(t, c, http.MethodPost, gwTS.URL+"/cart/items", map[string]any{
			"product_id": "4",
			"quantity":   2,
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("add status=%d body=%s", resp.StatusCode, raw)
		}
		var v cart.View
		if err := json.Unmarshal(raw, &v); err != nil {
			t.Fatalf("decode cart: %v body=%s", err, raw)
		}
		if v.Count != 2 || v.TotalCents != 17998 {
			t.Fatalf("cart=%+v", v)
		}
	}

	{
		resp, raw := doJSON(t, c, http.MethodPost, gwTS.URL+"/cart/items", map[string]any{"product_id": "nope"})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("unknown product status=%d body=%s", resp.StatusCode, raw)
		}
	}

	var placed struct {
		order.Order
		AccessToken string `json:"access_token"`
	}
	{
		resp, raw := doJSON(t, c, http.MethodPost, gwTS.URL+"/checkout", map[string]any{
			"shipping": map[string]any{
				"first_name": "Ada", "last_name": "Lovelace", "email": "ada@example.com",
				"address": "12 St James Sq", "city": "London", "state": "LDN", "zip_code": "SW1Y",
			},
			"card_number":  "4111 1111 1111 4242",
			"expiry_date":  "12/30",
			"cvv":          "123",
			"name_on_card": "Ada Lovelace",
			"billing_same": true,
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("checkout status=%d body=%s", resp.StatusCode, raw)
		}
		if err := json.Unmarshal(raw, &placed); err != nil {
			t.Fatalf("decode order: %v body=%s", err, raw)
		}
		// 179.98 ships free; 8% tax rounds 14.3984 to 14.40.
		if placed.ShippingCents != 0 || placed.TaxCents != 1440 || placed.TotalCents != 19438 {
			t.Fatalf("order=%+v", placed)
		}
		if placed.Payment.CardLast4 != "4242" {
			t.Fatalf("card_last4=%q", placed.Payment.CardLast4)
		}
	}

	{
		resp, raw := doJSON(t, c, http.MethodGet, gwTS.URL+"/orders/"+placed.ID, nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("get order without token status=%d body=%s", resp.StatusCode, raw)
		}

		resp, raw = doJSONAuth(t, c, http.MethodGet, gwTS.URL+"/orders/"+placed.ID, nil, placed.AccessToken)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("get order status=%d body=%s", resp.StatusCode, raw)
		}
		var got order.Order
		if err := json.Unmarshal(raw, &got); err != nil {
			t.Fatalf("decode order: %v body=%s", err, raw)
		}
		if got.ID != placed.ID || got.TotalCents != placed.TotalCents {
			t.Fatalf("got=%+v want=%+v", got, placed.Order)
		}
	}

	{
		resp, raw := doJSON(t, c, http.MethodGet, gwTS.URL+"/cart/notifications", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("notifications status=%d body=%s", resp.StatusCode, raw)
		}
		var got []cart.Notification
		if err := json.Unmarshal(raw, &got); err != nil {
			t.Fatalf("decode notifications: %v body=%s", err, raw)
		}
		if len(got) != 2 || got[0].Action != cart.ActionAdded || got[1].Action != cart.ActionCleared {
			t.Fatalf("notifications=%+v", got)
		}
	}
}

func TestGateway_PublicAPI_RateLimitsCartWrites(t *testing.T) {
	catalogTS := newCatalogTS(t)
	cartTS := newCartTS(t, catalogTS.URL)
	gwTS := newGatewayTS(t, gateway.Deps{
		CatalogURL:     catalogTS.URL,
		CartURL:        cartTS.URL,
		MutationLimit:  2,
		MutationWindow: time.Minute,
	})

	c := &http.Client{}
	for i := 0; i < 2; i++ {
		resp, raw := doJSON(t, c, http.MethodPost, gwTS.URL+"/cart/items", map[string]any{"product_id": "11"})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("add #%d status=%d body=%s", i, resp.StatusCode, raw)
		}
	}

	resp, raw := doJSON(t, c, http.MethodDelete, gwTS.URL+"/cart", nil)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status=%d body=%s", resp.StatusCode, raw)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Fatalf("missing Retry-After")
	}

	// Reads are never limited.
	resp, raw = doJSON(t, c, http.MethodGet, gwTS.URL+"/cart", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get cart status=%d body=%s", resp.StatusCode, raw)
	}
}

func TestGateway_UpstreamDown(t *testing.T) {
	catalogTS := newCatalogTS(t)
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	gwTS := newGatewayTS(t, gateway.Deps{CatalogURL: catalogTS.URL, CartURL: deadURL})
	c := &http.Client{}

	resp, raw := doJSON(t, c, http.MethodGet, gwTS.URL+"/cart", nil)
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("cart status=%d body=%s", resp.StatusCode, raw)
	}

	resp, raw = doJSON(t, c, http.MethodGet, gwTS.URL+"/readyz", nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("readyz status=%d body=%s", resp.StatusCode, raw)
	}

	resp, raw = doJSON(t, c, http.MethodGet, gwTS.URL+"/products/1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("catalog should still answer: status=%d body=%s", resp.StatusCode, raw)
	}
}

func TestNewHandler_RejectsRelativeUpstream(t *testing.T) {
	_, err := gateway.NewHandler(gateway.Deps{CatalogURL: "catalog:8082", CartURL: "http://cart:8083"}, gateway.HTTPDeps{})
	if err == nil {
		t.Fatalf("expected error for relative upstream url")
	}
}
