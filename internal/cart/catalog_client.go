package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ShopFlow/internal/catalog"
)

var (
	ErrCatalogBadStatus   = errors.New("catalog bad status")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)

// ProductSource resolves a product id to the product to snapshot into
// the cart. *catalog.Service and *CatalogClient both satisfy it. Unknown
// ids must produce an error matching catalog.ErrNotFound.
type ProductSource interface {
	ByID(ctx context.Context, id string) (catalog.Product, error)
}

// CatalogClient reads products from the catalog service over HTTP.
type CatalogClient struct {
	BaseURL string
	Client  *http.Client
}

func NewCatalogClient(baseURL string) *CatalogClient {
	return &CatalogClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 3 * time.Second},
	}
}

func (c *CatalogClient) ByID(ctx context.Context, id string) (catalog.Product, error) {
	endpoint := fmt.Sprintf("%s/products/%s", c.BaseURL, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return catalog.Product{}, err
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return catalog.Product{}, ctx.Err()
		}
		return catalog.Product{}, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return catalog.Product{}, fmt.Errorf("%w: %q", catalog.ErrNotFound, id)
	case http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		_, _ = io.Copy(io.Discard, resp.Body)
		return catalog.Product{}, fmt.Errorf("%w: status=%d", ErrCatalogUnavailable, resp.StatusCode)
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return catalog.Product{}, fmt.Errorf("%w: status=%d", ErrCatalogBadStatus, resp.StatusCode)
	}

	var p catalog.Product
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return catalog.Product{}, fmt.Errorf("%w: decode product: %v", ErrCatalogBadStatus, err)
	}
	return p, nil
}
