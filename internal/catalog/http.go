package catalog

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ShopFlow/pkg/kit"
)

type Server struct {
	Catalog *Service
	Log     *zap.Logger
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", kit.Healthz)
	r.Get("/readyz", s.ready)

	r.Get("/products", s.listProducts)
	r.Get("/products/{id}", s.getProduct)
	r.Get("/products/{id}/related", s.relatedProducts)

	r.Get("/categories", s.listCategories)
	r.Get("/categories/featured", s.featuredCategories)
	r.Get("/categories/slug/{slug}", s.categoryBySlug)
	r.Get("/categories/{id}", s.categoryByID)

	return r
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
	defer cancel()

	if err := s.Catalog.Ping(ctx); err != nil {
		s.logger().Warn("readyz failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	q, bad := parseQuery(r)
	if bad != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad query", bad)
		return
	}

	products, err := s.Catalog.Browse(r.Context(), q)
	if err != nil {
		s.serverError(w, r, "list products failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, products)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := s.Catalog.ByID(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	if err != nil {
		s.serverError(w, r, "get product failed", err, zap.String("id", id))
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

// relatedProducts defaults the category to the product's own when the
// category query parameter is absent.
func (s *Server) relatedProducts(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	category := r.URL.Query().Get("category")

	if category == "" {
		p, err := s.Catalog.ByID(r.Context(), id)
		if errors.Is(err, ErrNotFound) {
			kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
			return
		}
		if err != nil {
			s.serverError(w, r, "get product failed", err, zap.String("id", id))
			return
		}
		category = p.Category
	}

	products, err := s.Catalog.Related(r.Context(), id, category)
	if err != nil {
		s.serverError(w, r, "related products failed", err, zap.String("id", id))
		return
	}
	kit.WriteJSON(w, http.StatusOK, products)
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.Catalog.Categories(r.Context())
	if err != nil {
		s.serverError(w, r, "list categories failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, categories)
}

func (s *Server) featuredCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.Catalog.FeaturedCategories(r.Context())
	if err != nil {
		s.serverError(w, r, "list featured categories failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, categories)
}

func (s *Server) categoryByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.writeCategory(w, r, id, func(ctx context.Context) (Category, error) {
		return s.Catalog.CategoryByID(ctx, id)
	})
}

func (s *Server) categoryBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	s.writeCategory(w, r, slug, func(ctx context.Context) (Category, error) {
		return s.Catalog.CategoryBySlug(ctx, slug)
	})
}

func (s *Server) writeCategory(w http.ResponseWriter, r *http.Request, key string, find func(context.Context) (Category, error)) {
	c, err := find(r.Context())
	if errors.Is(err, ErrCategoryNotFound) {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"category": key})
		return
	}
	if err != nil {
		s.serverError(w, r, "get category failed", err, zap.String("category", key))
		return
	}
	kit.WriteJSON(w, http.StatusOK, c)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, msg string, err error, fields ...zap.Field) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		kit.WriteError(w, r, http.StatusGatewayTimeout, "timeout", nil)
		return
	}
	s.logger().Error(msg, append(fields, zap.Error(err))...)
	kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
}

func (s *Server) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

// parseQuery maps listing query parameters onto a Query. Prices are in
// cents. Invalid parameters are reported by name.
func parseQuery(r *http.Request) (Query, map[string]string) {
	v := r.URL.Query()
	bad := map[string]string{}

	q := Query{
		Text:     v.Get("q"),
		Category: v.Get("category"),
	}

	parseBool := func(key string, dst *bool) {
		if raw := v.Get(key); raw != "" {
			b, err := strconv.ParseBool(raw)
			if err != nil {
				bad[key] = "must be a boolean"
				return
			}
			*dst = b
		}
	}
	parseCents := func(key string, dst *int64) {
		if raw := v.Get(key); raw != "" {
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || n < 0 {
				bad[key] = "must be a non-negative integer (cents)"
				return
			}
			*dst = n
		}
	}

	parseBool("featured", &q.FeaturedOnly)
	parseBool("on_sale", &q.OnSaleOnly)
	parseBool("in_stock", &q.InStockOnly)
	parseCents("min_price", &q.MinPriceCents)
	parseCents("max_price", &q.MaxPriceCents)

	if raw := v.Get("min_rating"); raw != "" {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || f < 0 || f > 5 {
			bad["min_rating"] = "must be between 0 and 5"
		} else {
			q.MinRating = f
		}
	}

	order, err := ParseSortOrder(v.Get("sort"))
	if err != nil {
		bad["sort"] = err.Error()
	}
	q.Sort = order

	if len(bad) > 0 {
		return Query{}, bad
	}
	return q, nil
}
