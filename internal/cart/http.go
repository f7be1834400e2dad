package cart

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ShopFlow/internal/catalog"
	"ShopFlow/pkg/kit"
)

type Server struct {
	Store    *Store
	Products ProductSource
	Feed     *Feed
	Log      *zap.Logger
}

type View struct {
	Items      []LineItem `json:"items"`
	Count      int        `json:"count"`
	TotalCents int64      `json:"total_cents"`
	Summary    Summary    `json:"summary"`
	Busy       bool       `json:"busy"`
}

type addReq struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type updateReq struct {
	Quantity int `json:"quantity"`
}

// Register mounts the cart endpoints on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/cart", s.get)
	r.Delete("/cart", s.clear)
	r.Post("/cart/items", s.add)
	r.Patch("/cart/items/{id}", s.update)
	r.Delete("/cart/items/{id}", s.remove)
	r.Get("/cart/notifications", s.notifications)
}

func (s *Server) view() View {
	items, sum := s.Store.Summary()
	return View{
		Items:      items,
		Count:      sum.Count,
		TotalCents: sum.SubtotalCents,
		Summary:    sum,
		Busy:       s.Store.Busy(),
	}
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.view())
}

func (s *Server) add(w http.ResponseWriter, r *http.Request) {
	var req addReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}
	req.ProductID = strings.TrimSpace(req.ProductID)
	if req.ProductID == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "product_id required", nil)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 || req.Quantity > MaxQuantity {
		kit.WriteError(w, r, http.StatusBadRequest, "bad quantity", map[string]any{"quantity": req.Quantity, "max": MaxQuantity})
		return
	}

	p, err := s.Products.ByID(r.Context(), req.ProductID)
	if err != nil {
		s.writeCatalogError(w, r, req.ProductID, err)
		return
	}

	if _, err := s.Store.Add(r.Context(), p, req.Quantity); err != nil {
		switch {
		case errors.Is(err, ErrInvalidQuantity):
			kit.WriteError(w, r, http.StatusBadRequest, "bad quantity", nil)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			kit.WriteError(w, r, http.StatusGatewayTimeout, "timeout", nil)
		default:
			s.logger().Error("add to cart failed", zap.Error(err), zap.String("product_id", p.ID))
			kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		}
		return
	}
	kit.WriteJSON(w, http.StatusOK, s.view())
}

// update and remove on a product that is not in the cart are no-ops and
// still answer with the current cart.
func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	var req updateReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}
	if _, err := s.Store.UpdateQuantity(r.Context(), chi.URLParam(r, "id"), req.Quantity); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad quantity", map[string]any{"max": MaxQuantity})
		return
	}
	kit.WriteJSON(w, http.StatusOK, s.view())
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	s.Store.Remove(r.Context(), chi.URLParam(r, "id"))
	kit.WriteJSON(w, http.StatusOK, s.view())
}

func (s *Server) clear(w http.ResponseWriter, r *http.Request) {
	s.Store.Clear(r.Context())
	kit.WriteJSON(w, http.StatusOK, s.view())
}

func (s *Server) notifications(w http.ResponseWriter, r *http.Request) {
	if s.Feed == nil {
		kit.WriteJSON(w, http.StatusOK, []Notification{})
		return
	}
	kit.WriteJSON(w, http.StatusOK, s.Feed.Drain())
}

func (s *Server) writeCatalogError(w http.ResponseWriter, r *http.Request, id string, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		kit.WriteError(w, r, http.StatusBadRequest, "invalid product_id", map[string]any{"product_id": id})
	case errors.Is(err, ErrCatalogUnavailable):
		kit.WriteError(w, r, http.StatusServiceUnavailable, "catalog unavailable", nil)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		kit.WriteError(w, r, http.StatusGatewayTimeout, "timeout", nil)
	default:
		s.logger().Warn("catalog error", zap.Error(err), zap.String("product_id", id))
		kit.WriteError(w, r, http.StatusBadGateway, "catalog error", nil)
	}
}

func (s *Server) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}
