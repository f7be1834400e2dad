package order

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ShopFlow/pkg/kit"
)

type Server struct {
	Checkout *Checkout
	Tokens   *TokenMaker
	Log      *zap.Logger
}

// placed is the checkout response: the order plus the bearer token that
// GET /orders/{id} requires.
type placed struct {
	Order
	AccessToken string `json:"access_token,omitempty"`
}

func (s *Server) Register(r chi.Router) {
	r.Post("/checkout", s.place)
	r.With(RequireOrderToken(s.Tokens)).Get("/orders/{id}", s.get)
}

func (s *Server) place(w http.ResponseWriter, r *http.Request) {
	var f Form
	if err := kit.DecodeJSON(w, r, &f); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}

	o, err := s.Checkout.Place(r.Context(), f)
	if err != nil {
		var ve *ValidationError
		switch {
		case errors.As(err, &ve):
			kit.WriteError(w, r, http.StatusBadRequest, "invalid form", map[string]any{"fields": ve.Fields})
		case errors.Is(err, ErrEmptyCart):
			kit.WriteError(w, r, http.StatusBadRequest, "cart is empty", nil)
		case isTimeoutErr(err):
			kit.WriteError(w, r, http.StatusGatewayTimeout, "timeout", nil)
		default:
			kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		}
		return
	}

	resp := placed{Order: o}
	if s.Tokens != nil {
		tok, err := s.Tokens.New(o.ID)
		if err != nil {
			// The order is already stored; the client just cannot read it back.
			if s.Log != nil {
				s.Log.Error("sign order token failed", zap.Error(err), zap.String("order_id", o.ID))
			}
		}
		resp.AccessToken = tok
	}
	kit.WriteJSON(w, http.StatusCreated, resp)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	o, err := s.Checkout.Orders.Get(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	if err != nil {
		if s.Log != nil {
			s.Log.Error("store get order failed", zap.Error(err), zap.String("order_id", id))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusOK, o)
}

func isTimeoutErr(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
