package order

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"ShopFlow/pkg/kit"
)

// RequireOrderToken lets a request through only with a bearer token
// issued for the order named by the {id} route parameter.
func RequireOrderToken(tokens *TokenMaker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokens == nil {
				kit.WriteError(w, r, http.StatusUnauthorized, "order access disabled", nil)
				return
			}
			authz := r.Header.Get("Authorization")
			if !strings.HasPrefix(authz, "Bearer ") {
				kit.WriteError(w, r, http.StatusUnauthorized, "missing token", nil)
				return
			}
			claims, err := tokens.Parse(strings.TrimPrefix(authz, "Bearer "))
			if err != nil {
				kit.WriteError(w, r, http.StatusUnauthorized, "invalid token", nil)
				return
			}
			if claims.OrderID != chi.URLParam(r, "id") {
				kit.WriteError(w, r, http.StatusForbidden, "token not valid for this order", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
