package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ShopFlow/pkg/kit"
)

type HTTPDeps struct {
	Log     *zap.Logger
	Metrics kit.MetricsDeps
}

func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	r := chi.NewRouter()

	kit.UseDefaults(r, deps.Log)
	kit.InstallMetrics(r, deps.Metrics)

	r.Mount("/", s.Routes())
	return r
}
