package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"ShopFlow/pkg/kit"
)

const upstreamTimeout = 10 * time.Second

var proxyTransport = &http.Transport{
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   20,
	IdleConnTimeout:       60 * time.Second,
	ResponseHeaderTimeout: upstreamTimeout,
}

// NewReverseProxy forwards requests to target unchanged, carrying the
// gateway's request id so upstream logs line up with ours.
func NewReverseProxy(target string, log *zap.Logger) (*httputil.ReverseProxy, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.New("upstream url must be absolute: " + target)
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(u)
			pr.SetXForwarded()
			pr.Out.Host = u.Host
			if id := chimw.GetReqID(pr.In.Context()); id != "" {
				pr.Out.Header.Set(chimw.RequestIDHeader, id)
			}
		},
		Transport: proxyTransport,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			if errors.Is(err, context.Canceled) {
				return
			}
			log.Warn("upstream request failed",
				zap.String("upstream", u.Host),
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
			if errors.Is(err, context.DeadlineExceeded) {
				kit.WriteError(w, r, http.StatusGatewayTimeout, "upstream timeout", nil)
				return
			}
			kit.WriteError(w, r, http.StatusBadGateway, "upstream unavailable", nil)
		},
	}, nil
}
