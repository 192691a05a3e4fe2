// Package api 组装 serve 模式的 HTTP 路由。
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/creamcroissant/sub2xray/internal/api/handler"
	"github.com/creamcroissant/sub2xray/internal/api/middleware"
	"github.com/creamcroissant/sub2xray/internal/service"
	"github.com/creamcroissant/sub2xray/internal/xray"
)

// Services 聚合路由依赖的服务。
type Services struct {
	Catalog       service.CatalogService
	Subscriptions service.SubscriptionService
}

// RouterOptions 配置路由行为。
type RouterOptions struct {
	// Metrics 为空时不挂载 /metrics 与指标中间件。
	Metrics  *middleware.Metrics
	Gatherer prometheus.Gatherer
	Defaults xray.Options
	// RateLimit 非空时限制 refresh 与 decode 两个写接口。
	RateLimit *middleware.RateLimitConfig
}

// NewRouter 构建 chi 路由。
func NewRouter(logger *slog.Logger, services Services, opts RouterOptions) http.Handler {
	if services.Catalog == nil {
		panic("router requires CatalogService")
	}
	if services.Subscriptions == nil {
		panic("router requires SubscriptionService")
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(
		chiMiddleware.RequestID,
		chiMiddleware.RealIP,
	)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware())
	}
	r.Use(
		middleware.StructuredLogger(middleware.LoggingConfig{
			Logger:    logger,
			SkipPaths: []string{"/healthz", "/metrics"},
		}),
		chiMiddleware.Recoverer,
		chiMiddleware.Compress(5),
	)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"ts":     time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	if opts.Metrics != nil {
		gatherer := opts.Gatherer
		if gatherer == nil {
			gatherer = prometheus.DefaultGatherer
		}
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	servers := handler.NewServerHandler(services.Catalog, services.Subscriptions, opts.Defaults)
	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Get("/servers", servers.List)
		v1.Get("/servers/{index}/config", servers.Config)
		v1.Group(func(w chi.Router) {
			if opts.RateLimit != nil {
				limit := *opts.RateLimit
				if limit.Logger == nil {
					limit.Logger = logger
				}
				w.Use(middleware.RateLimit(limit))
			}
			w.Post("/refresh", servers.Refresh)
			w.Post("/decode", servers.Decode)
		})
	})

	return r
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("failed to encode response JSON", "error", err)
	}
}
