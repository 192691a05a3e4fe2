package bootstrap

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/creamcroissant/sub2xray/internal/api"
	"github.com/creamcroissant/sub2xray/internal/api/middleware"
	"github.com/creamcroissant/sub2xray/internal/cache"
	"github.com/creamcroissant/sub2xray/internal/config"
	"github.com/creamcroissant/sub2xray/internal/link"
	"github.com/creamcroissant/sub2xray/internal/repository/jsonfs"
	"github.com/creamcroissant/sub2xray/internal/rules"
	"github.com/creamcroissant/sub2xray/internal/service"
	"github.com/creamcroissant/sub2xray/internal/transport"
	"github.com/creamcroissant/sub2xray/internal/xray"
)

// App bundles the wired components shared by every subcommand.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	Store   *jsonfs.Store
	Rules   *rules.Store
	Client  *transport.Client
	Decoder *link.Decoder
	Cache   cache.Store

	Subscriptions service.SubscriptionService
	Configs       service.ConfigService
	Catalog       service.CatalogService

	// Metrics 与 Registry 仅在 metrics.enabled 时非空。
	Metrics  *middleware.Metrics
	Registry *prometheus.Registry
}

// BuildApp wires default implementations from the loaded configuration.
func BuildApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required / 配置不能为空")
	}
	if logger == nil {
		logger = slog.Default()
	}

	rulesPath, err := rules.ExpandHome(cfg.Rules.Path)
	if err != nil {
		return nil, fmt.Errorf("rules path: %w", err)
	}
	storageDir, err := rules.ExpandHome(cfg.Storage.Dir)
	if err != nil {
		return nil, fmt.Errorf("storage dir: %w", err)
	}

	app := &App{
		Config: cfg,
		Logger: logger,
		Store:  jsonfs.NewStore(storageDir, logger),
		Rules:  rules.NewStore(rulesPath, logger),
		Client: transport.NewClient(transport.Options{
			Timeout:   cfg.Subscription.Timeout,
			MaxBytes:  cfg.Subscription.MaxBytes,
			UserAgent: cfg.Subscription.UserAgent,
			Retry: transport.RetryConfig{
				MaxRetries:      cfg.Subscription.Retries,
				InitialInterval: time.Second,
				MaxInterval:     10 * time.Second,
				Multiplier:      2,
			},
			Logger: logger,
		}),
		Decoder: link.NewDecoder(
			link.WithLogger(logger),
			link.WithFailFast(cfg.Decode.FailFast),
		),
		Cache: cache.NewStore(cache.Options{
			Prefix:          "sub2xray",
			DefaultTTL:      cfg.Serve.CacheTTL,
			CleanupInterval: 10 * time.Minute,
		}),
	}

	deps := service.SubscriptionDeps{
		Fetcher: app.Client,
		Decoder: app.Decoder,
		Servers: app.Store,
		Raw:     app.Store,
		Logger:  logger,
	}
	if cfg.Metrics.Enabled {
		app.Registry = prometheus.NewRegistry()
		app.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metricsCfg := middleware.DefaultMetricsConfig()
		if cfg.Metrics.Namespace != "" {
			metricsCfg.Namespace = cfg.Metrics.Namespace
		}
		metricsCfg.Registerer = app.Registry
		app.Metrics = middleware.NewMetrics(metricsCfg)
		deps.Observer = app.Metrics
	}

	app.Subscriptions = service.NewSubscriptionService(deps)
	app.Configs = service.NewConfigService(app.Store, app.Rules, logger)
	app.Catalog = service.NewCatalogService(service.CatalogDeps{
		URL:           cfg.Subscription.URL,
		Subscriptions: app.Subscriptions,
		Configs:       app.Configs,
		Servers:       app.Store,
		Raw:           app.Store,
		Cache:         app.Cache,
		TTL:           cfg.Serve.CacheTTL,
		Logger:        logger,
	})

	return app, nil
}

// InboundOptions 返回配置中的默认入站选项。
func (a *App) InboundOptions() xray.Options {
	return xray.Options{AllowLAN: a.Config.Inbound.AllowLAN, HTTPPort: a.Config.Inbound.HTTPPort}
}

// Handler builds the serve-mode HTTP router.
func (a *App) Handler() http.Handler {
	opts := api.RouterOptions{Defaults: a.InboundOptions()}
	if limit := a.Config.Serve.RefreshLimit; limit > 0 {
		opts.RateLimit = &middleware.RateLimitConfig{
			Store:  a.Cache,
			Limit:  limit,
			Window: time.Minute,
		}
	}
	if a.Metrics != nil {
		opts.Metrics = a.Metrics
		opts.Gatherer = a.Registry
	}
	return api.NewRouter(a.Logger, api.Services{
		Catalog:       a.Catalog,
		Subscriptions: a.Subscriptions,
	}, opts)
}
