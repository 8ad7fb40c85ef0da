package di

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gonum.org/v1/plot/vg"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/domain/repository"
	"StockPulse/internal/domain/service"
	"StockPulse/internal/handler/api"
	internalrepo "StockPulse/internal/repository"
	"StockPulse/internal/service/cache"
	"StockPulse/internal/service/market"
	"StockPulse/internal/service/ratelimit"
	"StockPulse/internal/service/yahoo"
	"StockPulse/internal/services/chart"
	"StockPulse/internal/services/predictor"
	"StockPulse/internal/usecase"
	"StockPulse/pkg/config"
	xhttp "StockPulse/pkg/http"
	pkgkafka "StockPulse/pkg/kafka"
	applogger "StockPulse/pkg/logger"
	"StockPulse/pkg/metrics"
	"StockPulse/pkg/server"
)

// ProvideKafkaProducer creates the producer used by the error log collector.
// It returns nil when the collector is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Logging.Collector.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideLogger creates the application logger and attaches the collector
// when a producer is available.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		MaxSizeMB:  cfg.Logging.File.MaxSizeMB,
		MaxAgeDays: cfg.Logging.File.MaxAgeDays,
		MaxBackups: cfg.Logging.File.MaxBackups,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	if producer != nil {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   cfg.Logging.Collector.Interval,
			CountThreshold: cfg.Logging.Collector.Threshold,
			Topic:          cfg.Logging.Collector.Topic,
			Publisher:      producer,
		})
	}
	return l, nil
}

// ProvideCache returns Redis when enabled, otherwise an in-process TTL cache.
func ProvideCache(cfg *config.Config, l *applogger.Logger) (cache.BytesCache, error) {
	if !cfg.Redis.Enabled {
		l.Info("using in-memory cache")
		return cache.NewTTLCache(), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Prefix:   cfg.Redis.Prefix,
	})
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	l.Info("using redis cache", applogger.String("addr", cfg.Redis.Addr))
	return rc, nil
}

// ProvideMetrics creates a Prometheus metrics recorder on the default registry
// served at the metrics path.
func ProvideMetrics() repository.Metrics {
	return metrics.New(prometheus.DefaultRegisterer)
}

// ProvideYahooClient creates the upstream quote client.
func ProvideYahooClient(cfg *config.Config) *yahoo.Client {
	return yahoo.NewClient(cfg.Market.BaseURL, cfg.Market.Timeout, cfg.Market.Proxy)
}

// ProvideMarketProvider creates the cached, escalating market data provider.
func ProvideMarketProvider(
	cfg *config.Config,
	src *yahoo.Client,
	c cache.BytesCache,
	m repository.Metrics,
	l *applogger.Logger,
) *market.Provider {
	if cfg.Market.SyntheticFallback {
		l.Warn("synthetic price fallback enabled")
	}
	return market.NewProvider(src, c, m, nil, market.Config{
		PrimaryRange:      cfg.Market.PrimaryRange,
		FallbackRange:     cfg.Market.FallbackRange,
		Timeout:           cfg.Market.Timeout,
		CacheTTL:          cfg.Market.CacheTTL,
		SyntheticFallback: cfg.Market.SyntheticFallback,
	}, l)
}

// ProvidePredictor loads the trained model. A missing or invalid model is not
// fatal: the page then reports that prediction is unavailable.
func ProvidePredictor(cfg *config.Config, l *applogger.Logger) service.Predictor {
	m, err := predictor.Load(cfg.Model.Path)
	if errors.Is(err, models.ErrModelNotLoaded) {
		l.Warn("prediction disabled, no model artifact", applogger.String("model_path", cfg.Model.Path))
		return nil
	}
	if err != nil {
		l.Error("prediction disabled, model rejected",
			applogger.String("model_path", cfg.Model.Path),
			applogger.Error(err),
		)
		return nil
	}
	l.Info("model loaded",
		applogger.String("model_path", cfg.Model.Path),
		applogger.Int("samples", m.Samples),
		applogger.Float64("r2", m.R2),
	)
	return m
}

// ProvideChartRenderer creates the PNG chart renderer.
func ProvideChartRenderer(cfg *config.Config) service.ChartRenderer {
	return chart.NewRenderer(chart.Options{
		Width:  vg.Length(cfg.Chart.Width),
		Height: vg.Length(cfg.Chart.Height),
	})
}

// ProvideChartStore creates the short-lived chart image store.
func ProvideChartStore(c cache.BytesCache, cfg *config.Config) repository.ChartStore {
	return internalrepo.NewChartStore(c, cfg.Chart.TTL)
}

// ProvideLimiter creates the per-client request limiter.
func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec)
}

// ProvideMarketOverview creates the page use case.
func ProvideMarketOverview(
	md repository.MarketData,
	p service.Predictor,
	r service.ChartRenderer,
	charts repository.ChartStore,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.MarketOverview {
	return usecase.NewMarketOverview(md, p, r, charts, m, l)
}

// ProvideOverviewHandler creates the HTTP handler.
func ProvideOverviewHandler(
	cfg *config.Config,
	l *applogger.Logger,
	uc *usecase.MarketOverview,
	charts repository.ChartStore,
	limiter *ratelimit.Limiter,
) *api.OverviewHandler {
	return api.NewOverviewHandler(l, uc, charts, limiter, cfg.Market.DefaultSymbol)
}

// ProvideHTTPServer creates the Echo server with the page templates.
func ProvideHTTPServer(cfg *config.Config, h *api.OverviewHandler, l *applogger.Logger) (*xhttp.Server, error) {
	tr, err := api.NewTemplateRenderer()
	if err != nil {
		return nil, err
	}
	return xhttp.NewServer(h,
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowThreshold(cfg.Server.SlowThreshold),
		xhttp.WithMetricsPath(cfg.Metrics.Path),
		xhttp.WithCORS(cfg.Server.CORSOrigins...),
		xhttp.WithRenderer(tr),
		xhttp.WithLogger(l),
	), nil
}

// ProvidePrefetcher creates the cache warm-up job, or nil when no schedule is
// configured.
func ProvidePrefetcher(cfg *config.Config, p *market.Provider, l *applogger.Logger) (*usecase.Prefetcher, error) {
	if cfg.Market.Prefetch.Cron == "" {
		return nil, nil
	}
	pf := usecase.NewPrefetcher(p, cfg.Market.Prefetch.Symbols, cfg.Market.Prefetch.Timeout, l)
	if err := pf.Schedule(cfg.Market.Prefetch.Cron); err != nil {
		return nil, err
	}
	return pf, nil
}

// ProvideApp creates the application and registers everything it must stop.
func ProvideApp(
	cfg *config.Config,
	srv *xhttp.Server,
	l *applogger.Logger,
	pf *usecase.Prefetcher,
	producer *pkgkafka.Producer,
	c cache.BytesCache,
) *server.App {
	app := server.New(srv, l, cfg.Server.ShutdownTimeout)
	// the logger flushes its collector through the producer on close
	if producer != nil {
		app.AddCloser(producer)
	}
	app.AddCloser(l)
	if closer, ok := c.(io.Closer); ok {
		app.AddCloser(closer)
	}
	if pf != nil {
		app.AddJob(pf)
	}
	return app
}
