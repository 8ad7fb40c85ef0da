package market

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/service/cache"
	"StockPulse/internal/service/yahoo"
	applogger "StockPulse/pkg/logger"
)

// BarSource returns daily bars for a symbol over an upstream range such as "1mo".
type BarSource interface {
	DailyBars(ctx context.Context, symbol, rng string) ([]models.Bar, error)
}

type Config struct {
	PrimaryRange      string
	FallbackRange     string
	Timeout           time.Duration
	CacheTTL          time.Duration
	SyntheticFallback bool
}

// Provider implements domain.repository.MarketData over a BarSource with
// window escalation, request collapsing, caching and an optional synthetic
// fallback.
type Provider struct {
	src     BarSource
	cache   cache.BytesCache
	metrics domrepo.Metrics
	synth   *Synthesizer
	cfg     Config
	l       *applogger.Logger
	group   singleflight.Group
	now     func() time.Time
}

var _ domrepo.MarketData = (*Provider)(nil)

func NewProvider(src BarSource, c cache.BytesCache, m domrepo.Metrics, synth *Synthesizer, cfg Config, l *applogger.Logger) *Provider {
	if cfg.PrimaryRange == "" {
		cfg.PrimaryRange = "1mo"
	}
	if cfg.FallbackRange == "" {
		cfg.FallbackRange = "3mo"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if l == nil {
		l = applogger.NewNop()
	}
	if synth == nil {
		synth = NewSynthesizer(0)
	}
	return &Provider{src: src, cache: c, metrics: m, synth: synth, cfg: cfg, l: l, now: time.Now}
}

// Fetch returns the most recent daily bars for symbol. When no window yields
// data the error wraps models.ErrDataUnavailable, unless the synthetic
// fallback is enabled, in which case a series tagged SourceSynthetic is
// returned instead.
func (p *Provider) Fetch(ctx context.Context, symbol string) (*models.PriceSeries, error) {
	return p.do(ctx, symbol, true)
}

// Refresh fetches symbol from upstream, ignoring any cached copy, and
// re-populates the cache. Synthetic data is never produced.
func (p *Provider) Refresh(ctx context.Context, symbol string) (*models.PriceSeries, error) {
	return p.do(ctx, symbol, false)
}

func (p *Provider) do(ctx context.Context, symbol string, interactive bool) (*models.PriceSeries, error) {
	// one spelling per symbol for the flight key, cache key and series
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("empty symbol: %w", models.ErrDataUnavailable)
	}
	key := symbol
	if !interactive {
		key = "refresh:" + symbol
	}
	// Callers share one upstream request; it must not die with the first caller.
	v, err, _ := p.group.Do(key, func() (interface{}, error) {
		return p.fetch(context.WithoutCancel(ctx), symbol, interactive)
	})
	if err != nil {
		return nil, err
	}
	s := *v.(*models.PriceSeries)
	return &s, nil
}

func (p *Provider) fetch(ctx context.Context, symbol string, interactive bool) (*models.PriceSeries, error) {
	start := p.now()
	defer func() { p.recordLatency("fetch", start) }()

	if interactive {
		if s, ok := p.cached(ctx, symbol); ok {
			p.recordFetch(symbol, string(models.SourceLive))
			return s, nil
		}
	}

	var lastErr error
	for _, rng := range []string{p.cfg.PrimaryRange, p.cfg.FallbackRange} {
		bars, err := p.window(ctx, symbol, rng)
		if err != nil {
			lastErr = err
			p.l.Warn("market fetch failed",
				applogger.String("symbol", symbol),
				applogger.String("range", rng),
				applogger.Error(err),
			)
			if errors.Is(err, yahoo.ErrUnknownSymbol) {
				break
			}
			continue
		}
		if len(bars) == 0 {
			p.l.Debug("market window empty",
				applogger.String("symbol", symbol),
				applogger.String("range", rng),
			)
			continue
		}

		s := &models.PriceSeries{
			Symbol:    symbol,
			Bars:      bars,
			Source:    models.SourceLive,
			Range:     rng,
			FetchedAt: p.now(),
		}
		p.store(ctx, s)
		p.recordFetch(symbol, string(models.SourceLive))
		if p.metrics != nil {
			p.metrics.RecordLastClose(symbol, bars[len(bars)-1].Close)
		}
		return s, nil
	}

	if interactive && p.cfg.SyntheticFallback {
		p.l.Warn("serving synthetic series",
			applogger.String("symbol", symbol),
			applogger.Error(lastErr),
		)
		p.recordFetch(symbol, string(models.SourceSynthetic))
		return p.synth.Series(symbol), nil
	}

	p.recordFetch(symbol, "unavailable")
	if lastErr != nil {
		return nil, fmt.Errorf("%w: %s: %w", models.ErrDataUnavailable, symbol, lastErr)
	}
	return nil, fmt.Errorf("%w: %s", models.ErrDataUnavailable, symbol)
}

func (p *Provider) window(ctx context.Context, symbol, rng string) ([]models.Bar, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()
	return p.src.DailyBars(ctx, symbol, rng)
}

// NormalizeSymbol trims and upper-cases a ticker. Yahoo tickers are
// case-insensitive.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func seriesKey(symbol string) string {
	return cache.Key("series", symbol)
}

func (p *Provider) cached(ctx context.Context, symbol string) (*models.PriceSeries, bool) {
	if p.cache == nil || p.cfg.CacheTTL <= 0 {
		return nil, false
	}
	b, ok, err := p.cache.GetBytes(ctx, seriesKey(symbol))
	if err != nil {
		p.l.Warn("series cache read failed", applogger.String("symbol", symbol), applogger.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var s models.PriceSeries
	if err := json.Unmarshal(b, &s); err != nil || s.Len() == 0 {
		return nil, false
	}
	return &s, true
}

func (p *Provider) store(ctx context.Context, s *models.PriceSeries) {
	if p.cache == nil || p.cfg.CacheTTL <= 0 {
		return
	}
	b, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := p.cache.SetBytes(ctx, seriesKey(s.Symbol), b, p.cfg.CacheTTL); err != nil {
		p.l.Warn("series cache write failed", applogger.String("symbol", s.Symbol), applogger.Error(err))
	}
}

func (p *Provider) recordFetch(symbol, source string) {
	if p.metrics != nil {
		p.metrics.RecordFetch(symbol, source)
	}
}

func (p *Provider) recordLatency(op string, start time.Time) {
	if p.metrics != nil {
		p.metrics.RecordLatency(op, p.now().Sub(start).Seconds())
	}
}
