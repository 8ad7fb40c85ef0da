package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"StockPulse/internal/domain/models"
	applogger "StockPulse/pkg/logger"
)

// Refresher re-reads a symbol from upstream and refreshes the cache.
type Refresher interface {
	Refresh(ctx context.Context, symbol string) (*models.PriceSeries, error)
}

// Prefetcher keeps the series cache warm for a fixed list of symbols on a
// cron schedule.
type Prefetcher struct {
	cron    *cron.Cron
	src     Refresher
	symbols []string
	timeout time.Duration
	l       *applogger.Logger
}

func NewPrefetcher(src Refresher, symbols []string, timeout time.Duration, l *applogger.Logger) *Prefetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if l == nil {
		l = applogger.NewNop()
	}
	return &Prefetcher{
		cron:    cron.New(),
		src:     src,
		symbols: symbols,
		timeout: timeout,
		l:       l,
	}
}

// Schedule registers the warm-up job with a standard 5-field cron spec.
func (p *Prefetcher) Schedule(spec string) error {
	if _, err := p.cron.AddFunc(spec, func() { _ = p.RunOnce(context.Background()) }); err != nil {
		return fmt.Errorf("register prefetch %q: %w", spec, err)
	}
	return nil
}

func (p *Prefetcher) Start() {
	p.cron.Start()
	p.l.Info("prefetcher started", applogger.Strings("symbols", p.symbols))
}

// Stop waits for a running job to finish.
func (p *Prefetcher) Stop() {
	<-p.cron.Stop().Done()
	p.l.Info("prefetcher stopped")
}

// RunOnce refreshes every symbol, at most four at a time. It returns the
// number of symbols that failed.
func (p *Prefetcher) RunOnce(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	results := make([]error, len(p.symbols))
	var g errgroup.Group
	g.SetLimit(4)
	for i, sym := range p.symbols {
		g.Go(func() error {
			_, results[i] = p.src.Refresh(ctx, sym)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for i, err := range results {
		if err != nil {
			failed++
			p.l.Warn("prefetch failed", applogger.String("symbol", p.symbols[i]), applogger.Error(err))
		}
	}
	p.l.Info("prefetch done",
		applogger.Int("symbols", len(p.symbols)),
		applogger.Int("failed", failed),
	)
	return failed
}
