package usecase

import (
	"context"
	"fmt"
	"time"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	domsvc "StockPulse/internal/domain/service"
	"StockPulse/internal/services/trend"
	applogger "StockPulse/pkg/logger"
)

const (
	NotePredictionUnavailable = "prediction unavailable"
	NoteSyntheticData         = "market data unavailable; showing simulated prices"
)

// MarketOverview runs fetch, summarize, predict and render for one symbol.
type MarketOverview struct {
	market    domrepo.MarketData
	predictor domsvc.Predictor // nil when no model is loaded
	renderer  domsvc.ChartRenderer
	charts    domrepo.ChartStore
	metrics   domrepo.Metrics
	chartPath string
	l         *applogger.Logger
	now       func() time.Time
}

func NewMarketOverview(
	market domrepo.MarketData,
	predictor domsvc.Predictor,
	renderer domsvc.ChartRenderer,
	charts domrepo.ChartStore,
	metrics domrepo.Metrics,
	l *applogger.Logger,
) *MarketOverview {
	if l == nil {
		l = applogger.NewNop()
	}
	return &MarketOverview{
		market:    market,
		predictor: predictor,
		renderer:  renderer,
		charts:    charts,
		metrics:   metrics,
		chartPath: "/charts/",
		l:         l,
		now:       time.Now,
	}
}

// PredictionEnabled reports whether a model is loaded.
func (uc *MarketOverview) PredictionEnabled() bool {
	return uc.predictor != nil
}

// Build returns the overview for symbol. Data errors (models.ErrDataUnavailable,
// models.ErrInsufficientData, models.ErrZeroPreviousClose) are returned before
// anything is rendered.
func (uc *MarketOverview) Build(ctx context.Context, symbol string, predict bool) (*models.Overview, error) {
	series, err := uc.market.Fetch(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	if series.Len() < 2 {
		return nil, fmt.Errorf("%s has %d bars: %w", symbol, series.Len(), models.ErrInsufficientData)
	}

	summary, err := trend.Summarize(series)
	if err != nil {
		return nil, fmt.Errorf("summarize %s: %w", symbol, err)
	}

	ov := &models.Overview{
		Symbol:      series.Symbol,
		Source:      series.Source,
		Range:       series.Range,
		Summary:     summary,
		Bars:        series.Len(),
		GeneratedAt: uc.now().UTC(),
	}

	if predict {
		uc.predict(ov)
	}

	start := uc.now()
	png, err := uc.renderer.Render(series.Symbol, series)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", symbol, err)
	}
	uc.observe("render", start)

	id, err := uc.charts.Put(ctx, png)
	if err != nil {
		return nil, fmt.Errorf("store chart %s: %w", symbol, err)
	}
	ov.ChartID = id
	ov.ChartURL = uc.chartPath + id + ".png"

	return ov, nil
}

func (uc *MarketOverview) predict(ov *models.Overview) {
	if uc.predictor == nil {
		ov.PredictNote = NotePredictionUnavailable
		return
	}
	s := ov.Summary
	start := uc.now()
	p := uc.predictor.PredictNext(s.Open, s.High, s.Low, float64(s.Volume))
	uc.observe("predict", start)
	ov.Prediction = &p
	if uc.metrics != nil {
		uc.metrics.RecordPrediction(ov.Symbol, p)
	}
	uc.l.Debug("prediction",
		applogger.String("symbol", ov.Symbol),
		applogger.Float64("value", p),
	)
}

func (uc *MarketOverview) observe(op string, start time.Time) {
	if uc.metrics != nil {
		uc.metrics.RecordLatency(op, uc.now().Sub(start).Seconds())
	}
}
