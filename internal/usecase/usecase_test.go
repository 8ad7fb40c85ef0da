package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/repository"
	"StockPulse/internal/service/cache"
	"StockPulse/internal/services/predictor"
)

type stubMarket struct {
	series *models.PriceSeries
	err    error
}

func (m stubMarket) Fetch(context.Context, string) (*models.PriceSeries, error) {
	return m.series, m.err
}

type countingRenderer struct {
	calls int
	err   error
}

func (r *countingRenderer) Render(string, *models.PriceSeries) ([]byte, error) {
	r.calls++
	return []byte("png"), r.err
}

type fixedPredictor float64

func (p fixedPredictor) PredictNext(open, high, low, volume float64) float64 { return float64(p) }

type recordedPrediction struct {
	symbol string
	value  float64
}

type spyMetrics struct {
	predictions []recordedPrediction
}

func (m *spyMetrics) RecordFetch(string, string) {}
func (m *spyMetrics) RecordPrediction(symbol string, v float64) {
	m.predictions = append(m.predictions, recordedPrediction{symbol, v})
}
func (m *spyMetrics) RecordLastClose(string, float64) {}
func (m *spyMetrics) RecordLatency(string, float64)   {}

func series(closes ...float64) *models.PriceSeries {
	s := &models.PriceSeries{Symbol: "TCS.NS", Source: models.SourceLive, Range: "1mo"}
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		s.Bars = append(s.Bars, models.Bar{Date: d.AddDate(0, 0, i), Open: c - 1, High: c + 2, Low: c - 2, Close: c, Volume: 1000})
	}
	return s
}

func newOverview(m stubMarket, p fixedPredictor, usePredictor bool, r *countingRenderer, spy *spyMetrics) *MarketOverview {
	store := repository.NewChartStore(cache.NewTTLCache(), time.Minute)
	if !usePredictor {
		return NewMarketOverview(m, nil, r, store, spy, nil)
	}
	return NewMarketOverview(m, p, r, store, spy, nil)
}

func TestBuildHappyPath(t *testing.T) {
	r := &countingRenderer{}
	spy := &spyMetrics{}
	uc := newOverview(stubMarket{series: series(100, 105)}, 106.5, true, r, spy)

	ov, err := uc.Build(context.Background(), "TCS.NS", true)
	require.NoError(t, err)

	assert.Equal(t, "TCS.NS", ov.Symbol)
	assert.Equal(t, models.SourceLive, ov.Source)
	assert.Equal(t, 105.0, ov.Summary.TodayClose)
	assert.Equal(t, 5.0, ov.Summary.Change)
	assert.Equal(t, models.TrendBullish, ov.Summary.Label)
	require.NotNil(t, ov.Prediction)
	assert.Equal(t, 106.5, *ov.Prediction)
	assert.Empty(t, ov.PredictNote)
	assert.Equal(t, 1, r.calls)
	assert.NotEmpty(t, ov.ChartID)
	assert.Equal(t, "/charts/"+ov.ChartID+".png", ov.ChartURL)
	assert.Equal(t, []recordedPrediction{{"TCS.NS", 106.5}}, spy.predictions)
}

func TestBuildWithoutPredictFlag(t *testing.T) {
	uc := newOverview(stubMarket{series: series(100, 95)}, 1, true, &countingRenderer{}, &spyMetrics{})

	ov, err := uc.Build(context.Background(), "TCS.NS", false)
	require.NoError(t, err)
	assert.Nil(t, ov.Prediction)
	assert.Equal(t, models.TrendBearish, ov.Summary.Label)
	assert.Equal(t, -5.0, ov.Summary.Change)
	assert.Equal(t, -5.0, ov.Summary.PercentChange)
}

func TestBuildPredictWithoutModel(t *testing.T) {
	uc := newOverview(stubMarket{series: series(100, 101)}, 0, false, &countingRenderer{}, &spyMetrics{})
	assert.False(t, uc.PredictionEnabled())

	ov, err := uc.Build(context.Background(), "TCS.NS", true)
	require.NoError(t, err)
	assert.Nil(t, ov.Prediction)
	assert.Equal(t, NotePredictionUnavailable, ov.PredictNote)
}

func TestBuildFailsClosedWithoutRendering(t *testing.T) {
	tests := []struct {
		name   string
		market stubMarket
		want   error
	}{
		{"unavailable", stubMarket{err: fmt.Errorf("wrap: %w", models.ErrDataUnavailable)}, models.ErrDataUnavailable},
		{"one bar", stubMarket{series: series(100)}, models.ErrInsufficientData},
		{"empty", stubMarket{series: series()}, models.ErrInsufficientData},
		{"zero previous close", stubMarket{series: series(0, 10)}, models.ErrZeroPreviousClose},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &countingRenderer{}
			uc := newOverview(tt.market, 1, true, r, &spyMetrics{})

			_, err := uc.Build(context.Background(), "TCS.NS", true)
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, r.calls)
		})
	}
}

func TestBuildRenderError(t *testing.T) {
	r := &countingRenderer{err: errors.New("font missing")}
	uc := newOverview(stubMarket{series: series(1, 2)}, 1, true, r, &spyMetrics{})

	_, err := uc.Build(context.Background(), "TCS.NS", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "font missing")
}

func TestBuildSyntheticIsTagged(t *testing.T) {
	s := series(100, 101)
	s.Source = models.SourceSynthetic
	uc := newOverview(stubMarket{series: s}, 1, true, &countingRenderer{}, &spyMetrics{})

	ov, err := uc.Build(context.Background(), "TCS.NS", false)
	require.NoError(t, err)
	assert.True(t, ov.Synthetic())
}

type stubRefresher struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]bool
}

func (r *stubRefresher) Refresh(_ context.Context, symbol string) (*models.PriceSeries, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, symbol)
	if r.fail[symbol] {
		return nil, models.ErrDataUnavailable
	}
	return series(1, 2), nil
}

func TestPrefetcherRunOnce(t *testing.T) {
	ref := &stubRefresher{fail: map[string]bool{"BAD": true}}
	p := NewPrefetcher(ref, []string{"TCS.NS", "INFY.NS", "BAD"}, time.Second, nil)

	failed := p.RunOnce(context.Background())
	assert.Equal(t, 1, failed)
	assert.ElementsMatch(t, []string{"TCS.NS", "INFY.NS", "BAD"}, ref.calls)
}

func TestPrefetcherSchedule(t *testing.T) {
	p := NewPrefetcher(&stubRefresher{}, []string{"TCS.NS"}, time.Second, nil)
	assert.NoError(t, p.Schedule("*/5 * * * *"))
	assert.Error(t, p.Schedule("not a cron"))
	p.Start()
	p.Stop()
}

const trainingCSV = `Date,Open,High,Low,Close,Volume
2024-01-01,100,104,98,102,1000
2024-01-02,102,106,101,105,1500
2024-01-03,105,107,100,101,1200
2024-01-04,101,103,97,98,1800
2024-01-05,98,102,96,101,1100
2024-01-08,101,108,100,107,2100
2024-01-09,107,109,104,105,1600
2024-01-10,,109,104,105,1600
2024-01-11,105,110,103,109,1900
`

func TestTrainingFromCSV(t *testing.T) {
	out := filepath.Join(t.TempDir(), "model", "stock_model.json")
	tr := NewTraining(nil)

	res, err := tr.FromCSV(strings.NewReader(trainingCSV), "TCS.NS", out)
	require.NoError(t, err)
	assert.Equal(t, 8, res.Rows)
	assert.Equal(t, 1, res.Skipped)

	m, err := predictor.Load(out)
	require.NoError(t, err)
	assert.Equal(t, "TCS.NS", m.Symbol)
	assert.Equal(t, 8, m.Samples)
	assert.Len(t, m.Coefficients, 4)
}

func TestTrainingTooFewRows(t *testing.T) {
	csv := "Open,High,Low,Close,Volume\n1,2,0.5,1.5,10\n2,3,1,2.5,20\n"
	_, err := NewTraining(nil).FromCSV(strings.NewReader(csv), "X", filepath.Join(t.TempDir(), "m.json"))
	assert.ErrorIs(t, err, models.ErrInsufficientData)
}

type stubHistory struct {
	bars []models.Bar
}

func (h stubHistory) GetBars(context.Context, string, time.Time, time.Time) ([]models.Bar, error) {
	return h.bars, nil
}

func TestTrainingFromHistory(t *testing.T) {
	ds, err := predictor.ReadCSV(strings.NewReader(trainingCSV))
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "m.json")
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	res, err := NewTraining(nil).FromHistory(context.Background(), stubHistory{bars: ds.Bars}, "TCS.NS", from, from.AddDate(0, 1, 0), out)
	require.NoError(t, err)
	assert.Equal(t, 8, res.Rows)

	_, err = NewTraining(nil).FromHistory(context.Background(), stubHistory{}, "TCS.NS", from.AddDate(0, 1, 0), from, out)
	assert.Error(t, err)
}

type captureWriter struct {
	symbol string
	bars   []models.Bar
}

func (w *captureWriter) InsertBars(_ context.Context, symbol string, bars []models.Bar) (int, error) {
	w.symbol, w.bars = symbol, bars
	return len(bars), nil
}

func TestTrainingImport(t *testing.T) {
	w := &captureWriter{}
	n, err := NewTraining(nil).Import(context.Background(), strings.NewReader(trainingCSV), "TCS.NS", w)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, "TCS.NS", w.symbol)
	assert.False(t, w.bars[0].Date.IsZero())
}
