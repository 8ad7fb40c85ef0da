package chart

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPulse/internal/domain/models"
)

func TestClassifyDays(t *testing.T) {
	got := ClassifyDays([]float64{100, 95, 110})
	assert.Equal(t, []Direction{Flat, Loss, Profit}, got)
}

func TestClassifyDaysTieIsProfit(t *testing.T) {
	got := ClassifyDays([]float64{100, 100, 99.99, 99.99})
	assert.Equal(t, []Direction{Flat, Profit, Loss, Profit}, got)
}

func TestClassifyDaysShortInput(t *testing.T) {
	assert.Empty(t, ClassifyDays(nil))
	assert.Equal(t, []Direction{Flat}, ClassifyDays([]float64{42}))
}

func TestDirectionString(t *testing.T) {
	assert.Equal(t, "profit", Profit.String())
	assert.Equal(t, "loss", Loss.String())
	assert.Equal(t, "flat", Flat.String())
}

func TestRenderProducesPNG(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := &models.PriceSeries{Symbol: "TCS.NS"}
	for i, c := range []float64{100, 95, 110, 110, 104} {
		series.Bars = append(series.Bars, models.Bar{Date: start.AddDate(0, 0, i), Close: c})
	}

	r := NewRenderer(Options{Width: 400, Height: 200})
	out, err := r.Render("TCS.NS", series)
	require.NoError(t, err)

	cfg, err := png.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Greater(t, cfg.Width, 0)
	assert.Greater(t, cfg.Height, 0)
}

func TestRenderSingleBar(t *testing.T) {
	series := &models.PriceSeries{Bars: []models.Bar{{Date: time.Now(), Close: 10}}}
	out, err := NewRenderer(Options{Width: 300, Height: 150}).Render("X", series)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestRenderEmptySeries(t *testing.T) {
	_, err := NewRenderer(Options{}).Render("X", &models.PriceSeries{})
	assert.ErrorIs(t, err, models.ErrInsufficientData)
}
