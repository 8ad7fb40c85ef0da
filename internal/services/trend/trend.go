package trend

import (
	"fmt"

	"github.com/shopspring/decimal"

	"StockPulse/internal/domain/models"
)

var hundred = decimal.NewFromInt(100)

// Round2 rounds a money value to two decimal places, half away from zero.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Summarize derives the latest OHLCV snapshot and day-over-day trend from the
// last two bars of a series.
//
// change  = round(close[-1] - close[-2], 2)
// percent = round(change / close[-2] * 100, 2)
//
// The label is Bullish only when change > 0; a flat day is Bearish.
func Summarize(series *models.PriceSeries) (models.TrendSummary, error) {
	if series.Len() < 2 {
		return models.TrendSummary{}, fmt.Errorf("summarize %d bars: %w", series.Len(), models.ErrInsufficientData)
	}

	today := series.Last(0)
	yesterday := series.Last(1)

	prev := decimal.NewFromFloat(yesterday.Close)
	if prev.IsZero() {
		return models.TrendSummary{}, fmt.Errorf("summarize %s: %w", series.Symbol, models.ErrZeroPreviousClose)
	}

	change := decimal.NewFromFloat(today.Close).Sub(prev).Round(2)
	percent := change.Div(prev).Mul(hundred).Round(2)

	out := models.TrendSummary{
		Open:           Round2(today.Open),
		High:           Round2(today.High),
		Low:            Round2(today.Low),
		Volume:         int64(today.Volume),
		TodayClose:     Round2(today.Close),
		YesterdayClose: Round2(yesterday.Close),
		Change:         change.InexactFloat64(),
		PercentChange:  percent.InexactFloat64(),
	}
	if change.IsPositive() {
		out.Label, out.Color = models.TrendBullish, models.ColorBullish
	} else {
		out.Label, out.Color = models.TrendBearish, models.ColorBearish
	}
	return out, nil
}
