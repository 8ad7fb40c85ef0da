package models

// Trend labels and colors shown on the page.
const (
	TrendBullish = "Bullish"
	TrendBearish = "Bearish"

	ColorBullish = "green"
	ColorBearish = "red"
)

// TrendSummary is the snapshot derived from the two latest bars.
type TrendSummary struct {
	Open           float64 `json:"open"`
	High           float64 `json:"high"`
	Low            float64 `json:"low"`
	Volume         int64   `json:"volume"`
	TodayClose     float64 `json:"today_close"`
	YesterdayClose float64 `json:"yesterday_close"`
	Change         float64 `json:"change"`
	PercentChange  float64 `json:"percent_change"`
	Label          string  `json:"trend"`
	Color          string  `json:"trend_color"`
}

// IsBullish reports whether the day closed strictly higher.
func (t TrendSummary) IsBullish() bool {
	return t.Label == TrendBullish
}
