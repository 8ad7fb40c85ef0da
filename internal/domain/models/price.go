package models

import "time"

// Source tags where a PriceSeries came from.
type Source string

const (
	SourceLive      Source = "live"
	SourceSynthetic Source = "synthetic"
)

// Bar is one daily OHLCV record.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries is a date-ascending run of daily bars for one symbol.
type PriceSeries struct {
	Symbol    string    `json:"symbol"`
	Bars      []Bar     `json:"bars"`
	Source    Source    `json:"source"`
	Range     string    `json:"range"` // upstream window that produced the bars, e.g. "1mo"
	FetchedAt time.Time `json:"fetched_at"`
}

// Len returns the number of bars.
func (s *PriceSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Bars)
}

// Closes returns the closing prices in order.
func (s *PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Last returns the bar n positions from the end (0 is the latest).
func (s *PriceSeries) Last(n int) Bar {
	return s.Bars[len(s.Bars)-1-n]
}

// IsSynthetic reports whether the bars were generated rather than fetched.
func (s *PriceSeries) IsSynthetic() bool {
	return s.Source == SourceSynthetic
}
