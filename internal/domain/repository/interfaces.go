package repository

import (
	"context"
	"time"

	"StockPulse/internal/domain/models"
)

// MarketData returns recent daily bars for a symbol.
type MarketData interface {
	Fetch(ctx context.Context, symbol string) (*models.PriceSeries, error)
}

// HistorySource supplies historical bars for offline model fitting.
type HistorySource interface {
	GetBars(ctx context.Context, symbol string, from, to time.Time) ([]models.Bar, error)
}

// ChartStore keeps rendered chart images for a limited time.
type ChartStore interface {
	Put(ctx context.Context, png []byte) (id string, err error)
	Get(ctx context.Context, id string) ([]byte, bool, error)
}

// Metrics records domain-level events.
type Metrics interface {
	RecordFetch(symbol string, source string)
	RecordPrediction(symbol string, value float64)
	RecordLastClose(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
