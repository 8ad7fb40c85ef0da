package service

import "StockPulse/internal/domain/models"

// Predictor estimates the next close from the latest bar's open, high, low and volume.
type Predictor interface {
	PredictNext(open, high, low, volume float64) float64
}

// ChartRenderer draws a series as a PNG image.
type ChartRenderer interface {
	Render(symbol string, series *models.PriceSeries) ([]byte, error)
}
