package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetches     *prometheus.CounterVec
	predictions *prometheus.CounterVec
	lastPredict *prometheus.GaugeVec
	lastClose   *prometheus.GaugeVec
	latency     *prometheus.HistogramVec
}

// New creates a recorder registered on reg (the default registry when nil).
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		fetches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_fetches_total",
				Help: "Price series served, by symbol and source (live, synthetic, unavailable)",
			},
			[]string{"symbol", "source"},
		),
		predictions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_predictions_total",
				Help: "Next-close predictions made",
			},
			[]string{"symbol"},
		),
		lastPredict: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stockpulse_last_prediction",
				Help: "Most recent predicted close for a symbol",
			},
			[]string{"symbol"},
		),
		lastClose: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stockpulse_last_close",
				Help: "Last observed close for a symbol",
			},
			[]string{"symbol"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockpulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

func (r *Recorder) RecordFetch(symbol, source string) {
	r.fetches.WithLabelValues(symbol, source).Inc()
}

func (r *Recorder) RecordPrediction(symbol string, value float64) {
	r.predictions.WithLabelValues(symbol).Inc()
	r.lastPredict.WithLabelValues(symbol).Set(value)
}

func (r *Recorder) RecordLastClose(symbol string, price float64) {
	r.lastClose.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
