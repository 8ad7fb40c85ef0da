package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	PageLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "stockpulse",
			Subsystem: "page",
			Name:      "latency_seconds",
			Help:      "Time to build an overview, by endpoint",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
		},
		[]string{"endpoint"},
	)

	PageErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stockpulse",
			Subsystem: "page",
			Name:      "errors_total",
			Help:      "Overview failures by endpoint and reason",
		},
		[]string{"endpoint", "reason"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(PageLatency, PageErrors)
	})
}

// ObservePage records how long an endpoint took to build its overview.
func ObservePage(endpoint string, start time.Time) {
	PageLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

// PageError counts a failed overview.
func PageError(endpoint, reason string) {
	PageErrors.WithLabelValues(endpoint, reason).Inc()
}
