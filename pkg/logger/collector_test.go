package logger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	mu      sync.Mutex
	topic   string
	batches [][]AggregatedLogEntry
	err     error
}

func (p *capturePublisher) PublishMessage(_ context.Context, topic string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topic = topic
	p.batches = append(p.batches, payload.([]AggregatedLogEntry))
	return p.err
}

func (p *capturePublisher) snapshot() [][]AggregatedLogEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]AggregatedLogEntry(nil), p.batches...)
}

func TestCollectorFoldsDuplicates(t *testing.T) {
	pub := &capturePublisher{}
	c := NewLogCollector(&CollectionConfig{
		TimeInterval:   time.Hour,
		CountThreshold: 100,
		Topic:          "errors",
		Publisher:      pub,
	})
	defer c.Close()

	fields := map[string]interface{}{"symbol": "TCS.NS"}
	c.AddLog("error", "fetch failed", fields, "market/provider.go:10")
	c.AddLog("error", "fetch failed", fields, "market/provider.go:10")
	c.AddLog("error", "render failed", nil, "chart/renderer.go:20")
	c.Flush()

	batches := pub.snapshot()
	require.Len(t, batches, 1)
	assert.Equal(t, "errors", pub.topic)
	require.Len(t, batches[0], 2)

	counts := map[string]int{}
	for _, e := range batches[0] {
		counts[e.Message] = e.Count
	}
	assert.Equal(t, 2, counts["fetch failed"])
	assert.Equal(t, 1, counts["render failed"])
}

func TestCollectorFlushesOnThreshold(t *testing.T) {
	pub := &capturePublisher{}
	c := NewLogCollector(&CollectionConfig{
		TimeInterval:   time.Hour,
		CountThreshold: 2,
		Publisher:      pub,
	})

	c.AddLog("error", "a", nil, "x")
	c.AddLog("error", "b", nil, "x")
	c.Close()

	batches := pub.snapshot()
	require.NotEmpty(t, batches)
	assert.Len(t, batches[0], 2)
}

func TestCollectorSurvivesPublishError(t *testing.T) {
	pub := &capturePublisher{err: errors.New("broker down")}
	c := NewLogCollector(&CollectionConfig{TimeInterval: time.Hour, Publisher: pub})

	c.AddLog("error", "a", nil, "x")
	assert.NotPanics(t, c.Flush)
	c.Close()
}

func TestLoggerErrorFeedsCollector(t *testing.T) {
	pub := &capturePublisher{}
	l := NewNop()
	l.AddCollector(&CollectionConfig{TimeInterval: time.Hour, Publisher: pub})

	l.Error("upstream failed", String("symbol", "INFY.NS"), Error(errors.New("timeout")))
	l.Warn("not collected")
	require.NoError(t, l.Close())

	batches := pub.snapshot()
	require.Len(t, batches, 1)
	require.Len(t, batches[0], 1)
	e := batches[0][0]
	assert.Equal(t, "upstream failed", e.Message)
	assert.Equal(t, "INFY.NS", e.Fields["symbol"])
	assert.Equal(t, "timeout", e.Fields["error"])
}
