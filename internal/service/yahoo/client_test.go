package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chartJSON = `{"chart":{"result":[{
  "timestamp":[1704326400,1704153600,1704240000,1704412800],
  "indicators":{"quote":[{
    "open":  [103,100,null,104],
    "high":  [106,102,null,107],
    "low":   [101,99,null,103],
    "close": [105,101,null,106],
    "volume":[1300,1000,null,null]
  }]}
}],"error":null}}`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, time.Second, "")
}

func TestDailyBarsParsesAndSorts(t *testing.T) {
	var path, interval, rng, ua string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		interval = r.URL.Query().Get("interval")
		rng = r.URL.Query().Get("range")
		ua = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(chartJSON))
	})

	bars, err := c.DailyBars(context.Background(), "TCS.NS", "1mo")
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/TCS.NS", path)
	assert.Equal(t, "1d", interval)
	assert.Equal(t, "1mo", rng)
	assert.Contains(t, ua, "Mozilla/5.0")

	require.Len(t, bars, 3, "null bar is skipped")
	assert.Equal(t, 101.0, bars[0].Close)
	assert.Equal(t, 105.0, bars[1].Close)
	assert.Equal(t, 106.0, bars[2].Close)
	assert.True(t, bars[0].Date.Before(bars[1].Date))
	assert.Equal(t, 0.0, bars[2].Volume, "missing volume is zero")
}

func TestDailyBarsEmptyResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":[],"error":null}}`))
	})

	bars, err := c.DailyBars(context.Background(), "TCS.NS", "1mo")
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestDailyBarsUnknownSymbol(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	})

	_, err := c.DailyBars(context.Background(), "NOPE", "1mo")
	assert.ErrorIs(t, err, ErrUnknownSymbol)
}

func TestDailyBarsAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Bad Request","description":"Invalid range"}}}`))
	})

	_, err := c.DailyBars(context.Background(), "TCS.NS", "7y")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid range")
}

func TestDailyBarsServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.DailyBars(context.Background(), "TCS.NS", "1mo")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnknownSymbol)
}
