package api

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/repository"
	"StockPulse/internal/service/cache"
	"StockPulse/internal/service/ratelimit"
	"StockPulse/internal/usecase"
	xhttp "StockPulse/pkg/http"
	xlogger "StockPulse/pkg/logger"
)

type stubMarket struct {
	symbols []string
	series  func(symbol string) (*models.PriceSeries, error)
}

func (m *stubMarket) Fetch(_ context.Context, symbol string) (*models.PriceSeries, error) {
	m.symbols = append(m.symbols, symbol)
	return m.series(symbol)
}

type stubRenderer struct{ calls int }

func (r *stubRenderer) Render(string, *models.PriceSeries) ([]byte, error) {
	r.calls++
	return []byte("\x89PNG fake"), nil
}

type constPredictor float64

func (p constPredictor) PredictNext(float64, float64, float64, float64) float64 { return float64(p) }

func twoBars(symbol string, source models.Source) *models.PriceSeries {
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &models.PriceSeries{
		Symbol: symbol,
		Source: source,
		Range:  "1mo",
		Bars: []models.Bar{
			{Date: d, Open: 99, High: 101, Low: 98, Close: 100, Volume: 1000},
			{Date: d.AddDate(0, 0, 1), Open: 100.5, High: 106, Low: 100, Close: 105.456, Volume: 2500},
		},
	}
}

type fixture struct {
	e        *echo.Echo
	market   *stubMarket
	renderer *stubRenderer
}

func newFixture(t *testing.T, withModel bool, limiter *ratelimit.Limiter, series func(string) (*models.PriceSeries, error)) *fixture {
	t.Helper()
	market := &stubMarket{series: series}
	rend := &stubRenderer{}
	charts := repository.NewChartStore(cache.NewTTLCache(), time.Minute)

	var uc *usecase.MarketOverview
	if withModel {
		uc = usecase.NewMarketOverview(market, constPredictor(107.3), rend, charts, nil, nil)
	} else {
		uc = usecase.NewMarketOverview(market, nil, rend, charts, nil, nil)
	}

	tr, err := NewTemplateRenderer()
	require.NoError(t, err)

	var h *OverviewHandler
	if limiter != nil {
		h = NewOverviewHandler(xlogger.NewNop(), uc, charts, limiter, "TCS.NS")
	} else {
		h = NewOverviewHandler(xlogger.NewNop(), uc, charts, nil, "TCS.NS")
	}
	srv := xhttp.NewServer(h, xhttp.WithRenderer(tr))
	return &fixture{e: srv.Echo(), market: market, renderer: rend}
}

func live(symbol string) (*models.PriceSeries, error) {
	return twoBars(symbol, models.SourceLive), nil
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func TestHomeDefaultsSymbol(t *testing.T) {
	f := newFixture(t, true, nil, live)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"TCS.NS"}, f.market.symbols)

	body := rec.Body.String()
	assert.Contains(t, body, "<h1>TCS.NS</h1>")
	assert.Contains(t, body, "105.46")
	// html/template escapes "+" in text nodes
	assert.Contains(t, body, "&#43;5.46 (&#43;5.46%)")
	assert.Contains(t, html.UnescapeString(body), "+5.46 (+5.46%)")
	assert.Contains(t, body, "Bullish")
	assert.Contains(t, body, `class="green"`)
	assert.NotContains(t, body, "Predicted close", "GET without predict shows no prediction")
	assert.Contains(t, body, `src="/charts/`)
}

func TestHomePostPredicts(t *testing.T) {
	f := newFixture(t, true, nil, live)

	form := url.Values{"predict": {"true"}}
	req := httptest.NewRequest(http.MethodPost, "/?stock=INFY.NS", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := f.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"INFY.NS"}, f.market.symbols)
	assert.Contains(t, rec.Body.String(), "Predicted close")
	assert.Contains(t, rec.Body.String(), "107.30")
}

func TestHomePredictWithoutModel(t *testing.T) {
	f := newFixture(t, false, nil, live)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/?stock=TCS.NS&predict=true", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), usecase.NotePredictionUnavailable)
}

func TestHomeSyntheticShowsDisclaimer(t *testing.T) {
	f := newFixture(t, true, nil, func(s string) (*models.PriceSeries, error) {
		return twoBars(s, models.SourceSynthetic), nil
	})

	rec := f.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), usecase.NoteSyntheticData)
}

func TestHomeDegradedResponses(t *testing.T) {
	tests := []struct {
		name   string
		series func(string) (*models.PriceSeries, error)
	}{
		{"unavailable", func(s string) (*models.PriceSeries, error) {
			return nil, fmt.Errorf("fetch: %w", models.ErrDataUnavailable)
		}},
		{"single bar", func(s string) (*models.PriceSeries, error) {
			ps := twoBars(s, models.SourceLive)
			ps.Bars = ps.Bars[:1]
			return ps, nil
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, true, nil, tt.series)

			rec := f.do(httptest.NewRequest(http.MethodGet, "/?stock=NOPE", nil))
			assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
			assert.True(t, strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMETextPlain))
			assert.Contains(t, rec.Body.String(), "NOPE")
			assert.Zero(t, f.renderer.calls)
		})
	}
}

func TestHomeValidation(t *testing.T) {
	f := newFixture(t, true, nil, live)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/?stock="+strings.Repeat("A", 40), nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, f.market.symbols)
}

func TestAPIOverview(t *testing.T) {
	f := newFixture(t, true, nil, live)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/overview?stock=TCS.NS&predict=true", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"symbol":"TCS.NS"`)
	assert.Contains(t, body, `"source":"live"`)
	assert.Contains(t, body, `"prediction":107.3`)
	assert.Contains(t, body, `"trend":"Bullish"`)
}

func TestAPIOverviewUnavailable(t *testing.T) {
	f := newFixture(t, true, nil, func(string) (*models.PriceSeries, error) {
		return nil, models.ErrDataUnavailable
	})

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/overview?stock=NOPE", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_DATA_UNAVAILABLE")
}

func TestAPIOverviewInsufficient(t *testing.T) {
	f := newFixture(t, true, nil, func(s string) (*models.PriceSeries, error) {
		return &models.PriceSeries{Symbol: s}, nil
	})

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/overview?stock=NEW", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_INSUFFICIENT_DATA")
}

func TestChartRoundTrip(t *testing.T) {
	f := newFixture(t, true, nil, live)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/overview", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	i := strings.Index(rec.Body.String(), `"chart_url":"`)
	require.Positive(t, i)
	rest := rec.Body.String()[i+len(`"chart_url":"`):]
	chartURL := rest[:strings.Index(rest, `"`)]

	rec = f.do(httptest.NewRequest(http.MethodGet, chartURL, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderCacheControl), "immutable")
	assert.Equal(t, "\x89PNG fake", rec.Body.String())
}

func TestChartUnknown(t *testing.T) {
	f := newFixture(t, true, nil, live)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/charts/6f1c1f5e-8a2c-4a3e-9a55-2f4a7e0d9b10.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	f := newFixture(t, false, nil, live)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","model_loaded":false}`, rec.Body.String())
}

func TestRateLimit(t *testing.T) {
	f := newFixture(t, true, ratelimit.New(1, 0.0001), live)

	assert.Equal(t, http.StatusOK, f.do(httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	assert.Equal(t, http.StatusTooManyRequests, f.do(httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	assert.Equal(t, http.StatusOK, f.do(httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code, "health is not limited")
}
