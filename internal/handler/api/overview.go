package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/service/metrics"
	"StockPulse/internal/usecase"
	xhttp "StockPulse/pkg/http"
	xmw "StockPulse/pkg/http/middleware"
	xlogger "StockPulse/pkg/logger"
)

// OverviewHandler serves the stock page, its JSON twin and rendered charts.
type OverviewHandler struct {
	logger       *xlogger.Logger
	uc           *usecase.MarketOverview
	charts       domrepo.ChartStore
	limiter      xmw.Allower
	defaultStock string
}

func NewOverviewHandler(logger *xlogger.Logger, uc *usecase.MarketOverview, charts domrepo.ChartStore, limiter xmw.Allower, defaultStock string) *OverviewHandler {
	metrics.Register()
	return &OverviewHandler{logger: logger, uc: uc, charts: charts, limiter: limiter, defaultStock: defaultStock}
}

func (h *OverviewHandler) RegisterRoutes(e *echo.Echo) {
	var mw []echo.MiddlewareFunc
	if h.limiter != nil {
		mw = append(mw, xmw.RateLimit(h.limiter, nil))
	}
	e.Match([]string{http.MethodGet, http.MethodPost}, "/", h.Home, mw...)
	e.GET("/api/overview", h.Overview, mw...)
	e.GET("/charts/:id", h.Chart)
	e.GET("/healthz", h.Health)
}

type pageData struct {
	Overview      *models.Overview
	SyntheticNote string
}

// Home renders the HTML page. Data failures produce a plain-text 503.
func (h *OverviewHandler) Home(c echo.Context) error {
	start := time.Now()
	defer metrics.ObservePage("home", start)

	req := models.NewOverviewRequest(h.defaultStock)
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		metrics.PageError("home", "validation")
		return c.String(http.StatusBadRequest, xhttp.FirstMessage(verr))
	}

	ov, err := h.uc.Build(c.Request().Context(), req.Stock, req.Predict)
	if err != nil {
		if reason, ok := degraded(err); ok {
			metrics.PageError("home", reason)
			h.logger.Warn("overview degraded", xlogger.String("symbol", req.Stock), xlogger.Error(err))
			return c.String(http.StatusServiceUnavailable,
				fmt.Sprintf("Market data for %s is temporarily unavailable. Please try again later.", req.Stock))
		}
		metrics.PageError("home", "internal")
		h.logger.Error("overview usecase error", xlogger.String("symbol", req.Stock), xlogger.Error(err))
		return err
	}

	return c.Render(http.StatusOK, "index.html", pageData{Overview: ov, SyntheticNote: usecase.NoteSyntheticData})
}

// Overview returns the same data as the page in the API envelope.
func (h *OverviewHandler) Overview(c echo.Context) error {
	start := time.Now()
	defer metrics.ObservePage("api_overview", start)

	req := models.NewOverviewRequest(h.defaultStock)
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		metrics.PageError("api_overview", "validation")
		return xhttp.BadRequestResponse(c, verr)
	}

	ov, err := h.uc.Build(c.Request().Context(), req.Stock, req.Predict)
	if err != nil {
		reason, ok := degraded(err)
		if !ok {
			reason = "internal"
		}
		metrics.PageError("api_overview", reason)
		h.logger.Error("overview usecase error", xlogger.String("symbol", req.Stock), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(req.Stock, err))
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return xhttp.SuccessResponse(c, ov)
}

// Chart serves a stored PNG. Ids are single-use names, so responses are immutable.
func (h *OverviewHandler) Chart(c echo.Context) error {
	id := strings.TrimSuffix(c.Param("id"), ".png")
	b, ok, err := h.charts.Get(c.Request().Context(), id)
	if err != nil {
		h.logger.Error("chart store error", xlogger.String("id", id), xlogger.Error(err))
		return xhttp.InternalError("chart lookup failed").WithError(err)
	}
	if !ok {
		return xhttp.NotFoundError("chart not found or expired")
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=600, immutable")
	return c.Blob(http.StatusOK, "image/png", b)
}

func (h *OverviewHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":       "ok",
		"model_loaded": h.uc.PredictionEnabled(),
	})
}

// degraded classifies errors caused by missing or unusable market data.
func degraded(err error) (string, bool) {
	switch {
	case errors.Is(err, models.ErrDataUnavailable):
		return "unavailable", true
	case errors.Is(err, models.ErrInsufficientData):
		return "insufficient", true
	case errors.Is(err, models.ErrZeroPreviousClose):
		return "zero_close", true
	}
	return "", false
}

func toAppError(symbol string, err error) *xhttp.AppError {
	switch {
	case errors.Is(err, models.ErrDataUnavailable):
		return xhttp.DataUnavailableError(symbol).WithError(err)
	case errors.Is(err, models.ErrInsufficientData), errors.Is(err, models.ErrZeroPreviousClose):
		return xhttp.InsufficientDataError(symbol).WithError(err)
	}
	return xhttp.InternalError("failed to build overview").WithError(err)
}
