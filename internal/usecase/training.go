package usecase

import (
	"context"
	"fmt"
	"io"
	"time"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/services/predictor"
	applogger "StockPulse/pkg/logger"
)

// BarWriter stores imported bars.
type BarWriter interface {
	InsertBars(ctx context.Context, symbol string, bars []models.Bar) (int, error)
}

// Training fits the next-close model offline.
type Training struct {
	l *applogger.Logger
}

func NewTraining(l *applogger.Logger) *Training {
	if l == nil {
		l = applogger.NewNop()
	}
	return &Training{l: l}
}

// TrainResult describes a written model.
type TrainResult struct {
	Model   *predictor.LinearModel
	Rows    int
	Skipped int
	Output  string
}

// FromCSV fits a model on a CSV of daily bars and writes it to output.
func (t *Training) FromCSV(r io.Reader, symbol, output string) (*TrainResult, error) {
	ds, err := predictor.ReadCSV(r)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	if ds.Skipped > 0 {
		t.l.Warn("skipped incomplete rows", applogger.Int("rows", ds.Skipped))
	}
	res, err := t.fit(ds.Bars, symbol, output)
	if err != nil {
		return nil, err
	}
	res.Skipped = ds.Skipped
	return res, nil
}

// FromHistory fits a model on bars read from a history source.
func (t *Training) FromHistory(ctx context.Context, src domrepo.HistorySource, symbol string, from, to time.Time, output string) (*TrainResult, error) {
	if from.After(to) {
		return nil, fmt.Errorf("from must be <= to")
	}
	bars, err := src.GetBars(ctx, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return t.fit(bars, symbol, output)
}

// Import reads a CSV and writes its complete rows to w.
func (t *Training) Import(ctx context.Context, r io.Reader, symbol string, w BarWriter) (int, error) {
	ds, err := predictor.ReadCSV(r)
	if err != nil {
		return 0, fmt.Errorf("read dataset: %w", err)
	}
	n, err := w.InsertBars(ctx, symbol, ds.Bars)
	if err != nil {
		return n, err
	}
	t.l.Info("imported bars",
		applogger.String("symbol", symbol),
		applogger.Int("rows", n),
		applogger.Int("skipped", ds.Skipped),
		applogger.Int("undated", len(ds.Bars)-n),
	)
	return n, nil
}

func (t *Training) fit(bars []models.Bar, symbol, output string) (*TrainResult, error) {
	m, err := predictor.Fit(bars)
	if err != nil {
		return nil, err
	}
	m.Symbol = symbol
	if err := m.Save(output); err != nil {
		return nil, fmt.Errorf("save model: %w", err)
	}
	t.l.Info("model trained",
		applogger.String("symbol", symbol),
		applogger.Int("rows", len(bars)),
		applogger.Float64("r2", m.R2),
		applogger.String("output", output),
	)
	return &TrainResult{Model: m, Rows: len(bars), Output: output}, nil
}
