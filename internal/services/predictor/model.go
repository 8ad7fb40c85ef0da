package predictor

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/domain/service"
)

// FeatureNames is the fixed input order of the model.
var FeatureNames = []string{"open", "high", "low", "volume"}

// LinearModel maps (open, high, low, volume) to a predicted close:
// Intercept + Σ Coefficients[i] * x[i]. It is never mutated after Load.
type LinearModel struct {
	Features     []string  `json:"features"`
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
	R2           float64   `json:"r2"`
	Samples      int       `json:"samples"`
	Symbol       string    `json:"symbol,omitempty"`
	TrainedAt    time.Time `json:"trained_at"`
}

var _ service.Predictor = (*LinearModel)(nil)

// PredictNext applies the linear map. No scaling, no clamping.
func (m *LinearModel) PredictNext(open, high, low, volume float64) float64 {
	x := [4]float64{open, high, low, volume}
	y := m.Intercept
	for i, c := range m.Coefficients {
		y += c * x[i]
	}
	return y
}

// Validate checks the artifact is usable.
func (m *LinearModel) Validate() error {
	if len(m.Coefficients) != len(FeatureNames) {
		return fmt.Errorf("model has %d coefficients, want %d", len(m.Coefficients), len(FeatureNames))
	}
	if !finite(m.Intercept) {
		return fmt.Errorf("model intercept is not finite")
	}
	for i, c := range m.Coefficients {
		if !finite(c) {
			return fmt.Errorf("model coefficient %d is not finite", i)
		}
	}
	return nil
}

// Load reads and validates a model artifact. A missing file is reported as
// models.ErrModelNotLoaded.
func Load(path string) (*LinearModel, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %w", models.ErrModelNotLoaded, err)
	}
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	var m LinearModel
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode model %s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	}
	return &m, nil
}

// Save writes the artifact atomically (temp file + rename).
func (m *LinearModel) Save(path string) error {
	if err := m.Validate(); err != nil {
		return err
	}
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".model-*.json")
	if err != nil {
		return fmt.Errorf("create temp model: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close model: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
