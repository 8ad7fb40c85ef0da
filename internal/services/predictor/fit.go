package predictor

import (
	"fmt"
	"math"
	"time"

	"github.com/sajari/regression"
	"gonum.org/v1/gonum/mat"

	"StockPulse/internal/domain/models"
)

// MinSamples is the smallest training set Fit accepts: one more than the
// number of parameters (four coefficients and the intercept).
const MinSamples = 6

// MaxCondition bounds the 2-norm condition number of the column-scaled
// design matrix [1, open, high, low, volume].
const MaxCondition = 1e12

// Fit runs ordinary least squares of Close on Open, High, Low and Volume.
func Fit(bars []models.Bar) (*LinearModel, error) {
	if len(bars) < MinSamples {
		return nil, fmt.Errorf("fit on %d rows, need at least %d: %w", len(bars), MinSamples, models.ErrInsufficientData)
	}

	if c := conditionNumber(bars); c > MaxCondition {
		return nil, fmt.Errorf("fit: features are collinear (condition number %.3g)", c)
	}

	r := new(regression.Regression)
	r.SetObserved("close")
	for i, name := range FeatureNames {
		r.SetVar(i, name)
	}
	for _, b := range bars {
		r.Train(regression.DataPoint(b.Close, []float64{b.Open, b.High, b.Low, b.Volume}))
	}
	if err := r.Run(); err != nil {
		return nil, fmt.Errorf("regression: %w", err)
	}

	coeffs := r.GetCoeffs()
	m := &LinearModel{
		Features:     append([]string(nil), FeatureNames...),
		Intercept:    coeffs[0],
		Coefficients: append([]float64(nil), coeffs[1:]...),
		R2:           r.R2,
		Samples:      len(bars),
		TrainedAt:    time.Now().UTC(),
	}
	if math.IsNaN(m.R2) || m.R2 < -r2Tolerance || m.R2 > 1+r2Tolerance {
		return nil, fmt.Errorf("fit: r2 %v outside [0, 1], design is ill-conditioned", m.R2)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("fitted model: %w", err)
	}
	return m, nil
}

const r2Tolerance = 1e-6

// conditionNumber is the 2-norm condition number of the design matrix with
// every column scaled to unit length. A zero or non-finite column gives +Inf.
func conditionNumber(bars []models.Bar) float64 {
	cols := len(FeatureNames) + 1
	x := mat.NewDense(len(bars), cols, nil)
	for i, b := range bars {
		x.SetRow(i, []float64{1, b.Open, b.High, b.Low, b.Volume})
	}
	for j := 0; j < cols; j++ {
		n := mat.Norm(x.ColView(j), 2)
		if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
			return math.Inf(1)
		}
		for i := 0; i < len(bars); i++ {
			x.Set(i, j, x.At(i, j)/n)
		}
	}
	return mat.Cond(x, 2)
}
