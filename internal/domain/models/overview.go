package models

import (
	"strings"
	"time"
)

// OverviewRequest is bound from the page and API query/form parameters.
type OverviewRequest struct {
	Stock   string `query:"stock" form:"stock" json:"stock" validate:"required,max=32,printascii"`
	Predict bool   `query:"predict" form:"predict" json:"predict"`

	defaultStock string
}

// NewOverviewRequest returns a request that falls back to defaultStock when
// no symbol is supplied.
func NewOverviewRequest(defaultStock string) *OverviewRequest {
	return &OverviewRequest{defaultStock: defaultStock}
}

// SetDefaults is called by creasty/defaults after binding.
func (r *OverviewRequest) SetDefaults() {
	r.Stock = strings.TrimSpace(r.Stock)
	if r.Stock == "" {
		r.Stock = r.defaultStock
	}
}

// Overview is everything one page view shows.
type Overview struct {
	Symbol      string       `json:"symbol"`
	Source      Source       `json:"source"`
	Range       string       `json:"range"`
	Summary     TrendSummary `json:"summary"`
	Prediction  *float64     `json:"prediction"`
	PredictNote string       `json:"predict_note,omitempty"`
	ChartID     string       `json:"chart_id"`
	ChartURL    string       `json:"chart_url"`
	Bars        int          `json:"bars"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// Synthetic reports whether the overview was built from generated data.
func (o *Overview) Synthetic() bool {
	return o.Source == SourceSynthetic
}
