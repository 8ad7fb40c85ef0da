package chart

import (
	"bytes"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/domain/service"
)

var (
	lineColor   = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	profitColor = color.RGBA{R: 0x2e, G: 0xcc, B: 0x71, A: 0xff}
	lossColor   = color.RGBA{R: 0xe7, G: 0x4c, B: 0x3c, A: 0xff}
	areaColor   = color.NRGBA{R: 0x34, G: 0x98, B: 0xdb, A: 0x14}
	gridColor   = color.Gray{Y: 0xd0}
)

// Options controls the output image size.
type Options struct {
	Width  vg.Length
	Height vg.Length
	Window string // trailing window described in the title, e.g. "30 Day"
}

// Renderer draws closing-price charts as PNG.
type Renderer struct {
	opts Options
}

// NewRenderer creates a renderer; zero sizes fall back to 1400x600 points.
func NewRenderer(opts Options) *Renderer {
	if opts.Width <= 0 {
		opts.Width = 1400
	}
	if opts.Height <= 0 {
		opts.Height = 600
	}
	if opts.Window == "" {
		opts.Window = "30 Day"
	}
	return &Renderer{opts: opts}
}

var _ service.ChartRenderer = (*Renderer)(nil)

// Render draws the close line, profit/loss markers and the shaded area under
// the curve, and returns the encoded PNG.
func (r *Renderer) Render(symbol string, series *models.PriceSeries) ([]byte, error) {
	if series.Len() == 0 {
		return nil, fmt.Errorf("render %s: %w", symbol, models.ErrInsufficientData)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s – %s Market Trend", symbol, r.opts.Window)
	p.Title.TextStyle.Font.Size = vg.Points(20)
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Price"
	p.X.Tick.Marker = plot.TimeTicks{Format: "Jan 02"}
	// no spines
	p.X.LineStyle.Width = 0
	p.Y.LineStyle.Width = 0

	grid := plotter.NewGrid()
	grid.Vertical.Color = gridColor
	grid.Horizontal.Color = gridColor
	grid.Vertical.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	grid.Horizontal.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	p.Add(grid)

	closes := series.Closes()
	pts := make(plotter.XYs, len(series.Bars))
	floor := closes[0]
	for i, b := range series.Bars {
		pts[i].X = float64(b.Date.Unix())
		pts[i].Y = b.Close
		if b.Close < floor {
			floor = b.Close
		}
	}

	area, err := plotter.NewPolygon(areaUnder(pts, floor))
	if err != nil {
		return nil, fmt.Errorf("area: %w", err)
	}
	area.Color = areaColor
	area.LineStyle.Width = 0
	p.Add(area)

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("line: %w", err)
	}
	line.LineStyle.Width = vg.Points(3)
	line.LineStyle.Color = lineColor
	p.Add(line)
	p.Legend.Add("Closing Price", line)

	var profit, loss plotter.XYs
	for i, d := range ClassifyDays(closes) {
		switch d {
		case Profit:
			profit = append(profit, pts[i])
		case Loss:
			loss = append(loss, pts[i])
		}
	}
	if err := addMarkers(p, profit, profitColor, "Profit Day ▲"); err != nil {
		return nil, err
	}
	if err := addMarkers(p, loss, lossColor, "Loss Day ▼"); err != nil {
		return nil, err
	}

	p.Legend.Top = true
	p.Legend.Left = true
	p.Legend.TextStyle.Font.Size = vg.Points(12)

	wt, err := p.WriterTo(r.opts.Width, r.opts.Height, "png")
	if err != nil {
		return nil, fmt.Errorf("png writer: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func addMarkers(p *plot.Plot, pts plotter.XYs, c color.Color, label string) error {
	if len(pts) == 0 {
		return nil
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("scatter %s: %w", label, err)
	}
	s.GlyphStyle.Color = c
	s.GlyphStyle.Radius = vg.Points(5)
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(s)
	p.Legend.Add(label, s)
	return nil
}

// areaUnder closes the curve down to floor so it can be filled.
func areaUnder(pts plotter.XYs, floor float64) plotter.XYs {
	out := make(plotter.XYs, 0, len(pts)+2)
	out = append(out, pts...)
	out = append(out,
		plotter.XY{X: pts[len(pts)-1].X, Y: floor},
		plotter.XY{X: pts[0].X, Y: floor},
	)
	return out
}
