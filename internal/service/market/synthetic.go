package market

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"StockPulse/internal/domain/models"
)

const (
	syntheticDays = 30
	minBasePrice  = 100.0
	maxBasePrice  = 3000.0
	dailyVol      = 0.015
)

// Synthesizer generates a plausible random-walk series when no live data
// exists. Output is always tagged models.SourceSynthetic.
type Synthesizer struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

func NewSynthesizer(seed uint64) *Synthesizer {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Synthesizer{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now: time.Now,
	}
}

// Series returns syntheticDays weekday bars ending on the latest weekday.
func (s *Synthesizer) Series(symbol string) *models.PriceSeries {
	s.mu.Lock()
	defer s.mu.Unlock()

	days := weekdaysBack(s.now().UTC(), syntheticDays)
	base := minBasePrice + s.rng.Float64()*(maxBasePrice-minBasePrice)

	bars := make([]models.Bar, len(days))
	prev := base
	for i, d := range days {
		open := prev
		cl := math.Max(1, open*(1+s.rng.NormFloat64()*dailyVol))
		hi := math.Max(open, cl) * (1 + s.rng.Float64()*0.01)
		lo := math.Min(open, cl) * (1 - s.rng.Float64()*0.01)
		bars[i] = models.Bar{
			Date:   d,
			Open:   open,
			High:   hi,
			Low:    lo,
			Close:  cl,
			Volume: math.Round(1e5 + s.rng.Float64()*4.9e6),
		}
		prev = cl
	}

	return &models.PriceSeries{
		Symbol:    symbol,
		Bars:      bars,
		Source:    models.SourceSynthetic,
		Range:     "synthetic",
		FetchedAt: s.now(),
	}
}

// weekdaysBack returns n weekday midnights (UTC), ascending, ending at or before t.
func weekdaysBack(t time.Time, n int) []time.Time {
	out := make([]time.Time, n)
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	for i := n - 1; i >= 0; {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			out[i] = d
			i--
		}
		d = d.AddDate(0, 0, -1)
	}
	return out
}
