package chart

// Direction is a day's move relative to the previous close.
type Direction int

const (
	Flat   Direction = iota // first point, nothing to compare against
	Profit                  // close >= previous close
	Loss                    // close < previous close
)

func (d Direction) String() string {
	switch d {
	case Profit:
		return "profit"
	case Loss:
		return "loss"
	default:
		return "flat"
	}
}

// ClassifyDays labels every close against the one before it. Ties count as
// Profit here, unlike the headline trend label which needs a strict rise.
func ClassifyDays(closes []float64) []Direction {
	out := make([]Direction, len(closes))
	for i := 1; i < len(closes); i++ {
		if closes[i] >= closes[i-1] {
			out[i] = Profit
		} else {
			out[i] = Loss
		}
	}
	return out
}
