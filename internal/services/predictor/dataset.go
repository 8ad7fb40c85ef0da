package predictor

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"StockPulse/internal/domain/models"
	"StockPulse/pkg/util"
)

var requiredColumns = []string{"open", "high", "low", "volume", "close"}

// Dataset is the parsed training CSV.
type Dataset struct {
	Bars    []models.Bar
	Skipped int // rows with empty or "null" values
}

// ReadCSV parses a CSV with a header naming Open, High, Low, Volume and Close
// (any order, any case; other columns such as Date are optional).
func ReadCSV(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}
	dateCol, hasDate := idx["date"]

	ds := &Dataset{}
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		vals := make(map[string]float64, len(requiredColumns))
		skip := false
		for _, col := range requiredColumns {
			i := idx[col]
			if i >= len(rec) || isMissing(rec[i]) {
				skip = true
				break
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %s: %w", line, col, err)
			}
			vals[col] = v
		}
		if skip {
			ds.Skipped++
			continue
		}

		bar := models.Bar{
			Open:   vals["open"],
			High:   vals["high"],
			Low:    vals["low"],
			Close:  vals["close"],
			Volume: vals["volume"],
		}
		if hasDate && dateCol < len(rec) {
			if t, ok := util.ParseTime(strings.TrimSpace(rec[dateCol])); ok {
				bar.Date = t
			}
		}
		ds.Bars = append(ds.Bars, bar)
	}
	return ds, nil
}

func isMissing(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "nan")
}
