// Package indicator derives technical indicator columns from a price series.
//
// Every indicator follows the same contract: Compute appends one or more named
// columns to the series and reports their names, and PlotColumns lists every
// column a chart should draw for it. Entries inside an indicator's warm-up are
// NaN, never zero.
package indicator

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"stock-trader-go/internal/series"
)

// ErrInvalidWindow is returned for non-positive window sizes.
var ErrInvalidWindow = errors.New("window must be positive")

// ErrUnknownIndicator is returned by ByName for unregistered names.
var ErrUnknownIndicator = errors.New("unknown indicator")

// Indicator is implemented by every technical indicator.
type Indicator interface {
	// Name returns the identifier used by the factory and on the command line.
	Name() string
	// Compute appends the indicator columns to s and returns the names it wrote.
	Compute(s *series.Series) ([]string, error)
	// PlotColumns lists every column a chart should draw, including intermediates.
	PlotColumns() []string
}

const defaultWindow = 14

// ByName returns the indicator registered under name (case-insensitive).
func ByName(name string) (Indicator, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "SMA_200":
		return NewSMA(200, series.FieldClose), nil
	case "EMA_5":
		return NewEMA(5, series.FieldClose), nil
	case "RSI_14":
		return NewRSI(defaultWindow, series.FieldClose), nil
	case "MACD":
		return NewMACD(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownIndicator, name)
	}
}

// Names lists the factory identifiers.
func Names() []string {
	return []string{"SMA_200", "EMA_5", "RSI_14", "MACD"}
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// ewm is an exponentially weighted mean with alpha = 2/(span+1), seeded with the
// first defined input (no bias adjustment). Outputs stay NaN until minPeriods
// defined inputs have been seen. Undefined inputs after the seed carry the
// previous mean forward without counting as an observation.
func ewm(values []float64, span, minPeriods int) []float64 {
	out := nanSlice(len(values))
	alpha := 2.0 / float64(span+1)
	seen := 0
	mean := math.NaN()
	for i, v := range values {
		if !math.IsNaN(v) {
			if seen == 0 {
				mean = v
			} else {
				mean = alpha*v + (1-alpha)*mean
			}
			seen++
		}
		if seen > 0 && seen >= minPeriods {
			out[i] = mean
		}
	}
	return out
}
