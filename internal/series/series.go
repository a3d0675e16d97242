// Package series holds the daily OHLCV price series consumed by indicators, strategies and the simulator.
package series

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/samber/lo"
)

// Base OHLCV field names every series exposes.
const (
	FieldOpen   = "Open"
	FieldHigh   = "High"
	FieldLow    = "Low"
	FieldClose  = "Close"
	FieldVolume = "Volume"
)

var (
	// ErrLengthMismatch is returned when a column does not line up with the bars.
	ErrLengthMismatch = errors.New("column length does not match series length")
	// ErrUnknownField is returned when a field or column name cannot be resolved.
	ErrUnknownField = errors.New("unknown field")
	// ErrUnordered is returned when timestamps are not strictly increasing.
	ErrUnordered = errors.New("timestamps are not strictly increasing")
	// ErrNonFinite is returned when a bar carries NaN/Inf prices or a negative volume.
	ErrNonFinite = errors.New("bar contains non-finite values")
	// ErrEmpty is returned by Validate for a series without bars.
	ErrEmpty = errors.New("series has no bars")
)

// Bar is one trading day.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Series is an ordered run of bars for one ticker plus named indicator columns aligned by position.
// Columns are additive annotations; the bars themselves are never rewritten.
type Series struct {
	Ticker  string
	Bars    []Bar
	columns map[string][]float64
}

// New wraps bars for ticker. The slice is used as-is.
func New(ticker string, bars []Bar) *Series {
	return &Series{Ticker: ticker, Bars: bars, columns: make(map[string][]float64)}
}

// Len returns the number of bars.
func (s *Series) Len() int { return len(s.Bars) }

// AddColumn stores values under name, replacing any previous column with that name.
func (s *Series) AddColumn(name string, values []float64) error {
	if len(values) != len(s.Bars) {
		return fmt.Errorf("add column %s: %w (%d != %d)", name, ErrLengthMismatch, len(values), len(s.Bars))
	}
	if s.columns == nil {
		s.columns = make(map[string][]float64)
	}
	s.columns[name] = values
	return nil
}

// Column returns the stored column by name.
func (s *Series) Column(name string) ([]float64, bool) {
	values, ok := s.columns[name]
	return values, ok
}

// Columns lists indicator columns in lexical order.
func (s *Series) Columns() []string {
	names := lo.Keys(s.columns)
	sort.Strings(names)
	return names
}

// Field resolves one of the OHLCV fields or a previously added column.
func (s *Series) Field(name string) ([]float64, error) {
	var pick func(Bar) float64
	switch name {
	case FieldOpen:
		pick = func(b Bar) float64 { return b.Open }
	case FieldHigh:
		pick = func(b Bar) float64 { return b.High }
	case FieldLow:
		pick = func(b Bar) float64 { return b.Low }
	case FieldClose:
		pick = func(b Bar) float64 { return b.Close }
	case FieldVolume:
		pick = func(b Bar) float64 { return b.Volume }
	default:
		if values, ok := s.columns[name]; ok {
			return values, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	return lo.Map(s.Bars, func(b Bar, _ int) float64 { return pick(b) }), nil
}

// Closes is shorthand for the Close field.
func (s *Series) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Clone deep-copies bars and columns so concurrent runs never alias one another.
func (s *Series) Clone() *Series {
	bars := make([]Bar, len(s.Bars))
	copy(bars, s.Bars)
	out := New(s.Ticker, bars)
	for name, values := range s.columns {
		cp := make([]float64, len(values))
		copy(cp, values)
		out.columns[name] = cp
	}
	return out
}

// Validate checks the input contract: at least one bar, finite prices, non-negative volume,
// strictly increasing timestamps.
func (s *Series) Validate() error {
	if len(s.Bars) == 0 {
		return ErrEmpty
	}
	for i, b := range s.Bars {
		for _, v := range []float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("bar %d (%s): %w", i, b.Time.Format(time.DateOnly), ErrNonFinite)
			}
		}
		if b.Volume < 0 {
			return fmt.Errorf("bar %d (%s): %w: negative volume", i, b.Time.Format(time.DateOnly), ErrNonFinite)
		}
		if i > 0 && !b.Time.After(s.Bars[i-1].Time) {
			return fmt.Errorf("bar %d (%s): %w", i, b.Time.Format(time.DateOnly), ErrUnordered)
		}
	}
	return nil
}
