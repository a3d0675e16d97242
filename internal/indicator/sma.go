package indicator

import (
	"fmt"

	"stock-trader-go/internal/series"
)

// SMA is the simple moving average over a rolling window of one field.
type SMA struct {
	window int
	field  string
}

// NewSMA builds an SMA; an empty field defaults to Close.
func NewSMA(window int, field string) *SMA {
	if field == "" {
		field = series.FieldClose
	}
	return &SMA{window: window, field: field}
}

// Name returns the column name, e.g. SMA_200.
func (s *SMA) Name() string { return fmt.Sprintf("SMA_%d", s.window) }

// PlotColumns returns the single SMA column.
func (s *SMA) PlotColumns() []string { return []string{s.Name()} }

// Compute writes mean(field[i-window+1..i]), NaN before the window fills.
func (s *SMA) Compute(data *series.Series) ([]string, error) {
	if s.window <= 0 {
		return nil, fmt.Errorf("sma: %w", ErrInvalidWindow)
	}
	values, err := data.Field(s.field)
	if err != nil {
		return nil, fmt.Errorf("sma: %w", err)
	}
	if err := data.AddColumn(s.Name(), rollingMean(values, s.window)); err != nil {
		return nil, err
	}
	return []string{s.Name()}, nil
}

// rollingMean recomputes each window sum rather than sliding it, so a NaN only
// poisons the windows that actually contain it.
func rollingMean(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	for i := window - 1; i < len(values); i++ {
		sum := 0.0
		for j := i - window + 1; j <= i; j++ {
			sum += values[j]
		}
		out[i] = sum / float64(window)
	}
	return out
}
