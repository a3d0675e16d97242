package indicator

import (
	"fmt"

	"stock-trader-go/internal/series"
)

// emaSpan is the smoothing span used by EMA regardless of its window.
// The window only names the column; existing reports and charts depend on this.
const emaSpan = 5

// EMA is an exponential moving average defined from the first bar.
type EMA struct {
	window int
	field  string
}

// NewEMA builds an EMA; an empty field defaults to Close.
func NewEMA(window int, field string) *EMA {
	if field == "" {
		field = series.FieldClose
	}
	return &EMA{window: window, field: field}
}

// Name returns the column name, e.g. EMA_5.
func (e *EMA) Name() string { return fmt.Sprintf("EMA_%d", e.window) }

// PlotColumns returns the single EMA column.
func (e *EMA) PlotColumns() []string { return []string{e.Name()} }

// Compute writes the EMA column. out[0] equals field[0]; there is no warm-up gap.
func (e *EMA) Compute(data *series.Series) ([]string, error) {
	if e.window <= 0 {
		return nil, fmt.Errorf("ema: %w", ErrInvalidWindow)
	}
	values, err := data.Field(e.field)
	if err != nil {
		return nil, fmt.Errorf("ema: %w", err)
	}
	if err := data.AddColumn(e.Name(), ewm(values, emaSpan, 0)); err != nil {
		return nil, err
	}
	return []string{e.Name()}, nil
}
