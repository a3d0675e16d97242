package indicator

import (
	"fmt"

	"stock-trader-go/internal/series"
)

// RSI is the Relative Strength Index using Wilder's smoothing.
type RSI struct {
	window int
	field  string
}

// NewRSI builds an RSI (typically window 14); an empty field defaults to Close.
func NewRSI(window int, field string) *RSI {
	if field == "" {
		field = series.FieldClose
	}
	return &RSI{window: window, field: field}
}

// Name returns the column name, e.g. RSI_14.
func (r *RSI) Name() string { return fmt.Sprintf("RSI_%d", r.window) }

// PlotColumns returns the single RSI column.
func (r *RSI) PlotColumns() []string { return []string{r.Name()} }

// Compute writes RSI values in [0, 100]. The first window bars are NaN. When the
// average loss is exactly zero the index is pinned at 100.
func (r *RSI) Compute(data *series.Series) ([]string, error) {
	if r.window <= 0 {
		return nil, fmt.Errorf("rsi: %w", ErrInvalidWindow)
	}
	values, err := data.Field(r.field)
	if err != nil {
		return nil, fmt.Errorf("rsi: %w", err)
	}
	if err := data.AddColumn(r.Name(), wilderRSI(values, r.window)); err != nil {
		return nil, err
	}
	return []string{r.Name()}, nil
}

func wilderRSI(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if len(values) <= window {
		return out
	}

	var avgGain, avgLoss float64
	for i := 1; i <= window; i++ {
		gain, loss := split(values[i] - values[i-1])
		avgGain += gain
		avgLoss += loss
	}
	p := float64(window)
	avgGain /= p
	avgLoss /= p
	out[window] = rsiFrom(avgGain, avgLoss)

	for i := window + 1; i < len(values); i++ {
		gain, loss := split(values[i] - values[i-1])
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
		out[i] = rsiFrom(avgGain, avgLoss)
	}
	return out
}

func split(delta float64) (gain, loss float64) {
	if delta > 0 {
		return delta, 0
	}
	return 0, -delta
}

func rsiFrom(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
