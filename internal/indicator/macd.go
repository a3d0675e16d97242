package indicator

import (
	"stock-trader-go/internal/series"
)

// MACD column names.
const (
	ColumnEMA12         = "EMA_12"
	ColumnEMA26         = "EMA_26"
	ColumnMACDLine      = "MACDLine"
	ColumnSignalLine    = "SignalLine"
	ColumnMACDHistogram = "MACDHistogram"
)

const (
	macdFast   = 12
	macdSlow   = 26
	macdSignal = 9
)

// MACD is the moving average convergence/divergence over Close with fixed 12/26/9 spans.
type MACD struct{}

// NewMACD builds the indicator; its windows are not configurable.
func NewMACD() *MACD { return &MACD{} }

// Name returns the factory identifier.
func (*MACD) Name() string { return "MACD" }

// PlotColumns includes the two EMAs next to the line, signal and histogram.
func (*MACD) PlotColumns() []string {
	return []string{ColumnMACDLine, ColumnSignalLine, ColumnMACDHistogram, ColumnEMA12, ColumnEMA26}
}

// Compute writes all five columns and returns line, signal and histogram names.
// EMA_12 and EMA_26 are NaN until 12 and 26 closes have accumulated; the signal
// line starts at the first defined MACD value.
func (m *MACD) Compute(data *series.Series) ([]string, error) {
	closes := data.Closes()
	fast := ewm(closes, macdFast, macdFast)
	slow := ewm(closes, macdSlow, macdSlow)

	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = fast[i] - slow[i]
	}
	signal := ewm(line, macdSignal, 0)
	hist := make([]float64, len(closes))
	for i := range closes {
		hist[i] = line[i] - signal[i]
	}

	for _, col := range []struct {
		name   string
		values []float64
	}{
		{ColumnEMA12, fast},
		{ColumnEMA26, slow},
		{ColumnMACDLine, line},
		{ColumnSignalLine, signal},
		{ColumnMACDHistogram, hist},
	} {
		if err := data.AddColumn(col.name, col.values); err != nil {
			return nil, err
		}
	}
	return []string{ColumnMACDLine, ColumnSignalLine, ColumnMACDHistogram}, nil
}
