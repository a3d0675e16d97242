package strategy

import (
	"fmt"

	"stock-trader-go/internal/indicator"
	"stock-trader-go/internal/series"
	"stock-trader-go/internal/signal"
)

// RSI trades mean reversion off overbought/oversold thresholds.
type RSI struct {
	window     int
	overbought float64
	oversold   float64
}

// NewRSI builds the 14-bar RSI strategy with 70/30 thresholds.
func NewRSI() *RSI { return &RSI{window: 14, overbought: 70, oversold: 30} }

// Name returns the identifier for logging.
func (r *RSI) Name() string { return ModeRSI }

// GenerateSignals sells above the overbought level, buys below the oversold
// level and holds otherwise, including during the RSI warm-up.
func (r *RSI) GenerateSignals(s *series.Series) (string, error) {
	cols, err := indicator.NewRSI(r.window, series.FieldClose).Compute(s)
	if err != nil {
		return "", fmt.Errorf("rsi strategy: %w", err)
	}
	rsi, _ := s.Column(cols[0])

	// NaN fails both comparisons and falls through to hold.
	return classify(s, fmt.Sprintf("Signal_RSI_%d", r.window), func(i int) signal.Action {
		switch {
		case rsi[i] > r.overbought:
			return signal.Sell
		case rsi[i] < r.oversold:
			return signal.Buy
		default:
			return signal.Hold
		}
	})
}
