package strategy

import (
	"fmt"

	"stock-trader-go/internal/indicator"
	"stock-trader-go/internal/series"
	"stock-trader-go/internal/signal"
)

// MACD follows the MACD line crossing its signal line.
type MACD struct{}

// NewMACD builds the 12/26/9 MACD strategy.
func NewMACD() *MACD { return &MACD{} }

// Name returns the identifier for logging.
func (*MACD) Name() string { return ModeMACD }

// GenerateSignals buys while the MACD line is above the signal line, sells
// while below and holds on equality or before both lines exist.
func (*MACD) GenerateSignals(s *series.Series) (string, error) {
	if _, err := indicator.NewMACD().Compute(s); err != nil {
		return "", fmt.Errorf("macd strategy: %w", err)
	}
	line, _ := s.Column(indicator.ColumnMACDLine)
	sig, _ := s.Column(indicator.ColumnSignalLine)

	return classify(s, "Signal_MACD_12_26_9", func(i int) signal.Action {
		switch {
		case line[i] > sig[i]:
			return signal.Buy
		case line[i] < sig[i]:
			return signal.Sell
		default:
			return signal.Hold
		}
	})
}
