package strategy

import (
	"fmt"
	"math"

	"stock-trader-go/internal/indicator"
	"stock-trader-go/internal/series"
	"stock-trader-go/internal/signal"
)

// Crossover compares a short EMA against a long SMA of Close and is always
// either long or flat once both averages are defined.
type Crossover struct {
	short int
	long  int
}

// NewCrossover builds the 5-bar EMA / 200-bar SMA crossover.
func NewCrossover() *Crossover { return &Crossover{short: 5, long: 200} }

// Name returns the identifier for logging.
func (c *Crossover) Name() string { return ModeCrossover }

// GenerateSignals emits +1 while EMA > SMA and -1 while EMA <= SMA. Bars where
// the SMA is still warming up have no comparison and hold.
func (c *Crossover) GenerateSignals(s *series.Series) (string, error) {
	shortCols, err := indicator.NewEMA(c.short, series.FieldClose).Compute(s)
	if err != nil {
		return "", fmt.Errorf("crossover: %w", err)
	}
	longCols, err := indicator.NewSMA(c.long, series.FieldClose).Compute(s)
	if err != nil {
		return "", fmt.Errorf("crossover: %w", err)
	}
	short, _ := s.Column(shortCols[0])
	long, _ := s.Column(longCols[0])

	name := fmt.Sprintf("Signal_EMA%d_SMA%d", c.short, c.long)
	return classify(s, name, func(i int) signal.Action {
		switch {
		case math.IsNaN(short[i]) || math.IsNaN(long[i]):
			return signal.Hold
		case short[i] > long[i]:
			return signal.Buy
		default:
			return signal.Sell
		}
	})
}
