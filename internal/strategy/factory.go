// Package strategy turns indicator columns into per-bar trading signals.
package strategy

import (
	"errors"
	"fmt"
	"strings"

	"stock-trader-go/internal/series"
	"stock-trader-go/internal/signal"
)

// ErrUnknownStrategy is returned by Build for unrecognised modes.
var ErrUnknownStrategy = errors.New("unknown strategy")

// Strategy defines behaviour shared by signal generators.
// GenerateSignals computes its indicators on s, writes one signal column of
// -1/0/+1 values and returns that column's name. Every value depends only on
// the bar itself and earlier bars.
type Strategy interface {
	GenerateSignals(s *series.Series) (string, error)
	Name() string
}

// Canonical strategy modes.
const (
	ModeCrossover = "MovingAverageCrossover"
	ModeRSI       = "RSI"
	ModeMACD      = "MACD"
)

// Modes lists the canonical mode names accepted by Build.
func Modes() []string { return []string{ModeCrossover, ModeRSI, ModeMACD} }

// Build returns a strategy implementation matching the configured mode.
func Build(mode string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "movingaveragecrossover", "crossover", "ma_crossover":
		return NewCrossover(), nil
	case "rsi":
		return NewRSI(), nil
	case "macd":
		return NewMACD(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, mode)
	}
}

// classify evaluates fn per bar and stores the resulting actions under name.
func classify(s *series.Series, name string, fn func(i int) signal.Action) (string, error) {
	out := make([]float64, s.Len())
	for i := range out {
		out[i] = fn(i).Value()
	}
	if err := s.AddColumn(name, out); err != nil {
		return "", err
	}
	return name, nil
}
