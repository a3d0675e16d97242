// Package signal standardizes the per-bar trading decisions shared between strategies and the simulator.
package signal

import "math"

// Action is the discrete decision for one bar, stored in signal columns as -1, 0 or +1.
type Action int

const (
	// Sell closes the whole position.
	Sell Action = -1
	// Hold leaves the portfolio untouched.
	Hold Action = 0
	// Buy spends all available cash.
	Buy Action = 1
)

// String returns the upper-case action label used in logs.
func (a Action) String() string {
	switch a {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "HOLD"
	}
}

// Value is the float stored in a signal column.
func (a Action) Value() float64 { return float64(a) }

// FromValue maps a column entry back to an action. Anything other than exactly
// +1 or -1, NaN included, is a hold.
func FromValue(v float64) Action {
	switch {
	case math.IsNaN(v):
		return Hold
	case v == 1:
		return Buy
	case v == -1:
		return Sell
	default:
		return Hold
	}
}
