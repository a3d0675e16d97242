// Package execution describes fills produced by the simulated portfolio and reports them.
package execution

import (
	"time"

	"stock-trader-go/internal/metrics"

	"github.com/rs/zerolog"
)

// Side enumerates order directions used by the executor.
type Side string

const (
	// Buy indicates a purchase with all available cash.
	Buy Side = "BUY"
	// Sell indicates liquidation of the whole position.
	Sell Side = "SELL"
)

// Fill is one executed trade against the paper account.
type Fill struct {
	Ticker string    `json:"ticker"`
	Side   Side      `json:"side"`
	Qty    int64     `json:"qty"`
	Price  float64   `json:"price"`
	Time   time.Time `json:"time"`
	Cash   float64   `json:"cash_after"`
}

// Notional is the cash moved by the fill.
func (f Fill) Notional() float64 { return f.Price * float64(f.Qty) }

// Executor logs and counts fills as the simulator reports them.
type Executor struct{ log zerolog.Logger }

// NewExecutor wraps a zerolog logger.
func NewExecutor(log zerolog.Logger) *Executor { return &Executor{log: log} }

// Report records a completed fill.
func (executor *Executor) Report(fill Fill) {
	metrics.OrdersTotal.WithLabelValues(fill.Ticker, string(fill.Side)).Inc()
	executor.log.Debug().
		Str("ticker", fill.Ticker).
		Str("side", string(fill.Side)).
		Int64("qty", fill.Qty).
		Float64("px", fill.Price).
		Float64("notional", fill.Notional()).
		Float64("cash", fill.Cash).
		Time("bar", fill.Time).
		Msg("fill")
}
