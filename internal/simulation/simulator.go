// Package simulation replays a price series bar by bar through a strategy and a paper account.
package simulation

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"stock-trader-go/internal/execution"
	"stock-trader-go/internal/metrics"
	"stock-trader-go/internal/paper"
	"stock-trader-go/internal/performance"
	"stock-trader-go/internal/series"
	"stock-trader-go/internal/signal"
	"stock-trader-go/internal/strategy"
)

// Simulator owns one account and produces one equity curve per Simulate call.
type Simulator struct {
	strategy strategy.Strategy
	account  *paper.Account
	log      zerolog.Logger
	exec     *execution.Executor
	recorder paper.FillRecorder
	history  performance.History
}

// Option customises a Simulator.
type Option func(*Simulator)

// WithFillRecorder journals every executed fill.
func WithFillRecorder(r paper.FillRecorder) Option {
	return func(s *Simulator) { s.recorder = r }
}

// WithExecutor replaces the default fill reporter.
func WithExecutor(e *execution.Executor) Option {
	return func(s *Simulator) { s.exec = e }
}

// NewSimulator wires a strategy to an account. The account must not be shared with other runs.
func NewSimulator(strat strategy.Strategy, account *paper.Account, log zerolog.Logger, opts ...Option) *Simulator {
	sim := &Simulator{strategy: strat, account: account, log: log}
	for _, opt := range opts {
		opt(sim)
	}
	if sim.exec == nil {
		sim.exec = execution.NewExecutor(log)
	}
	return sim
}

// Simulate recapitalizes the account, generates the signal column once and
// walks the bars in order. Orders the account refuses for lack of cash or
// shares are skipped; any other account error aborts the run. Every bar adds
// exactly one point to the equity curve.
func (sim *Simulator) Simulate(s *series.Series, ticker string, capital float64) error {
	if err := sim.account.Recapitalize(capital); err != nil {
		return fmt.Errorf("simulate %s: %w", ticker, err)
	}
	sim.history = make(performance.History, 0, s.Len())

	column, err := sim.strategy.GenerateSignals(s)
	if err != nil {
		return fmt.Errorf("simulate %s: %w", ticker, err)
	}
	signals, ok := s.Column(column)
	if !ok {
		return fmt.Errorf("simulate %s: signal column %s: %w", ticker, column, series.ErrUnknownField)
	}

	log := sim.log.With().Str("ticker", ticker).Str("strategy", sim.strategy.Name()).Logger()
	bars := metrics.BarsSimulated.WithLabelValues(ticker)

	for i, bar := range s.Bars {
		if err := sim.act(ticker, bar, signal.FromValue(signals[i])); err != nil {
			if !sim.rejected(log, ticker, bar, err) {
				return fmt.Errorf("simulate %s at %s: %w", ticker, bar.Time.Format("2006-01-02"), err)
			}
		}
		value, err := sim.account.Value(map[string]float64{ticker: bar.Close})
		if err != nil {
			return fmt.Errorf("simulate %s at %s: %w", ticker, bar.Time.Format("2006-01-02"), err)
		}
		sim.history = append(sim.history, performance.HistoryItem{Time: bar.Time, Value: value})
		bars.Inc()
	}

	metrics.SimulationsTotal.WithLabelValues(sim.strategy.Name()).Inc()
	log.Info().Int("bars", len(sim.history)).Float64("final", sim.final()).Msg("simulation complete")
	return nil
}

func (sim *Simulator) act(ticker string, bar series.Bar, action signal.Action) error {
	var (
		qty  int64
		side execution.Side
		err  error
	)
	switch action {
	case signal.Buy:
		side = execution.Buy
		qty, err = sim.account.BuyWithEntireCash(ticker, bar.Close)
	case signal.Sell:
		side = execution.Sell
		qty, err = sim.account.SellAll(ticker, bar.Close)
	default:
		return nil
	}
	if err != nil {
		return err
	}

	fill := execution.Fill{
		Ticker: ticker,
		Side:   side,
		Qty:    qty,
		Price:  bar.Close,
		Time:   bar.Time,
		Cash:   sim.account.Cash(),
	}
	sim.exec.Report(fill)
	if sim.recorder != nil {
		sim.recorder.Record(fill)
	}
	return nil
}

// rejected logs and counts recoverable ledger refusals.
func (sim *Simulator) rejected(log zerolog.Logger, ticker string, bar series.Bar, err error) bool {
	var reason string
	switch {
	case errors.Is(err, paper.ErrInsufficientFunds):
		reason = "insufficient_funds"
	case errors.Is(err, paper.ErrInsufficientHoldings):
		reason = "insufficient_holdings"
	default:
		return false
	}
	metrics.OrdersRejected.WithLabelValues(ticker, reason).Inc()
	log.Debug().Err(err).Time("bar", bar.Time).Float64("px", bar.Close).Msg("order skipped")
	return true
}

func (sim *Simulator) final() float64 {
	if len(sim.history) == 0 {
		return 0
	}
	return sim.history[len(sim.history)-1].Value
}

// History returns a copy of the equity curve from the last run.
func (sim *Simulator) History() performance.History {
	out := make(performance.History, len(sim.history))
	copy(out, sim.history)
	return out
}
