// Package workflow wires loaders, strategies, the simulator and reporting into end-to-end runs.
package workflow

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"stock-trader-go/internal/daterange"
	"stock-trader-go/internal/datasource"
	"stock-trader-go/internal/execution"
	"stock-trader-go/internal/paper"
	"stock-trader-go/internal/performance"
	"stock-trader-go/internal/report"
	"stock-trader-go/internal/series"
	"stock-trader-go/internal/simulation"
	"stock-trader-go/internal/strategy"
)

// Result summarises one ticker's backtest.
type Result struct {
	Ticker     string
	Strategy   string
	Stats      performance.Stats
	History    performance.History
	Trades     int
	Buys       int
	Sells      int
	ReportPath string
	RunID      int64
}

// BacktestOptions configure a Backtester. Workers, Store and Now have defaults.
type BacktestOptions struct {
	Strategy     string
	OutputDir    string
	RiskFreeRate float64
	Workers      int
	Store        report.Store
	// JournalFills writes each run's fills to <OutputDir>/fills_<ticker>.jsonl.
	JournalFills bool
	Now          func() time.Time
}

// Backtester runs one strategy over many tickers.
type Backtester struct {
	loader datasource.Loader
	opts   BacktestOptions
	log    zerolog.Logger
}

// NewBacktester validates the strategy name up front so bad input fails before any fetch.
func NewBacktester(loader datasource.Loader, opts BacktestOptions, log zerolog.Logger) (*Backtester, error) {
	if _, err := strategy.Build(opts.Strategy); err != nil {
		return nil, err
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Store == nil {
		opts.Store = report.NewNoopStore()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Backtester{loader: loader, opts: opts, log: log}, nil
}

// Backtest loads every ticker and simulates each with a private account and
// series copy. Results follow the order tickers were given in; tickers the
// loader skipped are absent.
func (b *Backtester) Backtest(ctx context.Context, tickers []string, r daterange.Range, capital float64) ([]Result, error) {
	data, err := b.loader.Load(ctx, tickers, r)
	if err != nil {
		return nil, err
	}
	todo := lo.Filter(lo.Uniq(tickers), func(t string, _ int) bool { return data[t] != nil })

	var (
		mu       sync.Mutex
		results  = make(map[string]Result, len(todo))
		firstErr error
		wg       sync.WaitGroup
		sem      = make(chan struct{}, b.opts.Workers)
	)
	for _, ticker := range todo {
		wg.Add(1)
		sem <- struct{}{}
		go func(ticker string, s *series.Series) {
			defer wg.Done()
			defer func() { <-sem }()
			res, err := b.runOne(ctx, ticker, s.Clone(), capital)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			results[ticker] = res
		}(ticker, data[ticker])
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return lo.Map(todo, func(t string, _ int) Result { return results[t] }), nil
}

func (b *Backtester) runOne(ctx context.Context, ticker string, s *series.Series, capital float64) (Result, error) {
	strat, err := strategy.Build(b.opts.Strategy)
	if err != nil {
		return Result{}, err
	}
	log := b.log.With().Str("ticker", ticker).Str("strategy", strat.Name()).Logger()

	ledger := paper.NewLedger(0)
	recorders := paper.MultiRecorder{ledger}
	if b.opts.JournalFills && b.opts.OutputDir != "" {
		journal, err := paper.NewJSONLRecorder(filepath.Join(b.opts.OutputDir, "fills_"+strings.ToLower(ticker)+".jsonl"))
		if err != nil {
			return Result{}, err
		}
		defer func() {
			if err := journal.Close(); err != nil {
				log.Warn().Err(err).Msg("close fill journal")
			}
		}()
		recorders = append(recorders, journal)
	}

	sim := simulation.NewSimulator(strat, paper.NewAccount(), log, simulation.WithFillRecorder(recorders))
	if err := sim.Simulate(s, ticker, capital); err != nil {
		return Result{}, err
	}

	history := sim.History()
	stats := performance.Summarize(history, b.opts.RiskFreeRate)
	sides := ledger.CountBySide()
	res := Result{
		Ticker:   ticker,
		Strategy: strat.Name(),
		Stats:    stats,
		History:  history,
		Trades:   len(ledger.Snapshot()),
		Buys:     sides[execution.Buy],
		Sells:    sides[execution.Sell],
	}

	now := b.opts.Now()
	if b.opts.OutputDir != "" {
		path, err := report.Save(b.opts.OutputDir, ticker, report.Create(stats), now)
		if err != nil {
			return Result{}, err
		}
		res.ReportPath = path
		log.Info().Str("path", path).Msg("report saved")
	}

	id, err := b.opts.Store.SaveRun(ctx, report.Run{
		Ticker:   ticker,
		Strategy: strat.Name(),
		Capital:  capital,
		Stats:    stats,
		History:  history,
		Trades:   res.Trades,
		Created:  now,
	})
	if err != nil {
		return Result{}, fmt.Errorf("persist %s: %w", ticker, err)
	}
	res.RunID = id
	return res, nil
}
