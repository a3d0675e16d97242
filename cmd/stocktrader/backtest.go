package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/Rhymond/go-money"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"stock-trader-go/internal/report"
	"stock-trader-go/internal/strategy"
	"stock-trader-go/internal/workflow"
)

type backtestCmd struct {
	strategy string
	capital  float64
}

func (*backtestCmd) Name() string     { return "backtest" }
func (*backtestCmd) Synopsis() string { return "simulate a strategy over every ticker and write reports" }
func (*backtestCmd) Usage() string {
	return `backtest [-strategy <name>] [-capital <amount>]

Runs the strategy over each ticker's daily history and writes one report per
ticker. Missing strategy or capital is asked for on stdin.
`
}

func (c *backtestCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.strategy, "strategy", "", fmt.Sprintf("trading strategy, one of %v", strategy.Modes()))
	f.Float64Var(&c.capital, "capital", 0, "initial capital per ticker")
}

func (c *backtestCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	s := fromArgs(args)
	if s == nil {
		return subcommands.ExitFailure
	}
	if s.err = s.setup(); s.err != nil {
		return subcommands.ExitFailure
	}
	name, capital, err := resolveRun(s, c.strategy, c.capital)
	if err != nil {
		s.err = err
		return subcommands.ExitUsageError
	}
	s.err = runBacktest(ctx, s, name, capital)
	if s.err != nil {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// resolveRun fills strategy and capital from flags, then config, then stdin.
func resolveRun(s *session, name string, capital float64) (string, float64, error) {
	name = firstNonEmpty(name, s.cfg.Backtest.Strategy)
	if name == "" {
		name = promptChoice(s.in, s.out, "Strategy", strategy.Modes())
	}
	if _, err := strategy.Build(name); err != nil {
		return "", 0, err
	}
	if capital <= 0 {
		capital = s.cfg.Backtest.InitialCapital
	}
	if capital <= 0 {
		capital = promptFloat(s.in, s.out, "Initial capital", 0)
	}
	if capital <= 0 {
		return "", 0, fmt.Errorf("initial capital must be positive, got %v", capital)
	}
	return name, capital, nil
}

func runBacktest(ctx context.Context, s *session, name string, capital float64) error {
	bt, err := workflow.NewBacktester(s.loader, workflow.BacktestOptions{
		Strategy:     name,
		OutputDir:    s.cfg.Report.OutputPath,
		RiskFreeRate: s.cfg.Backtest.RiskFreeRate,
		Workers:      s.cfg.Concurrency.Workers,
		Store:        s.store,
		JournalFills: s.cfg.Report.JournalFills,
	}, s.log)
	if err != nil {
		return err
	}
	results, err := bt.Backtest(ctx, s.tickers, s.window, capital)
	if err != nil {
		return err
	}
	printResults(s.out, results, capital)
	return nil
}

func printResults(out io.Writer, results []workflow.Result, capital float64) {
	if len(results) == 0 {
		fmt.Fprintln(out, "No tickers had data for the requested range.")
		return
	}
	for _, r := range results {
		final := capital
		if n := len(r.History); n > 0 {
			final = r.History[n-1].Value
		}
		fmt.Fprintf(out, "%s (%s, %d trades: %d buys, %d sells) %s -> %s\n", r.Ticker, r.Strategy, r.Trades, r.Buys, r.Sells, usd(capital), usd(final))
		fmt.Fprint(out, report.Create(r.Stats))
		if r.ReportPath != "" {
			fmt.Fprintf(out, "Report saved to %s\n", r.ReportPath)
		}
	}
}

// usd formats an amount in dollars, truncated to the cent.
func usd(v float64) string {
	cur := *money.New(0, money.USD).Currency()
	return cur.Formatter().Format(decimal.NewFromFloat(v).Shift(int32(cur.Fraction)).IntPart())
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
