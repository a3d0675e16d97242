package main

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"stock-trader-go/internal/strategy"
)

const (
	demoCapital   = 1_000_000
	demoIndicator = "RSI_14"
)

type demoBacktestCmd struct{}

func (*demoBacktestCmd) Name() string           { return "demo-backtest" }
func (*demoBacktestCmd) Synopsis() string       { return "backtest RSI with 1,000,000 capital" }
func (*demoBacktestCmd) Usage() string          { return "demo-backtest\n" }
func (*demoBacktestCmd) SetFlags(*flag.FlagSet) {}

func (*demoBacktestCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	s := fromArgs(args)
	if s == nil {
		return subcommands.ExitFailure
	}
	if s.err = s.setup(); s.err != nil {
		return subcommands.ExitFailure
	}
	if s.err = runBacktest(ctx, s, strategy.ModeRSI, demoCapital); s.err != nil {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type demoPlotCmd struct{}

func (*demoPlotCmd) Name() string           { return "demo-plot" }
func (*demoPlotCmd) Synopsis() string       { return "plot RSI_14 for every ticker" }
func (*demoPlotCmd) Usage() string          { return "demo-plot\n" }
func (*demoPlotCmd) SetFlags(*flag.FlagSet) {}

func (*demoPlotCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	s := fromArgs(args)
	if s == nil {
		return subcommands.ExitFailure
	}
	if s.err = s.setup(); s.err != nil {
		return subcommands.ExitFailure
	}
	if s.err = runPlot(ctx, s, demoIndicator); s.err != nil {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
