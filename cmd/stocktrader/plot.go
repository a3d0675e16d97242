package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"stock-trader-go/internal/workflow"
)

type plotCmd struct {
	indicator string
}

func (*plotCmd) Name() string     { return "plot" }
func (*plotCmd) Synopsis() string { return "export price and indicator chart data per ticker" }
func (*plotCmd) Usage() string {
	return `plot [-indicator <name>]

Writes one chart JSON file per ticker with candlesticks and the indicator's
columns. Use RAW for prices only.
`
}

func (c *plotCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.indicator, "indicator", "", fmt.Sprintf("indicator to plot, one of %v", workflow.PlotNames()))
}

func (c *plotCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
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
	name := c.indicator
	if name == "" {
		name = promptChoice(s.in, s.out, "Indicator", workflow.PlotNames())
	}
	if s.err = runPlot(ctx, s, name); s.err != nil {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func runPlot(ctx context.Context, s *session, name string) error {
	paths, err := workflow.NewPlotter(s.loader, s.cfg.Report.OutputPath, s.log).Plot(ctx, s.tickers, name, s.window)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintf(s.out, "Chart saved to %s\n", p)
	}
	return nil
}
