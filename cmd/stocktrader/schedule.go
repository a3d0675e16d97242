package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/robfig/cron/v3"

	"stock-trader-go/internal/strategy"
)

// defaultSchedule fires after the US close on weekdays. Specs carry a seconds field.
const defaultSchedule = "0 30 16 * * 1-5"

type scheduleCmd struct {
	spec     string
	strategy string
	capital  float64
	runNow   bool
}

func (*scheduleCmd) Name() string     { return "schedule" }
func (*scheduleCmd) Synopsis() string { return "rerun a backtest on a cron schedule until interrupted" }
func (*scheduleCmd) Usage() string {
	return `schedule [-cron <spec>] [-strategy <name>] [-capital <amount>] [-run-now]

Reloads every ticker and rewrites the reports each time the cron spec fires.
Overlapping runs are skipped.
`
}

func (c *scheduleCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.spec, "cron", defaultSchedule, "cron spec with seconds, or a descriptor such as @daily")
	f.StringVar(&c.strategy, "strategy", "", fmt.Sprintf("trading strategy, one of %v", strategy.Modes()))
	f.Float64Var(&c.capital, "capital", 0, "initial capital per ticker")
	f.BoolVar(&c.runNow, "run-now", false, "run once immediately before waiting for the schedule")
}

func (c *scheduleCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
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

	job := func() {
		if err := runBacktest(ctx, s, name, capital); err != nil {
			s.log.Error().Err(err).Msg("scheduled backtest")
		}
	}
	sched := cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := sched.AddFunc(c.spec, job); err != nil {
		s.err = fmt.Errorf("register schedule %q: %w", c.spec, err)
		return subcommands.ExitUsageError
	}
	if c.runNow {
		job()
	}

	sched.Start()
	s.log.Info().Str("cron", c.spec).Str("strategy", name).Msg("scheduler started")
	<-ctx.Done()
	<-sched.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
	return subcommands.ExitSuccess
}
