package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	ossignal "os/signal"
	"path"
	"syscall"

	"github.com/google/subcommands"
)

func main() {
	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run parses global flags, dispatches to a subcommand and returns the exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	name := path.Base(os.Args[0])
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)

	g := &globals{}
	g.register(fs)
	if err := fs.Parse(args); err != nil {
		return int(subcommands.ExitUsageError)
	}

	commander := subcommands.NewCommander(fs, name)
	commander.Output = stdout
	commander.Error = stderr
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	commander.Register(&backtestCmd{}, "simulation")
	commander.Register(&demoBacktestCmd{}, "simulation")
	commander.Register(&scheduleCmd{}, "simulation")
	commander.Register(&plotCmd{}, "charts")
	commander.Register(&demoPlotCmd{}, "charts")

	s := &session{globals: g, in: bufio.NewReader(stdin), out: stdout}
	defer s.close()
	status := commander.Execute(ctx, s)
	if s.err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", s.err)
	}
	return int(status)
}
