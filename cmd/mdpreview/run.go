package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"

	flag "github.com/spf13/pflag"

	mdpreview "github.com/alnah/go-mdpreview"
	"github.com/alnah/go-mdpreview/internal/hints"
)

// command runs a subcommand with its arguments (command name excluded).
type command func(ctx context.Context, args []string, env *Environment) error

var commands = map[string]command{
	"render":     runRender,
	"meta":       runMeta,
	"export":     runExport,
	"watch":      runWatch,
	"doctor":     runDoctor,
	"completion": runCompletion,
}

// runMain runs the CLI and returns the process exit code.
func runMain(args []string, env *Environment) int {
	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals...)
	defer stop()

	err := run(ctx, args[1:], env)
	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
	}
	return exitCodeFor(err)
}

// run dispatches args to the matching command.
func run(ctx context.Context, args []string, env *Environment) error {
	if len(args) == 0 {
		printUsage(env.Stderr)
		return fmt.Errorf("%w: missing command", ErrUsage)
	}

	switch args[0] {
	case "help", "-h", "--help":
		return runHelp(args[1:], env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "mdpreview %s\n", Version)
		return nil
	}

	cmd, ok := commands[args[0]]
	if !ok {
		printUsage(env.Stderr)
		return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
	}
	return cmd(ctx, args[1:], env)
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	switch {
	case errors.Is(err, mdpreview.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, mdpreview.ErrPageLoad), errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, mdpreview.ErrStyleNotFound):
		return hints.ForStyleNotFound(mdpreview.StyleNames())
	case errors.Is(err, mdpreview.ErrUnknownStyle):
		return hints.ForUnknownHighlightStyle(highlightStyleSample())
	case errors.Is(err, ErrInvalidExtension):
		return hints.ForInputExtension()
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	}
	return ""
}

// highlightStyleSample returns a few well-known chroma styles that are
// registered, for hint messages.
func highlightStyleSample() []string {
	var sample []string
	for _, name := range mdpreview.HighlightStyleNames() {
		switch name {
		case "github", "monokai", "dracula", "nord", "solarized-light":
			sample = append(sample, name)
		}
	}
	return sample
}
