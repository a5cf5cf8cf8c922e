// Package main is the entry point of the fld command line client.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/nvr-ai/go-liveness/args"
	"github.com/nvr-ai/go-liveness/benchmark"
	"github.com/nvr-ai/go-liveness/config"
	"github.com/nvr-ai/go-liveness/engine"
)

var version = "0.1.0"

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// ExitError carries the process exit code of a failed command.
type ExitError struct {
	Code    int
	Message string
	Usage   string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, defaultApp())
	stop()
	os.Exit(code)
}

func defaultApp() *app {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return &app{
		newEngine: func() engine.Engine { return engine.New() },
		lookup:    os.LookupEnv,
	}
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, argv []string, stdout, stderr io.Writer, a *app) int {
	a.stdout, a.stderr = stdout, stderr

	root := a.rootCmd()
	root.SetArgs(route(root, argv))
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		exitErr = classify(err, "")
	}
	fmt.Fprintln(stderr, exitErr.Message)
	if exitErr.Usage != "" {
		fmt.Fprint(stderr, exitErr.Usage)
	}
	return exitErr.Code
}

// route sends argument lists that do not start with a subcommand name to the liveness command,
// so that cobra never looks for a subcommand among the "--key value" pairs.
func route(root *cobra.Command, argv []string) []string {
	if len(argv) == 0 {
		return argv
	}
	switch argv[0] {
	case "help", "completion":
		return argv
	}
	for _, c := range root.Commands() {
		if c.Name() == argv[0] || c.HasAlias(argv[0]) {
			return argv
		}
	}
	return append([]string{livenessName}, argv...)
}

// classify maps command line mistakes to exitUsage and every other failure to exitError.
func classify(err error, usage string) *ExitError {
	switch {
	case errors.Is(err, args.ErrOddArgs),
		errors.Is(err, args.ErrInvalidKey),
		errors.Is(err, args.ErrMissing),
		errors.Is(err, benchmark.ErrInvalidLoops):
		return &ExitError{Code: exitUsage, Message: err.Error(), Usage: usage}
	default:
		return &ExitError{Code: exitError, Message: err.Error()}
	}
}
