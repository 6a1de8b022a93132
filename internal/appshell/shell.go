// Package appshell wires a run function to the process: signals, argv and
// the exit code.
package appshell

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"kmerx/internal/errs"
)

// Main runs run under a context cancelled by SIGINT/SIGTERM and exits with
// its code. A cancelled run exits 130 even if run reported success.
func Main(run func(context.Context, []string, io.Writer, io.Writer) int) {
	os.Exit(exec(run, os.Args[1:], os.Stdout, os.Stderr))
}

func exec(run func(context.Context, []string, io.Writer, io.Writer) int, argv []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(argv) == 0 {
		argv = []string{"-h"}
	}
	code := run(ctx, argv, stdout, stderr)
	if ctx.Err() != nil && code == errs.ExitOK {
		code = errs.ExitCancelled
	}
	return code
}
