// internal/app/app.go
package app

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"kmerx/internal/cli"
	"kmerx/internal/clibase"
	"kmerx/internal/cmdutil"
	"kmerx/internal/config"
	"kmerx/internal/engine"
	"kmerx/internal/errs"
	"kmerx/internal/pipeline"
	"kmerx/internal/version"
	"kmerx/internal/writers"
)

const name = "kmerx"

// Deps are the collaborators a run is built from. Zero fields get the
// production implementation.
type Deps struct {
	// NewEngine returns the engine for cfg; the default runs external tools.
	NewEngine func(cfg config.Config, stderr io.Writer) engine.Engine
}

func defaultEngine(cfg config.Config, stderr io.Writer) engine.Engine {
	e := &engine.Exec{
		Cmd:         cfg.Engine,
		Runner:      cfg.Runner(),
		Sort:        cfg.Sort,
		SortOptions: cfg.SortOptions,
	}
	if cfg.Verbose {
		e.Runner.Stderr = stderr
		e.BuildOutput = stderr
	}
	return e
}

// RunContext parses argv, runs the selected mode and returns the exit code.
func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	return RunWith(parent, argv, stdout, stderr, Deps{})
}

// Run is RunContext without cancellation.
func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

// RunWith is RunContext with injectable collaborators.
func RunWith(parent context.Context, argv []string, stdout, stderr io.Writer, deps Deps) int {
	if deps.NewEngine == nil {
		deps.NewEngine = defaultEngine
	}
	outw := bufio.NewWriter(stdout)
	defer func() { _ = outw.Flush() }()

	fs := cli.NewFlagSet(name)
	fs.SetOutput(io.Discard)

	if len(argv) == 0 {
		argv = []string{"-h"}
	}
	opts, err := cli.ParseArgs(fs, argv)
	if err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			fs.SetOutput(outw)
			fs.Usage()
			return flushCode(outw, stderr, errs.ExitOK)
		case errors.Is(err, clibase.ErrPrintedAndExitOK):
			clibase.PrintExamples(outw, name)
			return flushCode(outw, stderr, errs.ExitOK)
		}
		_, _ = fmt.Fprintf(stderr, "error: %v\n", err)
		_, _ = fmt.Fprintf(stderr, "run '%s --help' for usage\n", name)
		return errs.ExitFatal
	}
	if opts.Version {
		_, _ = fmt.Fprintf(outw, "%s version %s\n", name, version.Version)
		return flushCode(outw, stderr, errs.ExitOK)
	}

	log := cmdutil.NewLogger(stderr, opts.Verbose)
	cfg, err := config.FromOptions(opts)
	if err != nil {
		log.Errorf("%v", err)
		return errs.ExitCode(err)
	}

	p := pipeline.New(cfg, deps.NewEngine(cfg, stderr), log, outw)
	_, err = p.Run(parent)
	if ferr := outw.Flush(); err == nil && ferr != nil && !writers.IsBrokenPipe(ferr) {
		err = ferr
	}
	if err != nil {
		if parent.Err() != nil {
			return errs.ExitCancelled
		}
		log.Errorf("%v", err)
		return errs.ExitCode(err)
	}
	return errs.ExitOK
}

// flushCode flushes help or version output; a closed pipe is not an error.
func flushCode(outw *bufio.Writer, stderr io.Writer, code int) int {
	if err := outw.Flush(); err != nil && !writers.IsBrokenPipe(err) {
		_, _ = fmt.Fprintf(stderr, "error: %v\n", err)
		return errs.ExitFatal
	}
	return code
}
