package engine

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/pkg/errors"

	"kmerx/internal/errs"
	"kmerx/internal/proc"
)

// Engine is the contract the pipeline needs from the BWT engine. Every call
// blocks until the tool exits. Methods with an out path capture the tool's
// stdout into that file.
type Engine interface {
	// Build indexes the sequence text (one entry per line) under prefix.
	Build(ctx context.Context, seqs, prefix string) error
	// Search writes one "queryId position matchCount" line per k-mer hit.
	Search(ctx context.Context, prefix, kmers, out string) error
	// Extend resolves hits to "recordNumber<TAB>bases" lines.
	Extend(ctx context.Context, prefix, hits, out string) error
	// ExtendRecords resolves an explicit record request the same way.
	ExtendRecords(ctx context.Context, prefix, request, out string) error
	// Dump lists "recordNumber<TAB>bases" for every indexed entry.
	Dump(ctx context.Context, prefix, out string) error
}

// Commands holds the argv prefix of each engine tool. A command may carry
// its own leading arguments ("bwt search -t 4").
type Commands struct {
	Build  []string
	Search []string
	Extend []string
	Dump   []string
}

// Exec runs the engine as external processes.
type Exec struct {
	Cmd    Commands
	Runner proc.Runner
	// Sort and SortOptions are forwarded to the build tool when set.
	Sort        string
	SortOptions string
	// BuildOutput receives the build tool's stdout; nil discards it.
	BuildOutput io.Writer
}

var _ Engine = (*Exec)(nil)

func (e *Exec) Build(ctx context.Context, seqs, prefix string) error {
	argv, err := command("--bwt-build", e.Cmd.Build, seqs, prefix)
	if err != nil {
		return err
	}
	if e.Sort != "" {
		argv = append(argv, "--sort", e.Sort)
	}
	if e.SortOptions != "" {
		argv = append(argv, "--sort-options", e.SortOptions)
	}
	out := e.BuildOutput
	if out == nil {
		out = io.Discard
	}
	return e.Runner.Run(ctx, argv, nil, out)
}

func (e *Exec) Search(ctx context.Context, prefix, kmers, out string) error {
	argv, err := command("--bwt-search", e.Cmd.Search, prefix, kmers)
	if err != nil {
		return err
	}
	return e.capture(ctx, argv, out)
}

func (e *Exec) Extend(ctx context.Context, prefix, hits, out string) error {
	argv, err := command("--bwt-extend", e.Cmd.Extend, prefix, hits)
	if err != nil {
		return err
	}
	return e.capture(ctx, argv, out)
}

func (e *Exec) ExtendRecords(ctx context.Context, prefix, request, out string) error {
	argv, err := command("--bwt-extend", e.Cmd.Extend, "--records", prefix, request)
	if err != nil {
		return err
	}
	return e.capture(ctx, argv, out)
}

func (e *Exec) Dump(ctx context.Context, prefix, out string) error {
	argv, err := command("--bwt-dump", e.Cmd.Dump, prefix)
	if err != nil {
		return err
	}
	return e.capture(ctx, argv, out)
}

func command(flagName string, base []string, args ...string) ([]string, error) {
	if len(base) == 0 {
		return nil, errs.Config("no %s command configured", flagName)
	}
	argv := make([]string, 0, len(base)+len(args))
	argv = append(argv, base...)
	return append(argv, args...), nil
}

// capture runs argv with stdout redirected into the file at out.
func (e *Exec) capture(ctx context.Context, argv []string, out string) error {
	fh, err := os.Create(out)
	if err != nil {
		return errors.Wrap(err, "creating tool output")
	}
	bw := bufio.NewWriterSize(fh, 1<<20)
	if err := e.Runner.Run(ctx, argv, nil, bw); err != nil {
		_ = fh.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = fh.Close()
		return errors.Wrapf(err, "writing %s", out)
	}
	return errors.Wrapf(fh.Close(), "closing %s", out)
}
