// Package proc runs external tools synchronously and turns failures into
// errs.ToolError values carrying the command line and a stderr tail.
package proc

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"time"

	"github.com/pkg/errors"

	"kmerx/internal/errs"
)

// stderrTail bounds how much of a failing tool's stderr is kept.
const stderrTail = 4 << 10

const waitDelay = 2 * time.Second

// Runner launches subprocesses. The zero value is usable.
type Runner struct {
	// Timeout kills a tool that runs longer; 0 disables it.
	Timeout time.Duration
	// Stderr, when set, also receives the tool's stderr as it is produced.
	Stderr io.Writer
}

// Run executes argv, wiring stdin and stdout, and blocks until exit.
func (r Runner) Run(ctx context.Context, argv []string, stdin io.Reader, stdout io.Writer) error {
	if len(argv) == 0 {
		return errs.Config("empty command")
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	// grandchildren holding the pipes must not keep a killed tool alive
	cmd.WaitDelay = waitDelay
	tail := &tailBuffer{max: stderrTail}
	if r.Stderr != nil {
		cmd.Stderr = io.MultiWriter(tail, r.Stderr)
	} else {
		cmd.Stderr = tail
	}

	err := cmd.Run()
	if err == nil {
		return nil
	}
	if ctx.Err() != nil && !errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ctx.Err()
	}
	te := &errs.ToolError{Cmd: append([]string(nil), argv...), Stderr: tail.String(), Err: err}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		te.ExitCode = ee.ExitCode()
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		te.Err = errors.Wrapf(ctx.Err(), "timed out after %s", r.Timeout)
		te.ExitCode = 0
	}
	return te
}

// Output runs argv and returns its stdout.
func (r Runner) Output(ctx context.Context, argv []string) ([]byte, error) {
	var out bytes.Buffer
	if err := r.Run(ctx, argv, nil, &out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	max int
	buf []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string { return string(t.buf) }
