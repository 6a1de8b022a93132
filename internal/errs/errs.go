// Package errs holds the failure taxonomy shared by every kmerx component and
// maps it onto process exit codes. Components return these types (possibly
// wrapped); only the app layer turns them into exit codes.
package errs

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrNoInput reports that a run had nothing to work on (empty FASTQ, no k-mers).
var ErrNoInput = errors.New("no input data")

// ConfigError is a bad flag or flag combination. Raised before any I/O.
type ConfigError struct{ Msg string }

func (e *ConfigError) Error() string { return e.Msg }

// Config builds a ConfigError.
func Config(format string, a ...any) error {
	return &ConfigError{Msg: fmt.Sprintf(format, a...)}
}

// ToolError is an external engine or helper tool that exited non-zero
// (or could not be started).
type ToolError struct {
	Cmd      []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ToolError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "external tool failed: %s", strings.Join(e.Cmd, " "))
	if e.ExitCode != 0 {
		fmt.Fprintf(&b, " (exit %d)", e.ExitCode)
	} else if e.Err != nil {
		fmt.Fprintf(&b, " (%v)", e.Err)
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		fmt.Fprintf(&b, ": %s", s)
	}
	return b.String()
}

func (e *ToolError) Unwrap() error { return e.Err }

// IntegrityError means the archives and the engine outputs disagree. There is
// no safe recovery from it.
type IntegrityError struct{ Msg string }

func (e *IntegrityError) Error() string { return "data integrity: " + e.Msg }

// Integrity builds an IntegrityError.
func Integrity(format string, a ...any) error {
	return &IntegrityError{Msg: fmt.Sprintf(format, a...)}
}

// LayoutError is a paired layout that maps a record onto itself.
type LayoutError struct {
	Record uint64
	Msg    string
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("layout inconsistency at record %d: %s", e.Record, e.Msg)
}

// CollisionError is an output path that already exists.
type CollisionError struct{ Path string }

func (e *CollisionError) Error() string {
	return fmt.Sprintf("output %q already exists", e.Path)
}

// Exit codes.
const (
	ExitOK        = 0
	ExitAbnormal  = 1
	ExitFatal     = 2
	ExitCancelled = 130
)

// ExitCode classifies err. Abnormal completions (nothing to do, refusing to
// overwrite) exit 1; everything else that is not a cancellation is fatal.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, context.Canceled) {
		return ExitCancelled
	}
	var ce *CollisionError
	if errors.Is(err, ErrNoInput) || errors.As(err, &ce) {
		return ExitAbnormal
	}
	return ExitFatal
}

// IsConfig reports whether err is (or wraps) a ConfigError.
func IsConfig(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsIntegrity reports whether err is (or wraps) an IntegrityError.
func IsIntegrity(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie)
}

// IsTool reports whether err is (or wraps) a ToolError.
func IsTool(err error) bool {
	var te *ToolError
	return errors.As(err, &te)
}

// IsLayout reports whether err is (or wraps) a LayoutError.
func IsLayout(err error) bool {
	var le *LayoutError
	return errors.As(err, &le)
}
