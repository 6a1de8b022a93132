// internal/cmdutil/log.go
package cmdutil

import (
	"fmt"
	"io"
	"sync"
)

// Warnf writes a one-line warning unless quiet is set.
func Warnf(dst io.Writer, quiet bool, format string, a ...any) {
	if quiet {
		return
	}
	_, _ = fmt.Fprintf(dst, "WARN: "+format+"\n", a...)
}

// Logger writes prefixed diagnostic lines to a single stream (stderr in the
// CLI). Info lines only appear in verbose mode; warnings and errors always do.
type Logger struct {
	mu      sync.Mutex
	out     io.Writer
	verbose bool
}

// NewLogger returns a Logger writing to out. A nil out discards everything.
func NewLogger(out io.Writer, verbose bool) *Logger {
	if out == nil {
		out = io.Discard
	}
	return &Logger{out: out, verbose: verbose}
}

func (l *Logger) Verbose() bool { return l != nil && l.verbose }

// Writer exposes the underlying stream (progress bars draw on it).
func (l *Logger) Writer() io.Writer {
	if l == nil {
		return io.Discard
	}
	return l.out
}

func (l *Logger) Infof(format string, a ...any) {
	if !l.Verbose() {
		return
	}
	l.printf("info: ", format, a...)
}

func (l *Logger) Warnf(format string, a ...any) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	Warnf(l.out, false, format, a...)
}

func (l *Logger) Errorf(format string, a ...any) {
	if l == nil {
		return
	}
	l.printf("error: ", format, a...)
}

func (l *Logger) printf(prefix, format string, a ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = fmt.Fprintf(l.out, prefix+format+"\n", a...)
}
