// Package taskgroup runs side tasks concurrently and joins them. Unlike a
// plain errgroup, one failing task never cancels the others: every task runs
// to completion and every failure is reported at the join.
package taskgroup

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Group is a fan-out/fan-in barrier. The zero value is not usable; use New.
type Group struct {
	ctx  context.Context
	eg   errgroup.Group
	mu   sync.Mutex
	errs []*TaskError
}

// New returns a Group whose tasks receive ctx. limit <= 0 means unbounded.
func New(ctx context.Context, limit int) *Group {
	g := &Group{ctx: ctx}
	if limit > 0 {
		g.eg.SetLimit(limit)
	}
	return g
}

// Go starts fn as the task called name.
func (g *Group) Go(name string, fn func(ctx context.Context) error) {
	g.eg.Go(func() error {
		if err := fn(g.ctx); err != nil {
			g.mu.Lock()
			g.errs = append(g.errs, &TaskError{Task: name, Err: err})
			g.mu.Unlock()
		}
		// never short-circuit the group
		return nil
	})
}

// Wait blocks until every task has returned. It reports nil, the single
// task failure, or a *MultiError holding all of them.
func (g *Group) Wait() error {
	_ = g.eg.Wait()
	g.mu.Lock()
	defer g.mu.Unlock()
	switch len(g.errs) {
	case 0:
		return nil
	case 1:
		return g.errs[0]
	}
	sort.Slice(g.errs, func(i, j int) bool { return g.errs[i].Task < g.errs[j].Task })
	return &MultiError{Errs: append([]*TaskError(nil), g.errs...)}
}

// TaskError is the failure of one named task.
type TaskError struct {
	Task string
	Err  error
}

func (e *TaskError) Error() string { return e.Task + ": " + e.Err.Error() }
func (e *TaskError) Unwrap() error { return e.Err }

// MultiError collects several task failures, ordered by task name.
type MultiError struct{ Errs []*TaskError }

func (e *MultiError) Error() string {
	parts := make([]string, len(e.Errs))
	for i, te := range e.Errs {
		parts[i] = te.Error()
	}
	return fmt.Sprintf("%d tasks failed: %s", len(e.Errs), strings.Join(parts, "; "))
}

// Unwrap lets errors.Is and errors.As look into every task failure.
func (e *MultiError) Unwrap() []error {
	out := make([]error, len(e.Errs))
	for i, te := range e.Errs {
		out[i] = te
	}
	return out
}
