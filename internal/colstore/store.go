package colstore

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"kmerx/internal/proc"
)

// Store returns archive records by number, in request order.
type Store interface {
	Lines(ctx context.Context, recs []uint64) ([]string, error)
	Close() error
}

// Counter is implemented by stores that know their record count.
type Counter interface {
	Count() uint64
}

// ExecStore delegates lookups to an external line-indexed retrieval tool,
// invoked as `<Tool...> <Archive> n1 n2 ...`, one output line per number.
type ExecStore struct {
	Tool    []string
	Archive string
	Runner  proc.Runner
}

func (s *ExecStore) Lines(ctx context.Context, recs []uint64) ([]string, error) {
	if len(recs) == 0 {
		return nil, nil
	}
	argv := make([]string, 0, len(s.Tool)+1+len(recs))
	argv = append(argv, s.Tool...)
	argv = append(argv, s.Archive)
	for _, r := range recs {
		argv = append(argv, strconv.FormatUint(r, 10))
	}
	out, err := s.Runner.Output(ctx, argv)
	if err != nil {
		return nil, errors.Wrapf(err, "looking up %d records in %s", len(recs), s.Archive)
	}
	// no output at all is zero lines; "\n" is one empty line
	if len(out) == 0 {
		return []string{}, nil
	}
	lines := strings.Split(strings.TrimSuffix(string(out), "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines, nil
}

func (s *ExecStore) Close() error { return nil }

// OpenStore opens archive natively, or through tool when it is non-empty.
func OpenStore(archive string, tool []string, runner proc.Runner, cacheBlocks int) (Store, error) {
	if len(tool) > 0 {
		return &ExecStore{Tool: tool, Archive: archive, Runner: runner}, nil
	}
	r, err := Open(archive, cacheBlocks)
	if err != nil {
		return nil, err
	}
	return r, nil
}
