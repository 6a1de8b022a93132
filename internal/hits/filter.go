// Package hits parses the tabular outputs of the external engine and applies
// the repeat-threshold filter to raw search hits.
package hits

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"kmerx/internal/errs"
)

// DefaultRepeatThreshold is the match count at which a query is considered a
// repeat and dropped.
const DefaultRepeatThreshold = 100

// Hit is one search result line: queryId position matchCount [...]. Only
// the match count is interpreted; the position is passed through as text.
type Hit struct {
	QueryID    string
	Position   string
	MatchCount int64
	Line       string
}

// ParseHit splits a whitespace-separated hit line. ok is false for lines with
// fewer than three fields, which callers skip.
func ParseHit(line string) (h Hit, ok bool, err error) {
	f := strings.Fields(line)
	if len(f) < 3 {
		return Hit{}, false, nil
	}
	n, err := strconv.ParseInt(f[2], 10, 64)
	if err != nil || n < 0 {
		return Hit{}, false, errs.Integrity("bad match count in search hit %q", line)
	}
	return Hit{QueryID: f[0], Position: f[1], MatchCount: n, Line: line}, true, nil
}

// Summary is what a filter pass reports.
type Summary struct {
	Retained   int   // hit lines kept
	Dropped    int   // queries over the threshold
	Skipped    int   // lines with fewer than three fields
	MatchCount int64 // sum of retained match counts
}

// Filter streams hits from r to w, dropping every hit whose match count is at
// or above threshold. warn is called once per dropped line.
type Filter struct {
	Threshold int64
	Warn      func(format string, a ...any)
}

// NewFilter validates threshold.
func NewFilter(threshold int64, warn func(string, ...any)) (*Filter, error) {
	if threshold <= 0 {
		return nil, errs.Config("repeat threshold must be a positive integer, got %d", threshold)
	}
	if warn == nil {
		warn = func(string, ...any) {}
	}
	return &Filter{Threshold: threshold, Warn: warn}, nil
}

// Run performs the single filtering pass.
func (f *Filter) Run(r io.Reader, w io.Writer) (Summary, error) {
	var sum Summary
	bw := bufio.NewWriter(w)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64<<10), 16<<20)
	for sc.Scan() {
		line := sc.Text()
		h, ok, err := ParseHit(line)
		if err != nil {
			return sum, err
		}
		if !ok {
			sum.Skipped++
			continue
		}
		if h.MatchCount >= f.Threshold {
			f.Warn("query dropped, %d matches reach repeat threshold %d: %s", h.MatchCount, f.Threshold, line)
			sum.Dropped++
			continue
		}
		if _, err := bw.WriteString(line); err != nil {
			return sum, errors.Wrap(err, "writing retained hits")
		}
		if err := bw.WriteByte('\n'); err != nil {
			return sum, errors.Wrap(err, "writing retained hits")
		}
		sum.Retained++
		sum.MatchCount += h.MatchCount
	}
	if err := sc.Err(); err != nil {
		return sum, errors.Wrap(err, "reading search hits")
	}
	return sum, errors.Wrap(bw.Flush(), "writing retained hits")
}
