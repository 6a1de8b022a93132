package hits

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring/roaring64"
	"github.com/pkg/errors"
	"github.com/shenwei356/xopen"

	"kmerx/internal/errs"
)

// Match is one extended read: its record number and base sequence.
type Match struct {
	Record uint64
	Bases  string
}

// ParseMatch reads the last two tab-separated columns of line as
// recordNumber and baseSequence; leading columns are ignored.
func ParseMatch(line string) (Match, error) {
	line = strings.TrimRight(line, "\r\n")
	tab := strings.LastIndexByte(line, '\t')
	if tab < 0 {
		return Match{}, errs.Integrity("extended match %q has fewer than two columns", line)
	}
	bases := line[tab+1:]
	head := line[:tab]
	if j := strings.LastIndexByte(head, '\t'); j >= 0 {
		head = head[j+1:]
	}
	rec, err := strconv.ParseUint(strings.TrimSpace(head), 10, 64)
	if err != nil {
		return Match{}, errs.Integrity("bad record number in extended match %q", line)
	}
	return Match{Record: rec, Bases: bases}, nil
}

// ReadMatches parses every non-empty line of r.
func ReadMatches(r io.Reader) ([]Match, error) {
	var out []Match
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64<<10), 16<<20)
	for sc.Scan() {
		if len(sc.Bytes()) == 0 {
			continue
		}
		m, err := ParseMatch(sc.Text())
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, errors.Wrap(sc.Err(), "reading extended matches")
}

// ReadMatchFile parses a (possibly compressed) match file. An empty file
// holds no matches.
func ReadMatchFile(path string) ([]Match, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	if st.Size() == 0 {
		return nil, nil
	}
	fh, err := xopen.Ropen(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer fh.Close()
	ms, err := ReadMatches(fh)
	return ms, errors.Wrap(err, path)
}

// SortUnique orders ms by record number and keeps the first occurrence of
// each record. ms is reordered in place.
func SortUnique(ms []Match) []Match {
	slices.SortStableFunc(ms, func(a, b Match) int {
		switch {
		case a.Record < b.Record:
			return -1
		case a.Record > b.Record:
			return 1
		}
		return 0
	})
	return slices.CompactFunc(ms, func(a, b Match) bool { return a.Record == b.Record })
}

// Merge adds the entries of extra whose record is not already in primary and
// returns the union sorted by record.
func Merge(primary, extra []Match) []Match {
	seen := roaring64.New()
	for _, m := range primary {
		seen.Add(m.Record)
	}
	out := make([]Match, 0, len(primary)+len(extra))
	out = append(out, primary...)
	for _, m := range extra {
		if seen.CheckedAdd(m.Record) {
			out = append(out, m)
		}
	}
	return SortUnique(out)
}

// Select keeps the first match of every record listed in want and reports
// the wanted records that have no match, in want order. Matches for records
// not in want are left out.
func Select(ms []Match, want []uint64) (kept []Match, missing []uint64) {
	wanted := roaring64.New()
	wanted.AddMany(want)
	found := roaring64.New()
	for _, m := range ms {
		if wanted.Contains(m.Record) && found.CheckedAdd(m.Record) {
			kept = append(kept, m)
		}
	}
	for _, r := range want {
		if !found.Contains(r) {
			missing = append(missing, r)
		}
	}
	return kept, missing
}

// Records lists the record numbers of ms in order.
func Records(ms []Match) []uint64 {
	out := make([]uint64, len(ms))
	for i, m := range ms {
		out[i] = m.Record
	}
	return out
}

// WriteMatches writes ms as recordNumber<TAB>bases lines.
func WriteMatches(w io.Writer, ms []Match) error {
	bw := bufio.NewWriter(w)
	for _, m := range ms {
		if _, err := fmt.Fprintf(bw, "%d\t%s\n", m.Record, m.Bases); err != nil {
			return errors.Wrap(err, "writing matches")
		}
	}
	return errors.Wrap(bw.Flush(), "writing matches")
}

// RequestQueryID labels the lines of a record request.
const RequestQueryID = "mate"

// WriteRequest renders record numbers in the same three-column shape as a
// search hit (queryId position matchCount), one record per line, so the
// extension engine can be fed explicit records.
func WriteRequest(w io.Writer, recs []uint64) error {
	bw := bufio.NewWriter(w)
	for _, r := range recs {
		if _, err := fmt.Fprintf(bw, "%s\t%d\t1\n", RequestQueryID, r); err != nil {
			return errors.Wrap(err, "writing record request")
		}
	}
	return errors.Wrap(bw.Flush(), "writing record request")
}
