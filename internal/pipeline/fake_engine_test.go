package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"kmerx/internal/engine"
)

// fakeEngine indexes the builder's sequence text in memory and answers
// searches by substring scan. Entry numbers are line numbers.
type fakeEngine struct {
	entries []string
	calls   []string
	fail    map[string]error
	// answer, when set, lists the entries returned for a requested record
	answer func(r int) []int
}

var _ engine.Engine = (*fakeEngine)(nil)

func (f *fakeEngine) enter(name string) error {
	f.calls = append(f.calls, name)
	return f.fail[name]
}

func (f *fakeEngine) Build(_ context.Context, seqs, _ string) error {
	if err := f.enter("build"); err != nil {
		return err
	}
	lines, err := readLines(seqs)
	f.entries = lines
	return err
}

func (f *fakeEngine) Search(_ context.Context, _, kmers, out string) error {
	if err := f.enter("search"); err != nil {
		return err
	}
	ks, err := readLines(kmers)
	if err != nil {
		return err
	}
	var b strings.Builder
	for _, k := range ks {
		if n := len(f.containing(k)); n > 0 {
			fmt.Fprintf(&b, "%s 0 %d\n", k, n)
		}
	}
	return os.WriteFile(out, []byte(b.String()), 0o644)
}

func (f *fakeEngine) Extend(_ context.Context, _, hitsPath, out string) error {
	if err := f.enter("extend"); err != nil {
		return err
	}
	lines, err := readLines(hitsPath)
	if err != nil {
		return err
	}
	var b strings.Builder
	for _, l := range lines {
		k := strings.Fields(l)[0]
		for _, r := range f.containing(k) {
			fmt.Fprintf(&b, "%s\t%d\t%s\n", k, r, f.entries[r])
		}
	}
	return os.WriteFile(out, []byte(b.String()), 0o644)
}

func (f *fakeEngine) ExtendRecords(_ context.Context, _, request, out string) error {
	if err := f.enter("extend-records"); err != nil {
		return err
	}
	lines, err := readLines(request)
	if err != nil {
		return err
	}
	var b strings.Builder
	for _, l := range lines {
		r, err := strconv.Atoi(strings.Fields(l)[1])
		if err != nil {
			return err
		}
		got := []int{r}
		if f.answer != nil {
			got = f.answer(r)
		}
		for _, g := range got {
			fmt.Fprintf(&b, "%d\t%s\n", g, f.entries[g])
		}
	}
	return os.WriteFile(out, []byte(b.String()), 0o644)
}

func (f *fakeEngine) Dump(_ context.Context, _, out string) error {
	if err := f.enter("dump"); err != nil {
		return err
	}
	var b strings.Builder
	// reverse order: the pipeline must sort
	for r := len(f.entries) - 1; r >= 0; r-- {
		fmt.Fprintf(&b, "%d\t%s\n", r, f.entries[r])
	}
	return os.WriteFile(out, []byte(b.String()), 0o644)
}

func (f *fakeEngine) containing(k string) []int {
	var out []int
	for i, e := range f.entries {
		if strings.Contains(e, k) {
			out = append(out, i)
		}
	}
	return out
}

func readLines(path string) ([]string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	var out []string
	sc := bufio.NewScanner(fh)
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	return out, sc.Err()
}
