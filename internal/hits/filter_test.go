package hits

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"kmerx/internal/errs"
)

func runFilter(t *testing.T, threshold int64, in string) (Summary, string, []string) {
	t.Helper()
	var warnings []string
	f, err := NewFilter(threshold, func(format string, a ...any) {
		warnings = append(warnings, fmt.Sprintf(format, a...))
	})
	require.NoError(t, err)
	var out bytes.Buffer
	sum, err := f.Run(strings.NewReader(in), &out)
	require.NoError(t, err)
	return sum, out.String(), warnings
}

func TestFilterDropsRepeats(t *testing.T) {
	should := require.New(t)
	sum, out, warns := runFilter(t, 100, "q1 3 50\nq2 7 150\n")
	should.Equal("q1 3 50\n", out)
	should.Equal(1, sum.Retained)
	should.Equal(1, sum.Dropped)
	should.EqualValues(50, sum.MatchCount)
	should.Len(warns, 1)
	should.Contains(warns[0], "q2 7 150")
}

func TestFilterThresholdIsExclusive(t *testing.T) {
	sum, out, _ := runFilter(t, 100, "a 1 99\nb 2 100\n")
	require.Equal(t, "a 1 99\n", out)
	require.Equal(t, 1, sum.Dropped)
}

func TestFilterIgnoresShortLines(t *testing.T) {
	sum, out, warns := runFilter(t, 10, "\nq1 3\nq2 4 5 extra cols\n")
	require.Equal(t, "q2 4 5 extra cols\n", out)
	require.Equal(t, 2, sum.Skipped)
	require.Empty(t, warns)
}

func TestFilterPartitionProperty(t *testing.T) {
	var in strings.Builder
	var wantSum int64
	wantDropped := 0
	for i := 0; i < 300; i++ {
		n := int64((i * 37) % 211)
		fmt.Fprintf(&in, "k%d %d %d\n", i, i, n)
		if n < 120 {
			wantSum += n
		} else {
			wantDropped++
		}
	}
	sum, _, warns := runFilter(t, 120, in.String())
	require.Equal(t, wantSum, sum.MatchCount)
	require.Equal(t, wantDropped, sum.Dropped)
	require.Len(t, warns, wantDropped)
	require.Equal(t, 300-wantDropped, sum.Retained)
}

func TestFilterRejectsBadThreshold(t *testing.T) {
	for _, th := range []int64{0, -5} {
		_, err := NewFilter(th, nil)
		require.True(t, errs.IsConfig(err), "threshold %d", th)
	}
}

func TestFilterBadCount(t *testing.T) {
	f, err := NewFilter(100, nil)
	require.NoError(t, err)
	_, err = f.Run(strings.NewReader("q1 3 many\n"), &bytes.Buffer{})
	require.True(t, errs.IsIntegrity(err))
}

func TestFilterPassesPositionThrough(t *testing.T) {
	should := require.New(t)
	f, err := NewFilter(100, nil)
	should.NoError(err)
	var out bytes.Buffer
	sum, err := f.Run(strings.NewReader("q1 chr2:17 4\nq2 - 150\n"), &out)
	should.NoError(err)
	should.Equal("q1 chr2:17 4\n", out.String())
	should.Equal(Summary{Retained: 1, Dropped: 1, MatchCount: 4}, sum)

	h, ok, err := ParseHit("q1 chr2:17 4")
	should.NoError(err)
	should.True(ok)
	should.Equal("chr2:17", h.Position)
}
