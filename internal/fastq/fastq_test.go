package fastq

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"kmerx/internal/errs"
)

func TestRevComp(t *testing.T) {
	cases := map[string]string{
		"":        "",
		"ACGT":    "ACGT",
		"AACG":    "CGTT",
		"acgtN":   "Nacgt",
		"ARYX":    "NRYT",
		"GATTACA": "TGTAATC",
	}
	for in, want := range cases {
		require.Equal(t, want, RevComp(in), in)
	}
}

func TestFlipTwiceIsIdentity(t *testing.T) {
	r := Record{ID: "r1 1:N", Seq: "ACGGTN", Qual: "IIH#!5"}
	f := r.Flip()
	require.Equal(t, "NACCGT", f.Seq)
	require.Equal(t, "5!#HII", f.Qual)
	require.Equal(t, r, f.Flip())
}

func TestReadAndWrite(t *testing.T) {
	should := require.New(t)
	path := filepath.Join(t.TempDir(), "in.fq")
	in := "@r1 desc\nACGT\n+\nIIII\n@r2\nGG\n+\n#5\n"
	should.NoError(os.WriteFile(path, []byte(in), 0o644))

	r, err := Open(path)
	should.NoError(err)
	defer r.Close()

	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	for {
		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		should.NoError(err)
		should.NoError(Write(bw, rec))
	}
	should.NoError(bw.Flush())
	should.Equal(uint64(2), r.Count())
	should.Equal(in, buf.String())
}

func TestMismatchedQualities(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.fq")
	require.NoError(t, os.WriteFile(path, []byte("@r1\nACGT\n+\nII\n"), 0o644))
	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	_, err = r.Next()
	require.Error(t, err)
}

func TestFastaIsRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.fa")
	require.NoError(t, os.WriteFile(path, []byte(">r1\nACGT\n"), 0o644))
	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	_, err = r.Next()
	require.True(t, errs.IsIntegrity(err))
}

func TestOpenAcceptsAnySequenceBytes(t *testing.T) {
	should := require.New(t)
	path := filepath.Join(t.TempDir(), "odd.fq")
	should.NoError(os.WriteFile(path, []byte("@odd\nAC*J.x\n+\nIIIIII\n"), 0o644))

	r, err := Open(path)
	should.NoError(err)
	defer r.Close()
	rec, err := r.Next()
	should.NoError(err)
	should.Equal(Record{ID: "odd", Seq: "AC*J.x", Qual: "IIIIII"}, rec)
}
