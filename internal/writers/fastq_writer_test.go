package writers

import (
	"bytes"
	"errors"
	"io"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"

	"kmerx/internal/fastq"
)

func TestFASTQWriterKeepsOrder(t *testing.T) {
	var b bytes.Buffer
	in, done := StartFASTQWriter(&b, 1)
	in <- fastq.Record{ID: "r2", Seq: "AC", Qual: "II"}
	in <- fastq.Record{ID: "r1", Seq: "G", Qual: "#"}
	close(in)
	require.NoError(t, <-done)
	require.Equal(t, "@r2\nAC\n+\nII\n@r1\nG\n+\n#\n", b.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, syscall.EPIPE }

func TestFASTQWriterDrainsAfterError(t *testing.T) {
	in, done := StartFASTQWriter(failingWriter{}, 1)
	long := string(bytes.Repeat([]byte("A"), 1<<17))
	for i := 0; i < 10; i++ {
		in <- fastq.Record{ID: "r", Seq: long, Qual: long}
	}
	close(in)
	err := <-done
	require.Error(t, err)
	require.True(t, IsBrokenPipe(err))
}

func TestIsBrokenPipe(t *testing.T) {
	require.True(t, IsBrokenPipe(io.ErrClosedPipe))
	require.False(t, IsBrokenPipe(nil))
	require.False(t, IsBrokenPipe(errors.New("disk full")))
}
