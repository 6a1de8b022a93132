package writers

import (
	"bufio"
	"io"

	"kmerx/internal/fastq"
)

// StartFASTQWriter spins up the single writer goroutine for FASTQ output.
// Records are written in channel order. After a write error the remaining
// records are drained so producers never block; the first error is reported
// once the channel is closed.
func StartFASTQWriter(out io.Writer, bufSize int) (chan<- fastq.Record, <-chan error) {
	if bufSize <= 0 {
		bufSize = 64
	}
	in := make(chan fastq.Record, bufSize)
	errCh := make(chan error, 1)

	go func() {
		bw := bufio.NewWriterSize(out, 1<<16)
		var err error
		for rec := range in {
			if err != nil {
				continue
			}
			err = fastq.Write(bw, rec)
		}
		if err == nil {
			err = bw.Flush()
		}
		errCh <- err
	}()

	return in, errCh
}
