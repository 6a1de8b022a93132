// Package fastq reads and formats FASTQ records.
//
// Opening a Reader turns off sequence validation in shenwei356/bio/seq for
// the whole process: reads may carry any byte in their sequence line, and
// the index builder decides what it accepts.
package fastq

import (
	"bufio"
	"io"
	"sync"

	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"

	"kmerx/internal/errs"
)

var disableValidation sync.Once

// Record is one FASTQ entry. ID is the full header line without '@'.
type Record struct {
	ID   string
	Seq  string
	Qual string
}

// Reader yields FASTQ records from a plain or compressed file.
type Reader struct {
	path string
	r    *fastx.Reader
	n    uint64
}

// Open starts reading path ("-" is stdin).
func Open(path string) (*Reader, error) {
	disableValidation.Do(func() { seq.ValidateSeq = false })
	r, err := fastx.NewReader(seq.DNAredundant, path, fastx.DefaultIDRegexp)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	return &Reader{path: path, r: r}, nil
}

// Next returns the next record, or io.EOF.
func (r *Reader) Next() (Record, error) {
	rec, err := r.r.Read()
	if err != nil {
		if err == io.EOF {
			return Record{}, io.EOF
		}
		return Record{}, errors.Wrapf(err, "%s: record %d", r.path, r.n+1)
	}
	r.n++
	if len(rec.Seq.Qual) == 0 && len(rec.Seq.Seq) > 0 {
		return Record{}, errs.Integrity("%s: record %d (%s) has no quality line", r.path, r.n, rec.Name)
	}
	if len(rec.Seq.Qual) != len(rec.Seq.Seq) {
		return Record{}, errs.Integrity("%s: record %d (%s) has %d bases but %d qualities",
			r.path, r.n, rec.Name, len(rec.Seq.Seq), len(rec.Seq.Qual))
	}
	// the reader reuses its buffers between calls
	return Record{
		ID:   string(rec.Name),
		Seq:  string(rec.Seq.Seq),
		Qual: string(rec.Seq.Qual),
	}, nil
}

// Count is the number of records returned so far.
func (r *Reader) Count() uint64 { return r.n }

func (r *Reader) Close() { r.r.Close() }

// Write formats rec as four FASTQ lines.
func Write(w *bufio.Writer, rec Record) error {
	w.WriteByte('@')
	w.WriteString(rec.ID)
	w.WriteByte('\n')
	w.WriteString(rec.Seq)
	w.WriteString("\n+\n")
	w.WriteString(rec.Qual)
	return w.WriteByte('\n')
}
