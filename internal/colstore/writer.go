package colstore

import (
	"bufio"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// Writer appends lines to a new archive. Close must be called to flush the
// last block and write the index.
type Writer struct {
	path          string
	fh            *os.File
	bw            *bufio.Writer
	enc           *zstd.Encoder
	linesPerBlock int

	block   []byte
	inBlock int
	lines   uint64
	offset  uint64
	offsets []uint64
	frame   []byte
}

// Create starts an archive at path, truncating any existing one.
func Create(path string, linesPerBlock, level int) (*Writer, error) {
	if linesPerBlock <= 0 {
		linesPerBlock = DefaultLinesPerBlock
	}
	if level <= 0 {
		level = 3
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	if err != nil {
		return nil, errors.Wrap(err, "creating zstd encoder")
	}
	fh, err := os.Create(path)
	if err != nil {
		enc.Close()
		return nil, errors.Wrap(err, "creating archive")
	}
	return &Writer{
		path:          path,
		fh:            fh,
		bw:            bufio.NewWriterSize(fh, 1<<20),
		enc:           enc,
		linesPerBlock: linesPerBlock,
		offsets:       []uint64{0},
	}, nil
}

// Append adds one record. Lines must not contain a newline.
func (w *Writer) Append(line string) error {
	if strings.IndexByte(line, '\n') >= 0 {
		return errors.Errorf("archive line %d contains a newline", w.lines)
	}
	w.block = append(w.block, line...)
	w.block = append(w.block, '\n')
	w.inBlock++
	w.lines++
	if w.inBlock == w.linesPerBlock {
		return w.flushBlock()
	}
	return nil
}

// Count is the number of records appended so far.
func (w *Writer) Count() uint64 { return w.lines }

func (w *Writer) flushBlock() error {
	if w.inBlock == 0 {
		return nil
	}
	w.frame = w.enc.EncodeAll(w.block, w.frame[:0])
	if _, err := w.bw.Write(w.frame); err != nil {
		return errors.Wrap(err, "writing archive block")
	}
	w.offset += uint64(len(w.frame))
	w.offsets = append(w.offsets, w.offset)
	w.block = w.block[:0]
	w.inBlock = 0
	return nil
}

// Close flushes pending data and writes the index next to the archive.
func (w *Writer) Close() error {
	defer w.enc.Close()
	if err := w.flushBlock(); err != nil {
		_ = w.fh.Close()
		return err
	}
	if err := w.bw.Flush(); err != nil {
		_ = w.fh.Close()
		return errors.Wrap(err, "flushing archive")
	}
	if err := w.fh.Close(); err != nil {
		return errors.Wrap(err, "closing archive")
	}

	ih, err := os.Create(IndexPath(w.path))
	if err != nil {
		return errors.Wrap(err, "creating archive index")
	}
	h := indexHeader{
		LinesPerBlock: uint32(w.linesPerBlock),
		LineCount:     w.lines,
		BlockCount:    uint64(len(w.offsets) - 1),
	}
	if err := writeIndex(ih, h, w.offsets); err != nil {
		_ = ih.Close()
		return errors.Wrap(err, "writing archive index")
	}
	return errors.Wrap(ih.Close(), "closing archive index")
}
