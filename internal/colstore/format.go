// Package colstore is the indexed columnar store: an append-only text column
// (one line per record) compressed in zstd blocks, with a sidecar index that
// makes any record reachable by number without decompressing the rest.
//
// Data file:  concatenated zstd frames, one per block of LinesPerBlock lines.
// Index file: header, then BlockCount+1 little-endian uint64 frame offsets.
package colstore

import (
	"encoding/binary"
	"io"

	"kmerx/internal/errs"
)

// IndexSuffix is appended to an archive path to name its index.
const IndexSuffix = ".idx"

// DefaultLinesPerBlock trades random-access cost against compression ratio.
const DefaultLinesPerBlock = 4096

var indexMagic = [8]byte{'K', 'X', 'I', 'D', 'X', 0, 0, 1}

const indexHeaderSize = 8 + 4 + 4 + 8 + 8

type indexHeader struct {
	LinesPerBlock uint32
	LineCount     uint64
	BlockCount    uint64
}

// IndexPath returns the index path of the archive at path.
func IndexPath(path string) string { return path + IndexSuffix }

func writeIndex(w io.Writer, h indexHeader, offsets []uint64) error {
	buf := make([]byte, indexHeaderSize+8*len(offsets))
	copy(buf[0:8], indexMagic[:])
	binary.LittleEndian.PutUint32(buf[8:12], h.LinesPerBlock)
	// buf[12:16] reserved
	binary.LittleEndian.PutUint64(buf[16:24], h.LineCount)
	binary.LittleEndian.PutUint64(buf[24:32], h.BlockCount)
	for i, off := range offsets {
		binary.LittleEndian.PutUint64(buf[indexHeaderSize+8*i:], off)
	}
	_, err := w.Write(buf)
	return err
}

func parseIndex(b []byte) (indexHeader, []uint64, error) {
	if len(b) < indexHeaderSize || [8]byte(b[0:8]) != indexMagic {
		return indexHeader{}, nil, errs.Integrity("not a kmerx archive index")
	}
	h := indexHeader{
		LinesPerBlock: binary.LittleEndian.Uint32(b[8:12]),
		LineCount:     binary.LittleEndian.Uint64(b[16:24]),
		BlockCount:    binary.LittleEndian.Uint64(b[24:32]),
	}
	if h.LinesPerBlock == 0 {
		return indexHeader{}, nil, errs.Integrity("archive index has zero lines per block")
	}
	want := (h.LineCount + uint64(h.LinesPerBlock) - 1) / uint64(h.LinesPerBlock)
	if h.BlockCount != want {
		return indexHeader{}, nil, errs.Integrity("archive index declares %d blocks for %d lines", h.BlockCount, h.LineCount)
	}
	body := b[indexHeaderSize:]
	if uint64(len(body)) != 8*(h.BlockCount+1) {
		return indexHeader{}, nil, errs.Integrity("archive index is truncated")
	}
	offsets := make([]uint64, h.BlockCount+1)
	for i := range offsets {
		offsets[i] = binary.LittleEndian.Uint64(body[8*i:])
		if i > 0 && offsets[i] < offsets[i-1] {
			return indexHeader{}, nil, errs.Integrity("archive index offsets are not monotonic")
		}
	}
	return h, offsets, nil
}
