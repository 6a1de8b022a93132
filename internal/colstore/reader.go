package colstore

import (
	"bytes"
	"context"
	"os"

	"github.com/edsrzf/mmap-go"
	lru "github.com/hashicorp/golang-lru"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"

	"kmerx/internal/errs"
)

// DefaultCacheBlocks is the number of decoded blocks a Reader keeps.
const DefaultCacheBlocks = 64

// Reader serves random record lookups from an archive written by Writer.
// A Reader is not safe for concurrent use.
type Reader struct {
	path    string
	fh      *os.File
	data    mmap.MMap
	hdr     indexHeader
	offsets []uint64
	dec     *zstd.Decoder
	cache   *lru.ARCCache
	buf     []byte
}

// Open maps the archive at path and loads its index.
func Open(path string, cacheBlocks int) (*Reader, error) {
	idx, err := os.ReadFile(IndexPath(path))
	if err != nil {
		return nil, errors.Wrap(err, "reading archive index")
	}
	hdr, offsets, err := parseIndex(idx)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	if cacheBlocks <= 0 {
		cacheBlocks = DefaultCacheBlocks
	}
	cache, err := lru.NewARC(cacheBlocks)
	if err != nil {
		return nil, errors.Wrap(err, "creating block cache")
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, errors.Wrap(err, "creating zstd decoder")
	}
	r := &Reader{path: path, hdr: hdr, offsets: offsets, dec: dec, cache: cache}

	fh, err := os.Open(path)
	if err != nil {
		dec.Close()
		return nil, errors.Wrap(err, "opening archive")
	}
	st, err := fh.Stat()
	if err != nil {
		dec.Close()
		_ = fh.Close()
		return nil, errors.Wrap(err, "stat archive")
	}
	if uint64(st.Size()) != offsets[len(offsets)-1] {
		dec.Close()
		_ = fh.Close()
		return nil, errs.Integrity("%s: archive is %d bytes, index expects %d", path, st.Size(), offsets[len(offsets)-1])
	}
	r.fh = fh
	// mmap of an empty file fails on most platforms
	if st.Size() > 0 {
		r.data, err = mmap.Map(fh, mmap.RDONLY, 0)
		if err != nil {
			_ = r.Close()
			return nil, errors.Wrap(err, "mapping archive")
		}
	}
	return r, nil
}

// Count is the number of records in the archive.
func (r *Reader) Count() uint64 { return r.hdr.LineCount }

// Lines returns the records numbered recs, in request order.
func (r *Reader) Lines(ctx context.Context, recs []uint64) ([]string, error) {
	out := make([]string, 0, len(recs))
	per := uint64(r.hdr.LinesPerBlock)
	for i, rec := range recs {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if rec >= r.hdr.LineCount {
			return nil, errs.Integrity("%s: record %d out of range (%d records)", r.path, rec, r.hdr.LineCount)
		}
		lines, err := r.block(rec / per)
		if err != nil {
			return nil, err
		}
		j := int(rec % per)
		if j >= len(lines) {
			return nil, errs.Integrity("%s: block %d holds %d lines, record %d missing", r.path, rec/per, len(lines), rec)
		}
		out = append(out, lines[j])
	}
	return out, nil
}

func (r *Reader) block(b uint64) ([]string, error) {
	if v, ok := r.cache.Get(b); ok {
		return v.([]string), nil
	}
	frame := r.data[r.offsets[b]:r.offsets[b+1]]
	var err error
	r.buf, err = r.dec.DecodeAll(frame, r.buf[:0])
	if err != nil {
		return nil, errs.Integrity("%s: block %d: %v", r.path, b, err)
	}
	raw := bytes.TrimSuffix(r.buf, []byte{'\n'})
	parts := bytes.Split(raw, []byte{'\n'})
	lines := make([]string, len(parts))
	for i, p := range parts {
		lines[i] = string(p)
	}
	want := uint64(r.hdr.LinesPerBlock)
	if last := r.hdr.BlockCount - 1; b == last {
		want = r.hdr.LineCount - last*uint64(r.hdr.LinesPerBlock)
	}
	if uint64(len(lines)) != want {
		return nil, errs.Integrity("%s: block %d holds %d lines, index expects %d", r.path, b, len(lines), want)
	}
	r.cache.Add(b, lines)
	return lines, nil
}

// Close releases the mapping and the decoder.
func (r *Reader) Close() error {
	r.dec.Close()
	var err error
	if r.data != nil {
		err = r.data.Unmap()
		r.data = nil
	}
	if r.fh != nil {
		if cerr := r.fh.Close(); err == nil {
			err = cerr
		}
		r.fh = nil
	}
	return err
}
