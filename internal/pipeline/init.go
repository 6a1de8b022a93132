package pipeline

import (
	"bufio"
	"context"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"

	"kmerx/internal/colstore"
	"kmerx/internal/common"
	"kmerx/internal/errs"
	"kmerx/internal/fastq"
	"kmerx/internal/jsonutil"
	"kmerx/internal/layout"
	"kmerx/internal/taskgroup"
	"kmerx/internal/version"
	"kmerx/pkg/api"
)

// Init builds an index from one FASTQ file, or from the two files of a
// paired run, under the configured prefix.
func (p *Pipeline) Init(ctx context.Context) (Report, error) {
	cfg := p.Cfg
	paths := cfg.Index
	for _, f := range []string{paths.EndPos, paths.IDs, paths.Quals, paths.Manifest} {
		if outputExists(f) {
			p.Log.Warnf("%s already exists and will be overwritten", f)
		}
	}
	if len(cfg.Inputs) == 2 {
		if a, b := common.PairKey(cfg.Inputs[0]), common.PairKey(cfg.Inputs[1]); a != b {
			p.Log.Warnf("paired files look unrelated (%s vs %s)", a, b)
		}
	}
	if dir := filepath.Dir(paths.Prefix); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return p.report, errors.Wrap(err, "creating index directory")
		}
	}

	ws, err := newWorkspace(cfg.TmpDir, cfg.Index.Prefix, cfg.KeepTemp, p.Log)
	if err != nil {
		return p.report, err
	}
	defer ws.close()
	seqText := ws.path("seqs.txt")

	err = p.step(StateReadInput, func() error {
		n, err := p.writeArchives(ctx, ws, seqText)
		if err != nil {
			return err
		}
		l := layout.Layout{
			SequenceCount:    n,
			SubSequenceCount: uint8(len(cfg.Inputs)),
		}
		if cfg.ReverseComplement {
			l.HasReverseComplement = 1
		}
		p.report.Layout, p.report.Reads = l, uint64(n)*uint64(len(cfg.Inputs))
		p.Log.Infof("%d reads per file, %d entries", n, l.EntryCount())
		return layout.Write(paths.EndPos, l)
	})
	if err != nil {
		return p.report, err
	}

	err = p.step(StateBuild, func() error {
		return p.Engine.Build(ctx, seqText, paths.Prefix)
	})
	if err != nil {
		return p.report, err
	}

	err = p.step(StateFinalize, func() error {
		want := p.report.Layout.EntryCount()
		g := taskgroup.New(ctx, 0)
		g.Go("compress sequences", func(ctx context.Context) error {
			return compressFile(ctx, seqText, paths.SeqArchive)
		})
		g.Go("verify ids", func(ctx context.Context) error {
			return verifyArchive(ctx, paths.IDs, want)
		})
		g.Go("verify quals", func(ctx context.Context) error {
			return verifyArchive(ctx, paths.Quals, want)
		})
		if err := g.Wait(); err != nil {
			return err
		}
		return p.writeManifest()
	})
	if err != nil {
		return p.report, err
	}
	return p.done(), nil
}

// writeArchives reads every input and appends its entries to the archives
// and the sequence text: the file's reads, then their reverse complements
// when enabled. It returns the per-file read count.
func (p *Pipeline) writeArchives(ctx context.Context, ws *workspace, seqText string) (uint32, error) {
	cfg := p.Cfg
	ids, err := colstore.Create(cfg.Index.IDs, 0, 0)
	if err != nil {
		return 0, err
	}
	quals, err := colstore.Create(cfg.Index.Quals, 0, 0)
	if err != nil {
		_ = ids.Close()
		return 0, err
	}
	seqs, err := os.Create(seqText)
	if err != nil {
		_ = ids.Close()
		_ = quals.Close()
		return 0, errors.Wrap(err, "creating sequence text")
	}
	sw := bufio.NewWriterSize(seqs, 1<<20)
	sink := &entrySink{ids: ids, quals: quals, seqs: sw}

	var perFile uint64
	for i, in := range cfg.Inputs {
		n, err := p.appendFile(ctx, ws, in, sink)
		if err != nil {
			_ = ids.Close()
			_ = quals.Close()
			_ = seqs.Close()
			return 0, err
		}
		p.Log.Infof("%s: %d reads", in, n)
		if i == 0 {
			perFile = n
		} else if n != perFile {
			_ = ids.Close()
			_ = quals.Close()
			_ = seqs.Close()
			return 0, errs.Integrity("paired files differ in read count: %s has %d, %s has %d",
				cfg.Inputs[0], perFile, in, n)
		}
	}

	err = ids.Close()
	if cerr := quals.Close(); err == nil {
		err = cerr
	}
	if ferr := sw.Flush(); err == nil && ferr != nil {
		err = errors.Wrap(ferr, "writing sequence text")
	}
	if cerr := seqs.Close(); err == nil && cerr != nil {
		err = errors.Wrap(cerr, "closing sequence text")
	}
	if err != nil {
		return 0, err
	}
	if perFile == 0 {
		return 0, errors.Wrap(errs.ErrNoInput, "input has no reads")
	}
	if perFile > math.MaxUint32 {
		return 0, errs.Config("%d reads per file exceed the index limit of %d", perFile, uint64(math.MaxUint32))
	}
	return uint32(perFile), nil
}

// entrySink appends one index entry to all three outputs.
type entrySink struct {
	ids, quals *colstore.Writer
	seqs       *bufio.Writer
}

func (s *entrySink) add(rec fastq.Record) error {
	if err := s.ids.Append(rec.ID); err != nil {
		return err
	}
	if err := s.quals.Append(rec.Qual); err != nil {
		return err
	}
	s.seqs.WriteString(rec.Seq)
	return s.seqs.WriteByte('\n')
}

// appendFile adds the entries of one input. Reverse complements are spooled
// to the workspace while reading so the input is only read once.
func (p *Pipeline) appendFile(ctx context.Context, ws *workspace, path string, sink *entrySink) (uint64, error) {
	r, err := fastq.Open(path)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	var spool *recordSpool
	if p.Cfg.ReverseComplement {
		if spool, err = newRecordSpool(ws.path("rc.spool")); err != nil {
			return 0, err
		}
		defer spool.remove()
	}

	for {
		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
		if r.Count()%(1<<16) == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}
		if err := sink.add(rec); err != nil {
			return 0, err
		}
		if spool != nil {
			if err := spool.put(rec.Flip()); err != nil {
				return 0, err
			}
		}
	}
	if spool != nil {
		if err := spool.drain(sink.add); err != nil {
			return 0, err
		}
	}
	return r.Count(), nil
}

// recordSpool buffers records in a zstd-compressed temp file.
type recordSpool struct {
	path string
	fh   *os.File
	enc  *zstd.Encoder
	bw   *bufio.Writer
}

func newRecordSpool(path string) (*recordSpool, error) {
	fh, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "creating spool")
	}
	enc, err := zstd.NewWriter(fh, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = fh.Close()
		return nil, errors.Wrap(err, "creating spool encoder")
	}
	return &recordSpool{path: path, fh: fh, enc: enc, bw: bufio.NewWriterSize(enc, 1<<16)}, nil
}

func (s *recordSpool) put(rec fastq.Record) error {
	return fastq.Write(s.bw, rec)
}

// drain replays the spooled records in write order.
func (s *recordSpool) drain(fn func(fastq.Record) error) error {
	if err := s.bw.Flush(); err != nil {
		return errors.Wrap(err, "writing spool")
	}
	if err := s.enc.Close(); err != nil {
		return errors.Wrap(err, "writing spool")
	}
	if _, err := s.fh.Seek(0, io.SeekStart); err != nil {
		return errors.Wrap(err, "rewinding spool")
	}
	dec, err := zstd.NewReader(s.fh)
	if err != nil {
		return errors.Wrap(err, "reading spool")
	}
	defer dec.Close()
	br := bufio.NewReaderSize(dec, 1<<16)
	var lines [4]string
	for {
		for i := range lines {
			line, err := br.ReadString('\n')
			if err == io.EOF && line == "" && i == 0 {
				return nil
			}
			if err != nil {
				return errors.Wrap(err, "reading spool")
			}
			lines[i] = line[:len(line)-1]
		}
		if err := fn(fastq.Record{ID: lines[0][1:], Seq: lines[1], Qual: lines[3]}); err != nil {
			return err
		}
	}
}

func (s *recordSpool) remove() {
	_ = s.fh.Close()
	_ = os.Remove(s.path)
}

// compressFile writes a zstd copy of src to dst.
func compressFile(ctx context.Context, src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrap(err, "opening sequence text")
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return errors.Wrap(err, "creating sequence archive")
	}
	enc, err := zstd.NewWriter(out, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		_ = out.Close()
		return errors.Wrap(err, "creating zstd encoder")
	}
	if _, err := io.Copy(enc, &ctxReader{ctx: ctx, r: in}); err != nil {
		enc.Close()
		_ = out.Close()
		return errors.Wrap(err, "compressing sequence text")
	}
	if err := enc.Close(); err != nil {
		_ = out.Close()
		return errors.Wrap(err, "compressing sequence text")
	}
	return errors.Wrap(out.Close(), "closing sequence archive")
}

// ctxReader stops a copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// verifyArchive reopens a finished archive and checks its record count and
// both ends.
func verifyArchive(ctx context.Context, path string, want uint64) error {
	r, err := colstore.Open(path, 2)
	if err != nil {
		return err
	}
	defer r.Close()
	if r.Count() != want {
		return errs.Integrity("%s holds %d records, expected %d", path, r.Count(), want)
	}
	if want == 0 {
		return nil
	}
	_, err = r.Lines(ctx, []uint64{0, want - 1})
	return err
}

func (p *Pipeline) writeManifest() error {
	cfg := p.Cfg
	l := p.report.Layout
	m := api.ManifestV1{
		Schema:            api.ManifestSchemaV1,
		Version:           version.Version,
		Name:              common.PairKey(cfg.Inputs[0]),
		Created:           time.Now().UTC().Format(time.RFC3339),
		Inputs:            cfg.Inputs,
		Paired:            len(cfg.Inputs) == 2,
		ReverseComplement: cfg.ReverseComplement,
		ReadsPerFile:      uint64(l.SequenceCount),
		Entries:           l.EntryCount(),
	}
	for _, a := range []struct {
		role, path string
		records    uint64
	}{
		{"ids", cfg.Index.IDs, l.EntryCount()},
		{"quals", cfg.Index.Quals, l.EntryCount()},
		{"seqs", cfg.Index.SeqArchive, 0},
	} {
		st, err := os.Stat(a.path)
		if err != nil {
			return errors.Wrap(err, "manifest")
		}
		m.Archives = append(m.Archives, api.ArchiveV1{Role: a.role, Path: filepath.Base(a.path), Records: a.records, Bytes: st.Size()})
	}
	return jsonutil.WriteFile(cfg.Index.Manifest, m)
}
