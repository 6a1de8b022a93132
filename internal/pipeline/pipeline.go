// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/shenwei356/xopen"

	"kmerx/internal/cmdutil"
	"kmerx/internal/colstore"
	"kmerx/internal/config"
	"kmerx/internal/engine"
	"kmerx/internal/errs"
	"kmerx/internal/extract"
	"kmerx/internal/fastq"
	"kmerx/internal/hits"
	"kmerx/internal/jsonutil"
	"kmerx/internal/layout"
	"kmerx/internal/pairs"
	"kmerx/internal/progress"
	"kmerx/internal/writers"
	"kmerx/pkg/api"
)

// Report summarizes a run. Only the parts of the executed mode are set.
type Report struct {
	// State is the last state entered.
	State State

	Filter     hits.Summary
	Resolution pairs.Resolution
	Extract    extract.Stats

	// init
	Layout layout.Layout
	Reads  uint64
}

// Pipeline runs one mode of kmerx.
type Pipeline struct {
	Cfg    config.Config
	Engine engine.Engine
	Log    *cmdutil.Logger
	// Stdout receives FASTQ output when Cfg.Output is "-".
	Stdout io.Writer

	report Report
}

// New builds a Pipeline. A nil log discards diagnostics.
func New(cfg config.Config, eng engine.Engine, log *cmdutil.Logger, stdout io.Writer) *Pipeline {
	if log == nil {
		log = cmdutil.NewLogger(nil, false)
	}
	if stdout == nil {
		stdout = io.Discard
	}
	return &Pipeline{Cfg: cfg, Engine: eng, Log: log, Stdout: stdout}
}

// Run executes the configured mode.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	switch p.Cfg.Mode {
	case config.ModeInit:
		return p.Init(ctx)
	case config.ModeSearch:
		return p.Search(ctx)
	case config.ModeRestore:
		return p.Restore(ctx)
	}
	return Report{}, errs.Config("invalid mode %q", p.Cfg.Mode)
}

// step enters s and runs fn as a timed, logged step.
func (p *Pipeline) step(s State, fn func() error) error {
	p.report.State = s
	return cmdutil.Timed(p.Log, s.String(), fn)
}

func (p *Pipeline) done() Report {
	p.report.State = StateDone
	p.Log.Infof("%s", StateDone)
	return p.report
}

// index is an opened index: its layout and both archives.
type index struct {
	layout layout.Layout
	ids    colstore.Store
	quals  colstore.Store
}

func (x *index) close() {
	if x.ids != nil {
		_ = x.ids.Close()
	}
	if x.quals != nil {
		_ = x.quals.Close()
	}
}

// openIndex reads the layout and opens the archives. Archives that know their
// record count are checked against the layout.
func (p *Pipeline) openIndex() (*index, error) {
	paths := p.Cfg.Index
	l, err := layout.Read(paths.EndPos)
	if err != nil {
		return nil, err
	}
	x := &index{layout: l}
	runner := p.Cfg.Runner()
	for _, a := range []struct {
		path string
		dst  *colstore.Store
	}{{paths.IDs, &x.ids}, {paths.Quals, &x.quals}} {
		s, err := colstore.OpenStore(a.path, p.Cfg.Lookup, runner, 0)
		if err != nil {
			x.close()
			return nil, err
		}
		*a.dst = s
		if c, ok := s.(colstore.Counter); ok {
			if err := l.CheckArchive(a.path, c.Count()); err != nil {
				x.close()
				return nil, err
			}
		}
	}
	if err := checkManifest(paths.Manifest, l); err != nil {
		x.close()
		return nil, err
	}
	p.Log.Infof("index %s: %d entries (%d reads x %d files x %d strands)",
		paths.Prefix, l.EntryCount(), l.SequenceCount, l.SubSequenceCount, l.Strands())
	return x, nil
}

// outputExists reports whether the FASTQ destination is an existing file.
func outputExists(path string) bool {
	if path == "-" || path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// extractTo writes the FASTQ records of ms to the configured output.
func (p *Pipeline) extractTo(ctx context.Context, x *index, ms []hits.Match) (extract.Stats, error) {
	ex, err := extract.New(x.ids, x.quals, p.Cfg.BatchSize)
	if err != nil {
		return extract.Stats{}, err
	}

	out := p.Stdout
	closeOut := func() error { return nil }
	if p.Cfg.Output != "-" {
		w, err := xopen.Wopen(p.Cfg.Output)
		if err != nil {
			return extract.Stats{}, errors.Wrapf(err, "creating %s", p.Cfg.Output)
		}
		out, closeOut = w, w.Close
	}

	var bar *progress.Bar
	if p.Log.Verbose() {
		bar = progress.New(p.Log.Writer(), "records", int64(len(ms)))
		ex.Progress = bar
	}

	in, werrCh := writers.StartFASTQWriter(out, 256)
	st, err := ex.Run(ctx, ms, func(rec fastq.Record) error {
		select {
		case in <- rec:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	close(in)
	werr := <-werrCh
	bar.Finish(err == nil && werr == nil)
	cerr := closeOut()

	switch {
	case err != nil:
		return st, err
	case writers.IsBrokenPipe(werr):
		p.Log.Infof("output closed early after %d records", st.Records)
		return st, nil
	case werr != nil:
		return st, errors.Wrap(werr, "writing FASTQ")
	case cerr != nil && !writers.IsBrokenPipe(cerr):
		return st, errors.Wrapf(cerr, "closing %s", p.Cfg.Output)
	}
	return st, nil
}

// checkManifest compares the manifest written by init, when there is one,
// with the layout header.
func checkManifest(path string, l layout.Layout) error {
	var m api.ManifestV1
	if err := jsonutil.ReadFile(path, &m); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if m.Schema != api.ManifestSchemaV1 {
		return errs.Integrity("%s: unknown manifest schema %q", path, m.Schema)
	}
	if m.Entries != l.EntryCount() {
		return errs.Integrity("%s declares %d entries, the layout %d", path, m.Entries, l.EntryCount())
	}
	return nil
}
