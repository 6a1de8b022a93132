package pipeline

import (
	"context"
	"slices"

	"kmerx/internal/hits"
)

// Restore writes every read of the index back out as FASTQ. Reverse
// complement entries are skipped so each read appears once.
func (p *Pipeline) Restore(ctx context.Context) (Report, error) {
	cfg := p.Cfg
	if outputExists(cfg.Output) {
		p.Log.Warnf("%s already exists and will be overwritten", cfg.Output)
	}
	x, err := p.openIndex()
	if err != nil {
		return p.report, err
	}
	defer x.close()

	ws, err := newWorkspace(cfg.TmpDir, cfg.Index.Prefix, cfg.KeepTemp, p.Log)
	if err != nil {
		return p.report, err
	}
	defer ws.close()

	dump := ws.path("dump.txt")
	var matches []hits.Match
	err = p.step(StateDump, func() error {
		if err := p.Engine.Dump(ctx, cfg.Index.Prefix, dump); err != nil {
			return err
		}
		ms, err := hits.ReadMatchFile(dump)
		if err != nil {
			return err
		}
		ms = slices.DeleteFunc(ms, func(m hits.Match) bool { return !x.layout.IsForward(m.Record) })
		matches = hits.SortUnique(ms)
		p.Log.Infof("%d forward entries to restore", len(matches))
		return nil
	})
	if err != nil {
		return p.report, err
	}

	err = p.step(StateExtract, func() error {
		st, err := p.extractTo(ctx, x, matches)
		p.report.Extract = st
		if err == nil {
			p.Log.Infof("%d records written in %d batches", st.Records, st.Batches)
		}
		return err
	})
	if err != nil {
		return p.report, err
	}
	return p.done(), nil
}
