package pipeline

import (
	"bufio"
	"context"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/shenwei356/xopen"

	"kmerx/internal/common"
	"kmerx/internal/errs"
	"kmerx/internal/hits"
	"kmerx/internal/pairs"
)

// Search extracts the reads containing the configured k-mers, and their
// mates when PairedReads is set.
func (p *Pipeline) Search(ctx context.Context) (Report, error) {
	cfg := p.Cfg
	if outputExists(cfg.Output) {
		return p.report, &errs.CollisionError{Path: cfg.Output}
	}
	filter, err := hits.NewFilter(cfg.RepeatThreshold, p.Log.Warnf)
	if err != nil {
		return p.report, err
	}
	kmers, err := p.loadKmers()
	if err != nil {
		return p.report, err
	}
	if len(kmers) == 0 {
		return p.report, errors.Wrap(errs.ErrNoInput, "no k-mers to search")
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

	var (
		prefix   = cfg.Index.Prefix
		kmerPath = ws.path("kmers.txt")
		rawHits  = ws.path("hits.raw.txt")
		kept     = ws.path("hits.txt")
		extended = ws.path("extended.txt")
		request  = ws.path("mates.request.txt")
		mates    = ws.path("mates.extended.txt")
		matches  []hits.Match
	)

	err = p.step(StateSearch, func() error {
		if err := writeLines(kmerPath, kmers); err != nil {
			return err
		}
		p.Log.Infof("searching %d k-mers", len(kmers))
		return p.Engine.Search(ctx, prefix, kmerPath, rawHits)
	})
	if err != nil {
		return p.report, err
	}

	err = p.step(StateFilter, func() error {
		sum, err := filterFile(filter, rawHits, kept)
		p.report.Filter = sum
		if err != nil {
			return err
		}
		p.Log.Infof("%d queries kept, %d dropped at threshold %d, %d matches",
			sum.Retained, sum.Dropped, cfg.RepeatThreshold, sum.MatchCount)
		if sum.Skipped > 0 {
			p.Log.Infof("%d short search lines ignored", sum.Skipped)
		}
		return nil
	})
	if err != nil {
		return p.report, err
	}
	if p.report.Filter.MatchCount == 0 {
		p.Log.Infof("no matches below the repeat threshold, nothing to extract")
		return p.done(), nil
	}

	err = p.step(StateExtendPrimary, func() error {
		if err := p.Engine.Extend(ctx, prefix, kept, extended); err != nil {
			return err
		}
		ms, err := hits.ReadMatchFile(extended)
		if err != nil {
			return err
		}
		matches = hits.SortUnique(ms)
		p.Log.Infof("%d distinct records matched", len(matches))
		return nil
	})
	if err != nil {
		return p.report, err
	}

	if cfg.PairedReads {
		err = p.step(StateResolvePairs, func() error {
			res, err := pairs.Resolve(hits.Records(matches), x.layout)
			if err != nil {
				return err
			}
			p.report.Resolution = res
			p.Log.Infof("%d records, %d pairs already complete, %d mates to fetch",
				res.MatchCount, res.ReadPairs, len(res.Needed))
			if len(res.Needed) == 0 {
				return nil
			}
			if err := writeRequest(request, res.Needed); err != nil {
				return err
			}
			if err := p.Engine.ExtendRecords(ctx, prefix, request, mates); err != nil {
				return err
			}
			returned, err := hits.ReadMatchFile(mates)
			if err != nil {
				return err
			}
			extra, missing := hits.Select(returned, res.Needed)
			if n := len(returned) - len(extra); n > 0 {
				p.Log.Warnf("ignoring %d unrequested or repeated records returned for the mate request", n)
			}
			if len(missing) > 0 {
				return errs.Integrity("engine returned no entry for %d of %d requested mates (first missing record %d)",
					len(missing), len(res.Needed), missing[0])
			}
			matches = hits.Merge(matches, extra)
			return nil
		})
		if err != nil {
			return p.report, err
		}
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

// loadKmers returns the normalized, de-duplicated k-mers of the run.
func (p *Pipeline) loadKmers() ([]string, error) {
	if p.Cfg.KmerFile == "" {
		return common.UniqueUpper(p.Cfg.Kmers), nil
	}
	fh, err := xopen.Ropen(p.Cfg.KmerFile)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", p.Cfg.KmerFile)
	}
	defer fh.Close()
	var lines []string
	sc := bufio.NewScanner(fh)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading %s", p.Cfg.KmerFile)
	}
	return common.UniqueUpper(lines), nil
}

func filterFile(f *hits.Filter, in, out string) (hits.Summary, error) {
	src, err := os.Open(in)
	if err != nil {
		return hits.Summary{}, errors.Wrap(err, "opening search output")
	}
	defer src.Close()
	dst, err := os.Create(out)
	if err != nil {
		return hits.Summary{}, errors.Wrap(err, "creating filtered hits")
	}
	sum, err := f.Run(src, dst)
	if cerr := dst.Close(); err == nil && cerr != nil {
		err = errors.Wrap(cerr, "writing filtered hits")
	}
	return sum, err
}

func writeRequest(path string, recs []uint64) error {
	fh, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating record request")
	}
	if err := hits.WriteRequest(fh, recs); err != nil {
		_ = fh.Close()
		return err
	}
	return errors.Wrap(fh.Close(), "writing record request")
}

func writeLines(path string, lines []string) error {
	fh, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	bw := bufio.NewWriter(fh)
	for _, l := range lines {
		bw.WriteString(l)
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		_ = fh.Close()
		return errors.Wrapf(err, "writing %s", path)
	}
	return errors.Wrapf(fh.Close(), "writing %s", path)
}
