// Package extract joins ordered (record, bases) pairs against the identifier
// and quality archives in fixed-size batches and emits FASTQ records in input
// order.
package extract

import (
	"context"

	"github.com/pkg/errors"

	"kmerx/internal/colstore"
	"kmerx/internal/errs"
	"kmerx/internal/fastq"
	"kmerx/internal/hits"
	"kmerx/internal/progress"
)

// DefaultBatchSize is also the largest batch kept resident.
const DefaultBatchSize = 1000

// MaxBatchSize bounds BatchSize.
const MaxBatchSize = 1000

// Stats describes a finished extraction.
type Stats struct {
	Records int
	// Batches is the number of sub-queries issued against each archive.
	Batches int
}

// Extractor reads the archives of one index.
type Extractor struct {
	IDs       colstore.Store
	Quals     colstore.Store
	BatchSize int
	// Progress, when set, advances by the records of each written batch.
	Progress *progress.Bar
}

// New validates batchSize and builds an Extractor.
func New(ids, quals colstore.Store, batchSize int) (*Extractor, error) {
	if batchSize < 1 || batchSize > MaxBatchSize {
		return nil, errs.Config("batch size must be in 1..%d, got %d", MaxBatchSize, batchSize)
	}
	return &Extractor{IDs: ids, Quals: quals, BatchSize: batchSize}, nil
}

// Run extracts every match in order and passes each FASTQ record to emit.
// Duplicate records in matches are not detected.
func (x *Extractor) Run(ctx context.Context, matches []hits.Match, emit func(fastq.Record) error) (Stats, error) {
	var st Stats
	size := x.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	recs := make([]uint64, 0, size)
	for start := 0; start < len(matches); start += size {
		end := min(start+size, len(matches))
		batch := matches[start:end]

		recs = recs[:0]
		for _, m := range batch {
			recs = append(recs, m.Record)
		}
		if err := x.batch(ctx, batch, recs, emit); err != nil {
			return st, errors.Wrapf(err, "batch %d (records %d..%d)", st.Batches+1, start, end-1)
		}
		st.Batches++
		st.Records += len(batch)
		x.Progress.Add(len(batch))
	}
	return st, nil
}

func (x *Extractor) batch(ctx context.Context, batch []hits.Match, recs []uint64, emit func(fastq.Record) error) error {
	ids, err := x.IDs.Lines(ctx, recs)
	if err != nil {
		return errors.Wrap(err, "identifier archive")
	}
	if len(ids) != len(recs) {
		return errs.Integrity("identifier archive returned %d lines for %d records", len(ids), len(recs))
	}
	quals, err := x.Quals.Lines(ctx, recs)
	if err != nil {
		return errors.Wrap(err, "quality archive")
	}
	if len(quals) != len(recs) {
		return errs.Integrity("quality archive returned %d lines for %d records", len(quals), len(recs))
	}
	for i, m := range batch {
		if err := emit(fastq.Record{ID: ids[i], Seq: m.Bases, Qual: quals[i]}); err != nil {
			return err
		}
	}
	return nil
}
