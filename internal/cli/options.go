// internal/cli/options.go
package cli

import (
	"flag"
	"fmt"
	"io"

	"kmerx/internal/clibase"
	"kmerx/internal/cliutil"
	"kmerx/internal/errs"
	"kmerx/internal/extract"
	"kmerx/internal/hits"
)

// Modes
const (
	ModeInit    = "init"
	ModeSearch  = "search"
	ModeRestore = "restore"
)

// Options holds all CLI flags and arguments.
type Options struct {
	clibase.Common

	// init
	Sort              string
	SortOptions       string
	ReverseComplement bool

	// search
	KmerFile        string
	Kmers           []string
	RepeatThreshold int64
	PairedReads     bool

	// search, restore
	BatchSize int
}

// NewFlagSet returns a FlagSet with ContinueOnError and the kmerx usage text.
func NewFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	clibase.UsageCommon(fs, name, func(out io.Writer, def func(string) string) {
		fmt.Fprintln(out, "\nInit:")
		fmt.Fprintf(out, "      --reverse-complement    Index reverse complements too [%s]\n", def("reverse-complement"))
		fmt.Fprintln(out, "      --sort string           External sort program forwarded to the build tool")
		fmt.Fprintln(out, "      --sort-options string   Options for the sort program")
		fmt.Fprintln(out, "\nSearch:")
		fmt.Fprintln(out, "      --input-kmer string     K-mer to search (repeatable)")
		fmt.Fprintln(out, "      --input-kmer-file file  File with one k-mer per line")
		fmt.Fprintf(out, "      --repeat-threshold int  Drop k-mers with this many matches or more [%s]\n", def("repeat-threshold"))
		fmt.Fprintf(out, "      --paired-reads          Also extract the mate of every matched read [%s]\n", def("paired-reads"))
		fmt.Fprintf(out, "      --batch-size int        Records per archive lookup, 1..%d [%s]\n", extract.MaxBatchSize, def("batch-size"))
	})
	return fs
}

// ParseArgs registers and parses all flags and validates them.
func ParseArgs(fs *flag.FlagSet, argv []string) (Options, error) {
	var opt Options
	clibase.Register(fs, &opt.Common)

	fs.StringVar(&opt.Sort, "sort", "", "external sort program forwarded to the build tool")
	fs.StringVar(&opt.SortOptions, "sort-options", "", "options for the sort program")
	fs.BoolVar(&opt.ReverseComplement, "reverse-complement", false, "index reverse complements too [false]")

	fs.StringVar(&opt.KmerFile, "input-kmer-file", "", "file with one k-mer per line")
	fs.Var(clibase.Slice(&opt.Kmers), "input-kmer", "k-mer to search (repeatable)")
	fs.Int64Var(&opt.RepeatThreshold, "repeat-threshold", hits.DefaultRepeatThreshold, "drop k-mers with this many matches or more")
	fs.BoolVar(&opt.PairedReads, "paired-reads", false, "also extract mates [false]")
	fs.IntVar(&opt.BatchSize, "batch-size", extract.DefaultBatchSize, "records per archive lookup")

	flagArgs, posArgs := cliutil.SplitFlagsAndPositionals(fs, argv)
	if err := fs.Parse(flagArgs); err != nil {
		return opt, err
	}
	if opt.Version {
		return opt, nil
	}
	if opt.Examples {
		return opt, clibase.ErrPrintedAndExitOK
	}
	if err := clibase.AfterParse(&opt.Common, posArgs); err != nil {
		return opt, err
	}
	return opt, validate(&opt)
}

func validate(o *Options) error {
	switch o.Mode {
	case ModeInit:
		if len(o.Inputs) > 2 {
			return errs.Config("init takes one FASTQ file, or two for paired files; got %d", len(o.Inputs))
		}
		if o.Output == "" || o.Output == "-" {
			return errs.Config("init needs --output naming the index prefix")
		}
	case ModeSearch, ModeRestore:
		if len(o.Inputs) != 1 {
			return errs.Config("%s takes exactly one index prefix as --input; got %d", o.Mode, len(o.Inputs))
		}
		if o.Output == "" {
			o.Output = "-"
		}
		if o.BatchSize < 1 || o.BatchSize > extract.MaxBatchSize {
			return errs.Config("--batch-size must be in 1..%d", extract.MaxBatchSize)
		}
	default:
		return errs.Config("invalid --mode %q (init | search | restore)", o.Mode)
	}
	if o.Mode != ModeSearch {
		return nil
	}
	switch {
	case o.KmerFile != "" && len(o.Kmers) > 0:
		return errs.Config("--input-kmer-file conflicts with --input-kmer")
	case o.KmerFile == "" && len(o.Kmers) == 0:
		return errs.Config("search needs --input-kmer-file or --input-kmer")
	}
	if o.RepeatThreshold <= 0 {
		return errs.Config("--repeat-threshold must be > 0")
	}
	return nil
}
