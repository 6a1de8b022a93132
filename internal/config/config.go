// Package config turns parsed options into the immutable run configuration
// handed to every component constructor.
package config

import (
	"time"

	"kmerx/internal/cli"
	"kmerx/internal/cliutil"
	"kmerx/internal/engine"
	"kmerx/internal/proc"
)

// Modes
const (
	ModeInit    = cli.ModeInit
	ModeSearch  = cli.ModeSearch
	ModeRestore = cli.ModeRestore
)

// Paths names the files that make up an index.
type Paths struct {
	Prefix     string
	EndPos     string
	IDs        string
	Quals      string
	SeqArchive string
	Manifest   string
}

// PathsFor derives the index file names from prefix.
func PathsFor(prefix string) Paths {
	return Paths{
		Prefix:     prefix,
		EndPos:     prefix + "-end-pos",
		IDs:        prefix + "-ids.kxa",
		Quals:      prefix + "-quals.kxa",
		SeqArchive: prefix + "-seqs.txt.zst",
		Manifest:   prefix + "-manifest.json",
	}
}

// Config is built once per run. Slices must not be modified after FromOptions.
type Config struct {
	Mode string
	// Inputs are the FASTQ files of init.
	Inputs []string
	// Index is the index every mode reads or writes.
	Index Paths
	// Output is the FASTQ destination of search and restore.
	Output string

	KmerFile          string
	Kmers             []string
	RepeatThreshold   int64
	PairedReads       bool
	ReverseComplement bool
	BatchSize         int

	Engine      engine.Commands
	Sort        string
	SortOptions string
	Lookup      []string

	TmpDir      string
	KeepTemp    bool
	ToolTimeout time.Duration
	Verbose     bool
}

// FromOptions validates the command flags and derives the Config.
func FromOptions(o cli.Options) (Config, error) {
	c := Config{
		Mode:              o.Mode,
		Output:            o.Output,
		KmerFile:          o.KmerFile,
		Kmers:             append([]string(nil), o.Kmers...),
		RepeatThreshold:   o.RepeatThreshold,
		PairedReads:       o.PairedReads,
		ReverseComplement: o.ReverseComplement,
		BatchSize:         o.BatchSize,
		Sort:              o.Sort,
		SortOptions:       o.SortOptions,
		TmpDir:            o.TmpDir,
		KeepTemp:          o.KeepTemp,
		ToolTimeout:       o.ToolTimeout,
		Verbose:           o.Verbose,
	}
	if o.Mode == ModeInit {
		c.Inputs = append([]string(nil), o.Inputs...)
		c.Index = PathsFor(o.Output)
		c.Output = ""
	} else {
		c.Index = PathsFor(o.Inputs[0])
	}

	var err error
	cmds := []struct {
		src string
		dst *[]string
	}{
		{o.BuildCmd, &c.Engine.Build},
		{o.SearchCmd, &c.Engine.Search},
		{o.ExtendCmd, &c.Engine.Extend},
		{o.DumpCmd, &c.Engine.Dump},
		{o.LookupCmd, &c.Lookup},
	}
	for _, cmd := range cmds {
		if *cmd.dst, err = cliutil.SplitCommand(cmd.src); err != nil {
			return Config{}, err
		}
	}
	return c, nil
}

// Runner is the subprocess runner every external tool call goes through.
func (c Config) Runner() proc.Runner {
	return proc.Runner{Timeout: c.ToolTimeout}
}
