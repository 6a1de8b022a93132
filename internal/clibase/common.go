// internal/clibase/common.go
package clibase

import (
	"flag"
	"fmt"
	"time"

	"kmerx/internal/cliutil"
	"kmerx/internal/errs"
)

// Default engine commands, looked up on PATH.
const (
	DefaultBuild  = "bwt-build"
	DefaultSearch = "bwt-search"
	DefaultExtend = "bwt-extend"
	DefaultDump   = "bwt-dump"
)

// Common holds the flags every mode accepts.
type Common struct {
	Mode   string
	Inputs []string
	Output string

	// Engine
	BuildCmd  string
	SearchCmd string
	ExtendCmd string
	DumpCmd   string
	LookupCmd string

	// Workspace
	TmpDir      string
	KeepTemp    bool
	ToolTimeout time.Duration

	// Misc
	Verbose  bool
	Version  bool
	Examples bool
}

// sliceValue appends each value to a *[]string (for repeatable flags)
type sliceValue struct{ dst *[]string }

func (s *sliceValue) String() string {
	if s.dst == nil {
		return ""
	}
	return fmt.Sprint(*s.dst)
}
func (s *sliceValue) Set(v string) error {
	*s.dst = append(*s.dst, v)
	return nil
}

// Slice returns a repeatable flag.Value appending to dst.
func Slice(dst *[]string) flag.Value { return &sliceValue{dst: dst} }

// Register wires the shared flags onto fs.
func Register(fs *flag.FlagSet, c *Common) {
	fs.StringVar(&c.Mode, "mode", "", "init | search | restore [*]")
	fs.StringVar(&c.Mode, "m", "", "alias of --mode")
	in := Slice(&c.Inputs)
	fs.Var(in, "input", "FASTQ file(s) for init, index prefix otherwise [*]")
	fs.Var(in, "i", "alias of --input")
	fs.StringVar(&c.Output, "output", "", "index prefix for init, FASTQ path otherwise ('-' = stdout)")
	fs.StringVar(&c.Output, "o", "", "alias of --output")

	fs.StringVar(&c.BuildCmd, "bwt-build", DefaultBuild, "index build command")
	fs.StringVar(&c.SearchCmd, "bwt-search", DefaultSearch, "k-mer search command")
	fs.StringVar(&c.ExtendCmd, "bwt-extend", DefaultExtend, "sequence extension command")
	fs.StringVar(&c.DumpCmd, "bwt-dump", DefaultDump, "index dump command")
	fs.StringVar(&c.LookupCmd, "lookup-cmd", "", "external archive lookup command (empty = built-in reader)")

	fs.StringVar(&c.TmpDir, "tmp-dir", "", "directory for the run workspace (default: system temp)")
	fs.BoolVar(&c.KeepTemp, "keep-temp", false, "keep intermediate files [false]")
	fs.DurationVar(&c.ToolTimeout, "tool-timeout", 0, "kill an external tool after this long (0 = never) [0]")

	fs.BoolVar(&c.Verbose, "verbose", false, "report progress on stderr [false]")
	fs.BoolVar(&c.Verbose, "V", false, "alias of --verbose")
	fs.BoolVar(&c.Version, "v", false, "print version and exit [false]")
	fs.BoolVar(&c.Version, "version", false, "print version and exit [false]")
	fs.BoolVar(&c.Examples, "examples", false, "print quickstart examples and exit [false]")
}

// AfterParse expands positionals into inputs and runs shared validation.
func AfterParse(c *Common, posArgs []string) error {
	if len(posArgs) > 0 {
		exp, err := cliutil.ExpandPositionals(posArgs)
		if err != nil {
			return err
		}
		c.Inputs = append(c.Inputs, exp...)
	}
	return Validate(c)
}

// Validate applies the invariants shared by all modes.
func Validate(c *Common) error {
	if c.Mode == "" {
		return errs.Config("--mode is required (init | search | restore)")
	}
	if len(c.Inputs) == 0 {
		return errs.Config("--input is required")
	}
	if c.ToolTimeout < 0 {
		return errs.Config("--tool-timeout must be ≥ 0")
	}
	return nil
}
