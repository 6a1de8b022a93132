// internal/cli/options_test.go
package cli

import (
	"bytes"
	"errors"
	"flag"
	"strings"
	"testing"
	"time"

	"kmerx/internal/clibase"
	"kmerx/internal/errs"
)

func newFS() *flag.FlagSet {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	return fs
}

func mustParse(t *testing.T, args ...string) Options {
	t.Helper()
	opts, err := ParseArgs(newFS(), args)
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	return opts
}

func wantConfigErr(t *testing.T, args ...string) {
	t.Helper()
	_, err := ParseArgs(newFS(), args)
	if !errs.IsConfig(err) {
		t.Fatalf("want config error for %q, got %v", args, err)
	}
}

func TestSearchDefaults(t *testing.T) {
	o := mustParse(t, "--mode", "search", "--input", "idx/reads", "--input-kmer", "ACGT")
	if o.Output != "-" || o.RepeatThreshold != 100 || o.BatchSize != 1000 || o.PairedReads {
		t.Errorf("bad defaults %+v", o)
	}
	if o.SearchCmd != clibase.DefaultSearch || o.LookupCmd != "" {
		t.Errorf("bad engine defaults %+v", o.Common)
	}
}

func TestRepeatableKmersAndPositionalInput(t *testing.T) {
	o := mustParse(t, "-m", "search", "idx/reads",
		"--input-kmer", "ACGT", "--input-kmer", "TTTT", "--paired-reads",
		"--tool-timeout", "90s", "--batch-size", "10")
	if len(o.Kmers) != 2 || o.Inputs[0] != "idx/reads" || !o.PairedReads {
		t.Errorf("bad parse %+v", o)
	}
	if o.ToolTimeout != 90*time.Second || o.BatchSize != 10 {
		t.Errorf("bad numeric flags %+v", o)
	}
}

func TestInitPairedFiles(t *testing.T) {
	o := mustParse(t, "--mode=init", "-i", "a_R1.fq", "-i", "a_R2.fq", "-o", "idx/a",
		"--reverse-complement", "--sort", "sort", "--sort-options", "-S 2G")
	if len(o.Inputs) != 2 || !o.ReverseComplement || o.SortOptions != "-S 2G" {
		t.Errorf("bad init parse %+v", o)
	}
}

func TestValidationErrors(t *testing.T) {
	wantConfigErr(t, "--input", "x")
	wantConfigErr(t, "--mode", "bogus", "--input", "x")
	wantConfigErr(t, "--mode", "search", "--input-kmer", "A")
	wantConfigErr(t, "--mode", "search", "-i", "idx", "--input-kmer", "A", "--input-kmer-file", "k.txt")
	wantConfigErr(t, "--mode", "search", "-i", "idx")
	wantConfigErr(t, "--mode", "search", "-i", "idx", "--input-kmer", "A", "--repeat-threshold", "0")
	wantConfigErr(t, "--mode", "search", "-i", "idx", "--input-kmer", "A", "--batch-size", "1001")
	wantConfigErr(t, "--mode", "restore", "-i", "idx", "--batch-size", "0")
	wantConfigErr(t, "--mode", "restore", "-i", "a", "-i", "b")
	wantConfigErr(t, "--mode", "init", "-i", "a.fq")
	wantConfigErr(t, "--mode", "init", "-i", "a.fq", "-i", "b.fq", "-i", "c.fq", "-o", "idx")
	wantConfigErr(t, "--mode", "search", "-i", "idx", "--input-kmer", "A", "--tool-timeout", "-1s")
}

func TestVersionSkipsValidation(t *testing.T) {
	o := mustParse(t, "--version")
	if !o.Version {
		t.Fatal("version flag not set")
	}
}

func TestExamplesRequested(t *testing.T) {
	_, err := ParseArgs(newFS(), []string{"--examples"})
	if !errors.Is(err, clibase.ErrPrintedAndExitOK) {
		t.Fatalf("want ErrPrintedAndExitOK, got %v", err)
	}
}

func TestUsageMentionsEveryMode(t *testing.T) {
	fs := NewFlagSet("kmerx")
	var out bytes.Buffer
	fs.SetOutput(&out)
	_, err := ParseArgs(fs, []string{"-h"})
	if !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("want ErrHelp, got %v", err)
	}
	s := out.String()
	for _, want := range []string{"init | search | restore", "--repeat-threshold", "--bwt-extend", "--lookup-cmd"} {
		if !strings.Contains(s, want) {
			t.Errorf("usage lacks %q", want)
		}
	}
}
