// internal/clibase/examples.go
package clibase

import (
	"errors"
	"fmt"
	"io"
)

// ErrPrintedAndExitOK is returned by ParseArgs when the caller requested examples.
// Apps should catch this and exit 0 after printing examples.
var ErrPrintedAndExitOK = errors.New("examples requested")

// PrintExamples prints the quickstart followed by a one-line tip to discover
// full help.
func PrintExamples(out io.Writer, name string) {
	if out == nil {
		return
	}
	_, _ = fmt.Fprintf(out, "%s quickstart\n\n", name)
	_, _ = fmt.Fprintf(out, "  # index a pair of FASTQ files, reverse complements included\n")
	_, _ = fmt.Fprintf(out, "  %s --mode init -i reads_R1.fq.gz -i reads_R2.fq.gz -o idx/reads --reverse-complement\n\n", name)
	_, _ = fmt.Fprintf(out, "  # reads containing either k-mer, with their mates\n")
	_, _ = fmt.Fprintf(out, "  %s --mode search -i idx/reads --input-kmer ACGTACGTAC --input-kmer TTGACCAGGT --paired-reads -o hits.fq\n\n", name)
	_, _ = fmt.Fprintf(out, "  # k-mers from a file, gzip output\n")
	_, _ = fmt.Fprintf(out, "  %s --mode search -i idx/reads --input-kmer-file kmers.txt -o hits.fq.gz\n\n", name)
	_, _ = fmt.Fprintf(out, "  # every read back out of the index\n")
	_, _ = fmt.Fprintf(out, "  %s --mode restore -i idx/reads -o all.fq.zst\n", name)
	_, _ = fmt.Fprintln(out, "\nTip: run with --help for all flags.")
}
