// internal/clibase/usage.go
package clibase

import (
	"flag"
	"fmt"
	"io"

	"kmerx/internal/version"
)

// UsageCommon installs the shared Usage() handler on fs.
// extra prints mode-specific sections.
func UsageCommon(fs *flag.FlagSet, name string, extra func(out io.Writer, def func(string) string)) {
	fs.Usage = func() {
		out := fs.Output()
		def := func(flagName string) string {
			if f := fs.Lookup(flagName); f != nil {
				return f.DefValue
			}
			return ""
		}

		fmt.Fprintf(out, "%s – k-mer read extraction from a BWT-indexed FASTQ archive\n\n", name)
		fmt.Fprintf(out, "Version: %s\n\n", version.Version)
		fmt.Fprintf(out, "Usage:\n  %s --mode init|search|restore --input ... [options]\n", name)

		fmt.Fprintln(out, "\nInput/Output:")
		fmt.Fprintln(out, "  -m, --mode string           init | search | restore [*]")
		fmt.Fprintln(out, "  -i, --input string          init: FASTQ file (twice for paired files); otherwise index prefix [*]")
		fmt.Fprintln(out, "  -o, --output string         init: index prefix; otherwise FASTQ path, '-' = stdout (.gz/.zst compress)")

		if extra != nil {
			extra(out, def)
		}

		fmt.Fprintln(out, "\nEngine:")
		fmt.Fprintf(out, "      --bwt-build string      Index build command [%s]\n", def("bwt-build"))
		fmt.Fprintf(out, "      --bwt-search string     K-mer search command [%s]\n", def("bwt-search"))
		fmt.Fprintf(out, "      --bwt-extend string     Sequence extension command [%s]\n", def("bwt-extend"))
		fmt.Fprintf(out, "      --bwt-dump string       Index dump command [%s]\n", def("bwt-dump"))
		fmt.Fprintln(out, "      --lookup-cmd string     External archive lookup command (empty = built-in reader)")

		fmt.Fprintln(out, "\nWorkspace:")
		fmt.Fprintln(out, "      --tmp-dir dir           Directory for the run workspace (default: system temp)")
		fmt.Fprintf(out, "      --keep-temp             Keep intermediate files [%s]\n", def("keep-temp"))
		fmt.Fprintf(out, "      --tool-timeout duration Kill an external tool after this long (0 = never) [%s]\n", def("tool-timeout"))

		fmt.Fprintln(out, "\nMiscellaneous:")
		fmt.Fprintf(out, "  -V, --verbose               Report progress on stderr [%s]\n", def("verbose"))
		fmt.Fprintln(out, "      --examples              Print quickstart examples and exit")
		fmt.Fprintln(out, "  -v, --version               Print version and exit")
		fmt.Fprintln(out, "  -h, --help                  Show this help and exit")
	}
}
