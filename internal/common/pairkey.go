package common

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	compressedExt = []string{".gz", ".zst", ".xz", ".bz2"}
	readsExt      = []string{".fastq", ".fq", ".txt"}
	mateSuffix    = regexp.MustCompile(`[._-](R?[12])(_\d+)?$`)
)

// PairKey derives the identifier shared by the two files of a read pair:
// the base name without compression or FASTQ extensions and without the
// trailing mate tag (_R1, _2, .R2_001, ...). "-" maps to "stdin".
func PairKey(path string) string {
	if path == "-" || path == "" {
		return "stdin"
	}
	name := filepath.Base(path)
	for _, ext := range compressedExt {
		if strings.HasSuffix(strings.ToLower(name), ext) {
			name = name[:len(name)-len(ext)]
			break
		}
	}
	for _, ext := range readsExt {
		if strings.HasSuffix(strings.ToLower(name), ext) {
			name = name[:len(name)-len(ext)]
			break
		}
	}
	if loc := mateSuffix.FindStringIndex(name); loc != nil && loc[0] > 0 {
		name = name[:loc[0]]
	}
	return strings.Map(func(r rune) rune {
		if r == filepath.Separator || r == ' ' {
			return '_'
		}
		return r
	}, name)
}
