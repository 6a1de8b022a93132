package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPairKey(t *testing.T) {
	cases := map[string]string{
		"-":                               "stdin",
		"reads.fq":                        "reads",
		"/data/run7/sample_R1.fastq.gz":   "sample",
		"/data/run7/sample_R2.fastq.gz":   "sample",
		"lib-1.fq.zst":                    "lib",
		"lib-2.fq.zst":                    "lib",
		"S1_L001_R1_001.fastq.gz":         "S1_L001",
		"R1.fq":                           "R1",
		"my reads.fastq":                  "my_reads",
	}
	for in, want := range cases {
		require.Equal(t, want, PairKey(in), in)
	}
}

func TestUniqueUpper(t *testing.T) {
	require.Equal(t, []string{"ACGT", "GG"}, UniqueUpper([]string{" acgt", "GG", "ACGT", "", "gg "}))
}
