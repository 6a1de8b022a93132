package jsonutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"kmerx/pkg/api"
)

func TestManifestRoundTripOnDisk(t *testing.T) {
	should := require.New(t)
	path := filepath.Join(t.TempDir(), "idx-manifest.json")
	m := api.ManifestV1{
		Schema: api.ManifestSchemaV1, Name: "reads", Paired: true, ReadsPerFile: 3, Entries: 6,
		Archives: []api.ArchiveV1{{Role: "ids", Path: "idx-ids.kxa", Records: 6, Bytes: 40}},
	}
	should.NoError(WriteFile(path, m))

	raw, err := os.ReadFile(path)
	should.NoError(err)
	should.Contains(string(raw), `"schema": "kmerx.manifest/v1"`)

	var got api.ManifestV1
	should.NoError(ReadFile(path, &got))
	should.Equal(m, got)

	left, err := filepath.Glob(path + ".tmp*")
	should.NoError(err)
	should.Empty(left)
}

func TestReadFileMissing(t *testing.T) {
	var m api.ManifestV1
	err := ReadFile(filepath.Join(t.TempDir(), "nope.json"), &m)
	require.True(t, os.IsNotExist(err))
}
