// pkg/api/manifest_v1.go
package api

// ManifestSchemaV1 identifies ManifestV1 documents.
const ManifestSchemaV1 = "kmerx.manifest/v1"

// ManifestV1 is the stable JSON description written next to an index.
// Keep fields, names, and types stable. Add new fields only with ",omitempty".
type ManifestV1 struct {
	Schema  string `json:"schema"`
	Version string `json:"version"` // kmerx version that built the index
	Name    string `json:"name"`    // pairing key of the input files
	Created string `json:"created"` // RFC 3339

	Inputs            []string `json:"inputs"`
	Paired            bool     `json:"paired"`
	ReverseComplement bool     `json:"reverse_complement"`
	ReadsPerFile      uint64   `json:"reads_per_file"`
	Entries           uint64   `json:"entries"`

	Archives []ArchiveV1 `json:"archives"`
}

// ArchiveV1 describes one file of the index.
type ArchiveV1 struct {
	Role    string `json:"role"` // "ids" | "quals" | "seqs"
	Path    string `json:"path"`
	Records uint64 `json:"records,omitempty"`
	Bytes   int64  `json:"bytes"`
}
