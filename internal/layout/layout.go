// Package layout reads and writes the fixed 6-byte "-end-pos" header that
// describes how paired entries are arranged in an index.
//
// Entries are split into two equal halves; entry n in one half is paired
// with n±Half in the other.
package layout

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"

	"kmerx/internal/errs"
)

// HeaderSize is the on-disk size of a Layout.
const HeaderSize = 6

// Layout is the paired-read arrangement of an index.
type Layout struct {
	SequenceCount        uint32
	SubSequenceCount     uint8
	HasReverseComplement uint8
}

// EntryCount is the number of indexed entries.
func (l Layout) EntryCount() uint64 {
	return uint64(l.SequenceCount) * uint64(l.SubSequenceCount) * uint64(l.HasReverseComplement+1)
}

// Half returns EntryCount/2, failing on an empty or odd entry count.
func (l Layout) Half() (uint64, error) {
	n := l.EntryCount()
	if n == 0 {
		return 0, errs.Integrity("layout has no entries")
	}
	if n%2 != 0 {
		return 0, errs.Integrity("layout entry count %d is odd; entries cannot be paired", n)
	}
	return n / 2, nil
}

// Mate returns the paired entry of r.
func (l Layout) Mate(r uint64) (uint64, error) {
	half, err := l.Half()
	if err != nil {
		return 0, err
	}
	return mate(r, half, 2*half)
}

func mate(r, half, total uint64) (uint64, error) {
	if r >= total {
		return 0, errs.Integrity("record %d has no valid mate (entry count %d)", r, total)
	}
	var m uint64
	if r < half {
		m = r + half
	} else {
		m = r - half
	}
	// unreachable after Half; only half == 0 maps a record onto itself
	if m == r {
		return 0, &errs.LayoutError{Record: r, Msg: "record is its own mate"}
	}
	return m, nil
}

// Mapper computes mates for a validated layout without re-checking it on
// every call.
type Mapper struct{ half, total uint64 }

// NewMapper validates l and returns a Mapper for it.
func NewMapper(l Layout) (Mapper, error) {
	half, err := l.Half()
	if err != nil {
		return Mapper{}, err
	}
	return Mapper{half: half, total: 2 * half}, nil
}

func (m Mapper) Half() uint64       { return m.half }
func (m Mapper) EntryCount() uint64 { return m.total }

func (m Mapper) Mate(r uint64) (uint64, error) { return mate(r, m.half, m.total) }

// Strands is the number of strand copies per input file (2 with reverse
// complements, else 1).
func (l Layout) Strands() uint64 { return uint64(l.HasReverseComplement) + 1 }

// IsForward reports whether entry r is an original read rather than a
// reverse-complement copy. Entries are grouped per input file: the file's
// reads, then their reverse complements.
func (l Layout) IsForward(r uint64) bool {
	if l.SequenceCount == 0 {
		return false
	}
	return (r/uint64(l.SequenceCount))%l.Strands() == 0
}

// Marshal encodes l as the 6-byte little-endian header.
func (l Layout) Marshal() []byte {
	var b [HeaderSize]byte
	binary.LittleEndian.PutUint32(b[0:4], l.SequenceCount)
	b[4] = l.SubSequenceCount
	b[5] = l.HasReverseComplement
	return b[:]
}

// Decode reads a header from r.
func Decode(r io.Reader) (Layout, error) {
	var b [HeaderSize]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return Layout{}, errs.Integrity("truncated end-pos header: %v", err)
	}
	l := Layout{
		SequenceCount:        binary.LittleEndian.Uint32(b[0:4]),
		SubSequenceCount:     b[4],
		HasReverseComplement: b[5],
	}
	if l.HasReverseComplement > 1 {
		return Layout{}, errs.Integrity("reverse-complement flag must be 0 or 1, got %d", l.HasReverseComplement)
	}
	return l, nil
}

// Read loads the header stored at path.
func Read(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, errors.Wrap(err, "reading end-pos file")
	}
	l, err := Decode(bytes.NewReader(data))
	if err != nil {
		return Layout{}, errors.Wrap(err, path)
	}
	return l, nil
}

// Write stores the header at path.
func Write(path string, l Layout) error {
	return errors.Wrap(os.WriteFile(path, l.Marshal(), 0o644), "writing end-pos file")
}

// CheckArchive verifies that an archive holding n records matches the
// layout. The header is otherwise trusted blindly by mate arithmetic.
func (l Layout) CheckArchive(name string, n uint64) error {
	if want := l.EntryCount(); n != want {
		return errs.Integrity("%s holds %d records but the layout declares %d entries", name, n, want)
	}
	return nil
}
