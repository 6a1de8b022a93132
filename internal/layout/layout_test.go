package layout

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"kmerx/internal/errs"
)

func TestEntryCountAndHalf(t *testing.T) {
	should := require.New(t)
	l := Layout{SequenceCount: 5, SubSequenceCount: 2, HasReverseComplement: 1}
	should.EqualValues(20, l.EntryCount())
	half, err := l.Half()
	should.NoError(err)
	should.EqualValues(10, half)
}

func TestMateIsInvolution(t *testing.T) {
	layouts := []Layout{
		{SequenceCount: 10, SubSequenceCount: 2},
		{SequenceCount: 7, SubSequenceCount: 1, HasReverseComplement: 1},
		{SequenceCount: 3, SubSequenceCount: 2, HasReverseComplement: 1},
		{SequenceCount: 1, SubSequenceCount: 2},
	}
	for _, l := range layouts {
		m, err := NewMapper(l)
		require.NoError(t, err)
		for r := uint64(0); r < l.EntryCount(); r++ {
			a, err := m.Mate(r)
			require.NoError(t, err)
			require.NotEqual(t, r, a)
			b, err := m.Mate(a)
			require.NoError(t, err)
			require.Equal(t, r, b, "layout %+v record %d", l, r)
		}
	}
}

func TestMateScenario(t *testing.T) {
	l := Layout{SequenceCount: 10, SubSequenceCount: 2}
	m, err := l.Mate(5)
	require.NoError(t, err)
	require.EqualValues(t, 15, m)
	m, err = l.Mate(12)
	require.NoError(t, err)
	require.EqualValues(t, 2, m)
}

func TestOddOrEmptyLayoutFails(t *testing.T) {
	_, err := Layout{SequenceCount: 3, SubSequenceCount: 1}.Half()
	require.True(t, errs.IsIntegrity(err))
	_, err = NewMapper(Layout{})
	require.True(t, errs.IsIntegrity(err))
}

func TestMateOutOfRange(t *testing.T) {
	_, err := Layout{SequenceCount: 2, SubSequenceCount: 2}.Mate(4)
	require.True(t, errs.IsIntegrity(err))
}

func TestHeaderRoundTripOnDisk(t *testing.T) {
	should := require.New(t)
	path := filepath.Join(t.TempDir(), "idx-end-pos")
	want := Layout{SequenceCount: 0x01020304, SubSequenceCount: 2, HasReverseComplement: 1}
	should.NoError(Write(path, want))
	got, err := Read(path)
	should.NoError(err)
	should.Equal(want, got)
	should.Equal([]byte{0x04, 0x03, 0x02, 0x01, 2, 1}, want.Marshal())
}

func TestDecodeRejectsShortAndBadFlag(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte{1, 0, 0}))
	require.True(t, errs.IsIntegrity(err))
	_, err = Decode(bytes.NewReader([]byte{1, 0, 0, 0, 1, 7}))
	require.True(t, errs.IsIntegrity(err))
}

func TestIsForward(t *testing.T) {
	l := Layout{SequenceCount: 3, SubSequenceCount: 2, HasReverseComplement: 1}
	var fwd []uint64
	for r := uint64(0); r < l.EntryCount(); r++ {
		if l.IsForward(r) {
			fwd = append(fwd, r)
		}
	}
	require.Equal(t, []uint64{0, 1, 2, 6, 7, 8}, fwd)
}

func TestCheckArchive(t *testing.T) {
	l := Layout{SequenceCount: 4, SubSequenceCount: 2}
	require.NoError(t, l.CheckArchive("ids", 8))
	require.True(t, errs.IsIntegrity(l.CheckArchive("ids", 7)))
}

func TestMateRejectsSelfMapping(t *testing.T) {
	_, err := mate(0, 0, 1)
	require.True(t, errs.IsLayout(err), "%v", err)
}
