// Package pairs finds the mates of matched reads that still need extracting.
package pairs

import (
	"github.com/RoaringBitmap/roaring/roaring64"

	"kmerx/internal/layout"
)

// Resolution is the outcome of one resolve pass.
type Resolution struct {
	Needed     []uint64 // ascending, disjoint from the primary set
	MatchCount int      // size of the primary set
	ReadPairs  int      // pairs with both ends already in the primary set
}

// Resolve returns the mates of primary that are not in primary themselves.
// primary is expected sorted and deduplicated; duplicates are tolerated.
func Resolve(primary []uint64, l layout.Layout) (Resolution, error) {
	m, err := layout.NewMapper(l)
	if err != nil {
		return Resolution{}, err
	}
	present := roaring64.New()
	present.AddMany(primary)

	needed := roaring64.New()
	both := 0
	for _, r := range primary {
		mate, err := m.Mate(r)
		if err != nil {
			return Resolution{}, err
		}
		if present.Contains(mate) {
			both++
			continue
		}
		needed.Add(mate)
	}
	return Resolution{
		Needed:     needed.ToArray(),
		MatchCount: int(present.GetCardinality()),
		ReadPairs:  both / 2,
	}, nil
}
