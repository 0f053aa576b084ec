package lf

import "github.com/deepteams/deblock/internal/pool"

// Tier is the strength class of an edge.
type Tier uint8

const (
	TierNone   Tier = iota
	TierNarrow      // 4-tap
	TierWide        // 8-tap luma, 6-tap chroma
	TierWidest      // 14-tap, luma only
)

// Mask packing: bit k of word w set means the edge at position k is
// filtered with tier w+1. If a position has bits in several words the
// highest word wins; a position with no bits is not filtered.

// LumaMask flags up to 32 luma edges across three tiers.
type LumaMask [3]uint32

// ChromaMask flags up to 32 chroma edges across two tiers.
type ChromaMask [2]uint32

func tierOf(words []uint32, bit uint32) Tier {
	for w := len(words) - 1; w >= 0; w-- {
		if words[w]&bit != 0 {
			return Tier(w + 1)
		}
	}
	return TierNone
}

func setTier(words []uint32, bit uint32, t Tier) {
	if int(t) > len(words) {
		panic("lf: tier out of range for mask")
	}
	for w := range words {
		words[w] &^= bit
	}
	if t != TierNone {
		words[t-1] |= bit
	}
}

// Tier returns the tier of position k.
func (m *LumaMask) Tier(k int) Tier { return tierOf(m[:], 1<<k) }

// SetTier replaces the tier of position k.
func (m *LumaMask) SetTier(k int, t Tier) { setTier(m[:], 1<<k, t) }

// Any reports whether position k is flagged in any word.
func (m *LumaMask) Any(k int) bool { return (m[0]|m[1]|m[2])&(1<<k) != 0 }

// Cap lowers the tier of position k to at most limit.
func (m *LumaMask) Cap(k int, limit Tier) {
	if limit > TierWidest {
		panic("lf: luma boundary override out of range")
	}
	setTier(m[:], 1<<k, min(m.Tier(k), limit))
}

// Tier returns the tier of position k.
func (m *ChromaMask) Tier(k int) Tier { return tierOf(m[:], 1<<k) }

// SetTier replaces the tier of position k.
func (m *ChromaMask) SetTier(k int, t Tier) { setTier(m[:], 1<<k, t) }

// Any reports whether position k is flagged in any word.
func (m *ChromaMask) Any(k int) bool { return (m[0]|m[1])&(1<<k) != 0 }

// Cap lowers the tier of position k to at most limit.
func (m *ChromaMask) Cap(k int, limit Tier) {
	if limit > TierWide {
		panic("lf: chroma boundary override out of range")
	}
	setTier(m[:], 1<<k, min(m.Tier(k), limit))
}

// Edge directions indexing SBMask.
const (
	ColEdges = 0 // edges between columns, filtered along rows
	RowEdges = 1 // edges between rows, filtered along columns
)

// SBMask holds the edge masks of one 128×128 unit. Luma[d][y] covers the
// 4×4 row y of the unit, bit k addressing 4×4 column k; Chroma[d][y] uses
// chroma 4×4 coordinates. For row edges, row y flags the edge on top of that
// row.
type SBMask struct {
	Luma   [2][32]LumaMask
	Chroma [2][32]ChromaMask
}

var maskSlab pool.Slab[SBMask]

// MaskStore is an arena of SBMask indexed by (128-row, 128-column). With
// 64×64 superblocks two superblock rows share one store row: the first uses
// 4×4 rows 0..15, the second rows 16..31.
type MaskStore struct {
	cols, rows int
	masks      []SBMask
}

// NewMaskStore returns a zeroed store of rows×cols units.
func NewMaskStore(cols, rows int) *MaskStore {
	return &MaskStore{cols: cols, rows: rows, masks: maskSlab.Get(cols * rows)}
}

// Dims returns the store size in 128×128 units.
func (s *MaskStore) Dims() (cols, rows int) { return s.cols, s.rows }

// At returns the masks of unit (col, row).
func (s *MaskStore) At(col, row int) *SBMask {
	if col < 0 || col >= s.cols || row < 0 || row >= s.rows {
		panic("lf: mask store index out of range")
	}
	return &s.masks[row*s.cols+col]
}

// Units exposes the arena in row-major order.
func (s *MaskStore) Units() []SBMask { return s.masks }

// Release returns the arena to the pool. The store must not be used
// afterwards.
func (s *MaskStore) Release() {
	maskSlab.Put(s.masks)
	s.masks = nil
}
