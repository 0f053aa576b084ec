package lf

import (
	"fmt"
	"slices"
)

// EdgeCaps holds one tier cap per 4×4 column of a 128×128 unit.
type EdgeCaps [32]Tier

// TileOverrides caps edge strength at tile boundaries, from transform sizes
// on the far side of the boundary. Values are maximum tiers; a new set
// starts with every cap at the strongest tier, so untouched positions are
// not restricted.
type TileOverrides struct {
	// ColLuma[k][y4] caps the left edge of the (k+1)-th internal tile
	// column boundary at frame 4×4 row y4. ColChroma uses chroma rows.
	ColLuma   [][]Tier
	ColChroma [][]Tier
	// RowLuma[(r-1)*sb128w+x] caps the top edge of tile row r inside
	// 128×128 column x. RowChroma uses chroma columns, 32>>ssHor of them.
	RowLuma   []EdgeCaps
	RowChroma []EdgeCaps

	sb128w int
}

// TxTier returns the strongest tier a transform-size class permits: class 0
// (4 samples) allows narrow filtering, class 1 (8 samples) wide, 2 and above
// the widest.
func TxTier(txClass int) Tier {
	return Tier(min(txClass, 2) + 1)
}

// NewTileOverrides sizes an override set for the frame described by h.
func NewTileOverrides(h *Header) *TileOverrides {
	g := h.geometry()
	bounds := h.tileColBoundaries(g)
	o := &TileOverrides{
		ColLuma:   make([][]Tier, len(bounds)),
		ColChroma: make([][]Tier, len(bounds)),
		sb128w:    g.sb128w,
	}
	for k := range bounds {
		o.ColLuma[k] = fillTiers(make([]Tier, g.halign), TierWidest)
		o.ColChroma[k] = fillTiers(make([]Tier, g.halign>>g.ssVer), TierWide)
	}
	if n := len(h.TileRowStartSB) - 1; n > 0 {
		o.RowLuma = make([]EdgeCaps, n*g.sb128w)
		o.RowChroma = make([]EdgeCaps, n*g.sb128w)
		for i := range o.RowLuma {
			fillTiers(o.RowLuma[i][:], TierWidest)
			fillTiers(o.RowChroma[i][:], TierWide)
		}
	}
	return o
}

func fillTiers(s []Tier, t Tier) []Tier {
	for i := range s {
		s[i] = t
	}
	return s
}

// RowCaps returns the luma and chroma caps for the top edge of tile row r
// inside 128×128 column x.
func (o *TileOverrides) RowCaps(r, x int) (luma, chroma *EdgeCaps) {
	i := (r-1)*o.sb128w + x
	return &o.RowLuma[i], &o.RowChroma[i]
}

// Clone returns a deep copy of o.
func (o *TileOverrides) Clone() *TileOverrides {
	c := &TileOverrides{
		ColLuma:   make([][]Tier, len(o.ColLuma)),
		ColChroma: make([][]Tier, len(o.ColChroma)),
		RowLuma:   slices.Clone(o.RowLuma),
		RowChroma: slices.Clone(o.RowChroma),
		sb128w:    o.sb128w,
	}
	for k := range o.ColLuma {
		c.ColLuma[k] = slices.Clone(o.ColLuma[k])
	}
	for k := range o.ColChroma {
		c.ColChroma[k] = slices.Clone(o.ColChroma[k])
	}
	return c
}

func (o *TileOverrides) check(h *Header, g geometry) error {
	bounds := h.tileColBoundaries(g)
	if len(o.ColLuma) != len(bounds) || len(o.ColChroma) != len(bounds) {
		return fmt.Errorf("%w: %d column boundaries, header has %d", ErrOverrides, len(o.ColLuma), len(bounds))
	}
	for k := range bounds {
		if len(o.ColLuma[k]) < g.bh4 || len(o.ColChroma[k]) < (g.bh4+g.ssVer)>>g.ssVer {
			return fmt.Errorf("%w: column boundary %d too short", ErrOverrides, k)
		}
	}
	if n := len(h.TileRowStartSB) - 1; n > 0 {
		if o.sb128w != g.sb128w || len(o.RowLuma) < n*g.sb128w || len(o.RowChroma) < n*g.sb128w {
			return fmt.Errorf("%w: row caps for %d tile rows", ErrOverrides, n)
		}
	}
	return nil
}

// correctTileCols caps the column-edge masks on every internal tile-column
// boundary for the 4×4 rows [starty4, endy4) of superblock row sby.
func (f *frameState) correctTileCols(sby, starty4, endy4 int, row128 int) {
	g := &f.g
	uvStart := starty4 >> g.ssVer
	uvEnd := (endy4 + g.ssVer) >> g.ssVer
	y4Base := sby * g.sbStep
	cy4Base := y4Base >> g.ssVer

	for k, x := range f.tileCols {
		bit, uvBit := 0, 0
		if g.sb64 && x&1 != 0 {
			bit, uvBit = 16, 16>>g.ssHor
		}
		if g.sb64 {
			x >>= 1
		}
		sb := f.masks.At(x, row128)
		caps := f.ov.ColLuma[k]
		for y := starty4; y < endy4; y++ {
			sb.Luma[ColEdges][y].Cap(bit, caps[y4Base+y-starty4])
		}
		uvCaps := f.ov.ColChroma[k]
		for y := uvStart; y < uvEnd; y++ {
			sb.Chroma[ColEdges][y].Cap(uvBit, uvCaps[cy4Base+y-uvStart])
		}
	}
}

// correctTileRows caps the row-edge masks on top of the first superblock
// row of tile row r, using the transform sizes of the row above.
func (f *frameState) correctTileRows(r, starty4, row128 int) {
	g := &f.g
	uvRow := starty4 >> g.ssVer
	uvW := 32 >> g.ssHor
	for x := 0; x < g.sb128w; x++ {
		caps, uvCaps := f.ov.RowCaps(r, x)
		sb := f.masks.At(x, row128)

		m := &sb.Luma[RowEdges][starty4]
		for i := 0; i < 32; i++ {
			if m.Any(i) {
				m.Cap(i, caps[i])
			}
		}
		cm := &sb.Chroma[RowEdges][uvRow]
		for i := 0; i < uvW; i++ {
			if cm.Any(i) {
				cm.Cap(i, uvCaps[i])
			}
		}
	}
}
