package lf

import (
	"github.com/deepteams/deblock/internal/dsp"
	"github.com/deepteams/deblock/internal/pool"
)

// Level components of a LevelEntry.
const (
	CompLumaCol = 0 // luma, edges between columns
	CompLumaRow = 1 // luma, edges between rows
	CompU       = 2
	CompV       = 3
)

// LevelEntry holds the filter levels of one 4×4 block. A zero level means
// the block imposes no filtering of its own and defers to the neighbor
// across the edge.
type LevelEntry [4]uint8

// EffectiveLevel resolves the level used for the edge between block and
// neighbor for one component.
func EffectiveLevel(block, neighbor LevelEntry, comp int) uint8 {
	if block[comp] != 0 {
		return block[comp]
	}
	return neighbor[comp]
}

var levelSlab pool.Slab[uint8]

// LevelGrid stores one LevelEntry per 4×4 block of a frame. Luma components
// are addressed by luma 4×4 coordinates, chroma components by chroma 4×4
// coordinates of the same grid. The grid is filled during reconstruction
// and read-only while filtering.
type LevelGrid struct {
	data   []uint8
	stride int // entries per row
	rows   int
}

// NewLevelGrid returns a zeroed grid of rows rows of stride entries.
func NewLevelGrid(stride, rows int) *LevelGrid {
	return &LevelGrid{
		data:   levelSlab.Get(4 * stride * rows),
		stride: stride,
		rows:   rows,
	}
}

// newLevelGridFor sizes a grid for a frame: one row per luma 4×4 row and a
// stride padded to whole 128×128 units.
func newLevelGridFor(g geometry) *LevelGrid {
	return NewLevelGrid(g.sb128w*32, g.bh4)
}

// Stride returns the number of entries per row.
func (g *LevelGrid) Stride() int { return g.stride }

// Rows returns the number of rows.
func (g *LevelGrid) Rows() int { return g.rows }

// At returns the entry at (x4, y4).
func (g *LevelGrid) At(x4, y4 int) LevelEntry {
	i := 4 * (y4*g.stride + x4)
	return LevelEntry(g.data[i : i+4])
}

// Set stores e at (x4, y4).
func (g *LevelGrid) Set(x4, y4 int, e LevelEntry) {
	i := 4 * (y4*g.stride + x4)
	copy(g.data[i:i+4], e[:])
}

// SetLuma sets both luma components of the w4×h4 block at luma (x4, y4).
func (g *LevelGrid) SetLuma(x4, y4, w4, h4 int, col, row uint8) {
	for y := y4; y < y4+h4; y++ {
		for x := x4; x < x4+w4; x++ {
			i := 4 * (y*g.stride + x)
			g.data[i+CompLumaCol] = col
			g.data[i+CompLumaRow] = row
		}
	}
}

// SetChroma sets both chroma components of the w4×h4 block at chroma
// (cx4, cy4).
func (g *LevelGrid) SetChroma(cx4, cy4, w4, h4 int, u, v uint8) {
	for y := cy4; y < cy4+h4; y++ {
		for x := cx4; x < cx4+w4; x++ {
			i := 4 * (y*g.stride + x)
			g.data[i+CompU] = u
			g.data[i+CompV] = v
		}
	}
}

// Bytes exposes the packed grid, four bytes per entry.
func (g *LevelGrid) Bytes() []uint8 { return g.data }

// Release returns the grid's storage to the pool. The grid must not be used
// afterwards.
func (g *LevelGrid) Release() {
	levelSlab.Put(g.data)
	g.data = nil
}

// effective applies EffectiveLevel to the entries at (x4, y4) and (nx, ny).
func (g *LevelGrid) effective(x4, y4, nx, ny, comp int) uint8 {
	if l := g.data[4*(y4*g.stride+x4)+comp]; l != 0 {
		return l
	}
	return g.data[4*(ny*g.stride+nx)+comp]
}

// view returns the row of component comp starting at (x4, y4).
func (g *LevelGrid) view(x4, y4, comp int) dsp.LevelView {
	return dsp.LevelView{
		Levels: g.data,
		Off:    4*(y4*g.stride+x4) + comp,
		Stride: 4 * g.stride,
	}
}
