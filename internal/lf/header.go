// Package lf resolves deblocking edge strengths for one superblock row at a
// time and dispatches the pixel filters.
//
// A frame's filter inputs are a LevelGrid (per-4×4-block filter levels), a
// MaskStore (per-128×128-unit edge masks) and TileOverrides (strength caps at
// tile boundaries), all produced while reconstructing the frame. Frame.FilterSBRow
// first clamps the masks at tile boundaries, then filters column edges and row
// edges of luma, then of chroma.
package lf

import (
	"errors"
	"fmt"

	"github.com/deepteams/deblock/internal/dsp"
)

// Errors returned while setting up a frame.
var (
	ErrHeader    = errors.New("lf: invalid frame header")
	ErrPlaneSize = errors.New("lf: plane smaller than the frame")
	ErrGridSize  = errors.New("lf: level grid or mask store does not match the frame")
	ErrNilFilter = errors.New("lf: nil edge filter")
	ErrOverrides = errors.New("lf: tile overrides do not match the frame")
	ErrInputs    = errors.New("lf: filter inputs out of range")
)

// Layout is the chroma subsampling layout of a frame.
type Layout int

const (
	Layout420 Layout = iota
	Layout422
	Layout444
)

// Subsampling returns the horizontal and vertical chroma subsampling shifts.
func (l Layout) Subsampling() (ssHor, ssVer int) {
	switch l {
	case Layout420:
		return 1, 1
	case Layout422:
		return 1, 0
	default:
		return 0, 0
	}
}

func (l Layout) String() string {
	switch l {
	case Layout420:
		return "4:2:0"
	case Layout422:
		return "4:2:2"
	case Layout444:
		return "4:4:4"
	}
	return fmt.Sprintf("Layout(%d)", int(l))
}

// Header carries the frame-level fields the deblocking stage reads.
type Header struct {
	// Width and Height are the luma dimensions in samples.
	Width  int
	Height int
	Layout Layout
	// SB128 selects 128×128 superblocks; otherwise superblocks are 64×64.
	SB128 bool
	// LevelU and LevelV are the frame's global chroma filter levels. When
	// both are zero no chroma sample is filtered.
	LevelU uint8
	LevelV uint8
	// Sharpness (0..7) selects the limit table.
	Sharpness int
	// TileColStartSB lists the first superblock column of every tile
	// column, starting with 0. A trailing entry at or past the frame width
	// is allowed.
	TileColStartSB []int
	// TileRowStartSB lists the first superblock row of every tile row,
	// starting with 0.
	TileRowStartSB []int
}

// Validate reports whether h describes a frame the stage can filter.
func (h *Header) Validate() error {
	if h.Width <= 0 || h.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrHeader, h.Width, h.Height)
	}
	if h.Layout < Layout420 || h.Layout > Layout444 {
		return fmt.Errorf("%w: layout %d", ErrHeader, int(h.Layout))
	}
	if h.Sharpness < 0 || h.Sharpness > dsp.MaxSharpness {
		return fmt.Errorf("%w: sharpness %d", ErrHeader, h.Sharpness)
	}
	if h.LevelU > dsp.MaxLevel || h.LevelV > dsp.MaxLevel {
		return fmt.Errorf("%w: chroma levels %d/%d", ErrHeader, h.LevelU, h.LevelV)
	}
	if err := checkStarts("tile column", h.TileColStartSB); err != nil {
		return err
	}
	return checkStarts("tile row", h.TileRowStartSB)
}

func checkStarts(what string, starts []int) error {
	if len(starts) == 0 {
		return nil
	}
	if starts[0] != 0 {
		return fmt.Errorf("%w: first %s starts at %d", ErrHeader, what, starts[0])
	}
	for i := 1; i < len(starts); i++ {
		if starts[i] <= starts[i-1] {
			return fmt.Errorf("%w: %s starts not increasing at %d", ErrHeader, what, i)
		}
	}
	return nil
}

// StartOfTileRow returns r when superblock row sby is the first row of tile
// row r >= 1, and 0 otherwise.
func (h *Header) StartOfTileRow(sby int) int {
	for r := 1; r < len(h.TileRowStartSB); r++ {
		if h.TileRowStartSB[r] == sby {
			return r
		}
	}
	return 0
}

// SBRows returns the number of superblock rows in the frame.
func (h *Header) SBRows() int {
	g := h.geometry()
	return g.sbRows
}

// geometry holds the quantities derived from a header that every pass needs.
type geometry struct {
	bw4, bh4       int // frame size in 4×4 blocks
	sb64           bool
	sbStep         int // 4×4 rows per superblock row
	sbl2           int // log2(sbStep)
	sb128w, sb128h int // frame size in 128×128 units
	sbRows         int
	ssHor, ssVer   int
	halign         int // bh4 rounded up to a whole 128×128 unit
}

func (h *Header) geometry() geometry {
	g := geometry{
		bw4:  (h.Width + 3) >> 2,
		bh4:  (h.Height + 3) >> 2,
		sb64: !h.SB128,
	}
	g.sbl2 = 5
	if g.sb64 {
		g.sbl2 = 4
	}
	g.sbStep = 1 << g.sbl2
	g.sb128w = (g.bw4 + 31) >> 5
	g.sb128h = (g.bh4 + 31) >> 5
	g.sbRows = (g.bh4 + g.sbStep - 1) >> g.sbl2
	g.ssHor, g.ssVer = h.Layout.Subsampling()
	g.halign = (g.bh4 + 31) &^ 31
	return g
}

// tileColBoundaries returns, for every internal tile-column boundary inside
// the frame, its start in superblock units.
func (h *Header) tileColBoundaries(g geometry) []int {
	var out []int
	for tc := 1; tc < len(h.TileColStartSB); tc++ {
		x := h.TileColStartSB[tc]
		if x<<g.sbl2 >= g.bw4 {
			break
		}
		out = append(out, x)
	}
	return out
}
