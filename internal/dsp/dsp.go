// Package dsp provides the pixel-level deblocking primitives and the numeric
// limit tables they are driven with.
//
// The edge-resolution code in internal/lf never calls a primitive directly:
// it goes through an EdgeFilter obtained once per frame from NewEdgeFilter,
// which keeps it independent of sample depth and tap width.
package dsp

import (
	"errors"
	"fmt"
)

// ErrBitDepth is returned by NewEdgeFilter for a bit depth the sample type
// cannot hold.
var ErrBitDepth = errors.New("dsp: unsupported bit depth")

// LevelView addresses one level component along a row of 4×4 blocks inside
// a level grid that stores four bytes per block. Entry k of the row is
// Levels[Off+4*k]; the entry directly above it is Stride bytes earlier.
type LevelView struct {
	Levels []uint8
	Off    int
	Stride int
}

// At returns the level of block k.
func (v LevelView) At(k int) uint8 {
	return v.Levels[v.Off+4*k]
}

// Above returns the level of the block above block k.
func (v LevelView) Above(k int) uint8 {
	return v.Levels[v.Off+4*k-v.Stride]
}

// EdgeFilter is the pixel-smoothing capability the deblocking core drives.
//
// Edge filters one 4-sample segment of an edge whose q0 sample is (x, y).
// LumaRow and ChromaRow filter every horizontal edge on top of one row of
// 4×4 blocks starting at sample (x, y): bit k of the mask words flags the
// block at x+4k, levels resolve through ScanRow, and w bounds the number of
// blocks in the row.
type EdgeFilter[P Pixel] interface {
	Edge(pl *Plane[P], x, y int, dir Dir, taps Taps, lim Limits)
	LumaRow(pl *Plane[P], x, y int, mask *[3]uint32, lv LevelView, lut *LimitTable, w int)
	ChromaRow(pl *Plane[P], x, y int, mask *[2]uint32, lv LevelView, lut *LimitTable, w int)
}

// NewEdgeFilter returns the filter implementation for samples of type P at
// the given bit depth: 8 for uint8 samples, 10 or 12 for uint16 samples.
func NewEdgeFilter[P Pixel](bitDepth int) (EdgeFilter[P], error) {
	switch maxValue[P]() {
	case 0xff:
		if bitDepth != 8 {
			return nil, fmt.Errorf("%w: %d bits in 8-bit samples", ErrBitDepth, bitDepth)
		}
	default:
		if bitDepth != 10 && bitDepth != 12 {
			return nil, fmt.Errorf("%w: %d bits in 16-bit samples", ErrBitDepth, bitDepth)
		}
	}
	return &loopFilters[P]{bdm8: bitDepth - 8}, nil
}

// loopFilters is the portable implementation of EdgeFilter.
type loopFilters[P Pixel] struct {
	bdm8 int
}

func (f *loopFilters[P]) Edge(pl *Plane[P], x, y int, dir Dir, taps Taps, lim Limits) {
	stridea, strideb := pl.Stride, 1
	if dir == HorizontalEdge {
		stridea, strideb = 1, pl.Stride
	}
	loopFilter(pl.Pix, pl.Offset(x, y), lim, stridea, strideb, taps, f.bdm8)
}

func (f *loopFilters[P]) LumaRow(pl *Plane[P], x, y int, mask *[3]uint32, lv LevelView, lut *LimitTable, w int) {
	base := pl.Offset(x, y)
	ScanRow(mask[:], lv, lut, w, func(k, idx int, lim Limits) {
		loopFilter(pl.Pix, base+4*k, lim, 1, pl.Stride, LumaTaps[idx], f.bdm8)
	})
}

func (f *loopFilters[P]) ChromaRow(pl *Plane[P], x, y int, mask *[2]uint32, lv LevelView, lut *LimitTable, w int) {
	base := pl.Offset(x, y)
	ScanRow(mask[:], lv, lut, w, func(k, idx int, lim Limits) {
		loopFilter(pl.Pix, base+4*k, lim, 1, pl.Stride, ChromaTaps[idx], f.bdm8)
	})
}

// ScanRow resolves the horizontal edges of one block row. For every block k
// below w whose bit is set in any mask word, the level is the block's own
// level or, when that is zero, the level of the block above. Edges that
// still resolve to zero are skipped; otherwise fn receives the block index,
// the highest mask word holding the bit and the limits for the level.
func ScanRow(words []uint32, lv LevelView, lut *LimitTable, w int, fn func(k, idx int, lim Limits)) {
	var vm uint32
	for _, m := range words {
		vm |= m
	}
	if w > 32 {
		w = 32
	}
	for k := 0; k < w && vm>>k != 0; k++ {
		bit := uint32(1) << k
		if vm&bit == 0 {
			continue
		}
		level := lv.At(k)
		if level == 0 {
			level = lv.Above(k)
		}
		if level == 0 {
			continue
		}
		idx := 0
		for i := len(words) - 1; i > 0; i-- {
			if words[i]&bit != 0 {
				idx = i
				break
			}
		}
		fn(k, idx, lut.Limits(level))
	}
}
