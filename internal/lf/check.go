package lf

import (
	"fmt"

	"github.com/deepteams/deblock/internal/dsp"
)

// Check reports whether in holds values a frame described by h can be
// filtered with. A decoder produces such inputs by construction; Check is
// for inputs read back from storage. It returns an error wrapping ErrInputs
// for a level above dsp.MaxLevel, a cap above the tiers of its plane, a mask
// bit outside the frame, or an edge whose filter would read before the
// start of its plane.
func (in *Inputs) Check(h *Header) error {
	g := h.geometry()
	for i, l := range in.Levels.Bytes() {
		if l > dsp.MaxLevel {
			return fmt.Errorf("%w: level %d at entry %d", ErrInputs, l, i/4)
		}
	}
	if in.Overrides != nil {
		if err := in.Overrides.checkTiers(); err != nil {
			return err
		}
	}

	cw4 := (g.bw4 + g.ssHor) >> g.ssHor
	ch4 := (g.bh4 + g.ssVer) >> g.ssVer
	uvW, uvH := 32>>g.ssHor, 32>>g.ssVer
	cols, rows := in.Masks.Dims()
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			sb := in.Masks.At(col, row)
			for d := ColEdges; d <= RowEdges; d++ {
				for y := range sb.Luma[d] {
					e := edgeRow{d, 32 * col, 32*row + y, 32, g.bw4, g.bh4}
					if err := e.check(sb.Luma[d][y][:], dsp.LumaTaps[:]); err != nil {
						return fmt.Errorf("%w: luma unit (%d,%d) row %d", err, col, row, y)
					}
				}
				for y := range sb.Chroma[d] {
					e := edgeRow{d, uvW * col, uvH*row + y, uvW, cw4, ch4}
					if y >= uvH {
						e.h4 = 0
					}
					if err := e.check(sb.Chroma[d][y][:], dsp.ChromaTaps[:]); err != nil {
						return fmt.Errorf("%w: chroma unit (%d,%d) row %d", err, col, row, y)
					}
				}
			}
		}
	}
	return nil
}

// edgeRow locates one mask row: bit k flags the edge of block (x4+k, y4),
// for k below unitW, in a plane of w4×h4 blocks.
type edgeRow struct {
	dir    int
	x4, y4 int
	unitW  int
	w4, h4 int
}

func (e edgeRow) check(words []uint32, taps []dsp.Taps) error {
	var hm uint32
	for _, w := range words {
		hm |= w
	}
	if hm == 0 {
		return nil
	}
	if e.y4 >= e.h4 {
		return fmt.Errorf("%w: edges flagged below the frame", ErrInputs)
	}
	inside := uint32(0)
	if n := min(e.unitW, e.w4-e.x4); n > 0 {
		inside = uint32(uint64(1)<<n - 1)
	}
	if hm&^inside != 0 {
		return fmt.Errorf("%w: edges flagged right of the frame", ErrInputs)
	}
	for k := 0; hm>>k != 0; k++ {
		bit := uint32(1) << k
		if hm&bit == 0 {
			continue
		}
		pos := e.x4 + k
		if e.dir == RowEdges {
			pos = e.y4
		}
		// The first column and row of a plane are never filtered.
		if pos == 0 {
			continue
		}
		if t := taps[tierOf(words, bit)-1]; 4*pos < t.Reach() {
			return fmt.Errorf("%w: %d-tap edge at 4×4 position %d", ErrInputs, t, pos)
		}
	}
	return nil
}

func (o *TileOverrides) checkTiers() error {
	over := func(s []Tier, limit Tier) bool {
		for _, t := range s {
			if t > limit {
				return true
			}
		}
		return false
	}
	for k := range o.ColLuma {
		if over(o.ColLuma[k], TierWidest) || over(o.ColChroma[k], TierWide) {
			return fmt.Errorf("%w: cap on column boundary %d", ErrInputs, k)
		}
	}
	for i := range o.RowLuma {
		if over(o.RowLuma[i][:], TierWidest) || over(o.RowChroma[i][:], TierWide) {
			return fmt.Errorf("%w: cap on row boundary entry %d", ErrInputs, i)
		}
	}
	return nil
}
