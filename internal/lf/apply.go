package lf

import (
	"fmt"

	"github.com/deepteams/deblock/internal/dsp"
)

// frameState is the pixel-type independent part of a Frame: geometry and the
// mask side of the inputs, which is all boundary correction touches.
type frameState struct {
	g        geometry
	masks    *MaskStore
	ov       *TileOverrides
	tileCols []int // internal tile-column starts, superblock units
}

// Frame filters one frame a superblock row at a time. The planes are
// modified in place; levels and overrides are only read, masks are corrected
// in place before each row is filtered.
//
// FilterSBRow may run concurrently for different superblock rows as long as
// they do not share a mask store row and each row's inputs are final.
type Frame[P dsp.Pixel] struct {
	frameState
	hdr    Header
	planes [3]*dsp.Plane[P]
	levels *LevelGrid
	lut    *dsp.LimitTable
	filter dsp.EdgeFilter[P]
}

// Inputs groups the per-frame side data produced during reconstruction.
// A nil Overrides means no tile boundary is capped.
type Inputs struct {
	Levels    *LevelGrid
	Masks     *MaskStore
	Overrides *TileOverrides
}

// NewInputs allocates zeroed inputs sized for h, with uncapped overrides.
// Release returns their storage to the pools.
func NewInputs(h *Header) *Inputs {
	g := h.geometry()
	return &Inputs{
		Levels:    newLevelGridFor(g),
		Masks:     NewMaskStore(g.sb128w, g.sb128h),
		Overrides: NewTileOverrides(h),
	}
}

// Release returns the level grid and mask store to their pools.
func (in *Inputs) Release() {
	in.Levels.Release()
	in.Masks.Release()
}

// NewFrame checks that planes and inputs match hdr and binds them to filter.
// Chroma planes may be nil when both chroma levels are zero.
func NewFrame[P dsp.Pixel](hdr *Header, planes [3]*dsp.Plane[P], in *Inputs, filter dsp.EdgeFilter[P]) (*Frame[P], error) {
	if err := hdr.Validate(); err != nil {
		return nil, err
	}
	if filter == nil {
		return nil, ErrNilFilter
	}
	g := hdr.geometry()

	if pl := planes[0]; pl == nil || pl.Width < hdr.Width || pl.Height < hdr.Height || !pl.Covers(g.bw4, g.bh4) {
		return nil, fmt.Errorf("%w: luma", ErrPlaneSize)
	}
	if hdr.LevelU != 0 || hdr.LevelV != 0 {
		cw4 := (g.bw4 + g.ssHor) >> g.ssHor
		ch4 := (g.bh4 + g.ssVer) >> g.ssVer
		for i, pl := range planes[1:] {
			if pl == nil || !pl.Covers(cw4, ch4) {
				return nil, fmt.Errorf("%w: chroma plane %d", ErrPlaneSize, i+1)
			}
		}
	}

	if in == nil || in.Levels == nil || in.Masks == nil {
		return nil, fmt.Errorf("%w: missing inputs", ErrGridSize)
	}
	if in.Levels.Stride() < g.sb128w*32 || in.Levels.Rows() < g.bh4 {
		return nil, fmt.Errorf("%w: level grid %dx%d, need %dx%d",
			ErrGridSize, in.Levels.Stride(), in.Levels.Rows(), g.sb128w*32, g.bh4)
	}
	if cols, rows := in.Masks.Dims(); cols < g.sb128w || rows < g.sb128h {
		return nil, fmt.Errorf("%w: mask store %dx%d, need %dx%d",
			ErrGridSize, cols, rows, g.sb128w, g.sb128h)
	}
	ov := in.Overrides
	if ov == nil {
		ov = NewTileOverrides(hdr)
	} else if err := ov.check(hdr, g); err != nil {
		return nil, err
	}

	f := &Frame[P]{
		frameState: frameState{
			g:        g,
			masks:    in.Masks,
			ov:       ov,
			tileCols: hdr.tileColBoundaries(g),
		},
		hdr:    *hdr,
		planes: planes,
		levels: in.Levels,
		lut:    dsp.LimitTableFor(hdr.Sharpness),
		filter: filter,
	}
	f.hdr.TileColStartSB = append([]int(nil), hdr.TileColStartSB...)
	f.hdr.TileRowStartSB = append([]int(nil), hdr.TileRowStartSB...)
	return f, nil
}

// SBRows returns the number of superblock rows in the frame.
func (f *Frame[P]) SBRows() int { return f.g.sbRows }

// FilterRow filters superblock row sby, deriving the tile-row start from the
// header.
func (f *Frame[P]) FilterRow(sby int) {
	f.FilterSBRow(sby, f.hdr.StartOfTileRow(sby))
}

// FilterSBRow corrects the masks of superblock row sby at tile boundaries and
// filters its luma and chroma edges. startOfTileRow is r when sby is the
// first row of tile row r >= 1, and 0 otherwise.
func (f *Frame[P]) FilterSBRow(sby, startOfTileRow int) {
	g := &f.g
	if sby < 0 || sby >= g.sbRows {
		panic(fmt.Sprintf("lf: superblock row %d outside frame of %d rows", sby, g.sbRows))
	}
	starty4, row128 := 0, sby
	if g.sb64 {
		starty4 = (sby & 1) << 4
		row128 = sby >> 1
	}
	endy4 := starty4 + min(g.bh4-sby*g.sbStep, g.sbStep)

	f.correctTileCols(sby, starty4, endy4, row128)
	if startOfTileRow > 0 {
		f.correctTileRows(startOfTileRow, starty4, row128)
	}

	f.filterColsY(sby, starty4, endy4, row128)
	f.filterRowsY(sby, starty4, endy4, row128)

	if f.hdr.LevelU == 0 && f.hdr.LevelV == 0 {
		return
	}
	uvStart := starty4 >> g.ssVer
	uvEnd := (endy4 + g.ssVer) >> g.ssVer
	f.filterColsUV(sby, uvStart, uvEnd, row128)
	f.filterRowsUV(sby, uvStart, uvEnd, row128)
}

// filterColsY filters luma edges between columns. The first column of the
// frame has no left neighbor and is skipped.
func (f *Frame[P]) filterColsY(sby, starty4, endy4, row128 int) {
	g := &f.g
	pl := f.planes[0]
	y4Base := sby * g.sbStep
	for x := 0; x < g.sb128w; x++ {
		sb := f.masks.At(x, row128)
		x4 := x * 32
		for y := starty4; y < endy4; y++ {
			y4 := y4Base + y - starty4
			m := &sb.Luma[ColEdges][y]
			hm := m[0] | m[1] | m[2]
			for k := 0; k < 32 && hm>>k != 0; k++ {
				bit := uint32(1) << k
				if hm&bit == 0 || (x == 0 && k == 0) {
					continue
				}
				taps := dsp.LumaTaps[tierOf(m[:], bit)-1]
				checkReach("luma", 4*(x4+k), taps)
				level := f.levels.effective(x4+k, y4, x4+k-1, y4, CompLumaCol)
				if level == 0 {
					continue
				}
				f.filter.Edge(pl, 4*(x4+k), 4*y4, dsp.VerticalEdge, taps, f.lut.Limits(level))
			}
		}
	}
}

// filterRowsY filters luma edges between rows, one row call per 4×4 row.
// The top row of the frame is skipped.
func (f *Frame[P]) filterRowsY(sby, starty4, endy4, row128 int) {
	g := &f.g
	pl := f.planes[0]
	y4Base := sby * g.sbStep
	for x := 0; x < g.sb128w; x++ {
		sb := f.masks.At(x, row128)
		w := min(32, g.bw4-32*x)
		for y := starty4; y < endy4; y++ {
			y4 := y4Base + y - starty4
			if y4 == 0 {
				continue
			}
			mask := (*[3]uint32)(&sb.Luma[RowEdges][y])
			if taps, ok := widestTaps(mask[:], w, dsp.LumaTaps[:]); ok {
				checkReach("luma", 4*y4, taps)
			}
			f.filter.LumaRow(pl, 128*x, 4*y4, mask, f.levels.view(32*x, y4, CompLumaRow), f.lut, w)
		}
	}
}

// filterColsUV filters chroma edges between columns in chroma 4×4 rows
// [uvStart, uvEnd). U and V share the mask but resolve their own levels.
func (f *Frame[P]) filterColsUV(sby, uvStart, uvEnd, row128 int) {
	g := &f.g
	cy4Base := (sby * g.sbStep) >> g.ssVer
	cw := 32 >> g.ssHor
	for x := 0; x < g.sb128w; x++ {
		sb := f.masks.At(x, row128)
		cx4 := x * cw
		for y := uvStart; y < uvEnd; y++ {
			cy4 := cy4Base + y - uvStart
			m := &sb.Chroma[ColEdges][y]
			hm := m[0] | m[1]
			for k := 0; k < 32 && hm>>k != 0; k++ {
				bit := uint32(1) << k
				if hm&bit == 0 || (x == 0 && k == 0) {
					continue
				}
				taps := dsp.ChromaTaps[tierOf(m[:], bit)-1]
				checkReach("chroma", 4*(cx4+k), taps)
				for comp := CompU; comp <= CompV; comp++ {
					level := f.levels.effective(cx4+k, cy4, cx4+k-1, cy4, comp)
					if level == 0 {
						continue
					}
					f.filter.Edge(f.planes[comp-1], 4*(cx4+k), 4*cy4, dsp.VerticalEdge, taps, f.lut.Limits(level))
				}
			}
		}
	}
}

// filterRowsUV filters chroma edges between rows for U and V.
func (f *Frame[P]) filterRowsUV(sby, uvStart, uvEnd, row128 int) {
	g := &f.g
	cy4Base := (sby * g.sbStep) >> g.ssVer
	cw := 32 >> g.ssHor
	for x := 0; x < g.sb128w; x++ {
		sb := f.masks.At(x, row128)
		w := (min(32, g.bw4-32*x) + g.ssHor) >> g.ssHor
		cx4 := x * cw
		for y := uvStart; y < uvEnd; y++ {
			cy4 := cy4Base + y - uvStart
			if cy4 == 0 {
				continue
			}
			mask := (*[2]uint32)(&sb.Chroma[RowEdges][y])
			if taps, ok := widestTaps(mask[:], w, dsp.ChromaTaps[:]); ok {
				checkReach("chroma", 4*cy4, taps)
			}
			for comp := CompU; comp <= CompV; comp++ {
				f.filter.ChromaRow(f.planes[comp-1], 4*cx4, 4*cy4, mask,
					f.levels.view(cx4, cy4, comp), f.lut, w)
			}
		}
	}
}

// checkReach panics when an edge at sample pos needs more samples before it
// than the plane has.
func checkReach(plane string, pos int, taps dsp.Taps) {
	if pos < taps.Reach() {
		panic(fmt.Sprintf("lf: %d-tap %s edge at sample %d reads %d samples before it",
			taps, plane, pos, taps.Reach()))
	}
}

// widestTaps returns the primitive of the highest mask word with a bit among
// the first w positions.
func widestTaps(words []uint32, w int, taps []dsp.Taps) (dsp.Taps, bool) {
	vis := uint32(uint64(1)<<min(w, 32) - 1)
	for i := len(words) - 1; i >= 0; i-- {
		if words[i]&vis != 0 {
			return taps[i], true
		}
	}
	return 0, false
}
