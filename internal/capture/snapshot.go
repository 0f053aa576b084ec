// Package capture stores the complete input of one frame's deblocking pass,
// together with the output it produced, so that the pass can be replayed and
// checked for bit-exact agreement later.
//
// Snapshots are RIFF forms of type "LFSN". A "HEAD" chunk carries the frame
// header and array dimensions; the level grid ("LVLS"), edge masks ("MASK"),
// tile overrides ("OVRD") and planes ("PLIN" for input, "PLEX" for expected
// output, one chunk per plane) are zstd-compressed little-endian arrays.
package capture

import (
	"errors"
	"fmt"
	"slices"

	"github.com/deepteams/deblock/internal/container"
	"github.com/deepteams/deblock/internal/dsp"
	"github.com/deepteams/deblock/internal/lf"
)

// Version is the snapshot format version written by Write.
const Version = 1

// maxChunkBytes bounds the decompressed size of one chunk.
const maxChunkBytes = 1 << 30

var (
	formLFSN     = container.FourCC('L', 'F', 'S', 'N')
	tagHead      = container.FourCC('H', 'E', 'A', 'D')
	tagLevels    = container.FourCC('L', 'V', 'L', 'S')
	tagMasks     = container.FourCC('M', 'A', 'S', 'K')
	tagOverrides = container.FourCC('O', 'V', 'R', 'D')
	tagInput     = container.FourCC('P', 'L', 'I', 'N')
	tagExpected  = container.FourCC('P', 'L', 'E', 'X')
)

// Errors returned while reading or replaying a snapshot.
var (
	ErrFormat   = errors.New("capture: malformed snapshot")
	ErrVersion  = errors.New("capture: unsupported snapshot version")
	ErrMismatch = errors.New("capture: output differs from snapshot")
)

// PlaneData is one plane's samples, row-major. Cols and Rows cover the
// visible Width and Height rounded up to whole 4×4 blocks plus the reach of
// the widest filter, since the filters read and write that far. A zero Width
// marks a plane that was not captured.
type PlaneData struct {
	Width, Height int
	Cols, Rows    int
	Samples       []uint16
}

// Snapshot is the full input of a frame's deblocking pass and, once
// recorded, its output.
type Snapshot struct {
	Header   lf.Header
	BitDepth int

	LevelStride int
	LevelRows   int
	Levels      []uint8 // four bytes per entry, as lf.LevelGrid.Bytes

	MaskCols int
	MaskRows int
	Masks    []lf.SBMask

	Overrides *lf.TileOverrides

	Input    [3]PlaneData
	Expected [3]PlaneData
}

// Take copies the inputs of a frame before it is filtered.
func Take[P dsp.Pixel](hdr *lf.Header, bitDepth int, planes [3]*dsp.Plane[P], in *lf.Inputs) *Snapshot {
	s := &Snapshot{
		Header:      *hdr,
		BitDepth:    bitDepth,
		LevelStride: in.Levels.Stride(),
		LevelRows:   in.Levels.Rows(),
		Levels:      slices.Clone(in.Levels.Bytes()),
		Masks:       slices.Clone(in.Masks.Units()),
	}
	s.Header.TileColStartSB = slices.Clone(hdr.TileColStartSB)
	s.Header.TileRowStartSB = slices.Clone(hdr.TileRowStartSB)
	s.MaskCols, s.MaskRows = in.Masks.Dims()
	if in.Overrides != nil {
		s.Overrides = in.Overrides.Clone()
	} else {
		s.Overrides = lf.NewTileOverrides(hdr)
	}
	s.Input = capturePlanes(planes)
	return s
}

// Record stores the filtered planes as the snapshot's expected output.
func Record[P dsp.Pixel](s *Snapshot, planes [3]*dsp.Plane[P]) {
	s.Expected = capturePlanes(planes)
}

func capturePlanes[P dsp.Pixel](planes [3]*dsp.Plane[P]) [3]PlaneData {
	var out [3]PlaneData
	for i, pl := range planes {
		if pl == nil {
			continue
		}
		cols := min((pl.Width+3)&^3+dsp.FilterReach, pl.Stride)
		rows := min((pl.Height+3)&^3+dsp.FilterReach, (len(pl.Pix)-cols)/pl.Stride+1)
		pd := PlaneData{
			Width:   pl.Width,
			Height:  pl.Height,
			Cols:    cols,
			Rows:    rows,
			Samples: make([]uint16, cols*rows),
		}
		for y := 0; y < rows; y++ {
			for x, v := range pl.Pix[y*pl.Stride : y*pl.Stride+cols] {
				pd.Samples[y*cols+x] = uint16(v)
			}
		}
		out[i] = pd
	}
	return out
}

// toPlane allocates a plane holding pd.
func toPlane[P dsp.Pixel](pd PlaneData) (*dsp.Plane[P], error) {
	if pd.Width == 0 {
		return nil, nil
	}
	pl := dsp.NewPlane[P](pd.Width, pd.Height)
	if pd.Cols > pl.Stride || pd.Rows*pl.Stride > len(pl.Pix) {
		return nil, fmt.Errorf("%w: %dx%d samples stored for a %dx%d plane", ErrFormat, pd.Cols, pd.Rows, pd.Width, pd.Height)
	}
	for y := 0; y < pd.Rows; y++ {
		for x := 0; x < pd.Cols; x++ {
			pl.Set(x, y, P(pd.Samples[y*pd.Cols+x]))
		}
	}
	return pl, nil
}

// Mismatch describes the first sample where a replay disagrees with the
// recorded output.
type Mismatch struct {
	Plane, X, Y int
	Got, Want   uint16
	Count       int // differing samples in all planes
}

func (m *Mismatch) Error() string {
	return fmt.Sprintf("capture: plane %d sample (%d,%d) = %d, want %d (%d samples differ)",
		m.Plane, m.X, m.Y, m.Got, m.Want, m.Count)
}

func (m *Mismatch) Unwrap() error { return ErrMismatch }

// Compare checks got against want sample by sample. It returns a *Mismatch
// describing the first difference, or an ErrMismatch-wrapped error when the
// plane shapes differ.
func Compare(got, want [3]PlaneData) error {
	var first *Mismatch
	for i := range want {
		g, w := got[i], want[i]
		if g.Width != w.Width || g.Height != w.Height || g.Cols != w.Cols || g.Rows != w.Rows {
			return fmt.Errorf("%w: plane %d is %dx%d, want %dx%d", ErrMismatch, i, g.Cols, g.Rows, w.Cols, w.Rows)
		}
		for j, v := range w.Samples {
			if g.Samples[j] == v {
				continue
			}
			if first == nil {
				first = &Mismatch{Plane: i, X: j % w.Cols, Y: j / w.Cols, Got: g.Samples[j], Want: v}
			}
			first.Count++
		}
	}
	if first != nil {
		return first
	}
	return nil
}

// Replay filters the snapshot's input planes with the portable filters and
// returns the result.
func Replay(s *Snapshot) ([3]PlaneData, error) {
	if s.BitDepth == 8 {
		return replay[uint8](s)
	}
	return replay[uint16](s)
}

// Verify replays s and compares the result with its expected output.
func Verify(s *Snapshot) error {
	got, err := Replay(s)
	if err != nil {
		return err
	}
	return Compare(got, s.Expected)
}

func replay[P dsp.Pixel](s *Snapshot) ([3]PlaneData, error) {
	filter, err := dsp.NewEdgeFilter[P](s.BitDepth)
	if err != nil {
		return [3]PlaneData{}, err
	}
	var planes [3]*dsp.Plane[P]
	for i, pd := range s.Input {
		if planes[i], err = toPlane[P](pd); err != nil {
			return [3]PlaneData{}, err
		}
	}

	in := s.inputs()
	defer in.Release()
	f, err := lf.NewFrame(&s.Header, planes, in, filter)
	if err != nil {
		return [3]PlaneData{}, err
	}
	if err := in.Check(&s.Header); err != nil {
		return [3]PlaneData{}, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	for sby := 0; sby < f.SBRows(); sby++ {
		f.FilterRow(sby)
	}
	return capturePlanes(planes), nil
}

// inputs copies the snapshot's filter inputs into pooled storage. The caller
// releases them.
func (s *Snapshot) inputs() *lf.Inputs {
	in := &lf.Inputs{
		Levels:    lf.NewLevelGrid(s.LevelStride, s.LevelRows),
		Masks:     lf.NewMaskStore(s.MaskCols, s.MaskRows),
		Overrides: s.Overrides.Clone(),
	}
	copy(in.Levels.Bytes(), s.Levels)
	copy(in.Masks.Units(), s.Masks)
	return in
}
