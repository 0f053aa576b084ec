package deblock

import (
	"errors"
	"io"
	"log/slog"

	"github.com/deepteams/deblock/internal/dsp"
	"github.com/deepteams/deblock/internal/lf"
)

// Pixel is the storage type of one sample: uint8 for 8-bit content and
// uint16 for 10- and 12-bit content.
type Pixel = dsp.Pixel

// Plane is one component of a reconstructed frame. Allocate planes with
// NewPlane so that the filters have room past the last block.
type Plane[P Pixel] = dsp.Plane[P]

// NewPlane allocates a zeroed w×h plane.
func NewPlane[P Pixel](w, h int) *Plane[P] { return dsp.NewPlane[P](w, h) }

// Header carries the frame-level fields the filter reads.
type Header = lf.Header

// Layout is the chroma subsampling layout of a frame.
type Layout = lf.Layout

const (
	Layout420 = lf.Layout420
	Layout422 = lf.Layout422
	Layout444 = lf.Layout444
)

// Filter inputs, filled by the reconstruction stage.
type (
	LevelEntry    = lf.LevelEntry
	LevelGrid     = lf.LevelGrid
	MaskStore     = lf.MaskStore
	SBMask        = lf.SBMask
	LumaMask      = lf.LumaMask
	ChromaMask    = lf.ChromaMask
	TileOverrides = lf.TileOverrides
	Tier          = lf.Tier
)

// Edge strength tiers, from no filtering to the widest filter.
const (
	TierNone   = lf.TierNone
	TierNarrow = lf.TierNarrow
	TierWide   = lf.TierWide
	TierWidest = lf.TierWidest
)

// Level grid components.
const (
	CompLumaCol = lf.CompLumaCol
	CompLumaRow = lf.CompLumaRow
	CompU       = lf.CompU
	CompV       = lf.CompV
)

// Mask directions.
const (
	ColEdges = lf.ColEdges
	RowEdges = lf.RowEdges
)

// TxTier returns the strongest tier a transform-size class permits.
func TxTier(txClass int) Tier { return lf.TxTier(txClass) }

// Errors returned by New. Errors from header and plane checks wrap the
// matching sentinel.
var (
	ErrHeader    = lf.ErrHeader
	ErrPlaneSize = lf.ErrPlaneSize
	ErrBitDepth  = dsp.ErrBitDepth
	ErrCapture   = errors.New("deblock: writing capture")
)

// Options controls a Filter. A nil *Options selects the defaults.
type Options struct {
	// BitDepth is the sample bit depth: 8 for uint8 planes, 10 or 12 for
	// uint16 planes. Zero selects 8 or 10 from the plane type.
	BitDepth int

	// Logger receives pipeline progress from Run. Nil discards it.
	Logger *slog.Logger

	// Capture, when set, makes Run write a snapshot of the frame's inputs
	// and filtered output to it. Run then waits for the whole frame to be
	// reconstructed before filtering the first row.
	Capture io.Writer
}

func (o *Options) bitDepth(isWide bool) int {
	if o != nil && o.BitDepth != 0 {
		return o.BitDepth
	}
	if isWide {
		return 10
	}
	return 8
}

func (o *Options) logger() *slog.Logger {
	if o != nil && o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}
