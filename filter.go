package deblock

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/deepteams/deblock/internal/capture"
	"github.com/deepteams/deblock/internal/dsp"
	"github.com/deepteams/deblock/internal/lf"
	"github.com/deepteams/deblock/internal/sched"
)

// Filter deblocks one frame. The reconstruction stage fills the level grid,
// edge masks and tile overrides returned by its accessors, then either
// calls FilterRow for each superblock row in order, or marks rows with
// Reconstructed while Run filters them on another goroutine.
type Filter[P Pixel] struct {
	hdr      Header
	planes   [3]*Plane[P]
	in       *lf.Inputs
	frame    *lf.Frame[P]
	bitDepth int
	log      *slog.Logger
	capture  io.Writer

	reconstructed *sched.Progress
	filtered      *sched.Progress
}

// New sets up filtering of one frame described by hdr. planes holds luma, U
// and V; the chroma planes may be nil when hdr.LevelU and hdr.LevelV are
// both zero.
func New[P Pixel](hdr Header, planes [3]*Plane[P], opts *Options) (*Filter[P], error) {
	if err := hdr.Validate(); err != nil {
		return nil, err
	}
	bitDepth := opts.bitDepth(uint32(^P(0)) > 0xff)
	ef, err := dsp.NewEdgeFilter[P](bitDepth)
	if err != nil {
		return nil, err
	}
	hdr.TileColStartSB = slices.Clone(hdr.TileColStartSB)
	hdr.TileRowStartSB = slices.Clone(hdr.TileRowStartSB)
	in := lf.NewInputs(&hdr)
	frame, err := lf.NewFrame(&hdr, planes, in, ef)
	if err != nil {
		in.Release()
		return nil, err
	}
	f := &Filter[P]{
		hdr:      hdr,
		planes:   planes,
		in:       in,
		frame:    frame,
		bitDepth: bitDepth,
		log:      opts.logger(),
	}
	if opts != nil {
		f.capture = opts.Capture
	}
	n := frame.SBRows()
	f.reconstructed = sched.NewProgress(n)
	f.filtered = sched.NewProgress(n)
	return f, nil
}

// Levels returns the frame's level grid.
func (f *Filter[P]) Levels() *LevelGrid { return f.in.Levels }

// Masks returns the frame's edge masks.
func (f *Filter[P]) Masks() *MaskStore { return f.in.Masks }

// Overrides returns the frame's tile-boundary caps. All caps start at the
// strongest tier.
func (f *Filter[P]) Overrides() *TileOverrides { return f.in.Overrides }

// BitDepth returns the sample bit depth in use.
func (f *Filter[P]) BitDepth() int { return f.bitDepth }

// SBRows returns the number of superblock rows in the frame.
func (f *Filter[P]) SBRows() int { return f.frame.SBRows() }

// FilterRow filters superblock row sby. Rows must be filtered in order,
// each after its inputs are complete.
func (f *Filter[P]) FilterRow(sby int) {
	f.frame.FilterRow(sby)
	f.filtered.Signal(sby, 1)
}

// Reconstructed marks superblock row sby as fully reconstructed, with its
// filter inputs written. It is safe to call from another goroutine than
// the one running Run.
func (f *Filter[P]) Reconstructed(sby int) {
	f.reconstructed.Signal(sby, 1)
}

// Run filters every superblock row as soon as it is reconstructed. It
// returns the context's error if ctx ends first; rows already filtered stay
// filtered.
//
// Filtering row sby changes its samples in place, including the bottom rows
// that the reconstruction of row sby+1 may still predict from. The caller
// must keep its own copy of any unfiltered samples it needs after calling
// Reconstructed(sby).
func (f *Filter[P]) Run(ctx context.Context) error {
	n := f.SBRows()
	var snap *capture.Snapshot
	if f.capture != nil {
		for sby := 0; sby < n; sby++ {
			if err := f.reconstructed.WaitFor(ctx, sby, 1); err != nil {
				return f.cancelled(sby, err)
			}
		}
		snap = capture.Take(&f.hdr, f.bitDepth, f.planes, f.in)
	}

	for sby := 0; sby < n; sby++ {
		if err := ctx.Err(); err != nil {
			return f.cancelled(sby, err)
		}
		if err := f.reconstructed.WaitFor(ctx, sby, 1); err != nil {
			return f.cancelled(sby, err)
		}
		f.FilterRow(sby)
		f.log.Debug("filtered superblock row", "sby", sby, "rows", n)
	}

	if snap != nil {
		capture.Record(snap, f.planes)
		if err := capture.Write(f.capture, snap); err != nil {
			return fmt.Errorf("%w: %w", ErrCapture, err)
		}
		f.log.Debug("wrote capture", "width", f.hdr.Width, "height", f.hdr.Height)
	}
	return nil
}

func (f *Filter[P]) cancelled(sby int, err error) error {
	f.log.Info("deblocking cancelled", "sby", sby, "rows", f.SBRows(), "err", err)
	return err
}

// WaitFiltered blocks until the samples of superblock row sby are final.
// Filtering the next row still changes the bottom samples of a row, so this
// waits for row sby+1 as well when there is one.
func (f *Filter[P]) WaitFiltered(ctx context.Context, sby int) error {
	return f.filtered.WaitFor(ctx, min(sby+1, f.SBRows()-1), 1)
}

// Release returns the filter inputs to their pools. The Filter must not be
// used afterwards.
func (f *Filter[P]) Release() {
	f.in.Release()
}
