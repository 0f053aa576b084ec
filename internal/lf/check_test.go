package lf

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/deepteams/deblock/internal/dsp"
)

// fillConformant writes random levels and in-frame masks that leave room for
// every filter before its edge.
func fillConformant(h *Header, in *Inputs, rng *rand.Rand) {
	g := h.geometry()
	for i := range in.Levels.Bytes() {
		in.Levels.Bytes()[i] = uint8(rng.Intn(64))
	}
	for y4 := 0; y4 < g.bh4; y4++ {
		for x4 := 0; x4 < g.bw4; x4++ {
			lumaMaskAt(in.Masks, ColEdges, x4, y4).SetTier(x4&31, randomLumaTier(rng, x4))
			lumaMaskAt(in.Masks, RowEdges, x4, y4).SetTier(x4&31, randomLumaTier(rng, y4))
		}
	}
	cw4, ch4 := (g.bw4+g.ssHor)>>g.ssHor, (g.bh4+g.ssVer)>>g.ssVer
	for cy4 := 0; cy4 < ch4; cy4++ {
		for cx4 := 0; cx4 < cw4; cx4++ {
			for d := ColEdges; d <= RowEdges; d++ {
				chromaMaskAt(in.Masks, g.ssHor, g.ssVer, d, cx4, cy4).SetTier(cx4%(32>>g.ssHor), Tier(rng.Intn(3)))
			}
		}
	}
}

func TestInputsCheck(t *testing.T) {
	h := &Header{
		Width: 150, Height: 100, Layout: Layout420, LevelU: 5,
		TileColStartSB: []int{0, 1}, TileRowStartSB: []int{0, 1},
	}
	tests := []struct {
		name   string
		mutate func(in *Inputs)
		ok     bool
	}{
		{"conformant", func(*Inputs) {}, true},
		{"widest at the left edge", func(in *Inputs) {
			lumaMaskAt(in.Masks, ColEdges, 0, 3).SetTier(0, TierWidest)
		}, true},
		{"level above the tables", func(in *Inputs) {
			in.Levels.Bytes()[17] = 64
		}, false},
		{"luma column cap", func(in *Inputs) {
			in.Overrides.ColLuma[0][2] = TierWidest + 1
		}, false},
		{"chroma row cap", func(in *Inputs) {
			in.Overrides.RowChroma[0][1] = TierWidest
		}, false},
		{"column edge right of the frame", func(in *Inputs) {
			// 150 wide is 38 blocks; 4×4 column 38 is in the second unit.
			lumaMaskAt(in.Masks, ColEdges, 38, 0).SetTier(6, TierNarrow)
		}, false},
		{"row edge below the frame", func(in *Inputs) {
			lumaMaskAt(in.Masks, RowEdges, 0, 25).SetTier(0, TierNarrow)
		}, false},
		{"chroma edge in an unused row", func(in *Inputs) {
			in.Masks.At(0, 0).Chroma[ColEdges][20].SetTier(2, TierNarrow)
		}, false},
		{"chroma edge past the unit", func(in *Inputs) {
			in.Masks.At(0, 0).Chroma[RowEdges][2].SetTier(20, TierNarrow)
		}, false},
		{"widest column edge at x4 1", func(in *Inputs) {
			lumaMaskAt(in.Masks, ColEdges, 1, 4).SetTier(1, TierWidest)
		}, false},
		{"widest row edge at y4 1", func(in *Inputs) {
			lumaMaskAt(in.Masks, RowEdges, 9, 1).SetTier(9, TierWidest)
		}, false},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := NewInputs(h)
			defer in.Release()
			fillConformant(h, in, rand.New(rand.NewSource(int64(i))))
			tt.mutate(in)
			err := in.Check(h)
			if tt.ok && err != nil {
				t.Fatalf("Check: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInputs) {
				t.Fatalf("Check = %v, want ErrInputs", err)
			}
		})
	}
}

// TestCheckedInputsFilter runs the pixel filters over conformant inputs: none
// of them may reach outside the planes.
func TestCheckedInputsFilter(t *testing.T) {
	for _, h := range []*Header{
		{Width: 150, Height: 100, Layout: Layout420, LevelU: 5, LevelV: 9},
		{Width: 70, Height: 134, Layout: Layout422, SB128: true, LevelV: 3},
		{Width: 98, Height: 66, Layout: Layout444, LevelU: 1},
	} {
		in := NewInputs(h)
		fillConformant(h, in, rand.New(rand.NewSource(int64(h.Width))))
		if err := in.Check(h); err != nil {
			t.Fatalf("%dx%d: Check: %v", h.Width, h.Height, err)
		}
		planes := newPlanes(h)
		filter, err := dsp.NewEdgeFilter[uint8](8)
		if err != nil {
			t.Fatal(err)
		}
		f, err := NewFrame(h, planes, in, filter)
		if err != nil {
			t.Fatal(err)
		}
		for sby := 0; sby < f.SBRows(); sby++ {
			f.FilterRow(sby)
		}
		in.Release()
	}
}
