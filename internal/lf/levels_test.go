package lf

import "testing"

func TestEffectiveLevel(t *testing.T) {
	tests := []struct {
		block, neighbor LevelEntry
		comp            int
		want            uint8
	}{
		{LevelEntry{12, 0, 0, 0}, LevelEntry{30, 0, 0, 0}, CompLumaCol, 12},
		{LevelEntry{0, 0, 0, 0}, LevelEntry{30, 0, 0, 0}, CompLumaCol, 30},
		{LevelEntry{0, 0, 0, 0}, LevelEntry{0, 0, 0, 0}, CompLumaCol, 0},
		{LevelEntry{5, 0, 0, 0}, LevelEntry{0, 9, 0, 0}, CompLumaRow, 9},
		{LevelEntry{0, 0, 0, 7}, LevelEntry{0, 0, 3, 8}, CompU, 3},
		{LevelEntry{0, 0, 0, 7}, LevelEntry{0, 0, 3, 8}, CompV, 7},
	}
	for i, tt := range tests {
		if got := EffectiveLevel(tt.block, tt.neighbor, tt.comp); got != tt.want {
			t.Errorf("case %d: EffectiveLevel = %d, want %d", i, got, tt.want)
		}
	}
}

func TestLevelGrid(t *testing.T) {
	g := NewLevelGrid(64, 8)
	defer g.Release()
	if g.Stride() != 64 || g.Rows() != 8 || len(g.Bytes()) != 4*64*8 {
		t.Fatalf("grid %dx%d with %d bytes", g.Stride(), g.Rows(), len(g.Bytes()))
	}

	g.SetLuma(4, 2, 2, 3, 11, 22)
	g.SetChroma(1, 1, 2, 1, 33, 44)
	for y := 0; y < 8; y++ {
		for x := 0; x < 64; x++ {
			var want LevelEntry
			if x >= 4 && x < 6 && y >= 2 && y < 5 {
				want[CompLumaCol], want[CompLumaRow] = 11, 22
			}
			if x >= 1 && x < 3 && y == 1 {
				want[CompU], want[CompV] = 33, 44
			}
			if got := g.At(x, y); got != want {
				t.Fatalf("At(%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}

	g.Set(63, 7, LevelEntry{1, 2, 3, 4})
	b := g.Bytes()
	if got := b[len(b)-4:]; got[0] != 1 || got[3] != 4 {
		t.Errorf("last entry bytes = %v", got)
	}
	if l := g.effective(5, 2, 6, 2, CompLumaCol); l != 11 {
		t.Errorf("effective own = %d", l)
	}
	if l := g.effective(6, 2, 5, 2, CompLumaCol); l != 11 {
		t.Errorf("effective neighbor = %d", l)
	}
	if v := g.view(4, 3, CompLumaRow); v.At(1) != 22 || v.Above(1) != 22 || v.At(2) != 0 {
		t.Errorf("view: at %d above %d next %d", v.At(1), v.Above(1), v.At(2))
	}
}

func TestLevelGridReuseIsZeroed(t *testing.T) {
	g := NewLevelGrid(32, 32)
	for i := range g.Bytes() {
		g.Bytes()[i] = 0xff
	}
	g.Release()
	g = NewLevelGrid(32, 32)
	defer g.Release()
	for i, v := range g.Bytes() {
		if v != 0 {
			t.Fatalf("byte %d = %d after reuse", i, v)
		}
	}
}
