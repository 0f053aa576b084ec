package dsp

import "testing"

func TestLevelLimits(t *testing.T) {
	tests := []struct {
		level uint8
		want  Limits
	}{
		{0, Limits{E: 5, I: 1, H: 0}},
		{1, Limits{E: 7, I: 1, H: 0}},
		{15, Limits{E: 49, I: 15, H: 0}},
		{16, Limits{E: 52, I: 16, H: 1}},
		{40, Limits{E: 124, I: 40, H: 2}},
		{63, Limits{E: 193, I: 63, H: 3}},
	}
	for _, tt := range tests {
		if got := LevelLimits(tt.level); got != tt.want {
			t.Errorf("LevelLimits(%d) = %+v, want %+v", tt.level, got, tt.want)
		}
	}
}

func TestLimitTableSharpness(t *testing.T) {
	tests := []struct {
		sharpness int
		level     uint8
		wantI     int
	}{
		{1, 40, 8},  // 40>>1 = 20, capped at 9-1
		{4, 40, 5},  // 40>>1 = 20, capped at 9-4
		{5, 8, 2},   // 8>>2 = 2
		{7, 63, 2},  // 63>>2 = 15, capped at 9-7
		{7, 3, 1},   // 3>>2 = 0, raised to 1
		{0, 0, 1},   // level 0 still has a non-zero interior limit
		{3, 12, 6},  // 12>>1 = 6
		{2, 2, 1},   // 2>>1 = 1
		{6, 63, 3},  // 63>>2 = 15, capped at 9-6
		{4, 63, 5},  // capped
		{1, 9, 4},   // 9>>1 = 4
		{5, 63, 4},  // capped at 9-5
		{2, 63, 7},  // capped at 9-2
		{3, 5, 2},   // 5>>1 = 2
		{6, 4, 1},   // 4>>2 = 1
		{0, 63, 63}, // sharpness 0 keeps the level
	}
	for _, tt := range tests {
		lim := LimitTableFor(tt.sharpness).Limits(tt.level)
		if lim.I != tt.wantI {
			t.Errorf("sharpness %d level %d: I = %d, want %d", tt.sharpness, tt.level, lim.I, tt.wantI)
		}
		if want := 2*(int(tt.level)+2) + tt.wantI; lim.E != want {
			t.Errorf("sharpness %d level %d: E = %d, want %d", tt.sharpness, tt.level, lim.E, want)
		}
		if want := int(tt.level >> 4); lim.H != want {
			t.Errorf("sharpness %d level %d: H = %d, want %d", tt.sharpness, tt.level, lim.H, want)
		}
	}
}

func TestLimitTableSharpnessOutOfRange(t *testing.T) {
	for _, s := range []int{-1, 8} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("LimitTableFor(%d) did not panic", s)
				}
			}()
			LimitTableFor(s)
		}()
	}
}

func TestLimitsLevelOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Limits(64) did not panic")
		}
	}()
	LevelLimits(64)
}

func BenchmarkLimits(b *testing.B) {
	lut := LimitTableFor(0)
	var sink int
	for i := 0; i < b.N; i++ {
		sink += lut.Limits(uint8(i & MaxLevel)).E
	}
	_ = sink
}
