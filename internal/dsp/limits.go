package dsp

// MaxLevel is the largest filter level a LimitTable is indexed by.
const MaxLevel = 63

// MaxSharpness is the largest frame sharpness value.
const MaxSharpness = 7

// Limits holds the thresholds handed to a pixel-smoothing primitive for one
// edge: E bounds the step across the edge, I bounds the steps on either
// side, H is the high edge variance threshold.
type Limits struct {
	E int
	I int
	H int
}

// LimitTable maps a filter level (0..63) to its Limits. Tables are immutable
// once built and safe for concurrent use.
type LimitTable struct {
	e [MaxLevel + 1]uint8
	i [MaxLevel + 1]uint8
}

// limitTables holds one table per sharpness, filled by init.
var limitTables [MaxSharpness + 1]LimitTable

func init() {
	for s := range limitTables {
		initLimitTable(&limitTables[s], s)
	}
}

// initLimitTable derives the interior limit from the level, reduced for
// sharper frames, and the edge limit from both.
func initLimitTable(t *LimitTable, sharpness int) {
	for level := 0; level <= MaxLevel; level++ {
		limit := level
		if sharpness > 0 {
			limit >>= (sharpness + 3) >> 2
			if limit > 9-sharpness {
				limit = 9 - sharpness
			}
		}
		if limit < 1 {
			limit = 1
		}
		t.i[level] = uint8(limit)
		t.e[level] = uint8(2*(level+2) + limit)
	}
}

// LimitTableFor returns the shared table for the given frame sharpness.
// It panics if sharpness is outside 0..7.
func LimitTableFor(sharpness int) *LimitTable {
	if sharpness < 0 || sharpness > MaxSharpness {
		panic("dsp: sharpness out of range")
	}
	return &limitTables[sharpness]
}

// Limits returns the thresholds for level. H is level >> 4. A level above
// MaxLevel is an upstream consistency failure and panics.
func (t *LimitTable) Limits(level uint8) Limits {
	return Limits{
		E: int(t.e[level]),
		I: int(t.i[level]),
		H: int(level >> 4),
	}
}

// LevelLimits returns the thresholds for level with sharpness 0.
func LevelLimits(level uint8) Limits {
	return limitTables[0].Limits(level)
}
