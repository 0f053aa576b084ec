package dsp

// Deblocking primitives. Each call filters four lines crossing one edge of a
// 4×4 block. Like the rest of this package the primitives take the full
// sample slice plus the offset of q0 on the first line: p-side samples sit at
// negative multiples of the across-edge step, so callers must never point at
// an edge on the first column or row of a plane.

// Dir names the orientation of an edge.
type Dir int

const (
	// VerticalEdge separates two horizontally adjacent blocks; the filter
	// runs along a row, across the column boundary.
	VerticalEdge Dir = iota
	// HorizontalEdge separates two vertically adjacent blocks.
	HorizontalEdge
)

// Taps selects a primitive by the number of samples it may modify or read
// on each side of the edge.
type Taps int

const (
	Taps4  Taps = 4
	Taps6  Taps = 6
	Taps8  Taps = 8
	Taps16 Taps = 16
)

// Reach returns how many samples before the edge the primitive reads.
func (t Taps) Reach() int {
	if t == Taps16 {
		return 7
	}
	return int(t) / 2
}

// LumaTaps and ChromaTaps map a mask word index to the primitive used for it.
var (
	LumaTaps   = [3]Taps{Taps4, Taps8, Taps16}
	ChromaTaps = [2]Taps{Taps4, Taps6}
)

func absDiff(a, b int) int {
	if a < b {
		return b - a
	}
	return a - b
}

func iclip(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// loopFilter filters 4 lines starting at dst[off]. stridea steps from one
// line to the next, strideb steps across the edge. wd is the primitive
// width (4, 6, 8 or 16) and bdm8 the bit depth minus 8.
func loopFilter[P Pixel](dst []P, off int, lim Limits, stridea, strideb int, wd Taps, bdm8 int) {
	F := 1 << bdm8
	E := lim.E << bdm8
	I := lim.I << bdm8
	H := lim.H << bdm8
	diffMin := -128 << bdm8
	diffMax := (128 << bdm8) - 1
	pixMax := (256 << bdm8) - 1

	for line := 0; line < 4; line, off = line+1, off+stridea {
		var p6, p5, p4, p3, p2, q2, q3, q4, q5, q6 int
		p1 := int(dst[off-2*strideb])
		p0 := int(dst[off-strideb])
		q0 := int(dst[off])
		q1 := int(dst[off+strideb])

		fm := absDiff(p1, p0) <= I && absDiff(q1, q0) <= I &&
			absDiff(p0, q0)*2+(absDiff(p1, q1)>>1) <= E
		if wd > 4 {
			p2 = int(dst[off-3*strideb])
			q2 = int(dst[off+2*strideb])
			fm = fm && absDiff(p2, p1) <= I && absDiff(q2, q1) <= I
			if wd > 6 {
				p3 = int(dst[off-4*strideb])
				q3 = int(dst[off+3*strideb])
				fm = fm && absDiff(p3, p2) <= I && absDiff(q3, q2) <= I
			}
		}
		if !fm {
			continue
		}

		flat8out, flat8in := false, false
		if wd >= 16 {
			p6 = int(dst[off-7*strideb])
			p5 = int(dst[off-6*strideb])
			p4 = int(dst[off-5*strideb])
			q4 = int(dst[off+4*strideb])
			q5 = int(dst[off+5*strideb])
			q6 = int(dst[off+6*strideb])
			flat8out = absDiff(p6, p0) <= F && absDiff(p5, p0) <= F &&
				absDiff(p4, p0) <= F && absDiff(q4, q0) <= F &&
				absDiff(q5, q0) <= F && absDiff(q6, q0) <= F
		}
		if wd >= 6 {
			flat8in = absDiff(p2, p0) <= F && absDiff(q2, q0) <= F &&
				absDiff(p1, p0) <= F && absDiff(q1, q0) <= F
		}
		if wd >= 8 {
			flat8in = flat8in && absDiff(p3, p0) <= F && absDiff(q3, q0) <= F
		}

		switch {
		case wd >= 16 && flat8out && flat8in:
			dst[off-6*strideb] = P((p6*7 + p5*2 + p4*2 + p3 + p2 + p1 + p0 + q0 + 8) >> 4)
			dst[off-5*strideb] = P((p6*5 + p5*2 + p4*2 + p3*2 + p2 + p1 + p0 + q0 + q1 + 8) >> 4)
			dst[off-4*strideb] = P((p6*4 + p5 + p4*2 + p3*2 + p2*2 + p1 + p0 + q0 + q1 + q2 + 8) >> 4)
			dst[off-3*strideb] = P((p6*3 + p5 + p4 + p3*2 + p2*2 + p1*2 + p0 + q0 + q1 + q2 + q3 + 8) >> 4)
			dst[off-2*strideb] = P((p6*2 + p5 + p4 + p3 + p2*2 + p1*2 + p0*2 + q0 + q1 + q2 + q3 + q4 + 8) >> 4)
			dst[off-strideb] = P((p6 + p5 + p4 + p3 + p2 + p1*2 + p0*2 + q0*2 + q1 + q2 + q3 + q4 + q5 + 8) >> 4)
			dst[off] = P((p5 + p4 + p3 + p2 + p1 + p0*2 + q0*2 + q1*2 + q2 + q3 + q4 + q5 + q6 + 8) >> 4)
			dst[off+strideb] = P((p4 + p3 + p2 + p1 + p0 + q0*2 + q1*2 + q2*2 + q3 + q4 + q5 + q6*2 + 8) >> 4)
			dst[off+2*strideb] = P((p3 + p2 + p1 + p0 + q0 + q1*2 + q2*2 + q3*2 + q4 + q5 + q6*3 + 8) >> 4)
			dst[off+3*strideb] = P((p2 + p1 + p0 + q0 + q1 + q2*2 + q3*2 + q4*2 + q5 + q6*4 + 8) >> 4)
			dst[off+4*strideb] = P((p1 + p0 + q0 + q1 + q2 + q3*2 + q4*2 + q5*2 + q6*5 + 8) >> 4)
			dst[off+5*strideb] = P((p0 + q0 + q1 + q2 + q3 + q4*2 + q5*2 + q6*7 + 8) >> 4)
		case wd >= 8 && flat8in:
			dst[off-3*strideb] = P((p3*3 + p2*2 + p1 + p0 + q0 + 4) >> 3)
			dst[off-2*strideb] = P((p3*2 + p2 + p1*2 + p0 + q0 + q1 + 4) >> 3)
			dst[off-strideb] = P((p3 + p2 + p1 + p0*2 + q0 + q1 + q2 + 4) >> 3)
			dst[off] = P((p2 + p1 + p0 + q0*2 + q1 + q2 + q3 + 4) >> 3)
			dst[off+strideb] = P((p1 + p0 + q0 + q1*2 + q2 + q3*2 + 4) >> 3)
			dst[off+2*strideb] = P((p0 + q0 + q1 + q2*2 + q3*3 + 4) >> 3)
		case wd == 6 && flat8in:
			dst[off-2*strideb] = P((p2*3 + p1*2 + p0*2 + q0 + 4) >> 3)
			dst[off-strideb] = P((p2 + p1*2 + p0*2 + q0*2 + q1 + 4) >> 3)
			dst[off] = P((p1 + p0*2 + q0*2 + q1*2 + q2 + 4) >> 3)
			dst[off+strideb] = P((p0 + q0*2 + q1*2 + q2*3 + 4) >> 3)
		default:
			hev := absDiff(p1, p0) > H || absDiff(q1, q0) > H
			if hev {
				f := iclip(p1-q1, diffMin, diffMax)
				f = iclip(3*(q0-p0)+f, diffMin, diffMax)
				f1 := min(f+4, diffMax) >> 3
				f2 := min(f+3, diffMax) >> 3
				dst[off-strideb] = P(iclip(p0+f2, 0, pixMax))
				dst[off] = P(iclip(q0-f1, 0, pixMax))
			} else {
				f := iclip(3*(q0-p0), diffMin, diffMax)
				f1 := min(f+4, diffMax) >> 3
				f2 := min(f+3, diffMax) >> 3
				dst[off-strideb] = P(iclip(p0+f2, 0, pixMax))
				dst[off] = P(iclip(q0-f1, 0, pixMax))
				f = (f1 + 1) >> 1
				dst[off-2*strideb] = P(iclip(p1+f, 0, pixMax))
				dst[off+strideb] = P(iclip(q1-f, 0, pixMax))
			}
		}
	}
}
