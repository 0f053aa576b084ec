package dsp

// Pixel is the storage type of one sample: uint8 for 8-bit content and
// uint16 for 10- and 12-bit content.
type Pixel interface {
	~uint8 | ~uint16
}

// An edge on the last 4×4 block of a plane reaches FilterReach samples past
// the block's end. NewPlane pads both dimensions by that much and rounds up
// to planeAlign.
const (
	FilterReach = 3
	planeAlign  = 16
)

func padDim(n int) int {
	return ((n+3)&^3 + FilterReach + planeAlign - 1) &^ (planeAlign - 1)
}

// Plane is one component of a reconstructed picture. Pix holds rows of
// Stride samples; only the first Width samples of the first Height rows are
// visible.
//
// Filters address the plane with the full slice plus an offset, so that
// "negative context" such as Pix[off-3*Stride] stays a valid non-negative
// index as long as off is not in the first rows or columns.
type Plane[P Pixel] struct {
	Pix    []P
	Stride int
	Width  int
	Height int
}

// NewPlane allocates a zeroed w×h plane with room for filters on its last
// block row and column.
func NewPlane[P Pixel](w, h int) *Plane[P] {
	stride := padDim(w)
	rows := padDim(h)
	return &Plane[P]{
		Pix:    make([]P, stride*rows),
		Stride: stride,
		Width:  w,
		Height: h,
	}
}

// Offset returns the index of sample (x, y) in Pix.
func (p *Plane[P]) Offset(x, y int) int {
	return y*p.Stride + x
}

// At returns the sample at (x, y).
func (p *Plane[P]) At(x, y int) P {
	return p.Pix[y*p.Stride+x]
}

// Set stores v at (x, y).
func (p *Plane[P]) Set(x, y int, v P) {
	p.Pix[y*p.Stride+x] = v
}

// Covers reports whether the allocation of p holds a grid of w4×h4 blocks
// plus the filter reach past the last one.
func (p *Plane[P]) Covers(w4, h4 int) bool {
	w, h := 4*w4+FilterReach, 4*h4+FilterReach
	return p.Stride >= w && len(p.Pix) >= (h-1)*p.Stride+w
}

// Clone returns a deep copy of p.
func (p *Plane[P]) Clone() *Plane[P] {
	c := *p
	c.Pix = make([]P, len(p.Pix))
	copy(c.Pix, p.Pix)
	return &c
}

// Equal reports whether the visible samples of p and q match.
func (p *Plane[P]) Equal(q *Plane[P]) bool {
	if p.Width != q.Width || p.Height != q.Height {
		return false
	}
	for y := 0; y < p.Height; y++ {
		a := p.Pix[y*p.Stride : y*p.Stride+p.Width]
		b := q.Pix[y*q.Stride : y*q.Stride+q.Width]
		for x := range a {
			if a[x] != b[x] {
				return false
			}
		}
	}
	return true
}

// maxValue returns the largest value representable by P.
func maxValue[P Pixel]() uint32 {
	return uint32(^P(0))
}
