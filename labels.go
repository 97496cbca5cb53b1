package scrm

import "fmt"

// Labels is a dense label raster holding one region id per pixel in
// row-major order.
type Labels struct {
	W, H int
	Pix  []int32
}

// NewLabels allocates a zeroed w by h raster.
func NewLabels(w, h int) *Labels {
	return &Labels{W: w, H: h, Pix: make([]int32, w*h)}
}

// At returns the id at pixel (x, y).
func (l *Labels) At(x, y int) int32 { return l.Pix[y*l.W+x] }

// Set writes the id at pixel (x, y).
func (l *Labels) Set(x, y int, id int32) { l.Pix[y*l.W+x] = id }

// Clone returns a deep copy of the raster.
func (l *Labels) Clone() *Labels {
	out := &Labels{W: l.W, H: l.H, Pix: make([]int32, len(l.Pix))}
	copy(out.Pix, l.Pix)
	return out
}

// Max returns the largest id present, or -1 for a raster with no pixels.
func (l *Labels) Max() int32 {
	m := int32(-1)
	for _, id := range l.Pix {
		if id > m {
			m = id
		}
	}
	return m
}

func (l *Labels) check() error {
	if l == nil || l.W <= 0 || l.H <= 0 {
		return fmt.Errorf("%w: empty label raster", ErrShapeMismatch)
	}
	if len(l.Pix) != l.W*l.H {
		return fmt.Errorf("%w: %dx%d raster backed by %d pixels", ErrShapeMismatch, l.W, l.H, len(l.Pix))
	}
	return nil
}
