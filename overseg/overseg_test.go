// Shared fixtures for the oversegmenter tests. Assertions stick to
// structural properties (shape, density, coverage) wherever the underlying
// algorithm has freedom in where exactly it places region boundaries.
package overseg

import (
	"image"
	"image/color"
	"testing"

	"github.com/d-diaz/scrm"
)

// fill returns a w by h image painted a single color.
func fill(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// twoTone returns a w by h image split into a left and a right half.
func twoTone(w, h int, left, right color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < w/2 {
				img.SetRGBA(x, y, left)
			} else {
				img.SetRGBA(x, y, right)
			}
		}
	}
	return img
}

// checkDense fails unless labels covers every pixel with ids forming the
// contiguous range [0, max].
func checkDense(t *testing.T, labels *scrm.Labels) {
	t.Helper()
	m := labels.Max()
	if m < 0 {
		t.Fatal("empty label raster")
	}
	seen := make([]bool, m+1)
	for i, id := range labels.Pix {
		if id < 0 {
			t.Fatalf("pixel %d unlabeled", i)
		}
		seen[id] = true
	}
	for id, ok := range seen {
		if !ok {
			t.Fatalf("label %d unused, ids are not dense", id)
		}
	}
}
