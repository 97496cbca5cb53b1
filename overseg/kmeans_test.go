package overseg

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/d-diaz/scrm"
)

func TestComponentsStripes(t *testing.T) {
	// Three vertical runs of quantized values become three labels in scan
	// order regardless of the original values.
	quant := []int32{
		7, 7, 2, 2, 7, 7,
		7, 7, 2, 2, 7, 7,
	}
	labels := components(quant, 6, 2)
	want := []int32{
		0, 0, 1, 1, 2, 2,
		0, 0, 1, 1, 2, 2,
	}
	for i, id := range labels.Pix {
		if id != want[i] {
			t.Fatalf("pixel %d = %d, want %d", i, id, want[i])
		}
	}
}

func TestComponentsCheckerboard(t *testing.T) {
	// Diagonal contact is not adjacency, so every cell is its own label.
	quant := []int32{
		0, 1, 0,
		1, 0, 1,
		0, 1, 0,
	}
	labels := components(quant, 3, 3)
	checkDense(t, labels)
	if m := labels.Max(); m != 8 {
		t.Fatalf("got %d labels, want 9", m+1)
	}
}

func TestComponentsSingleValue(t *testing.T) {
	quant := make([]int32, 20)
	labels := components(quant, 5, 4)
	for i, id := range labels.Pix {
		if id != 0 {
			t.Fatalf("pixel %d = %d, want 0", i, id)
		}
	}
}

func TestKMeansUniformImage(t *testing.T) {
	// Identical pixels land on the same palette entry no matter how the
	// clusterer splits them, so the whole frame is one region.
	img := fill(24, 16, color.RGBA{R: 60, G: 180, B: 220, A: 255})
	labels, err := KMeans(img, DefaultKMeansParams().WithColors(3))
	if err != nil {
		t.Fatalf("KMeans: %v", err)
	}
	if labels.W != 24 || labels.H != 16 {
		t.Fatalf("got %dx%d raster, want 24x16", labels.W, labels.H)
	}
	for i, id := range labels.Pix {
		if id != 0 {
			t.Fatalf("pixel %d = %d, want 0", i, id)
		}
	}
}

func TestKMeansCoverage(t *testing.T) {
	img := twoTone(40, 20, color.RGBA{A: 255}, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	labels, err := KMeans(img, DefaultKMeansParams().WithColors(2).WithSamples(200))
	if err != nil {
		t.Fatalf("KMeans: %v", err)
	}
	if labels.W != 40 || labels.H != 20 {
		t.Fatalf("got %dx%d raster, want 40x20", labels.W, labels.H)
	}
	checkDense(t, labels)
}

func TestKMeansErrors(t *testing.T) {
	img := fill(8, 8, color.RGBA{A: 255})
	cases := []struct {
		name    string
		img     image.Image
		p       KMeansParams
		wantErr error
	}{
		{"zero colors", img, DefaultKMeansParams().WithColors(0), scrm.ErrInvalidParams},
		{"zero samples", img, DefaultKMeansParams().WithSamples(0), scrm.ErrInvalidParams},
		{"empty image", image.NewRGBA(image.Rect(0, 0, 0, 0)), DefaultKMeansParams(), scrm.ErrShapeMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := KMeans(tc.img, tc.p); !errors.Is(err, tc.wantErr) {
				t.Fatalf("got error %v, want %v", err, tc.wantErr)
			}
		})
	}
}
