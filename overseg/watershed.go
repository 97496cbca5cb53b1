package overseg

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"

	"github.com/d-diaz/scrm"
)

// WatershedParams configure marker-controlled watershed oversegmentation.
type WatershedParams struct {
	// Seeds is the target marker count. Markers are placed on a regular
	// grid, so the basin count ends up near this value.
	Seeds int

	// Blur is the Gaussian kernel size applied before flooding. It must be
	// odd; 0 disables smoothing.
	Blur int
}

// DefaultWatershedParams returns the usual starting point.
func DefaultWatershedParams() WatershedParams {
	return WatershedParams{
		Seeds: 400,
		Blur:  5,
	}
}

// WithSeeds returns a copy of p with the marker count set to n.
func (p WatershedParams) WithSeeds(n int) WatershedParams {
	p.Seeds = n
	return p
}

// WithBlur returns a copy of p with the smoothing kernel size set to k.
func (p WatershedParams) WithBlur(k int) WatershedParams {
	p.Blur = k
	return p
}

func (p WatershedParams) validate() error {
	if p.Seeds <= 0 {
		return fmt.Errorf("%w: watershed seeds %d, want > 0", scrm.ErrInvalidParams, p.Seeds)
	}
	if p.Blur < 0 || p.Blur%2 == 0 && p.Blur != 0 {
		return fmt.Errorf("%w: watershed blur %d, want 0 or odd", scrm.ErrInvalidParams, p.Blur)
	}
	return nil
}

// Watershed floods the image from a grid of markers and returns one dense
// label per basin. Watershed ridge pixels belong to no basin, so they are
// attached to an adjacent one afterwards.
func Watershed(img image.Image, p WatershedParams) (*scrm.Labels, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	bnd := img.Bounds()
	w, h := bnd.Dx(), bnd.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: empty image", scrm.ErrShapeMismatch)
	}

	src := bgrMat(img)
	defer src.Close()

	var work gocv.Mat
	if p.Blur > 1 {
		work = gocv.NewMat()
		gocv.GaussianBlur(src, &work, image.Point{p.Blur, p.Blur}, 0, 0, gocv.BorderDefault)
	} else {
		work = src.Clone()
	}
	defer work.Close()

	markers := gocv.NewMatWithSize(h, w, gocv.MatTypeCV32S)
	defer markers.Close()
	step := int(math.Sqrt(float64(w*h) / float64(p.Seeds)))
	if step < 1 {
		step = 1
	}
	next := int32(1)
	for y := step / 2; y < h; y += step {
		for x := step / 2; x < w; x += step {
			markers.SetIntAt(y, x, next)
			next++
		}
	}

	gocv.Watershed(work, &markers)

	labels := scrm.NewLabels(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if v := markers.GetIntAt(y, x); v > 0 {
				labels.Pix[y*w+x] = v - 1
			} else {
				labels.Pix[y*w+x] = -1
			}
		}
	}
	attachRidges(labels)
	return labels, nil
}

// attachRidges assigns every unlabeled ridge pixel to a neighboring basin.
// Two sweeps resolve ridges of any thickness; anything still unlabeled
// afterwards can only happen on degenerate inputs and falls back to basin 0.
func attachRidges(labels *scrm.Labels) {
	w, h := labels.W, labels.H
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if labels.Pix[y*w+x] >= 0 {
				continue
			}
			if x > 0 && labels.Pix[y*w+x-1] >= 0 {
				labels.Pix[y*w+x] = labels.Pix[y*w+x-1]
			} else if y > 0 && labels.Pix[(y-1)*w+x] >= 0 {
				labels.Pix[y*w+x] = labels.Pix[(y-1)*w+x]
			}
		}
	}
	for y := h - 1; y >= 0; y-- {
		for x := w - 1; x >= 0; x-- {
			if labels.Pix[y*w+x] >= 0 {
				continue
			}
			if x < w-1 && labels.Pix[y*w+x+1] >= 0 {
				labels.Pix[y*w+x] = labels.Pix[y*w+x+1]
			} else if y < h-1 && labels.Pix[(y+1)*w+x] >= 0 {
				labels.Pix[y*w+x] = labels.Pix[(y+1)*w+x]
			} else {
				labels.Pix[y*w+x] = 0
			}
		}
	}
}

// bgrMat converts img to an 8-bit BGR Mat.
func bgrMat(img image.Image) gocv.Mat {
	bnd := img.Bounds()
	w, h := bnd.Dx(), bnd.Dy()
	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bnd.Min.X+x, bnd.Min.Y+y).RGBA()
			mat.SetUCharAt(y, x*3+0, uint8(b>>8))
			mat.SetUCharAt(y, x*3+1, uint8(g>>8))
			mat.SetUCharAt(y, x*3+2, uint8(r>>8))
		}
	}
	return mat
}
