package raster

import (
	"fmt"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/blend"
	"github.com/cenkalti/dominantcolor"
	"github.com/disintegration/imaging"

	"github.com/d-diaz/scrm"
	"github.com/d-diaz/scrm/pkg/colorutil"
)

// MeanFill paints every region with its mean color taken from the graph.
// The graph must carry three channels and cover every label in the raster,
// which is what BuildGraph over the same labels produces.
func MeanFill(g *scrm.Graph, labels *scrm.Labels) (*image.RGBA, error) {
	if err := checkLabels(labels); err != nil {
		return nil, err
	}
	if g == nil || g.Channels() != 3 {
		return nil, fmt.Errorf("%w: mean fill needs a 3 channel graph", scrm.ErrShapeMismatch)
	}
	out := image.NewRGBA(image.Rect(0, 0, labels.W, labels.H))
	for y := 0; y < labels.H; y++ {
		for x := 0; x < labels.W; x++ {
			id := labels.Pix[y*labels.W+x]
			if !g.Alive(id) {
				return nil, fmt.Errorf("%w: pixel (%d,%d) labeled %d outside the graph", scrm.ErrShapeMismatch, x, y, id)
			}
			m := g.Region(id).Mean
			out.SetRGBA(x, y, color.RGBA{
				R: clamp8(m[0]),
				G: clamp8(m[1]),
				B: clamp8(m[2]),
				A: 255,
			})
		}
	}
	return out, nil
}

func clamp8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// PaletteFill paints every region with a palette color keyed by label id
// modulo the palette size. colorutil.Distinct produces a suitable palette.
func PaletteFill(labels *scrm.Labels, pal []color.RGBA) (*image.RGBA, error) {
	if err := checkLabels(labels); err != nil {
		return nil, err
	}
	if len(pal) == 0 {
		return nil, fmt.Errorf("%w: empty palette", scrm.ErrInvalidParams)
	}
	out := image.NewRGBA(image.Rect(0, 0, labels.W, labels.H))
	for y := 0; y < labels.H; y++ {
		for x := 0; x < labels.W; x++ {
			id := labels.Pix[y*labels.W+x]
			if id < 0 {
				return nil, fmt.Errorf("%w: pixel (%d,%d) unlabeled", scrm.ErrShapeMismatch, x, y)
			}
			out.SetRGBA(x, y, pal[int(id)%len(pal)])
		}
	}
	return out, nil
}

// Overlay draws region boundaries on top of img. The line color is black
// or white, whichever contrasts better with the dominant image color, and
// lines are blended at the given opacity in (0, 1].
func Overlay(img image.Image, labels *scrm.Labels, opacity float64) (*image.RGBA, error) {
	if err := checkLabels(labels); err != nil {
		return nil, err
	}
	if opacity <= 0 || opacity > 1 {
		return nil, fmt.Errorf("%w: overlay opacity %g, want (0, 1]", scrm.ErrInvalidParams, opacity)
	}
	bnd := img.Bounds()
	if bnd.Dx() != labels.W || bnd.Dy() != labels.H {
		return nil, fmt.Errorf("%w: image %dx%d, labels %dx%d",
			scrm.ErrShapeMismatch, bnd.Dx(), bnd.Dy(), labels.W, labels.H)
	}

	line := colorutil.Contrast(dominantcolor.Find(img))
	lines := image.NewRGBA(image.Rect(0, 0, labels.W, labels.H))
	for y := 0; y < labels.H; y++ {
		for x := 0; x < labels.W; x++ {
			if isBoundary(labels, x, y) {
				lines.SetRGBA(x, y, line)
			}
		}
	}

	base := imaging.Clone(img)
	return blend.Opacity(base, lines, opacity), nil
}

// isBoundary reports whether the pixel differs from its right or lower
// neighbor, which traces every region border exactly once.
func isBoundary(labels *scrm.Labels, x, y int) bool {
	id := labels.Pix[y*labels.W+x]
	if x+1 < labels.W && labels.Pix[y*labels.W+x+1] != id {
		return true
	}
	if y+1 < labels.H && labels.Pix[(y+1)*labels.W+x] != id {
		return true
	}
	return false
}
