// Package colorutil provides shared color helpers for segmentation output.
package colorutil

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Common line colors for renderings.
var (
	Black = color.RGBA{A: 255}
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Luma returns the BT.601 luminance of c on a 0-255 scale.
func Luma(c color.RGBA) float64 {
	return 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
}

// Contrast picks Black or White, whichever reads better against c.
func Contrast(c color.RGBA) color.RGBA {
	if Luma(c) < 128 {
		return White
	}
	return Black
}

// Distinct returns n distinct colors for label visualization. Hues advance
// by the golden angle so ids that are close together stay far apart on the
// color wheel, with saturation and value alternating for extra separation
// once hues crowd.
func Distinct(n int) []color.RGBA {
	pal := make([]color.RGBA, 0, n)
	for i := 0; i < n; i++ {
		hue := math.Mod(float64(i)*137.50776405, 360)
		s, v := 0.65, 0.95
		if i%2 == 1 {
			s, v = 0.85, 0.75
		}
		r, g, b := colorful.Hsv(hue, s, v).RGB255()
		pal = append(pal, color.RGBA{R: r, G: g, B: b, A: 255})
	}
	return pal
}
