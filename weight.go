package scrm

import (
	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/floats"
)

// WeightFunc scores the edge between a region dst and its neighbor n.
// Lower scores merge first. dst's attributes reflect any merge that was
// just absorbed, so scores always read the current mean colors.
type WeightFunc func(g *Graph, dst, n int32) float64

// EuclideanWeight scores an edge by the Euclidean distance between the two
// regions' mean colors. This is the default.
func EuclideanWeight(g *Graph, dst, n int32) float64 {
	return floats.Distance(g.Region(dst).Mean, g.Region(n).Mean, 2)
}

// LabWeight scores an edge by the CIE76 distance between the two regions'
// mean colors in Lab space. Regions must carry three channels of sRGB in
// [0, 255].
func LabWeight(g *Graph, dst, n int32) float64 {
	return rgbColor(g.Region(dst).Mean).DistanceLab(rgbColor(g.Region(n).Mean))
}

func rgbColor(mean []float64) colorful.Color {
	return colorful.Color{R: mean[0] / 255, G: mean[1] / 255, B: mean[2] / 255}
}
