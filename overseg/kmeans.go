package overseg

import (
	"fmt"
	"image"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/d-diaz/scrm"
)

// KMeansParams configure color quantization oversegmentation.
type KMeansParams struct {
	// Colors is the quantization palette size.
	Colors int

	// Samples caps how many pixels train the clusterer. Larger images are
	// subsampled down to roughly this count before partitioning.
	Samples int
}

// DefaultKMeansParams returns the usual starting point.
func DefaultKMeansParams() KMeansParams {
	return KMeansParams{
		Colors:  8,
		Samples: 10000,
	}
}

// WithColors returns a copy of p with the palette size set to n.
func (p KMeansParams) WithColors(n int) KMeansParams {
	p.Colors = n
	return p
}

// WithSamples returns a copy of p with the training sample cap set to n.
func (p KMeansParams) WithSamples(n int) KMeansParams {
	p.Samples = n
	return p
}

func (p KMeansParams) validate() error {
	if p.Colors <= 0 {
		return fmt.Errorf("%w: kmeans colors %d, want > 0", scrm.ErrInvalidParams, p.Colors)
	}
	if p.Samples <= 0 {
		return fmt.Errorf("%w: kmeans samples %d, want > 0", scrm.ErrInvalidParams, p.Samples)
	}
	return nil
}

// KMeans clusters the image colors into a small palette, maps every pixel
// to its nearest palette entry, and splits the result into 4-connected
// components. Clustering starts from random observations, so repeated runs
// can produce different but equally valid segmentations.
func KMeans(img image.Image, p KMeansParams) (*scrm.Labels, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	bnd := img.Bounds()
	w, h := bnd.Dx(), bnd.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: empty image", scrm.ErrShapeMismatch)
	}

	rgb := rgbPlane(img)
	n := w * h
	step := n / p.Samples
	if step < 1 {
		step = 1
	}
	dataset := make(clusters.Observations, 0, n/step+1)
	for i := 0; i < n; i += step {
		dataset = append(dataset, clusters.Coordinates{rgb[i*3], rgb[i*3+1], rgb[i*3+2]})
	}
	k := p.Colors
	if k > len(dataset) {
		k = len(dataset)
	}

	km := kmeans.New()
	cc, err := km.Partition(dataset, k)
	if err != nil {
		return nil, fmt.Errorf("kmeans partition: %w", err)
	}

	quant := make([]int32, n)
	for i := 0; i < n; i++ {
		quant[i] = nearestPalette(cc, rgb[i*3], rgb[i*3+1], rgb[i*3+2])
	}
	return components(quant, w, h), nil
}

// rgbPlane flattens img into three normalized channel values per pixel.
func rgbPlane(img image.Image) []float64 {
	bnd := img.Bounds()
	w, h := bnd.Dx(), bnd.Dy()
	out := make([]float64, w*h*3)
	i := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bnd.Min.X+x, bnd.Min.Y+y).RGBA()
			out[i] = float64(r) / 65535.0
			out[i+1] = float64(g) / 65535.0
			out[i+2] = float64(b) / 65535.0
			i += 3
		}
	}
	return out
}

// nearestPalette returns the index of the cluster center closest to the
// given normalized color.
func nearestPalette(cc clusters.Clusters, r, g, b float64) int32 {
	best := int32(0)
	bestD := -1.0
	for j, c := range cc {
		dr := c.Center[0] - r
		dg := c.Center[1] - g
		db := c.Center[2] - b
		d := dr*dr + dg*dg + db*db
		if bestD < 0 || d < bestD {
			bestD = d
			best = int32(j)
		}
	}
	return best
}

// components splits a quantized raster into dense labels, one per
// 4-connected run of equal values.
func components(quant []int32, w, h int) *scrm.Labels {
	labels := scrm.NewLabels(w, h)
	for i := range labels.Pix {
		labels.Pix[i] = -1
	}

	var queue []int
	next := int32(0)
	for start := range quant {
		if labels.Pix[start] >= 0 {
			continue
		}
		labels.Pix[start] = next
		queue = append(queue[:0], start)
		for len(queue) > 0 {
			cur := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			cx, cy := cur%w, cur/w
			for k := 0; k < 4; k++ {
				nx, ny := cx+dx4[k], cy+dy4[k]
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				ni := ny*w + nx
				if labels.Pix[ni] < 0 && quant[ni] == quant[start] {
					labels.Pix[ni] = next
					queue = append(queue, ni)
				}
			}
		}
		next++
	}
	return labels
}
