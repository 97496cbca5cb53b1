// Package overseg produces initial oversegmentations for region merging.
//
// Region merging needs a label raster to start from. The functions here
// generate one from a plain image: Grid tiles the frame without looking at
// pixel values, SLIC grows compact color-coherent superpixels, KMeans
// quantizes colors and splits the quantization into connected components,
// and Watershed floods a marker grid along color gradients. All of them
// return dense labels suitable for scrm.BuildGraph.
package overseg

import (
	"fmt"

	"github.com/d-diaz/scrm"
)

// Grid tiles a w by h raster into block-sized cells, numbered row major.
// Cells on the right and bottom edges may be smaller than block. It is the
// cheapest oversegmentation and useful as a baseline when superpixel
// quality does not matter.
func Grid(w, h, block int) (*scrm.Labels, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: grid size %dx%d", scrm.ErrShapeMismatch, w, h)
	}
	if block <= 0 {
		return nil, fmt.Errorf("%w: grid block %d, want > 0", scrm.ErrInvalidParams, block)
	}
	across := (w + block - 1) / block
	labels := scrm.NewLabels(w, h)
	for y := 0; y < h; y++ {
		row := int32(y/block) * int32(across)
		for x := 0; x < w; x++ {
			labels.Pix[y*w+x] = row + int32(x/block)
		}
	}
	return labels, nil
}
