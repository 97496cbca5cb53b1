// Package raster stores label rasters on disk and renders segmentations
// for inspection.
//
// Labels travel as 16-bit grayscale TIFF, one sample per pixel, which
// round-trips through common GIS and imaging tools without loss. The
// rendering helpers turn a segmentation into something a human can look
// at: flat mean-color fills, distinct palette fills, and boundary
// overlays on the source image.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"golang.org/x/image/tiff"

	"github.com/d-diaz/scrm"
)

var (
	// ErrLabelRange reports a label that does not fit a 16-bit sample.
	ErrLabelRange = errors.New("scrm/raster: label outside uint16 range")

	// ErrNotLabels reports a decoded image that cannot hold labels.
	ErrNotLabels = errors.New("scrm/raster: unsupported label image format")
)

func checkLabels(labels *scrm.Labels) error {
	if labels == nil || labels.W <= 0 || labels.H <= 0 || len(labels.Pix) != labels.W*labels.H {
		return fmt.Errorf("%w: malformed label raster", scrm.ErrShapeMismatch)
	}
	return nil
}

// WriteLabels encodes labels as a deflate-compressed 16-bit grayscale
// TIFF. Labels above 65535 do not fit the sample width and fail with
// ErrLabelRange.
func WriteLabels(w io.Writer, labels *scrm.Labels) error {
	if err := checkLabels(labels); err != nil {
		return err
	}
	img := image.NewGray16(image.Rect(0, 0, labels.W, labels.H))
	for y := 0; y < labels.H; y++ {
		for x := 0; x < labels.W; x++ {
			id := labels.Pix[y*labels.W+x]
			if id < 0 || id > math.MaxUint16 {
				return fmt.Errorf("%w: label %d at (%d,%d)", ErrLabelRange, id, x, y)
			}
			img.SetGray16(x, y, color.Gray16{Y: uint16(id)})
		}
	}
	if err := tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate}); err != nil {
		return fmt.Errorf("encode label tiff: %w", err)
	}
	return nil
}

// ReadLabels decodes a label raster written by WriteLabels. Both 16-bit
// and 8-bit grayscale TIFFs are accepted.
func ReadLabels(r io.Reader) (*scrm.Labels, error) {
	img, err := tiff.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode label tiff: %w", err)
	}
	bnd := img.Bounds()
	w, h := bnd.Dx(), bnd.Dy()
	labels := scrm.NewLabels(w, h)
	switch m := img.(type) {
	case *image.Gray16:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				labels.Pix[y*w+x] = int32(m.Gray16At(bnd.Min.X+x, bnd.Min.Y+y).Y)
			}
		}
	case *image.Gray:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				labels.Pix[y*w+x] = int32(m.GrayAt(bnd.Min.X+x, bnd.Min.Y+y).Y)
			}
		}
	default:
		return nil, fmt.Errorf("%w: %T", ErrNotLabels, img)
	}
	return labels, nil
}
