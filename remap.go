package scrm

import "fmt"

// Remap rewrites labels so that surviving regions take dense ids counting
// up from 0, assigned in ascending node-id order. labels must be the
// raster the graph was built from; the raster itself is not modified.
// Remap is pure, so repeated calls on the same inputs produce identical
// rasters.
func Remap(g *Graph, labels *Labels) (*Labels, error) {
	if err := labels.check(); err != nil {
		return nil, err
	}

	maxID := labels.Max()
	lookup := make([]int32, maxID+1)
	for i := range lookup {
		lookup[i] = -1
	}

	next := int32(0)
	for id := range g.regions {
		r := &g.regions[id]
		if r.retired {
			continue
		}
		for _, orig := range r.labels {
			if orig < 0 || orig > maxID {
				return nil, fmt.Errorf("%w: graph region %d holds label %d outside raster range [0, %d]",
					ErrShapeMismatch, id, orig, maxID)
			}
			lookup[orig] = next
		}
		next++
	}

	out := NewLabels(labels.W, labels.H)
	for i, id := range labels.Pix {
		if id < 0 || lookup[id] < 0 {
			return nil, fmt.Errorf("%w: raster label %d is not covered by the graph", ErrShapeMismatch, id)
		}
		out.Pix[i] = lookup[id]
	}
	return out, nil
}
