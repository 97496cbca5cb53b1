package scrm

import (
	"fmt"
	"image"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// BuildParams configure graph construction from an image and a label
// raster.
type BuildParams struct {
	// Connectivity selects the pixel neighborhood joining regions: 4 or 8.
	Connectivity int

	// Workers bounds how many row bands are scanned in parallel. Zero
	// means one band per CPU.
	Workers int

	// Weigh scores the initial edges. Nil means EuclideanWeight.
	Weigh WeightFunc
}

// DefaultBuildParams returns 4-connected construction with one band per
// CPU.
func DefaultBuildParams() BuildParams {
	return BuildParams{Connectivity: 4}
}

// WithConnectivity returns a copy of bp with the pixel neighborhood
// replaced.
func (bp BuildParams) WithConnectivity(c int) BuildParams {
	bp.Connectivity = c
	return bp
}

// WithWorkers returns a copy of bp with the scan parallelism replaced.
func (bp BuildParams) WithWorkers(n int) BuildParams {
	bp.Workers = n
	return bp
}

// WithWeigh returns a copy of bp with the edge scoring function replaced.
func (bp BuildParams) WithWeigh(w WeightFunc) BuildParams {
	bp.Weigh = w
	return bp
}

func (bp BuildParams) validate() error {
	if bp.Connectivity != 4 && bp.Connectivity != 8 {
		return fmt.Errorf("%w: connectivity %d, want 4 or 8", ErrInvalidParams, bp.Connectivity)
	}
	return nil
}

// buildPartial accumulates one row band's contribution to the graph.
type buildPartial struct {
	area  []int
	sum   []float64 // 3 channels per label
	pairs map[uint64]struct{}
}

func (p *buildPartial) addPair(a, b int32) {
	if a == b {
		return
	}
	if b < a {
		a, b = b, a
	}
	p.pairs[uint64(uint32(a))<<32|uint64(uint32(b))] = struct{}{}
}

// BuildGraph constructs a mean-color region adjacency graph from img and
// labels. Every region accumulates its pixel count and per-channel sRGB
// sums in [0, 255]; every pair of regions touching under the chosen
// connectivity gets one edge scored by bp.Weigh. Raster ids may be sparse;
// unused ids simply never surface as regions.
func BuildGraph(img image.Image, labels *Labels, bp BuildParams) (*Graph, error) {
	if err := bp.validate(); err != nil {
		return nil, err
	}
	if err := labels.check(); err != nil {
		return nil, err
	}
	bnd := img.Bounds()
	if bnd.Dx() != labels.W || bnd.Dy() != labels.H {
		return nil, fmt.Errorf("%w: image %dx%d vs labels %dx%d",
			ErrShapeMismatch, bnd.Dx(), bnd.Dy(), labels.W, labels.H)
	}

	numLabels := int(labels.Max()) + 1
	if numLabels < 0 {
		numLabels = 0
	}

	workers := bp.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > labels.H {
		workers = labels.H
	}

	partials := make([]buildPartial, workers)
	var eg errgroup.Group
	for w := 0; w < workers; w++ {
		eg.Go(func() error {
			y0 := w * labels.H / workers
			y1 := (w + 1) * labels.H / workers
			return scanBand(img, labels, y0, y1, bp.Connectivity, &partials[w], numLabels)
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	area := make([]int, numLabels)
	sum := make([]float64, numLabels*3)
	pairs := make(map[uint64]struct{})
	for i := range partials {
		p := &partials[i]
		for id, n := range p.area {
			area[id] += n
		}
		for j, v := range p.sum {
			sum[j] += v
		}
		for key := range p.pairs {
			pairs[key] = struct{}{}
		}
	}

	g := NewGraph(3)
	for id := 0; id < numLabels; id++ {
		if area[id] == 0 {
			g.addGap()
			continue
		}
		g.AddRegion(area[id], sum[id*3:id*3+3])
	}

	weigh := bp.Weigh
	if weigh == nil {
		weigh = EuclideanWeight
	}
	for key := range pairs {
		a := int32(key >> 32)
		b := int32(key & 0xffffffff)
		g.AddEdge(a, b, weigh(g, a, b))
	}
	return g, nil
}

// scanBand accumulates rows [y0, y1). Each pixel contributes its color to
// its own region and pairs with its left and upper neighbors, so every
// adjacent pair in the raster is recorded by exactly one band.
func scanBand(img image.Image, labels *Labels, y0, y1, connectivity int, p *buildPartial, numLabels int) error {
	p.area = make([]int, numLabels)
	p.sum = make([]float64, numLabels*3)
	p.pairs = make(map[uint64]struct{})

	bnd := img.Bounds()
	for y := y0; y < y1; y++ {
		for x := 0; x < labels.W; x++ {
			id := labels.At(x, y)
			if id < 0 {
				return fmt.Errorf("%w: negative label %d at (%d, %d)", ErrShapeMismatch, id, x, y)
			}

			cr, cg, cb, _ := img.At(bnd.Min.X+x, bnd.Min.Y+y).RGBA()
			p.area[id]++
			s := p.sum[int(id)*3:]
			s[0] += float64(cr >> 8)
			s[1] += float64(cg >> 8)
			s[2] += float64(cb >> 8)

			if x > 0 {
				p.addPair(id, labels.At(x-1, y))
			}
			if y > 0 {
				p.addPair(id, labels.At(x, y-1))
				if connectivity == 8 {
					if x > 0 {
						p.addPair(id, labels.At(x-1, y-1))
					}
					if x < labels.W-1 {
						p.addPair(id, labels.At(x+1, y-1))
					}
				}
			}
		}
	}
	return nil
}
