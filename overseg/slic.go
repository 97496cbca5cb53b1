package overseg

import (
	"fmt"
	"image"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/d-diaz/scrm"
)

// SLICParams configure superpixel extraction.
type SLICParams struct {
	// Regions is the target superpixel count. The actual count can differ
	// after seeding and connectivity enforcement.
	Regions int

	// Compactness trades color similarity against spatial proximity.
	// Larger values produce squarer superpixels.
	Compactness float64

	// Iterations is the number of assignment refinement rounds.
	Iterations int
}

// DefaultSLICParams returns a reasonable starting point for natural images.
func DefaultSLICParams() SLICParams {
	return SLICParams{
		Regions:     500,
		Compactness: 40,
		Iterations:  10,
	}
}

// WithRegions returns a copy of p with the target superpixel count set to n.
func (p SLICParams) WithRegions(n int) SLICParams {
	p.Regions = n
	return p
}

// WithCompactness returns a copy of p with the compactness factor set to c.
func (p SLICParams) WithCompactness(c float64) SLICParams {
	p.Compactness = c
	return p
}

// WithIterations returns a copy of p with the refinement round count set to n.
func (p SLICParams) WithIterations(n int) SLICParams {
	p.Iterations = n
	return p
}

func (p SLICParams) validate() error {
	if p.Regions <= 0 {
		return fmt.Errorf("%w: slic regions %d, want > 0", scrm.ErrInvalidParams, p.Regions)
	}
	if p.Compactness <= 0 {
		return fmt.Errorf("%w: slic compactness %g, want > 0", scrm.ErrInvalidParams, p.Compactness)
	}
	if p.Iterations <= 0 {
		return fmt.Errorf("%w: slic iterations %d, want > 0", scrm.ErrInvalidParams, p.Iterations)
	}
	return nil
}

// slicCenter is one cluster seed in joint Lab and position coordinates.
type slicCenter struct {
	l, a, b float64
	x, y    float64
}

var (
	dx4 = [4]int{-1, 1, 0, 0}
	dy4 = [4]int{0, 0, -1, 1}
)

// SLIC oversegments img into compact superpixels and returns a dense label
// raster of the same size. Seeds are placed on a regular grid, nudged off
// local gradient maxima, then refined by windowed k-means in a combined
// Lab and position space. A final pass reconnects stray fragments so every
// label forms a single 4-connected component.
func SLIC(img image.Image, p SLICParams) (*scrm.Labels, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	bnd := img.Bounds()
	w, h := bnd.Dx(), bnd.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: empty image", scrm.ErrShapeMismatch)
	}

	lab := labPlane(img)
	step := int(math.Sqrt(float64(w*h) / float64(p.Regions)))
	if step < 1 {
		step = 1
	}
	centers := seedCenters(lab, w, h, step)

	ns := float64(step)
	nc := p.Compactness
	assign := make([]int32, w*h)
	dist := make([]float64, w*h)
	for i := range assign {
		assign[i] = -1
	}

	for it := 0; it < p.Iterations; it++ {
		for i := range dist {
			dist[i] = math.Inf(1)
		}
		for j, c := range centers {
			x0, x1 := window(int(c.x), step, w)
			y0, y1 := window(int(c.y), step, h)
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					i := y*w + x
					dl := lab[i*3] - c.l
					da := lab[i*3+1] - c.a
					db := lab[i*3+2] - c.b
					dc := math.Sqrt(dl*dl + da*da + db*db)
					dx := float64(x) - c.x
					dy := float64(y) - c.y
					ds := math.Sqrt(dx*dx + dy*dy)
					d := math.Sqrt((dc/nc)*(dc/nc) + (ds/ns)*(ds/ns))
					if d < dist[i] {
						dist[i] = d
						assign[i] = int32(j)
					}
				}
			}
		}
		recomputeCenters(centers, lab, assign, w, h)
	}

	// Pixels outside every search window keep no assignment; hand them to
	// the spatially nearest center before reconnecting components.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if assign[y*w+x] < 0 {
				assign[y*w+x] = nearestCenter(centers, x, y)
			}
		}
	}

	return enforceConnectivity(assign, w, h, len(centers)), nil
}

// labPlane converts img into a flat Lab plane, three values per pixel,
// scaled to the usual CIE range so compactness keeps its familiar meaning.
func labPlane(img image.Image) []float64 {
	bnd := img.Bounds()
	w, h := bnd.Dx(), bnd.Dy()
	out := make([]float64, w*h*3)
	i := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c, _ := colorful.MakeColor(img.At(bnd.Min.X+x, bnd.Min.Y+y))
			l, a, b := c.Lab()
			out[i] = l * 100
			out[i+1] = a * 100
			out[i+2] = b * 100
			i += 3
		}
	}
	return out
}

// seedCenters lays seeds on a step-spaced grid, each moved to the lowest
// gradient position in its 3x3 neighborhood so seeds avoid edges.
func seedCenters(lab []float64, w, h, step int) []slicCenter {
	var centers []slicCenter
	for cy := step; cy < h-step/2; cy += step {
		for cx := step; cx < w-step/2; cx += step {
			x, y := lowestGradient(lab, w, h, cx, cy)
			i := y*w + x
			centers = append(centers, slicCenter{
				l: lab[i*3],
				a: lab[i*3+1],
				b: lab[i*3+2],
				x: float64(x),
				y: float64(y),
			})
		}
	}
	if len(centers) == 0 {
		x, y := w/2, h/2
		i := y*w + x
		centers = append(centers, slicCenter{
			l: lab[i*3],
			a: lab[i*3+1],
			b: lab[i*3+2],
			x: float64(x),
			y: float64(y),
		})
	}
	return centers
}

// lowestGradient returns the position within the 3x3 neighborhood of
// (cx, cy) where the lightness gradient is smallest.
func lowestGradient(lab []float64, w, h, cx, cy int) (int, int) {
	bestX, bestY := cx, cy
	best := math.Inf(1)
	for y := cy - 1; y <= cy+1; y++ {
		for x := cx - 1; x <= cx+1; x++ {
			if x < 0 || y < 0 || x >= w-1 || y >= h-1 {
				continue
			}
			i := y*w + x
			gx := math.Abs(lab[(i+1)*3] - lab[i*3])
			gy := math.Abs(lab[(i+w)*3] - lab[i*3])
			if g := gx + gy; g < best {
				best = g
				bestX, bestY = x, y
			}
		}
	}
	return bestX, bestY
}

// window clamps the ±step search range around c to [0, limit).
func window(c, step, limit int) (int, int) {
	lo := c - step
	if lo < 0 {
		lo = 0
	}
	hi := c + step + 1
	if hi > limit {
		hi = limit
	}
	return lo, hi
}

// recomputeCenters moves every center to the mean color and position of
// its assigned pixels. Centers that attracted nothing stay where they are.
func recomputeCenters(centers []slicCenter, lab []float64, assign []int32, w, h int) {
	sums := make([]slicCenter, len(centers))
	counts := make([]int, len(centers))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			j := assign[i]
			if j < 0 {
				continue
			}
			sums[j].l += lab[i*3]
			sums[j].a += lab[i*3+1]
			sums[j].b += lab[i*3+2]
			sums[j].x += float64(x)
			sums[j].y += float64(y)
			counts[j]++
		}
	}
	for j := range centers {
		if counts[j] == 0 {
			continue
		}
		n := float64(counts[j])
		centers[j] = slicCenter{
			l: sums[j].l / n,
			a: sums[j].a / n,
			b: sums[j].b / n,
			x: sums[j].x / n,
			y: sums[j].y / n,
		}
	}
}

// nearestCenter returns the index of the center spatially closest to (x, y).
func nearestCenter(centers []slicCenter, x, y int) int32 {
	best := int32(0)
	bestD := math.Inf(1)
	for j, c := range centers {
		dx := float64(x) - c.x
		dy := float64(y) - c.y
		if d := dx*dx + dy*dy; d < bestD {
			bestD = d
			best = int32(j)
		}
	}
	return best
}

// enforceConnectivity renumbers assign into dense labels grown from
// 4-connected flood fills. Fragments no larger than a quarter of the
// average superpixel area are absorbed into the previously visited
// neighbor label, which keeps the numbering dense.
func enforceConnectivity(assign []int32, w, h, numCenters int) *scrm.Labels {
	labels := scrm.NewLabels(w, h)
	for i := range labels.Pix {
		labels.Pix[i] = -1
	}
	small := ((w * h) / numCenters) >> 2

	var queue []int
	next := int32(0)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			start := y*w + x
			if labels.Pix[start] >= 0 {
				continue
			}
			adj := int32(0)
			for k := 0; k < 4; k++ {
				nx, ny := x+dx4[k], y+dy4[k]
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				if v := labels.Pix[ny*w+nx]; v >= 0 {
					adj = v
				}
			}

			labels.Pix[start] = next
			queue = append(queue[:0], start)
			elems := []int{start}
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
					if labels.Pix[ni] < 0 && assign[ni] == assign[start] {
						labels.Pix[ni] = next
						queue = append(queue, ni)
						elems = append(elems, ni)
					}
				}
			}

			if len(elems) <= small {
				for _, e := range elems {
					labels.Pix[e] = adj
				}
				next--
			}
			next++
		}
	}
	return labels
}
