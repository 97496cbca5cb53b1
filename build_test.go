package scrm

import (
	"errors"
	"image"
	"image/color"
	"math"
	"slices"
	"testing"
)

func graphsEqual(t *testing.T, a, b *Graph) {
	t.Helper()
	if len(a.regions) != len(b.regions) {
		t.Fatalf("region slots: %d vs %d", len(a.regions), len(b.regions))
	}
	for id := range a.regions {
		ra, rb := &a.regions[id], &b.regions[id]
		if ra.retired != rb.retired || ra.Area != rb.Area {
			t.Fatalf("region %d: (retired %v, area %d) vs (retired %v, area %d)",
				id, ra.retired, ra.Area, rb.retired, rb.Area)
		}
		if !slices.Equal(ra.ColorSum, rb.ColorSum) {
			t.Fatalf("region %d color sums: %v vs %v", id, ra.ColorSum, rb.ColorSum)
		}
		na, nb := a.Neighbors(int32(id)), b.Neighbors(int32(id))
		if !slices.Equal(na, nb) {
			t.Fatalf("region %d neighbors: %v vs %v", id, na, nb)
		}
		for _, n := range na {
			wa, _ := a.Weight(int32(id), n)
			wb, _ := b.Weight(int32(id), n)
			if wa != wb {
				t.Fatalf("edge %d-%d weight: %v vs %v", id, n, wa, wb)
			}
		}
	}
}

func TestBuildGraphSmall(t *testing.T) {
	labels := &Labels{W: 4, H: 2, Pix: []int32{
		0, 0, 1, 1,
		2, 2, 1, 1,
	}}
	palette := []color.RGBA{
		{R: 10, G: 20, B: 30, A: 255},
		{R: 200, G: 40, B: 60, A: 255},
		{A: 255},
	}
	img := paletteImage(labels, palette)

	g, err := BuildGraph(img, labels, DefaultBuildParams())
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}

	if g.NumRegions() != 3 {
		t.Fatalf("regions: expected 3, got %d", g.NumRegions())
	}
	if g.NumEdges() != 3 {
		t.Fatalf("edges: expected 3, got %d", g.NumEdges())
	}

	wantArea := []int{2, 4, 2}
	wantMean := [][]float64{
		{10, 20, 30},
		{200, 40, 60},
		{0, 0, 0},
	}
	for id := int32(0); id < 3; id++ {
		r := g.Region(id)
		if r.Area != wantArea[id] {
			t.Errorf("region %d area: expected %d, got %d", id, wantArea[id], r.Area)
		}
		if !slices.Equal(r.Mean, wantMean[id]) {
			t.Errorf("region %d mean: expected %v, got %v", id, wantMean[id], r.Mean)
		}
	}

	dist := func(a, b []float64) float64 {
		sum := 0.0
		for i := range a {
			d := a[i] - b[i]
			sum += d * d
		}
		return math.Sqrt(sum)
	}
	for _, e := range []struct{ a, b int32 }{{0, 1}, {0, 2}, {1, 2}} {
		got, ok := g.Weight(e.a, e.b)
		if !ok {
			t.Fatalf("edge %d-%d missing", e.a, e.b)
		}
		if want := dist(wantMean[e.a], wantMean[e.b]); math.Abs(got-want) > 1e-12 {
			t.Errorf("edge %d-%d weight: expected %v, got %v", e.a, e.b, want, got)
		}
	}
}

func TestBuildGraphConnectivity(t *testing.T) {
	labels := &Labels{W: 2, H: 2, Pix: []int32{
		0, 1,
		2, 3,
	}}
	palette := []color.RGBA{
		{R: 255, A: 255}, {G: 255, A: 255}, {B: 255, A: 255}, {R: 255, G: 255, A: 255},
	}
	img := paletteImage(labels, palette)

	g4, err := BuildGraph(img, labels, DefaultBuildParams())
	if err != nil {
		t.Fatalf("BuildGraph 4-connected: %v", err)
	}
	if g4.NumEdges() != 4 {
		t.Errorf("4-connected edges: expected 4, got %d", g4.NumEdges())
	}
	if _, ok := g4.Weight(0, 3); ok {
		t.Error("4-connected graph has a diagonal edge")
	}

	g8, err := BuildGraph(img, labels, DefaultBuildParams().WithConnectivity(8))
	if err != nil {
		t.Fatalf("BuildGraph 8-connected: %v", err)
	}
	if g8.NumEdges() != 6 {
		t.Errorf("8-connected edges: expected 6, got %d", g8.NumEdges())
	}
	for _, e := range []struct{ a, b int32 }{{0, 3}, {1, 2}} {
		if _, ok := g8.Weight(e.a, e.b); !ok {
			t.Errorf("8-connected graph is missing diagonal %d-%d", e.a, e.b)
		}
	}
}

func TestBuildGraphCustomWeight(t *testing.T) {
	rng := newTestRNG(t)
	img, labels := randomScene(rng, 8, 8, 4, 4)

	flat := func(*Graph, int32, int32) float64 { return 7 }
	g, err := BuildGraph(img, labels, DefaultBuildParams().WithWeigh(flat))
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	for a := int32(0); int(a) < len(g.adj); a++ {
		for _, b := range g.Neighbors(a) {
			if w, _ := g.Weight(a, b); w != 7 {
				t.Fatalf("edge %d-%d: expected custom weight 7, got %v", a, b, w)
			}
		}
	}
}

func TestBuildGraphParallelParity(t *testing.T) {
	rng := newTestRNG(t)
	img, labels := randomScene(rng, 32, 32, 3, 3)

	serial, err := BuildGraph(img, labels, DefaultBuildParams().WithWorkers(1))
	if err != nil {
		t.Fatalf("serial build: %v", err)
	}
	parallel, err := BuildGraph(img, labels, DefaultBuildParams().WithWorkers(4))
	if err != nil {
		t.Fatalf("parallel build: %v", err)
	}
	graphsEqual(t, serial, parallel)

	eight, err := BuildGraph(img, labels, BuildParams{Connectivity: 8, Workers: 1})
	if err != nil {
		t.Fatalf("serial 8-connected build: %v", err)
	}
	eightPar, err := BuildGraph(img, labels, BuildParams{Connectivity: 8, Workers: 5})
	if err != nil {
		t.Fatalf("parallel 8-connected build: %v", err)
	}
	graphsEqual(t, eight, eightPar)
}

func TestBuildGraphOffsetBounds(t *testing.T) {
	rng := newTestRNG(t)
	img, labels := randomScene(rng, 16, 16, 4, 4)

	shifted := image.NewRGBA(image.Rect(7, 11, 7+16, 11+16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			shifted.Set(7+x, 11+y, img.At(x, y))
		}
	}

	a, err := BuildGraph(img, labels, DefaultBuildParams())
	if err != nil {
		t.Fatalf("zero-origin build: %v", err)
	}
	b, err := BuildGraph(shifted, labels, DefaultBuildParams())
	if err != nil {
		t.Fatalf("offset build: %v", err)
	}
	graphsEqual(t, a, b)
}

func TestBuildGraphErrors(t *testing.T) {
	rng := newTestRNG(t)
	img, labels := randomScene(rng, 8, 8, 4, 4)

	t.Run("negative label", func(t *testing.T) {
		broken := labels.Clone()
		broken.Set(3, 3, -1)
		if _, err := BuildGraph(img, broken, DefaultBuildParams()); !errors.Is(err, ErrShapeMismatch) {
			t.Errorf("expected ErrShapeMismatch, got %v", err)
		}
	})

	t.Run("size mismatch", func(t *testing.T) {
		small := image.NewRGBA(image.Rect(0, 0, 4, 8))
		if _, err := BuildGraph(small, labels, DefaultBuildParams()); !errors.Is(err, ErrShapeMismatch) {
			t.Errorf("expected ErrShapeMismatch, got %v", err)
		}
	})

	t.Run("empty raster", func(t *testing.T) {
		if _, err := BuildGraph(img, &Labels{}, DefaultBuildParams()); !errors.Is(err, ErrShapeMismatch) {
			t.Errorf("expected ErrShapeMismatch, got %v", err)
		}
	})

	t.Run("bad connectivity", func(t *testing.T) {
		if _, err := BuildGraph(img, labels, DefaultBuildParams().WithConnectivity(6)); !errors.Is(err, ErrInvalidParams) {
			t.Errorf("expected ErrInvalidParams, got %v", err)
		}
	})
}
