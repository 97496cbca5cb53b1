package scrm

import (
	"slices"

	"gonum.org/v1/gonum/floats"
)

// Region aggregates the pixels mapped to one node of the adjacency graph.
type Region struct {
	// Area is the pixel count.
	Area int
	// ColorSum holds per-channel color totals over the region's pixels.
	ColorSum []float64
	// Mean is ColorSum divided by Area. It is kept current through every
	// merge, so edge weights can always be read off it directly.
	Mean []float64

	labels  []int32 // raster ids this node is responsible for
	retired bool
}

// edge is shared by both adjacency directions. version advances on every
// weight update or invalidation, so queue entries recorded against an
// earlier state are recognizable as stale.
type edge struct {
	weight  float64
	version uint32
}

// Graph is a region adjacency graph over mean-color regions. Node ids are
// stable for the lifetime of the graph: merged-away nodes are retired in
// place and ids are never reused.
type Graph struct {
	channels int
	regions  []Region
	adj      []map[int32]*edge
	live     int
}

// NewGraph returns an empty graph whose regions carry the given number of
// color channels.
func NewGraph(channels int) *Graph {
	if channels < 1 {
		channels = 1
	}
	return &Graph{channels: channels}
}

// Channels returns the per-region color channel count.
func (g *Graph) Channels() int { return g.channels }

// AddRegion appends a region with the given pixel count and per-channel
// color sums and returns its id. len(colorSum) must equal Channels().
func (g *Graph) AddRegion(area int, colorSum []float64) int32 {
	if len(colorSum) != g.channels {
		panic("scrm: color sum length does not match graph channels")
	}
	id := int32(len(g.regions))
	r := Region{
		Area:     area,
		ColorSum: slices.Clone(colorSum),
		Mean:     make([]float64, len(colorSum)),
		labels:   []int32{id},
	}
	if area > 0 {
		floats.ScaleTo(r.Mean, 1/float64(area), r.ColorSum)
	}
	g.regions = append(g.regions, r)
	g.adj = append(g.adj, nil)
	g.live++
	return id
}

// addGap appends a retired placeholder so arena ids can stay aligned with
// raster ids even when the raster skips a value.
func (g *Graph) addGap() {
	g.regions = append(g.regions, Region{retired: true})
	g.adj = append(g.adj, nil)
}

// NumRegions returns the count of live regions.
func (g *Graph) NumRegions() int { return g.live }

// NumEdges returns the count of distinct undirected edges.
func (g *Graph) NumEdges() int {
	total := 0
	for _, m := range g.adj {
		total += len(m)
	}
	return total / 2
}

// Alive reports whether id names a live region.
func (g *Graph) Alive(id int32) bool {
	return id >= 0 && int(id) < len(g.regions) && !g.regions[id].retired
}

// Region returns the record for id. The record is owned by the graph and
// must not be modified by callers.
func (g *Graph) Region(id int32) *Region { return &g.regions[id] }

// AddEdge connects a and b at weight w, updating the weight if the edge
// already exists. Self edges are ignored.
func (g *Graph) AddEdge(a, b int32, w float64) {
	if a == b {
		return
	}
	g.setEdge(a, b, w)
}

// setEdge writes one shared record under both directed keys. During a run
// the merger owns the graph and never revives a removed pair, so fresh
// records can safely start at version zero.
func (g *Graph) setEdge(a, b int32, w float64) {
	if e, ok := g.adj[a][b]; ok {
		e.weight = w
		e.version++
		return
	}
	e := &edge{weight: w}
	if g.adj[a] == nil {
		g.adj[a] = make(map[int32]*edge)
	}
	if g.adj[b] == nil {
		g.adj[b] = make(map[int32]*edge)
	}
	g.adj[a][b] = e
	g.adj[b][a] = e
}

// RemoveEdge disconnects a and b. Removing a missing edge is a no-op.
func (g *Graph) RemoveEdge(a, b int32) {
	if _, ok := g.adj[a][b]; !ok {
		return
	}
	delete(g.adj[a], b)
	delete(g.adj[b], a)
}

// Weight returns the weight of edge (a, b) and whether the edge exists.
func (g *Graph) Weight(a, b int32) (float64, bool) {
	e, ok := g.adj[a][b]
	if !ok {
		return 0, false
	}
	return e.weight, true
}

// Neighbors returns the ids adjacent to n in ascending order.
func (g *Graph) Neighbors(n int32) []int32 {
	out := make([]int32, 0, len(g.adj[n]))
	for b := range g.adj[n] {
		out = append(out, b)
	}
	slices.Sort(out)
	return out
}

// edgeVersion returns the current version of edge (a, b), reporting false
// when the edge no longer exists.
func (g *Graph) edgeVersion(a, b int32) (uint32, bool) {
	e, ok := g.adj[a][b]
	if !ok {
		return 0, false
	}
	return e.version, true
}

// bumpAll advances the version of every edge at n, staling any queue
// entries recorded against them.
func (g *Graph) bumpAll(n int32) {
	for _, e := range g.adj[n] {
		e.version++
	}
}

// Absorb folds src's pixel mass into dst and refreshes dst's mean color.
// Topology is untouched; call Merge afterward.
func (g *Graph) Absorb(src, dst int32) {
	s, d := &g.regions[src], &g.regions[dst]
	floats.Add(d.ColorSum, s.ColorSum)
	d.Area += s.Area
	floats.ScaleTo(d.Mean, 1/float64(d.Area), d.ColorSum)
}

// Rename moves a live node to a fresh id, carrying its attributes and
// edges, and returns the new id. The old id is retired.
func (g *Graph) Rename(id int32) int32 {
	fresh := int32(len(g.regions))
	g.regions = append(g.regions, g.regions[id])
	g.regions[id] = Region{retired: true}
	g.adj = append(g.adj, g.adj[id])
	g.adj[id] = nil
	for n, e := range g.adj[fresh] {
		g.adj[n][fresh] = e
		delete(g.adj[n], id)
	}
	return fresh
}

// Merge drops src from the graph, rewires dst to the union of both
// neighborhoods, and rescores every surviving edge of dst with weigh
// against dst's current attributes. It returns dst's neighbors after the
// merge in ascending order. Absorbing attributes is the caller's job; see
// Absorb.
func (g *Graph) Merge(src, dst int32, weigh WeightFunc) []int32 {
	if weigh == nil {
		weigh = EuclideanWeight
	}

	seen := make(map[int32]struct{}, len(g.adj[src])+len(g.adj[dst]))
	for n := range g.adj[src] {
		seen[n] = struct{}{}
	}
	for n := range g.adj[dst] {
		seen[n] = struct{}{}
	}
	delete(seen, src)
	delete(seen, dst)

	for n := range g.adj[src] {
		delete(g.adj[n], src)
	}
	g.adj[src] = nil

	g.regions[dst].labels = append(g.regions[dst].labels, g.regions[src].labels...)
	g.regions[src] = Region{retired: true}
	g.live--

	nbrs := make([]int32, 0, len(seen))
	for n := range seen {
		nbrs = append(nbrs, n)
	}
	slices.Sort(nbrs)
	for _, n := range nbrs {
		g.setEdge(dst, n, weigh(g, dst, n))
	}
	return nbrs
}
