package scrm

import "fmt"

// MergeStrategy selects how a surviving region keeps its identity.
type MergeStrategy int

const (
	// MergeInPlace keeps the second region's id when a pair merges.
	MergeInPlace MergeStrategy = iota
	// MergeRename retires both ids and continues the pair under a fresh
	// one, so every merge event has a distinct surviving id.
	MergeRename
)

func (s MergeStrategy) String() string {
	switch s {
	case MergeInPlace:
		return "in-place"
	case MergeRename:
		return "rename"
	default:
		return fmt.Sprintf("MergeStrategy(%d)", int(s))
	}
}

// Stats summarize one merge run.
type Stats struct {
	Pops         int // queue entries examined
	Stale        int // entries skipped as out of date
	SizeRejects  int // pairs blocked by the mas and mmu rules
	LatchRejects int // pairs blocked after the stop criterion engaged
	Merges       int // accepted merges

	// LatchedAt is the accepted-merge count at which the stop criterion
	// engaged, or -1 if it never did.
	LatchedAt int

	InitialRegions int
	FinalRegions   int
}

// MergeOption adjusts a Merger beyond its required inputs.
type MergeOption func(*Merger)

// WithStrategy selects the identity strategy for surviving regions.
func WithStrategy(s MergeStrategy) MergeOption {
	return func(m *Merger) { m.strategy = s }
}

// WithWeightFunc replaces the edge rescoring function.
func WithWeightFunc(w WeightFunc) MergeOption {
	return func(m *Merger) {
		if w != nil {
			m.weigh = w
		}
	}
}

// WithProgress installs fn to be called after every n accepted merges with
// the count so far.
func WithProgress(n int, fn func(merges int)) MergeOption {
	return func(m *Merger) {
		m.progressEvery = n
		m.progress = fn
	}
}

// Merger executes one greedy size-constrained merge over a graph. A
// Merger is single use: Run consumes the graph's edges and rewrites its
// regions in place.
type Merger struct {
	g        *Graph
	p        Params
	weigh    WeightFunc
	strategy MergeStrategy

	heap    entryHeap
	agg     aggregates
	latched bool
	stats   Stats

	progressEvery int
	progress      func(int)
}

// NewMerger validates p and prepares a run over g.
func NewMerger(g *Graph, p Params, opts ...MergeOption) (*Merger, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	m := &Merger{
		g:        g,
		p:        p,
		weigh:    EuclideanWeight,
		strategy: MergeInPlace,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.agg = newAggregates(g, p)
	m.stats.LatchedAt = -1
	m.stats.InitialRegions = g.NumRegions()
	m.seed()
	return m, nil
}

// seed enqueues every current edge once, in canonical orientation.
func (m *Merger) seed() {
	m.heap.items = make([]entry, 0, m.g.NumEdges())
	for a := range m.g.adj {
		for b, e := range m.g.adj[a] {
			if b <= int32(a) {
				continue
			}
			m.heap.push(entry{weight: e.weight, a: int32(a), b: b, version: e.version})
		}
	}
}

// next returns the minimum entry still matching the live edge state.
func (m *Merger) next() (entry, bool) {
	for {
		e, ok := m.heap.pop()
		if !ok {
			return entry{}, false
		}
		m.stats.Pops++
		v, live := m.g.edgeVersion(e.a, e.b)
		if !live || v != e.version {
			m.stats.Stale++
			continue
		}
		return e, true
	}
}

// Run executes the merge until the queue is exhausted and returns run
// statistics. The stop criterion does not end the run; it restricts which
// pairs may still merge.
func (m *Merger) Run() Stats {
	dms, mas, mmu := m.p.Dms, m.p.Mas, m.p.Mmu
	for {
		e, ok := m.next()
		if !ok {
			break
		}

		// The criterion latches: once the projected region count drops
		// below the target it never unlatches, even though later merges
		// keep moving the aggregates.
		if !m.latched && m.agg.belowTarget(dms) {
			m.latched = true
			m.stats.LatchedAt = m.stats.Merges
		}

		a := m.g.regions[e.a].Area
		b := m.g.regions[e.b].Area
		if (a > mas && b > mas) || (a > mas && b > mmu) || (a > mmu && b > mas) {
			m.stats.SizeRejects++
			continue
		}
		if m.latched && a >= mmu && b >= mmu {
			m.stats.LatchRejects++
			continue
		}

		m.accept(e.a, e.b)
	}
	m.stats.FinalRegions = m.g.NumRegions()
	return m.stats
}

// accept carries out one merge of the pair (n1, n2): stale every queue
// entry touching either endpoint, fold n1 into the surviving region,
// update the aggregates by the exact delta, rewire the graph, and enqueue
// the rescored edges of the survivor.
func (m *Merger) accept(n1, n2 int32) {
	m.g.bumpAll(n1)
	m.g.bumpAll(n2)

	src, dst := n1, n2
	if m.strategy == MergeRename {
		dst = m.g.Rename(n2)
	}

	srcArea := m.g.regions[src].Area
	dstArea := m.g.regions[dst].Area
	m.g.Absorb(src, dst)
	m.agg.applyMerge(srcArea, dstArea, m.p.Mmu)

	for _, n := range m.g.Merge(src, dst, m.weigh) {
		e := m.g.adj[dst][n]
		a, b := dst, n
		if b < a {
			a, b = b, a
		}
		m.heap.push(entry{weight: e.weight, a: a, b: b, version: e.version})
	}

	m.stats.Merges++
	if m.progress != nil && m.progressEvery > 0 && m.stats.Merges%m.progressEvery == 0 {
		m.progress(m.stats.Merges)
	}
}
