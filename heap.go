package scrm

// entry is a scored candidate pair in the merge queue. version pins the
// edge state the score was read from, so the queue can recognize entries
// that merging has since made stale.
type entry struct {
	weight  float64
	a, b    int32 // canonical orientation, a < b
	version uint32
}

// entryHeap is a binary min-heap of candidate pairs ordered by weight,
// breaking ties by (a, b) so runs are reproducible regardless of insertion
// order.
type entryHeap struct {
	items []entry
}

func (h *entryHeap) len() int { return len(h.items) }

func (h *entryHeap) push(e entry) {
	h.items = append(h.items, e)
	h.up(len(h.items) - 1)
}

// pop removes and returns the minimum entry, stale or not.
func (h *entryHeap) pop() (entry, bool) {
	if len(h.items) == 0 {
		return entry{}, false
	}
	top := h.items[0]
	last := len(h.items) - 1
	h.items[0] = h.items[last]
	h.items = h.items[:last]
	if last > 0 {
		h.down(0)
	}
	return top, true
}

func (h *entryHeap) less(i, j int) bool {
	x, y := h.items[i], h.items[j]
	if x.weight != y.weight {
		return x.weight < y.weight
	}
	if x.a != y.a {
		return x.a < y.a
	}
	return x.b < y.b
}

func (h *entryHeap) swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
}

func (h *entryHeap) up(j int) {
	for j > 0 {
		i := (j - 1) / 2
		if !h.less(j, i) {
			break
		}
		h.swap(i, j)
		j = i
	}
}

func (h *entryHeap) down(i int) {
	n := len(h.items)
	for {
		j1 := 2*i + 1
		if j1 >= n || j1 < 0 { // j1 < 0 after int overflow
			break
		}
		j := j1
		if j2 := j1 + 1; j2 < n && h.less(j2, j1) {
			j = j2
		}
		if !h.less(j, i) {
			break
		}
		h.swap(i, j)
		i = j
	}
}
