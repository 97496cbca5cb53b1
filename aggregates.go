package scrm

// aggregates hold the run-level totals behind the stop criterion.
// totalArea and expectedFinal are fixed at construction; the other two
// move by exact deltas as merges land, so the criterion never needs a
// rescan of the graph.
type aggregates struct {
	totalArea     int64
	numAtLeastMin int64 // live regions with area >= mmu
	areaBelowMin  int64 // total area held by regions with area < mmu
	expectedFinal int64 // totalArea / dms, floored
}

func newAggregates(g *Graph, p Params) aggregates {
	var a aggregates
	for i := range g.regions {
		r := &g.regions[i]
		if r.retired {
			continue
		}
		a.totalArea += int64(r.Area)
		if r.Area >= p.Mmu {
			a.numAtLeastMin++
		} else {
			a.areaBelowMin += int64(r.Area)
		}
	}
	a.expectedFinal = a.totalArea / int64(p.Dms)
	return a
}

// applyMerge moves the totals by the delta of replacing two regions of
// srcArea and dstArea with a single region of their combined area.
func (a *aggregates) applyMerge(srcArea, dstArea, mmu int) {
	newArea := srcArea + dstArea

	a.numAtLeastMin += int64(b2i(newArea >= mmu) - b2i(srcArea >= mmu) - b2i(dstArea >= mmu))

	a.areaBelowMin += int64(b2i(newArea < mmu)*newArea -
		b2i(srcArea < mmu)*srcArea -
		b2i(dstArea < mmu)*dstArea)
}

// belowTarget reports whether the region count has fallen far enough that
// the run should restrict itself to undersized pairs: regions already at
// or above mmu, plus the regions the sub-mmu area could still form at dms,
// no longer reach the expected final count.
func (a *aggregates) belowTarget(dms int) bool {
	return float64(a.numAtLeastMin)+float64(a.areaBelowMin)/float64(dms) < float64(a.expectedFinal)
}

func b2i(v bool) int {
	if v {
		return 1
	}
	return 0
}
