// Package scrm implements size-constrained region merging: a greedy
// hierarchical merge of an oversegmented image toward a desired mean
// region size.
//
// The run starts from a region adjacency graph in which every node carries
// its pixel count and mean color and every edge is scored by color
// distance. The cheapest edge merges first, the survivor's edges are
// rescored, and three size parameters steer the result: dms, the desired
// mean region size; mas, a soft upper cap; and mmu, the minimum mappable
// unit under which regions may always keep growing. When the projected
// number of surviving regions falls below total area / dms, the run
// latches into a cleanup phase that only admits pairs where at least one
// side is still below mmu.
//
// Segment runs the whole pipeline. BuildGraph, NewMerger, and Remap expose
// the stages separately for callers that need custom connectivity, weight
// functions, or region bookkeeping between stages.
package scrm

import "image"

// Segment merges labels over img under p and returns the relabeled raster
// with dense region ids counting up from 0, together with run statistics.
func Segment(img image.Image, labels *Labels, p Params, opts ...MergeOption) (*Labels, Stats, error) {
	if err := p.Validate(); err != nil {
		return nil, Stats{}, err
	}
	g, err := BuildGraph(img, labels, DefaultBuildParams())
	if err != nil {
		return nil, Stats{}, err
	}
	m, err := NewMerger(g, p, opts...)
	if err != nil {
		return nil, Stats{}, err
	}
	stats := m.Run()
	out, err := Remap(g, labels)
	if err != nil {
		return nil, Stats{}, err
	}
	return out, stats, nil
}
