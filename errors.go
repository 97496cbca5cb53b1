package scrm

import "errors"

// Errors reported by parameter and input validation. Once a run starts the
// merge loop itself cannot fail.
var (
	// ErrInvalidParams reports a parameter set violating dms > 0, mmu > 0,
	// or mas >= mmu.
	ErrInvalidParams = errors.New("scrm: invalid parameters")

	// ErrShapeMismatch reports disagreement between an image, a label
	// raster, and the graph built from them.
	ErrShapeMismatch = errors.New("scrm: shape mismatch")
)
