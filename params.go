package scrm

import "fmt"

// Params control a size-constrained merge run. All sizes are pixel counts.
type Params struct {
	// Dms is the desired mean region size. The run steers the number of
	// surviving regions toward total area / Dms.
	Dms int

	// Mas is the maximum allowed region size. The cap is soft: it blocks
	// merges between two already-large regions but never stops a large
	// region from absorbing one below Mmu.
	Mas int

	// Mmu is the minimum mappable unit. Regions below Mmu stay mergeable
	// even after the stop criterion engages.
	Mmu int
}

// DefaultParams returns parameters aimed at regions of roughly 100 pixels.
func DefaultParams() Params {
	return Params{
		Dms: 100,
		Mas: 400,
		Mmu: 10,
	}
}

// WithDms returns a copy of p with the desired mean size replaced.
func (p Params) WithDms(dms int) Params {
	p.Dms = dms
	return p
}

// WithMas returns a copy of p with the maximum allowed size replaced.
func (p Params) WithMas(mas int) Params {
	p.Mas = mas
	return p
}

// WithMmu returns a copy of p with the minimum mappable unit replaced.
func (p Params) WithMmu(mmu int) Params {
	p.Mmu = mmu
	return p
}

// Validate reports whether the parameter set is usable for a run.
func (p Params) Validate() error {
	if p.Dms <= 0 {
		return fmt.Errorf("%w: dms %d, want > 0", ErrInvalidParams, p.Dms)
	}
	if p.Mmu <= 0 {
		return fmt.Errorf("%w: mmu %d, want > 0", ErrInvalidParams, p.Mmu)
	}
	if p.Mas < p.Mmu {
		return fmt.Errorf("%w: mas %d below mmu %d", ErrInvalidParams, p.Mas, p.Mmu)
	}
	return nil
}
