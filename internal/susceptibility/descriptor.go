package susceptibility

import (
	"fmt"
	"sync/atomic"

	"github.com/san-kum/dispsim/internal/grid"
)

var nextID atomic.Int64

// Descriptor carries the spatial coupling profile shared by every response
// type: sigma[c][d] scales the drive from direction d into component c at
// each grid point. A nil array is a zero coefficient.
type Descriptor struct {
	sigma   [grid.NumComponents][grid.NumDirections][]float64
	trivial [grid.NumComponents][grid.NumDirections]bool
	ntot    int
	id      int
}

func newDescriptor() Descriptor {
	d := Descriptor{id: int(nextID.Add(1) - 1)}
	for c := range d.trivial {
		for dir := range d.trivial[c] {
			d.trivial[c][dir] = true
		}
	}
	return d
}

func (d *Descriptor) ID() int   { return d.id }
func (d *Descriptor) Ntot() int { return d.ntot }

// SetSigma installs a copy of values as the coupling from dir into c. The
// first call fixes the point count; later calls must match it.
func (d *Descriptor) SetSigma(c grid.Component, dir grid.Direction, values []float64) error {
	if !grid.IsElectric(c) && !grid.IsMagnetic(c) {
		return fmt.Errorf("%w: %s", ErrNotPolarizable, c)
	}
	if dir < 0 || dir >= grid.NumDirections {
		return fmt.Errorf("susceptibility: bad direction %d", int(dir))
	}
	if d.ntot == 0 {
		d.ntot = len(values)
	} else if len(values) != d.ntot {
		return fmt.Errorf("%w: got %d, want %d", ErrSigmaLength, len(values), d.ntot)
	}

	s := make([]float64, len(values))
	copy(s, values)
	d.sigma[c][dir] = s
	d.trivial[c][dir] = true
	for _, v := range s {
		if v != 0 {
			d.trivial[c][dir] = false
			break
		}
	}
	return nil
}

// Sigma returns the stored coefficients (nil when never set). The slice is
// borrowed; callers must not modify it.
func (d *Descriptor) Sigma(c grid.Component, dir grid.Direction) []float64 {
	return d.sigma[c][dir]
}

// Trivial reports whether sigma[c][dir] is absent or identically zero.
func (d *Descriptor) Trivial(c grid.Component, dir grid.Direction) bool {
	return d.trivial[c][dir]
}

// coeff is sigma[c][dir], or nil when it is trivial.
func (d *Descriptor) coeff(c grid.Component, dir grid.Direction) []float64 {
	if d.trivial[c][dir] {
		return nil
	}
	return d.sigma[c][dir]
}

// NeedsP reports whether P must be stored for copy cmp of c. It is only true
// when some non-trivial coupling into c is driven by a field that exists.
func (d *Descriptor) NeedsP(c grid.Component, cmp int, W *grid.Fields) bool {
	if !grid.IsElectric(c) && !grid.IsMagnetic(c) {
		return false
	}
	for dir := grid.Direction(0); dir < grid.NumDirections; dir++ {
		if !d.trivial[c][dir] && W.Has(grid.DirectionComponent(c, dir), cmp) {
			return true
		}
	}
	return false
}

// NeedsWNotOwned reports whether updating c reads ghost values of other
// field components, which happens when an off-diagonal coupling feeds back
// into c's principal direction. The exchange itself is left to the caller.
func (d *Descriptor) NeedsWNotOwned(c grid.Component, W *grid.Fields) bool {
	principal := c.Direction()
	for dir := grid.Direction(0); dir < grid.NumDirections; dir++ {
		if dir == principal {
			continue
		}
		cP := grid.DirectionComponent(c, dir)
		if d.NeedsP(cP, 0, W) && !d.trivial[cP][principal] {
			return true
		}
	}
	return false
}

// clone deep-copies the coefficient arrays. The ID is kept.
func (d *Descriptor) clone() Descriptor {
	out := Descriptor{ntot: d.ntot, id: d.id, trivial: d.trivial}
	for c := range d.sigma {
		for dir := range d.sigma[c] {
			if d.sigma[c][dir] != nil {
				out.sigma[c][dir] = append([]float64(nil), d.sigma[c][dir]...)
			}
		}
	}
	return out
}
