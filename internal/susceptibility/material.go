package susceptibility

import (
	"fmt"

	"github.com/san-kum/dispsim/internal/grid"
)

// Material is the ordered list of dispersive terms at a material point. The
// polarizations of the terms add.
type Material []Response

func (m Material) NeedsP(c grid.Component, cmp int, W *grid.Fields) bool {
	for _, r := range m {
		if r.NeedsP(c, cmp, W) {
			return true
		}
	}
	return false
}

func (m Material) NeedsWNotOwned(c grid.Component, W *grid.Fields) bool {
	for _, r := range m {
		if r.NeedsWNotOwned(c, W) {
			return true
		}
	}
	return false
}

// NewStates allocates and initializes one state per term.
func (m Material) NewStates(W *grid.Fields, dt float64, gv grid.Volume) []*State {
	states := make([]*State, len(m))
	for i, r := range m {
		states[i] = r.NewState(W, gv)
		r.InitState(W, dt, gv, states[i])
	}
	return states
}

func (m Material) CopyStates(states []*State) []*State {
	out := make([]*State, len(states))
	for i, st := range states {
		out[i] = m[i].CopyState(st)
	}
	return out
}

func (m Material) ReleaseStates(states []*State) {
	for i, st := range states {
		m[i].ReleaseState(st)
	}
}

func (m Material) Update(W, WPrev *grid.Fields, dt float64, gv grid.Volume, states []*State) error {
	for i, r := range m {
		if err := r.Update(W, WPrev, dt, gv, states[i]); err != nil {
			return fmt.Errorf("term %d (%s #%d): %w", i, r.Kind(), r.ID(), err)
		}
	}
	return nil
}

func (m Material) SubtractP(ft grid.FieldType, fMinusP *grid.Fields, states []*State) {
	for i, r := range m {
		r.SubtractP(ft, fMinusP, states[i])
	}
}

// DumpParams appends every term's record, advancing start past each one.
func (m Material) DumpParams(w ParamWriter, start *int) error {
	for _, r := range m {
		if err := r.DumpParams(w, start); err != nil {
			return err
		}
	}
	return nil
}

func (m Material) Clone() Material {
	out := make(Material, len(m))
	for i, r := range m {
		out[i] = r.Clone()
	}
	return out
}

// Polarization sums P of copy cmp of c over all terms at point i.
func (m Material) Polarization(states []*State, c grid.Component, cmp, i int) float64 {
	sum := 0.0
	for _, st := range states {
		if p := st.P(c, cmp); p != nil {
			sum += p[i]
		}
	}
	return sum
}
