package susceptibility

import (
	"math"

	"github.com/san-kum/dispsim/internal/grid"
)

// subtractChunk is the minimum number of points per worker when subtracting
// P from large arrays.
const subtractChunk = 1 << 15

// Lorentzian is a single damped-resonance pole,
//
//	P'' + 2πγ P' + (2πω0)² P = (2πω0)² σ W,
//
// stepped with a second-order leapfrog recurrence. With NoOmega0Denominator
// set the restoring force on P is dropped while the drive keeps its (2πω0)²
// coefficient, which pins the resonance at zero frequency.
type Lorentzian struct {
	Descriptor
	Omega0              float64
	Gamma               float64
	NoOmega0Denominator bool
}

var _ Response = (*Lorentzian)(nil)

func NewLorentzian(omega0, gamma float64, noOmega0Denominator bool) *Lorentzian {
	return &Lorentzian{
		Descriptor:          newDescriptor(),
		Omega0:              omega0,
		Gamma:               gamma,
		NoOmega0Denominator: noOmega0Denominator,
	}
}

func (l *Lorentzian) Kind() Kind { return KindLorentzian }

func (l *Lorentzian) Clone() Response {
	out := *l
	out.Descriptor = l.Descriptor.clone()
	return &out
}

// NewState reserves P and P_prev for every (component, copy) that needs P.
// The result must be passed to InitState before use.
func (l *Lorentzian) NewState(W *grid.Fields, gv grid.Volume) *State {
	num := 0
	for c := grid.Component(0); c < grid.NumComponents; c++ {
		for cmp := 0; cmp < 2; cmp++ {
			if l.NeedsP(c, cmp, W) {
				num += 2 * gv.Ntot()
			}
		}
	}
	return newState(num)
}

// InitState zeroes st and lays out its views. dt is unused by this response.
func (l *Lorentzian) InitState(W *grid.Fields, dt float64, gv grid.Volume, st *State) {
	clear(st.data)
	st.ntot = gv.Ntot()
	st.layout(func(c grid.Component, cmp int) bool { return l.NeedsP(c, cmp, W) })
}

// CopyState duplicates st into fresh storage with the same layout.
func (l *Lorentzian) CopyState(st *State) *State {
	if st == nil {
		return nil
	}
	out := &State{ntot: st.ntot, data: append([]float64(nil), st.data...)}
	out.layout(func(c grid.Component, cmp int) bool { return st.p[c][cmp] != nil })
	return out
}

func (l *Lorentzian) ReleaseState(st *State) {
	if st == nil {
		return
	}
	st.data = nil
	st.clearOffsets()
}

// offdiag averages an off-diagonal coupling over the four neighbouring
// points that surround the staggered location of the driving component.
func offdiag(sig, w []float64, i, sx, s int) float64 {
	return 0.25 * ((w[i]+w[i-sx])*sig[i] + (w[i+s]+w[i+s-sx])*sig[i+s])
}

// Update advances P by one step. Points where the principal coefficient is
// exactly zero are skipped when off-diagonal terms are present; the plain
// isotropic branch updates every owned point.
func (l *Lorentzian) Update(W, WPrev *grid.Fields, dt float64, gv grid.Volume, st *State) error {
	omega2pi := 2 * math.Pi * l.Omega0
	g2pi := 2 * math.Pi * l.Gamma
	omega0dtsqr := omega2pi * omega2pi * dt * dt
	gamma1inv := 1 / (1 + g2pi*dt/2)
	gamma1 := 1 - g2pi*dt/2
	omega0dtsqrDenom := omega0dtsqr
	if l.NoOmega0Denominator {
		omega0dtsqrDenom = 0
	}

	for c := grid.Component(0); c < grid.NumComponents; c++ {
		for cmp := 0; cmp < 2; cmp++ {
			p := st.p[c][cmp]
			if p == nil {
				continue
			}
			d := c.Direction()
			w, s := W[c][cmp], l.coeff(c, d)
			if w == nil || s == nil {
				continue
			}
			pp := st.pp[c][cmp]

			sign := 1
			if grid.IsMagnetic(c) {
				sign = -1
			}
			is := gv.Stride(d) * sign

			d1 := grid.CycleDirection(gv.Dim, d, 1)
			is1 := gv.Stride(d1) * sign
			w1 := W[grid.DirectionComponent(c, d1)][cmp]
			var s1 []float64
			if w1 != nil {
				s1 = l.coeff(c, d1)
			}

			d2 := grid.CycleDirection(gv.Dim, d, 2)
			is2 := gv.Stride(d2) * sign
			w2 := W[grid.DirectionComponent(c, d2)][cmp]
			var s2 []float64
			if w2 != nil {
				s2 = l.coeff(c, d2)
			}

			if s2 != nil && s1 == nil {
				is1, is2 = is2, is1
				w1, w2 = w2, w1
				s1, s2 = s2, s1
			}

			switch {
			case s1 != nil && s2 != nil:
				gv.LoopOwned(func(i int) {
					if s[i] != 0 {
						pcur := p[i]
						p[i] = gamma1inv * (pcur*(2-omega0dtsqrDenom) - gamma1*pp[i] +
							omega0dtsqr*(s[i]*w[i]+offdiag(s1, w1, i, is1, is)+offdiag(s2, w2, i, is2, is)))
						pp[i] = pcur
					}
				})
			case s1 != nil:
				gv.LoopOwned(func(i int) {
					if s[i] != 0 {
						pcur := p[i]
						p[i] = gamma1inv * (pcur*(2-omega0dtsqrDenom) - gamma1*pp[i] +
							omega0dtsqr*(s[i]*w[i]+offdiag(s1, w1, i, is1, is)))
						pp[i] = pcur
					}
				})
			default:
				gv.LoopOwned(func(i int) {
					pcur := p[i]
					p[i] = gamma1inv * (pcur*(2-omega0dtsqrDenom) - gamma1*pp[i] + omega0dtsqr*(s[i]*w[i]))
					pp[i] = pcur
				})
			}
		}
	}
	return nil
}

// SubtractP removes P from the field it polarizes (D for an electric
// response, B for a magnetic one) at every stored point.
func (l *Lorentzian) SubtractP(ft grid.FieldType, fMinusP *grid.Fields, st *State) {
	subtractP(ft, fMinusP, st)
}

func subtractP(ft grid.FieldType, fMinusP *grid.Fields, st *State) {
	ft2 := ft.Polarized()
	for d := grid.Direction(0); d < grid.NumDirections; d++ {
		ec, dc := ft.Component(d), ft2.Component(d)
		for cmp := 0; cmp < 2; cmp++ {
			p := st.p[ec][cmp]
			if p == nil {
				continue
			}
			fmp := fMinusP[dc][cmp]
			if fmp == nil {
				continue
			}
			grid.ParallelFor(st.ntot, subtractChunk, func(lo, hi int) {
				for i := lo; i < hi; i++ {
					fmp[i] -= p[i]
				}
			})
		}
	}
}

// NumNotOwnedNeeded is the number of P buffers of c that neighbouring chunks
// read: one when P[c] exists, otherwise none.
func (l *Lorentzian) NumNotOwnedNeeded(c grid.Component, st *State) int {
	if st.p[c][0] != nil {
		return 1
	}
	return 0
}

// NotOwnedPtr exposes P[c][cmp] from point n onwards for halo exchange.
// inotowned is always 0 for this response.
func (l *Lorentzian) NotOwnedPtr(inotowned int, c grid.Component, cmp, n int, st *State) []float64 {
	if st == nil || st.p[c][cmp] == nil {
		return nil
	}
	return st.p[c][cmp][n:]
}

// Unstable reports whether the recurrence has a pole outside the unit circle
// at step dt. It is advisory: Update never consults it.
func (l *Lorentzian) Unstable(dt float64) bool {
	return LorentzianUnstable(l.Omega0, l.Gamma, dt)
}

func (l *Lorentzian) DumpParams(w ParamWriter, start *int) error {
	return writeRecord(w, start, []float64{
		float64(KindLorentzian), float64(l.ID()), l.Omega0, l.Gamma, boolFloat(l.NoOmega0Denominator),
	})
}
