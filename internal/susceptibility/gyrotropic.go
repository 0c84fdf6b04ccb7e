package susceptibility

import (
	"fmt"
	"math"

	"github.com/san-kum/dispsim/internal/grid"
)

// Gyrotropic is a Lorentzian whose polarization components precess about a
// bias direction. The coupling enters through the antisymmetric tensor gyro,
// gyro[i][j] = ε_ijk b_k for the unit bias b.
type Gyrotropic struct {
	Lorentzian
	Alpha float64
	gyro  [3][3]float64
}

var _ Response = (*Gyrotropic)(nil)

func NewGyrotropic(bias [3]float64, alpha, omega0, gamma float64) *Gyrotropic {
	g := &Gyrotropic{
		Lorentzian: *NewLorentzian(omega0, gamma, false),
		Alpha:      alpha,
	}
	norm := math.Max(math.Sqrt(bias[0]*bias[0]+bias[1]*bias[1]+bias[2]*bias[2]), 1e-10)
	bx, by, bz := bias[0]/norm, bias[1]/norm, bias[2]/norm
	g.gyro[grid.X][grid.Y], g.gyro[grid.Y][grid.X] = bz, -bz
	g.gyro[grid.Y][grid.Z], g.gyro[grid.Z][grid.Y] = bx, -bx
	g.gyro[grid.Z][grid.X], g.gyro[grid.X][grid.Z] = by, -by
	return g
}

func (g *Gyrotropic) Kind() Kind { return KindGyrotropic }

// Bias is the unit bias vector recovered from the tensor.
func (g *Gyrotropic) Bias() [3]float64 {
	return [3]float64{g.gyro[grid.Y][grid.Z], g.gyro[grid.Z][grid.X], g.gyro[grid.X][grid.Y]}
}

func (g *Gyrotropic) Tensor() [3][3]float64 { return g.gyro }

func (g *Gyrotropic) Clone() Response {
	out := *g
	out.Descriptor = g.Descriptor.clone()
	return &out
}

// skewInverse inverts ub·I + G in closed form, where G is antisymmetric with
// G[x][y] = gz, G[y][z] = gx and G[z][x] = gy.
func skewInverse(ub, gx, gy, gz float64) [3][3]float64 {
	invdet := 1.0 / ub / (ub*ub + gx*gx + gy*gy + gz*gz)
	var inv [3][3]float64
	inv[grid.X][grid.X] = invdet * (ub*ub + gx*gx)
	inv[grid.Y][grid.Y] = invdet * (ub*ub + gy*gy)
	inv[grid.Z][grid.Z] = invdet * (ub*ub + gz*gz)
	inv[grid.X][grid.Y] = invdet * (gx*gy - ub*gz)
	inv[grid.Y][grid.X] = invdet * (gy*gx + ub*gz)
	inv[grid.Z][grid.X] = invdet * (gz*gx - ub*gy)
	inv[grid.X][grid.Z] = invdet * (gx*gz + ub*gy)
	inv[grid.Y][grid.Z] = invdet * (gy*gz - ub*gx)
	inv[grid.Z][grid.Y] = invdet * (gz*gy + ub*gx)
	return inv
}

// Inverse returns the 3×3 matrix applied in the second pass at step dt.
func (g *Gyrotropic) Inverse(dt float64) [3][3]float64 {
	ub := 1 + math.Pi*g.Gamma*dt
	vb := 2*math.Pi*g.Alpha + math.Pi*g.Omega0*dt
	return skewInverse(ub, vb*g.gyro[grid.Y][grid.Z], vb*g.gyro[grid.Z][grid.X], vb*g.gyro[grid.X][grid.Y])
}

// checkCartesian fails if any component the update would touch lies on a
// cylindrical grid or along a non-Cartesian axis. It runs before the first
// pass so a refused update leaves st unchanged.
func (g *Gyrotropic) checkCartesian(W *grid.Fields, gv grid.Volume, st *State) error {
	for c := grid.Component(0); c < grid.NumComponents; c++ {
		for cmp := 0; cmp < 2; cmp++ {
			if st.p[c][cmp] == nil || W[c][cmp] == nil {
				continue
			}
			if gv.Dim == grid.Dcyl || !c.Direction().Cartesian() {
				return fmt.Errorf("%w: component %s", ErrCylindrical, c)
			}
		}
	}
	return nil
}

// Update runs two full passes. The first stores the forcing vector in P_prev
// for every component; the second reads all of them to solve the coupled
// system, so the passes cannot be fused.
func (g *Gyrotropic) Update(W, WPrev *grid.Fields, dt float64, gv grid.Volume, st *State) error {
	g2pi := 2 * math.Pi * g.Gamma
	omega2pi := 2 * math.Pi * g.Omega0
	alpha2pi := 2 * math.Pi * g.Alpha
	ua := 1 - 0.5*g2pi*dt
	va := alpha2pi - 0.5*omega2pi*dt

	if err := g.checkCartesian(W, gv, st); err != nil {
		return err
	}

	for c := grid.Component(0); c < grid.NumComponents; c++ {
		for cmp := 0; cmp < 2; cmp++ {
			if st.p[c][cmp] == nil || W[c][cmp] == nil {
				continue
			}
			d0 := c.Direction()
			p, pp := st.p[c][cmp], st.pp[c][cmp]

			d1 := grid.CycleDirection(gv.Dim, d0, 1)
			d2 := grid.CycleDirection(gv.Dim, d0, 2)
			c1 := grid.DirectionComponent(c, d1)
			c2 := grid.DirectionComponent(c, d2)

			w1, w2 := W[c1][cmp], W[c2][cmp]
			var s1, s2 []float64
			if w1 != nil {
				s1 = g.sigma[c1][d1]
			}
			if w2 != nil {
				s2 = g.sigma[c2][d2]
			}
			p1, p2 := st.p[c1][cmp], st.p[c2][cmp]

			vab1 := va * g.gyro[d0][d1]
			vab2 := va * g.gyro[d0][d2]
			ndt1 := 2 * math.Pi * dt * g.gyro[d0][d1]
			ndt2 := 2 * math.Pi * dt * g.gyro[d0][d2]

			gv.LoopOwned(func(i int) {
				v := ua * p[i]
				if p1 != nil {
					v += vab1 * p1[i]
				}
				if p2 != nil {
					v += vab2 * p2[i]
				}
				if s1 != nil {
					v += ndt1 * s1[i] * w1[i]
				}
				if s2 != nil {
					v += ndt2 * s2[i] * w2[i]
				}
				pp[i] = v
			})
		}
	}

	inv := g.Inverse(dt)

	for c := grid.Component(0); c < grid.NumComponents; c++ {
		for cmp := 0; cmp < 2; cmp++ {
			if st.p[c][cmp] == nil {
				continue
			}
			d0 := c.Direction()
			if W[c][cmp] == nil || g.sigma[c][d0] == nil {
				continue
			}
			p, pp := st.p[c][cmp], st.pp[c][cmp]
			d1 := grid.CycleDirection(gv.Dim, d0, 1)
			d2 := grid.CycleDirection(gv.Dim, d0, 2)
			c1 := grid.DirectionComponent(c, d1)
			c2 := grid.DirectionComponent(c, d2)
			var pp1, pp2 []float64
			if W[c1][cmp] != nil {
				pp1 = st.pp[c1][cmp]
			}
			if W[c2][cmp] != nil {
				pp2 = st.pp[c2][cmp]
			}

			gv.LoopOwned(func(i int) {
				v := inv[d0][d0] * pp[i]
				if pp1 != nil {
					v += inv[d0][d1] * pp1[i]
				}
				if pp2 != nil {
					v += inv[d0][d2] * pp2[i]
				}
				p[i] = v
			})
		}
	}
	return nil
}

func (g *Gyrotropic) DumpParams(w ParamWriter, start *int) error {
	b := g.Bias()
	return writeRecord(w, start, []float64{
		float64(KindGyrotropic), float64(g.ID()), b[0], b[1], b[2],
		g.Alpha, g.Omega0, g.Gamma, boolFloat(g.NoOmega0Denominator),
	})
}
