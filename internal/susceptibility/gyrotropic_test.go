package susceptibility

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/dispsim/internal/grid"
)

var _ = Describe("Gyrotropic", func() {
	const dt = 0.05

	var (
		gv grid.Volume
		W  *grid.Fields
	)

	BeforeEach(func() {
		gv = mustVolume(grid.NewVolume3D(3, 3, 3))
		W = grid.NewFields(gv, grid.Ex, grid.Ey, grid.Ez)
	})

	diagonal := func(g *Gyrotropic) {
		for _, c := range []grid.Component{grid.Ex, grid.Ey, grid.Ez} {
			Expect(g.SetSigma(c, c.Direction(), uniform(gv, 1))).To(Succeed())
		}
	}

	newState := func(g *Gyrotropic) *State {
		st := g.NewState(W, gv)
		g.InitState(W, dt, gv, st)
		return st
	}

	It("builds an antisymmetric tensor from the normalized bias", func() {
		g := NewGyrotropic([3]float64{0, 0, 2}, 0, 1, 0)
		t := g.Tensor()
		Expect(t[grid.X][grid.Y]).To(Equal(1.0))
		Expect(t[grid.Y][grid.X]).To(Equal(-1.0))
		Expect(t[grid.Y][grid.Z]).To(Equal(0.0))
		Expect(g.Bias()).To(Equal([3]float64{0, 0, 1}))

		g = NewGyrotropic([3]float64{1, 2, 2}, 0, 1, 0)
		b := g.Bias()
		Expect(b[0]).To(BeNumerically("~", 1.0/3, 1e-15))
		Expect(b[1]).To(BeNumerically("~", 2.0/3, 1e-15))
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				Expect(g.Tensor()[i][j]).To(Equal(-g.Tensor()[j][i]))
			}
		}
	})

	It("keeps a zero bias finite", func() {
		g := NewGyrotropic([3]float64{}, 0.2, 1, 0.1)
		Expect(g.Tensor()).To(Equal([3][3]float64{}))
		inv := g.Inverse(dt)
		ub := 1 + math.Pi*0.1*dt
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				want := 0.0
				if i == j {
					want = 1 / ub
				}
				Expect(inv[i][j]).To(BeNumerically("~", want, 1e-15))
			}
		}
	})

	It("inverts the implicit system", func() {
		g := NewGyrotropic([3]float64{1, -2, 0.5}, 0.3, 0.8, 0.2)
		inv := g.Inverse(dt)
		ub := 1 + math.Pi*0.2*dt
		vb := 2*math.Pi*0.3 + math.Pi*0.8*dt
		t := g.Tensor()
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				sum := 0.0
				for k := 0; k < 3; k++ {
					a := vb * t[k][j]
					if k == j {
						a += ub
					}
					sum += inv[i][k] * a
				}
				want := 0.0
				if i == j {
					want = 1
				}
				Expect(sum).To(BeNumerically("~", want, 1e-12))
			}
		}
	})

	It("decays each axis independently without a bias", func() {
		g := NewGyrotropic([3]float64{}, 0.2, 1, 0.1)
		diagonal(g)
		st := newState(g)
		for k, c := range []grid.Component{grid.Ex, grid.Ey, grid.Ez} {
			for i := range st.P(c, 0) {
				st.P(c, 0)[i] = float64(k + 1)
			}
		}
		Expect(g.Update(W, W, dt, gv, st)).To(Succeed())

		ratio := (1 - math.Pi*0.1*dt) / (1 + math.Pi*0.1*dt)
		i := gv.Center()
		Expect(st.P(grid.Ex, 0)[i]).To(BeNumerically("~", ratio, 1e-14))
		Expect(st.P(grid.Ey, 0)[i]).To(BeNumerically("~", 2*ratio, 1e-14))
		Expect(st.P(grid.Ez, 0)[i]).To(BeNumerically("~", 3*ratio, 1e-14))
	})

	It("rotates a transverse drive about the bias", func() {
		g := NewGyrotropic([3]float64{0, 0, 1}, 0.1, 1, 0.05)
		diagonal(g)
		W.Fill(grid.Ex, 1)
		st := newState(g)
		Expect(g.Update(W, W, dt, gv, st)).To(Succeed())

		i := gv.Center()
		Expect(st.P(grid.Ez, 0)[i]).To(Equal(0.0))
		Expect(st.P(grid.Ex, 0)[i]).NotTo(Equal(0.0))
		Expect(st.P(grid.Ey, 0)[i]).NotTo(Equal(0.0))
	})

	It("matches the two-pass solution for a general bias", func() {
		const (
			alpha, omega0, gamma = 0.3, 0.5, 0.1
		)
		g := NewGyrotropic([3]float64{1, 2, 2}, alpha, omega0, gamma)
		diagonal(g)
		comps := []grid.Component{grid.Ex, grid.Ey, grid.Ez}
		p0 := [3]float64{1, 2, 3}
		w := [3]float64{0.5, -1, 0.25}
		for k, c := range comps {
			W.Fill(c, w[k])
		}
		st := newState(g)
		for k, c := range comps {
			for i := range st.P(c, 0) {
				st.P(c, 0)[i] = p0[k]
			}
		}
		Expect(g.Update(W, W, dt, gv, st)).To(Succeed())

		t := g.Tensor()
		ua := 1 - math.Pi*gamma*dt
		va := 2*math.Pi*alpha - math.Pi*omega0*dt
		var f [3]float64
		for a := 0; a < 3; a++ {
			f[a] = ua * p0[a]
			for b := 0; b < 3; b++ {
				f[a] += va*t[a][b]*p0[b] + 2*math.Pi*dt*t[a][b]*w[b]
			}
		}
		inv := g.Inverse(dt)
		i := gv.Center()
		for a, c := range comps {
			want := 0.0
			for b := 0; b < 3; b++ {
				want += inv[a][b] * f[b]
			}
			Expect(st.P(c, 0)[i]).To(BeNumerically("~", want, 1e-12))
		}
	})

	It("refuses cylindrical volumes", func() {
		cyl := mustVolume(grid.NewVolumeCyl(3, 4))
		Wc := grid.NewFields(cyl, grid.Er, grid.Ep, grid.Ez)
		g := NewGyrotropic([3]float64{0, 0, 1}, 0, 1, 0)
		Expect(g.SetSigma(grid.Er, grid.R, uniform(cyl, 1))).To(Succeed())
		st := g.NewState(Wc, cyl)
		g.InitState(Wc, dt, cyl, st)
		Expect(g.Update(Wc, Wc, dt, cyl, st)).To(MatchError(ErrCylindrical))
	})

	It("leaves the state untouched when it refuses an update", func() {
		Wm := grid.NewFields(gv, grid.Ex, grid.Er)
		g := NewGyrotropic([3]float64{0, 0, 1}, 0.1, 1, 0.05)
		Expect(g.SetSigma(grid.Ex, grid.X, uniform(gv, 1))).To(Succeed())
		Expect(g.SetSigma(grid.Er, grid.R, uniform(gv, 1))).To(Succeed())
		st := g.NewState(Wm, gv)
		g.InitState(Wm, dt, gv, st)
		for i := range st.P(grid.Ex, 0) {
			st.P(grid.Ex, 0)[i] = 1
		}
		Wm.Fill(grid.Ex, 1)
		before := append([]float64(nil), st.PPrev(grid.Ex, 0)...)

		Expect(g.Update(Wm, Wm, dt, gv, st)).To(MatchError(ErrCylindrical))
		Expect(st.PPrev(grid.Ex, 0)).To(Equal(before))
		Expect(st.P(grid.Ex, 0)).To(Equal(uniform(gv, 1)))
	})

	It("shares the Lorentzian subtraction", func() {
		g := NewGyrotropic([3]float64{0, 0, 1}, 0.1, 1, 0.05)
		diagonal(g)
		W.Fill(grid.Ex, 1)
		st := newState(g)
		Expect(g.Update(W, W, dt, gv, st)).To(Succeed())
		F := grid.NewFields(gv, grid.Dx, grid.Dy, grid.Dz)
		g.SubtractP(grid.E, F, st)
		i := gv.Center()
		Expect(F[grid.Dy][0][i]).To(Equal(-st.P(grid.Ey, 0)[i]))
	})

	It("dumps a nine-value record", func() {
		resetIDs()
		g := NewGyrotropic([3]float64{0, 3, 0}, 0.4, 1.2, 0.01)
		w := &memWriter{}
		start := 0
		Expect(g.DumpParams(w, &start)).To(Succeed())
		Expect(w.data).To(Equal([]float64{8, 0, 0, 1, 0, 0.4, 1.2, 0.01, 0}))
		Expect(start).To(Equal(9))
	})
})
