package susceptibility

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/dispsim/internal/grid"
)

var _ = Describe("Lorentzian", func() {
	const dt = 0.05

	var (
		gv grid.Volume
		W  *grid.Fields
		l  *Lorentzian
	)

	BeforeEach(func() {
		gv = mustVolume(grid.NewVolume3D(4, 3, 2))
		W = grid.NewFields(gv, grid.Ex, grid.Ey, grid.Ez)
		l = NewLorentzian(0.5, 0.1, false)
	})

	coefficients := func() (float64, float64, float64) {
		w := 2 * math.Pi * l.Omega0
		g := 2 * math.Pi * l.Gamma
		return w * w * dt * dt, 1 / (1 + g*dt/2), 1 - g*dt/2
	}

	newState := func() *State {
		st := l.NewState(W, gv)
		l.InitState(W, dt, gv, st)
		return st
	}

	Describe("state lifecycle", func() {
		It("sizes the allocation to the needed components", func() {
			Expect(l.SetSigma(grid.Ex, grid.X, uniform(gv, 1))).To(Succeed())
			Expect(l.SetSigma(grid.Ez, grid.Z, uniform(gv, 1))).To(Succeed())
			st := newState()

			Expect(st.Len()).To(Equal(4 * gv.Ntot()))
			Expect(st.Ntot()).To(Equal(gv.Ntot()))
			Expect(st.P(grid.Ey, 0)).To(BeNil())
			Expect(st.P(grid.Ex, 1)).To(BeNil())
			Expect(st.P(grid.Ex, 0)).To(HaveLen(gv.Ntot()))
			Expect(st.PPrev(grid.Ez, 0)).To(HaveLen(gv.Ntot()))
		})

		It("lays out blocks component major", func() {
			Expect(l.SetSigma(grid.Ez, grid.Z, uniform(gv, 1))).To(Succeed())
			Expect(l.SetSigma(grid.Ex, grid.X, uniform(gv, 1))).To(Succeed())
			st := newState()

			off, ok := st.Offset(grid.Ex, 0)
			Expect(ok).To(BeTrue())
			Expect(off).To(Equal(0))
			off, ok = st.Offset(grid.Ez, 0)
			Expect(ok).To(BeTrue())
			Expect(off).To(Equal(2 * gv.Ntot()))
			_, ok = st.Offset(grid.Ey, 0)
			Expect(ok).To(BeFalse())
		})

		It("copies into independent storage", func() {
			Expect(l.SetSigma(grid.Ex, grid.X, uniform(gv, 1))).To(Succeed())
			W.Fill(grid.Ex, 1)
			st := newState()
			Expect(l.Update(W, W, dt, gv, st)).To(Succeed())

			cp := l.CopyState(st)
			Expect(cp.Len()).To(Equal(st.Len()))
			Expect(cp.P(grid.Ex, 0)).To(Equal(st.P(grid.Ex, 0)))
			off, ok := cp.Offset(grid.Ex, 0)
			Expect(ok).To(BeTrue())
			Expect(off).To(Equal(0))

			before := append([]float64(nil), st.P(grid.Ex, 0)...)
			for i := range cp.P(grid.Ex, 0) {
				cp.P(grid.Ex, 0)[i] = -7
			}
			Expect(st.P(grid.Ex, 0)).To(Equal(before))
			Expect(l.CopyState(nil)).To(BeNil())
		})

		It("releases the allocation", func() {
			Expect(l.SetSigma(grid.Ex, grid.X, uniform(gv, 1))).To(Succeed())
			st := newState()
			l.ReleaseState(st)
			Expect(st.Released()).To(BeTrue())
			Expect(st.P(grid.Ex, 0)).To(BeNil())
		})

		It("round-trips through a binary snapshot", func() {
			Expect(l.SetSigma(grid.Ex, grid.X, uniform(gv, 1))).To(Succeed())
			Expect(l.SetSigma(grid.Ey, grid.Y, uniform(gv, 2))).To(Succeed())
			W.Fill(grid.Ex, 1)
			W.Fill(grid.Ey, -1)
			st := newState()
			Expect(l.Update(W, W, dt, gv, st)).To(Succeed())

			buf, err := st.MarshalBinary()
			Expect(err).NotTo(HaveOccurred())
			var restored State
			Expect(restored.UnmarshalBinary(buf)).To(Succeed())
			Expect(restored.P(grid.Ey, 0)).To(Equal(st.P(grid.Ey, 0)))
			off, ok := restored.Offset(grid.Ey, 0)
			Expect(ok).To(BeTrue())
			Expect(off).To(Equal(2 * gv.Ntot()))

			Expect(restored.UnmarshalBinary(buf[:10])).To(MatchError(ErrBadSnapshot))
		})
	})

	Describe("Update", func() {
		It("keeps a zero state at zero without drive", func() {
			Expect(l.SetSigma(grid.Ex, grid.X, uniform(gv, 1))).To(Succeed())
			Expect(l.SetSigma(grid.Ex, grid.Y, uniform(gv, 0.3))).To(Succeed())
			st := newState()
			for n := 0; n < 200; n++ {
				Expect(l.Update(W, W, dt, gv, st)).To(Succeed())
			}
			Expect(st.P(grid.Ex, 0)).To(HaveEach(0.0))
			Expect(st.PPrev(grid.Ex, 0)).To(HaveEach(0.0))
		})

		It("matches the isotropic recurrence after one step", func() {
			Expect(l.SetSigma(grid.Ex, grid.X, uniform(gv, 0.5))).To(Succeed())
			W.Fill(grid.Ex, 2)
			st := newState()
			Expect(l.Update(W, W, dt, gv, st)).To(Succeed())

			w2, ginv, _ := coefficients()
			for _, v := range ownedValues(gv, st.P(grid.Ex, 0)) {
				Expect(v).To(BeNumerically("~", ginv*w2*1.0, 1e-15))
			}
			Expect(ghostValues(gv, st.P(grid.Ex, 0))).To(HaveEach(0.0))
			Expect(st.PPrev(grid.Ex, 0)).To(HaveEach(0.0))
		})

		It("follows the second-order recurrence over several steps", func() {
			Expect(l.SetSigma(grid.Ex, grid.X, uniform(gv, 1))).To(Succeed())
			W.Fill(grid.Ex, 1)
			st := newState()

			w2, ginv, g1 := coefficients()
			p, pp := 0.0, 0.0
			for n := 0; n < 20; n++ {
				Expect(l.Update(W, W, dt, gv, st)).To(Succeed())
				p, pp = ginv*(p*(2-w2)-g1*pp+w2*1), p
			}
			i := gv.Center()
			Expect(st.P(grid.Ex, 0)[i]).To(BeNumerically("~", p, 1e-12))
			Expect(st.PPrev(grid.Ex, 0)[i]).To(BeNumerically("~", pp, 1e-12))
		})

		It("adds both off-diagonal couplings in the anisotropic branch", func() {
			Expect(l.SetSigma(grid.Ex, grid.X, uniform(gv, 1))).To(Succeed())
			Expect(l.SetSigma(grid.Ex, grid.Y, uniform(gv, 0.25))).To(Succeed())
			Expect(l.SetSigma(grid.Ex, grid.Z, uniform(gv, 0.5))).To(Succeed())
			W.Fill(grid.Ex, 1)
			W.Fill(grid.Ey, 0.5)
			W.Fill(grid.Ez, 2)
			st := newState()
			Expect(l.Update(W, W, dt, gv, st)).To(Succeed())

			w2, ginv, _ := coefficients()
			want := ginv * w2 * (1*1 + 0.25*0.5 + 0.5*2)
			for _, v := range ownedValues(gv, st.P(grid.Ex, 0)) {
				Expect(v).To(BeNumerically("~", want, 1e-12))
			}
		})

		It("uses the single off-diagonal branch when only the second companion couples", func() {
			Expect(l.SetSigma(grid.Ex, grid.X, uniform(gv, 1))).To(Succeed())
			Expect(l.SetSigma(grid.Ex, grid.Z, uniform(gv, 0.5))).To(Succeed())
			W.Fill(grid.Ex, 1)
			W.Fill(grid.Ey, 100)
			W.Fill(grid.Ez, 2)
			st := newState()
			Expect(l.Update(W, W, dt, gv, st)).To(Succeed())

			w2, ginv, _ := coefficients()
			Expect(st.P(grid.Ex, 0)[gv.Center()]).To(BeNumerically("~", ginv*w2*2, 1e-12))
		})

		It("averages off-diagonal terms over the staggered stencil", func() {
			Expect(l.SetSigma(grid.Ex, grid.X, uniform(gv, 1))).To(Succeed())
			Expect(l.SetSigma(grid.Ex, grid.Y, uniform(gv, 1))).To(Succeed())
			for i := range W[grid.Ey][0] {
				W[grid.Ey][0][i] = float64(i)
			}
			st := newState()
			Expect(l.Update(W, W, dt, gv, st)).To(Succeed())

			i := gv.Center()
			sx, sy := gv.Stride(grid.X), gv.Stride(grid.Y)
			avg := 0.25 * (float64(i) + float64(i-sy) + float64(i+sx) + float64(i+sx-sy))
			w2, ginv, _ := coefficients()
			Expect(st.P(grid.Ex, 0)[i]).To(BeNumerically("~", ginv*w2*avg, 1e-12))
		})

		It("leaves points with a zero principal coefficient untouched", func() {
			s := uniform(gv, 1)
			var zeros, live []int
			gv.LoopOwned(func(i int) {
				if i%2 == 0 {
					s[i] = 0
					zeros = append(zeros, i)
				} else {
					live = append(live, i)
				}
			})
			Expect(zeros).NotTo(BeEmpty())
			Expect(l.SetSigma(grid.Ex, grid.X, s)).To(Succeed())
			Expect(l.SetSigma(grid.Ex, grid.Y, uniform(gv, 0.5))).To(Succeed())
			W.Fill(grid.Ex, 1)
			W.Fill(grid.Ey, 1)
			st := newState()

			for n := 0; n < 25; n++ {
				Expect(l.Update(W, W, dt, gv, st)).To(Succeed())
				for _, i := range zeros {
					Expect(st.P(grid.Ex, 0)[i]).To(Equal(0.0))
					Expect(st.PPrev(grid.Ex, 0)[i]).To(Equal(0.0))
				}
			}
			Expect(live).NotTo(BeEmpty())
			Expect(st.P(grid.Ex, 0)[live[0]]).NotTo(Equal(0.0))
		})

		It("handles magnetic components with reversed strides", func() {
			W = grid.NewFields(gv, grid.Hx, grid.Hy, grid.Hz)
			Expect(l.SetSigma(grid.Hy, grid.Y, uniform(gv, 1))).To(Succeed())
			Expect(l.SetSigma(grid.Hy, grid.Z, uniform(gv, 0.5))).To(Succeed())
			W.Fill(grid.Hy, 1)
			W.Fill(grid.Hz, 1)
			st := newState()
			Expect(l.Update(W, W, dt, gv, st)).To(Succeed())

			w2, ginv, _ := coefficients()
			Expect(st.P(grid.Hy, 0)[gv.Center()]).To(BeNumerically("~", ginv*w2*1.5, 1e-12))
		})

		It("drifts without a restoring force when the DC term is dropped", func() {
			l = NewLorentzian(0.5, 0.1, true)
			Expect(l.SetSigma(grid.Ex, grid.X, uniform(gv, 1))).To(Succeed())
			W.Fill(grid.Ex, 1)
			st := newState()

			prev := 0.0
			for n := 0; n < 100; n++ {
				Expect(l.Update(W, W, dt, gv, st)).To(Succeed())
				cur := st.P(grid.Ex, 0)[gv.Center()]
				Expect(cur).To(BeNumerically(">", prev))
				prev = cur
			}
		})

		It("accepts a different dt on every call", func() {
			Expect(l.SetSigma(grid.Ex, grid.X, uniform(gv, 1))).To(Succeed())
			W.Fill(grid.Ex, 1)
			st := newState()
			Expect(l.Update(W, W, 0.01, gv, st)).To(Succeed())
			first := st.P(grid.Ex, 0)[gv.Center()]
			Expect(l.Update(W, W, 0.02, gv, st)).To(Succeed())
			Expect(st.P(grid.Ex, 0)[gv.Center()]).NotTo(Equal(first))
		})
	})

	Describe("stability", func() {
		run := func(omega0, step float64, steps int) float64 {
			gv1 := mustVolume(grid.NewVolume1D(3))
			W1 := grid.NewFields(gv1, grid.Ex)
			W1.Fill(grid.Ex, 1)
			lz := NewLorentzian(omega0, 0, false)
			Expect(lz.SetSigma(grid.Ex, grid.X, uniform(gv1, 1))).To(Succeed())
			st := lz.NewState(W1, gv1)
			lz.InitState(W1, step, gv1, st)

			peak := 0.0
			for n := 0; n < steps; n++ {
				Expect(lz.Update(W1, W1, step, gv1, st)).To(Succeed())
				i := gv1.Center()
				p, pp := st.P(grid.Ex, 0)[i], st.PPrev(grid.Ex, 0)[i]
				peak = math.Max(peak, p*p+(p-pp)*(p-pp))
			}
			return peak
		}

		It("stays bounded below the stability limit", func() {
			Expect(LorentzianUnstable(0.1, 0, 0.5)).To(BeFalse())
			Expect(run(0.1, 0.5, 2000)).To(BeNumerically("<", 10))
		})

		It("grows without bound above it, since the check is advisory", func() {
			Expect(LorentzianUnstable(1, 0, 0.5)).To(BeTrue())
			Expect(NewLorentzian(1, 0, false).Unstable(0.5)).To(BeTrue())
			Expect(run(1, 0.5, 50)).To(BeNumerically(">", 1e12))
		})

		It("reports the undamped step limit", func() {
			Expect(MaxStableDt(0.1)).To(BeNumerically("~", 1/(0.1*math.Pi), 1e-12))
			Expect(math.IsInf(MaxStableDt(0), 1)).To(BeTrue())
		})
	})

	Describe("SubtractP", func() {
		It("subtracts P from the displacement field only", func() {
			Expect(l.SetSigma(grid.Ex, grid.X, uniform(gv, 1))).To(Succeed())
			W.Fill(grid.Ex, 1)
			st := newState()
			Expect(l.Update(W, W, dt, gv, st)).To(Succeed())

			F := grid.NewFields(gv, grid.Dx, grid.Dy)
			F.Fill(grid.Dx, 1)
			F.Fill(grid.Dy, 1)
			l.SubtractP(grid.E, F, st)

			p := st.P(grid.Ex, 0)
			for i := range p {
				Expect(F[grid.Dx][0][i]).To(Equal(1 - p[i]))
			}
			Expect(F[grid.Dy][0]).To(HaveEach(1.0))
		})

		It("skips destinations that are not stored", func() {
			Expect(l.SetSigma(grid.Ez, grid.Z, uniform(gv, 1))).To(Succeed())
			W.Fill(grid.Ez, 1)
			st := newState()
			Expect(l.Update(W, W, dt, gv, st)).To(Succeed())
			F := grid.NewFields(gv, grid.Dx)
			Expect(func() { l.SubtractP(grid.E, F, st) }).NotTo(Panic())
		})

		It("subtracts a magnetic polarization from B", func() {
			W = grid.NewFields(gv, grid.Hz)
			Expect(l.SetSigma(grid.Hz, grid.Z, uniform(gv, 1))).To(Succeed())
			W.Fill(grid.Hz, 1)
			st := newState()
			Expect(l.Update(W, W, dt, gv, st)).To(Succeed())

			F := grid.NewFields(gv, grid.Bz)
			l.SubtractP(grid.H, F, st)
			Expect(F[grid.Bz][0][gv.Center()]).To(Equal(-st.P(grid.Hz, 0)[gv.Center()]))
		})
	})

	Describe("halo sharing", func() {
		It("exposes one buffer per polarized component", func() {
			Expect(l.SetSigma(grid.Ex, grid.X, uniform(gv, 1))).To(Succeed())
			W.Fill(grid.Ex, 1)
			st := newState()
			Expect(l.Update(W, W, dt, gv, st)).To(Succeed())

			Expect(l.NumNotOwnedNeeded(grid.Ex, st)).To(Equal(1))
			Expect(l.NumNotOwnedNeeded(grid.Ey, st)).To(Equal(0))

			i := gv.Center()
			ptr := l.NotOwnedPtr(0, grid.Ex, 0, i, st)
			Expect(ptr).To(HaveLen(gv.Ntot() - i))
			Expect(ptr[0]).To(Equal(st.P(grid.Ex, 0)[i]))
			Expect(l.NotOwnedPtr(0, grid.Ey, 0, i, st)).To(BeNil())
			Expect(l.NotOwnedPtr(0, grid.Ex, 0, i, nil)).To(BeNil())
		})
	})

	Describe("Clone", func() {
		It("steps identically to its source without sharing storage", func() {
			s := uniform(gv, 1)
			for i := range s {
				s[i] += 0.01 * float64(i%5)
			}
			Expect(l.SetSigma(grid.Ex, grid.X, s)).To(Succeed())
			Expect(l.SetSigma(grid.Ex, grid.Y, uniform(gv, 0.2))).To(Succeed())
			Expect(l.SetSigma(grid.Ey, grid.Y, uniform(gv, 1.5))).To(Succeed())
			c := l.Clone()

			st := newState()
			cst := c.NewState(W, gv)
			c.InitState(W, dt, gv, cst)

			for n := 0; n < 50; n++ {
				W.Fill(grid.Ex, math.Sin(0.3*float64(n)))
				W.Fill(grid.Ey, math.Cos(0.2*float64(n)))
				Expect(l.Update(W, W, dt, gv, st)).To(Succeed())
				Expect(c.Update(W, W, dt, gv, cst)).To(Succeed())
				Expect(cst.P(grid.Ex, 0)).To(Equal(st.P(grid.Ex, 0)))
				Expect(cst.P(grid.Ey, 0)).To(Equal(st.P(grid.Ey, 0)))
			}
		})
	})

	Describe("DumpParams", func() {
		It("writes the tagged record and advances the cursor", func() {
			resetIDs()
			lz := NewLorentzian(1.0, 0.1, false)
			w := &memWriter{}
			start := 0
			Expect(lz.DumpParams(w, &start)).To(Succeed())
			Expect(w.data).To(Equal([]float64{4, 0, 1.0, 0.1, 0}))
			Expect(start).To(Equal(5))
		})
	})
})
