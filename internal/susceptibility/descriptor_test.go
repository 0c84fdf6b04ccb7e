package susceptibility

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/dispsim/internal/grid"
)

var _ = Describe("Descriptor", func() {
	var (
		gv grid.Volume
		l  *Lorentzian
	)

	BeforeEach(func() {
		gv = mustVolume(grid.NewVolume3D(3, 3, 3))
		l = NewLorentzian(1, 0.1, false)
	})

	It("assigns increasing ids", func() {
		other := NewLorentzian(1, 0.1, false)
		Expect(other.ID()).To(BeNumerically(">", l.ID()))
	})

	Describe("id counter", Ordered, func() {
		var before int

		It("restarts at zero after a reset", func() {
			before = NewLorentzian(1, 0, false).ID()
			resetIDs()
			Expect(NewLorentzian(1, 0, false).ID()).To(Equal(0))
		})

		It("keeps counting past earlier ids once that test ends", func() {
			Expect(NewLorentzian(1, 0, false).ID()).To(BeNumerically(">", before))
		})
	})

	It("rejects coefficients on non-polarizable components", func() {
		err := l.SetSigma(grid.Dx, grid.X, uniform(gv, 1))
		Expect(err).To(MatchError(ErrNotPolarizable))
	})

	It("rejects coefficient arrays of the wrong length", func() {
		Expect(l.SetSigma(grid.Ex, grid.X, uniform(gv, 1))).To(Succeed())
		Expect(l.SetSigma(grid.Ey, grid.Y, []float64{1, 2})).To(MatchError(ErrSigmaLength))
		Expect(l.Ntot()).To(Equal(gv.Ntot()))
	})

	It("tracks trivial coefficients", func() {
		Expect(l.Trivial(grid.Ex, grid.X)).To(BeTrue())
		Expect(l.SetSigma(grid.Ex, grid.X, uniform(gv, 0))).To(Succeed())
		Expect(l.Trivial(grid.Ex, grid.X)).To(BeTrue())
		s := uniform(gv, 0)
		s[5] = 1e-3
		Expect(l.SetSigma(grid.Ex, grid.X, s)).To(Succeed())
		Expect(l.Trivial(grid.Ex, grid.X)).To(BeFalse())
	})

	Describe("NeedsP", func() {
		It("is false for components that are neither electric nor magnetic", func() {
			W := grid.NewFields(gv, grid.Ex, grid.Dx, grid.Bz)
			Expect(l.SetSigma(grid.Ex, grid.X, uniform(gv, 1))).To(Succeed())
			Expect(l.NeedsP(grid.Dx, 0, W)).To(BeFalse())
			Expect(l.NeedsP(grid.Bz, 0, W)).To(BeFalse())
			Expect(l.NeedsP(grid.Ex, 0, W)).To(BeTrue())
		})

		It("requires the driving field to exist", func() {
			Expect(l.SetSigma(grid.Ex, grid.X, uniform(gv, 1))).To(Succeed())
			Expect(l.NeedsP(grid.Ex, 0, grid.NewFields(gv, grid.Ey))).To(BeFalse())
			Expect(l.NeedsP(grid.Ex, 1, grid.NewFields(gv, grid.Ex))).To(BeFalse())
		})

		It("is true when only an off-diagonal coupling is driven", func() {
			Expect(l.SetSigma(grid.Ex, grid.Y, uniform(gv, 0.5))).To(Succeed())
			Expect(l.NeedsP(grid.Ex, 0, grid.NewFields(gv, grid.Ey))).To(BeTrue())
		})

		It("ignores zero-filled coefficients", func() {
			Expect(l.SetSigma(grid.Ex, grid.X, uniform(gv, 0))).To(Succeed())
			Expect(l.NeedsP(grid.Ex, 0, grid.NewFields(gv, grid.Ex))).To(BeFalse())
		})
	})

	Describe("NeedsWNotOwned", func() {
		var W *grid.Fields

		BeforeEach(func() {
			W = grid.NewFields(gv, grid.Ex, grid.Ey, grid.Ez)
			Expect(l.SetSigma(grid.Ex, grid.X, uniform(gv, 1))).To(Succeed())
			Expect(l.SetSigma(grid.Ey, grid.Y, uniform(gv, 1))).To(Succeed())
		})

		It("is false for a diagonal profile", func() {
			Expect(l.NeedsWNotOwned(grid.Ex, W)).To(BeFalse())
			Expect(l.NeedsWNotOwned(grid.Ey, W)).To(BeFalse())
		})

		It("is true when another component couples back from the principal direction", func() {
			Expect(l.SetSigma(grid.Ey, grid.X, uniform(gv, 0.2))).To(Succeed())
			Expect(l.NeedsWNotOwned(grid.Ex, W)).To(BeTrue())
			Expect(l.NeedsWNotOwned(grid.Ey, W)).To(BeFalse())
		})
	})

	Describe("Clone", func() {
		It("deep-copies coefficients and keeps the id", func() {
			Expect(l.SetSigma(grid.Ex, grid.X, uniform(gv, 1))).To(Succeed())
			c := l.Clone().(*Lorentzian)

			Expect(c.ID()).To(Equal(l.ID()))
			Expect(c.Ntot()).To(Equal(l.Ntot()))
			Expect(c.Omega0).To(Equal(l.Omega0))
			Expect(c.Sigma(grid.Ey, grid.Y)).To(BeNil())
			Expect(c.Trivial(grid.Ex, grid.X)).To(BeFalse())

			l.Sigma(grid.Ex, grid.X)[4] = 99
			Expect(c.Sigma(grid.Ex, grid.X)[4]).To(Equal(1.0))
		})

		It("keeps the concrete type of each response", func() {
			Expect(NewNoisyLorentzian(0.1, 1, 0.1, false, nil).Clone()).To(BeAssignableToTypeOf(&NoisyLorentzian{}))
			Expect(NewGyrotropic([3]float64{0, 0, 1}, 0.1, 1, 0.1).Clone()).To(BeAssignableToTypeOf(&Gyrotropic{}))
		})
	})
})
