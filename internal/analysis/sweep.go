package analysis

import (
	"context"
	"io"
	"log/slog"
	"math"

	"github.com/san-kum/dispsim/internal/grid"
	"github.com/san-kum/dispsim/internal/sim"
	"github.com/san-kum/dispsim/internal/susceptibility"
)

// SweepPoint compares the advisory predicate with what a single-point
// Lorentzian actually does at one step size.
type SweepPoint struct {
	Dt        float64
	Predicted bool
	Rate      float64
	Peak      float64
	Diverged  bool
}

// StabilitySweep steps a one-point Lorentzian under a unit step drive for
// each dt, from dtMin to dtMax inclusive.
func StabilitySweep(ctx context.Context, omega0, gamma, dtMin, dtMax float64, points, steps int) ([]SweepPoint, error) {
	if points < 2 {
		points = 2
	}
	gv, err := grid.NewVolume1D(1)
	if err != nil {
		return nil, err
	}
	sigma := make([]float64, gv.Ntot())
	for i := range sigma {
		sigma[i] = 1
	}
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	out := make([]SweepPoint, 0, points)
	for i := 0; i < points; i++ {
		dt := dtMin + float64(i)*(dtMax-dtMin)/float64(points-1)

		l := susceptibility.NewLorentzian(omega0, gamma, false)
		if err := l.SetSigma(grid.Ex, grid.X, sigma); err != nil {
			return nil, err
		}
		c := sim.NewChunk(gv, grid.E, grid.X, grid.X, susceptibility.Material{l}, dt)
		s := sim.New(sim.Step(1))
		s.SetLogger(quiet)

		res, err := s.Run(ctx, c, sim.Config{Dt: dt, Steps: steps})
		if err != nil {
			return out, err
		}
		p := res.Polarization()
		pt := SweepPoint{
			Dt:        dt,
			Predicted: susceptibility.LorentzianUnstable(omega0, gamma, dt),
			Rate:      GrowthRate(deviation(p, 1), dt, max(steps/20, 1)),
		}
		for _, v := range p {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				pt.Diverged = true
				continue
			}
			pt.Peak = math.Max(pt.Peak, math.Abs(v))
		}
		pt.Diverged = pt.Diverged || pt.Peak > 1e6
		out = append(out, pt)
	}
	return out, nil
}

func deviation(series []float64, ref float64) []float64 {
	out := make([]float64, len(series))
	for i, v := range series {
		out[i] = v - ref
	}
	return out
}
