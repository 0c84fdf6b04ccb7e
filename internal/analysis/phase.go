package analysis

import "github.com/san-kum/dispsim/internal/sim"

type PhasePoint struct{ X, Y float64 }

// PhasePortrait maps probe samples to (P, dP/dt) with a backward
// difference.
func PhasePortrait(samples []sim.Sample, dt float64) []PhasePoint {
	pts := make([]PhasePoint, 0, len(samples))
	for _, s := range samples {
		pts = append(pts, PhasePoint{X: s.P, Y: (s.P - s.PPrev) / dt})
	}
	return pts
}
