package metrics

import (
	"math"

	"github.com/san-kum/dispsim/internal/sim"
)

// Stability is the fraction of samples whose polarization stays within
// threshold. NaN counts as a violation.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(x sim.Sample) {
	s.samples++
	if !(math.Abs(x.P) <= s.threshold) {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// Default is the metric set the CLI attaches to every run.
func Default() []sim.Metric {
	return []sim.Metric{
		NewEnergy(),
		NewEnergyGrowth(100),
		NewPeak(),
		NewStability(1e6),
		NewDriveEffort(),
	}
}
