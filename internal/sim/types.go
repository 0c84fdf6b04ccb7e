package sim

import (
	"math"

	"github.com/san-kum/dispsim/internal/susceptibility"
)

// Sample is what the probe sees after one step.
type Sample struct {
	T     float64
	W     float64
	P     float64
	PPrev float64
	// Corrected is the polarized field (D or B) minus P at the probe.
	Corrected float64
}

func (s Sample) IsValid() bool {
	for _, v := range [...]float64{s.W, s.P, s.PPrev, s.Corrected} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(step int, s Sample)
}

type Config struct {
	Dt    float64
	Steps int
	Seed  int64
	// ValidateState stops the run with ErrDiverged on NaN or Inf.
	ValidateState bool
	// Params, when set, receives every term's parameter record before the
	// first step.
	Params susceptibility.ParamWriter
	// StartStep numbers the first step, so a run resumed from a snapshot
	// keeps its drive time and observer step numbers.
	StartStep int
}

type Result struct {
	Samples    []Sample
	Metrics    map[string]float64
	Advisories []string
	StepsTaken int
}

// Series extracts one probe quantity.
func (r *Result) Series(f func(Sample) float64) []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = f(s)
	}
	return out
}

func (r *Result) Polarization() []float64 { return r.Series(func(s Sample) float64 { return s.P }) }

func (r *Result) Times() []float64 { return r.Series(func(s Sample) float64 { return s.T }) }
