package metrics

import (
	"math"

	"github.com/san-kum/dispsim/internal/sim"
)

// sampleEnergy is the discrete oscillator energy proxy P² + (P - P_prev)².
func sampleEnergy(s sim.Sample) float64 {
	d := s.P - s.PPrev
	return s.P*s.P + d*d
}

// Energy is the mean polarization energy over a run.
type Energy struct {
	name        string
	samples     int
	totalEnergy float64
}

func NewEnergy() *Energy {
	return &Energy{name: "polarization_energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(s sim.Sample) {
	e.totalEnergy += sampleEnergy(s)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyGrowth compares the energy in the last part of a run with the
// largest energy seen in the first part. Bounded responses stay near or
// below 1; an unstable recurrence grows without limit.
type EnergyGrowth struct {
	name     string
	window   int
	samples  int
	early    float64
	late     float64
	lateSeen int
}

// NewEnergyGrowth uses the first window samples as the reference.
func NewEnergyGrowth(window int) *EnergyGrowth {
	if window < 1 {
		window = 1
	}
	return &EnergyGrowth{name: "energy_growth", window: window}
}

func (e *EnergyGrowth) Name() string { return e.name }

func (e *EnergyGrowth) Observe(s sim.Sample) {
	en := sampleEnergy(s)
	if e.samples < e.window {
		e.early = math.Max(e.early, en)
	} else {
		e.late = math.Max(e.late, en)
		e.lateSeen++
	}
	e.samples++
}

func (e *EnergyGrowth) Value() float64 {
	if e.lateSeen == 0 || e.early == 0 {
		return 0
	}
	return e.late / e.early
}

func (e *EnergyGrowth) Reset() {
	e.samples = 0
	e.early = 0
	e.late = 0
	e.lateSeen = 0
}

// Peak is the largest |P| seen.
type Peak struct {
	name string
	peak float64
}

func NewPeak() *Peak {
	return &Peak{name: "peak_polarization"}
}

func (p *Peak) Name() string { return p.name }

func (p *Peak) Observe(s sim.Sample) {
	p.peak = math.Max(p.peak, math.Abs(s.P))
}

func (p *Peak) Value() float64 { return p.peak }

func (p *Peak) Reset() { p.peak = 0 }
