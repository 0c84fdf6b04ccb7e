package sim

import (
	"math/rand/v2"

	"github.com/san-kum/dispsim/internal/grid"
	"github.com/san-kum/dispsim/internal/susceptibility"
)

// Chunk is one grid chunk with its dispersive material: the driving field W
// and its previous value, the polarized field F-P, and one state per term.
type Chunk struct {
	Volume   grid.Volume
	Type     grid.FieldType
	Drive    grid.Direction
	Probe    grid.Direction
	W        *grid.Fields
	WPrev    *grid.Fields
	FMinusP  *grid.Fields
	Material susceptibility.Material
	States   []*susceptibility.State

	probe int
}

// NewChunk allocates the fields for every axis of gv and initializes one
// state per material term.
func NewChunk(gv grid.Volume, ft grid.FieldType, drive, probe grid.Direction, m susceptibility.Material, dt float64) *Chunk {
	var wc, fc []grid.Component
	for _, d := range gv.Dim.Directions() {
		wc = append(wc, ft.Component(d))
		fc = append(fc, ft.Polarized().Component(d))
	}
	c := &Chunk{
		Volume:   gv,
		Type:     ft,
		Drive:    drive,
		Probe:    probe,
		W:        grid.NewFields(gv, wc...),
		WPrev:    grid.NewFields(gv, wc...),
		FMinusP:  grid.NewFields(gv, fc...),
		Material: m,
		probe:    gv.Center(),
	}
	c.States = m.NewStates(c.W, dt, gv)
	return c
}

// Step advances the chunk by dt with the drive amplitude v: W is set
// uniformly along the drive axis, every term is updated and P is
// subtracted from the polarized field.
func (c *Chunk) Step(t, dt, v float64) (Sample, error) {
	c.WPrev.CopyFrom(c.W)
	c.W.Fill(c.Type.Component(c.Drive), v)

	if err := c.Material.Update(c.W, c.WPrev, dt, c.Volume, c.States); err != nil {
		return Sample{}, err
	}

	ft2 := c.Type.Polarized()
	for _, d := range c.Volume.Dim.Directions() {
		grid.CopyComponent(c.FMinusP, ft2.Component(d), c.W, c.Type.Component(d), 0)
	}
	c.Material.SubtractP(c.Type, c.FMinusP, c.States)

	return c.sample(t), nil
}

func (c *Chunk) sample(t float64) Sample {
	wc := c.Type.Component(c.Probe)
	s := Sample{T: t, P: c.Material.Polarization(c.States, wc, 0, c.probe)}
	if w := c.W[wc][0]; w != nil {
		s.W = w[c.probe]
	}
	for _, st := range c.States {
		if pp := st.PPrev(wc, 0); pp != nil {
			s.PPrev += pp[c.probe]
		}
	}
	if f := c.FMinusP[c.Type.Polarized().Component(c.Probe)][0]; f != nil {
		s.Corrected = f[c.probe]
	}
	return s
}

// Clone deep-copies the material, fields and states. Noisy terms keep
// sharing their random source until Reseed is called.
func (c *Chunk) Clone() *Chunk {
	out := *c
	out.Material = c.Material.Clone()
	out.States = out.Material.CopyStates(c.States)
	out.W = c.W.Clone()
	out.WPrev = c.WPrev.Clone()
	out.FMinusP = c.FMinusP.Clone()
	return &out
}

// Reseed gives every noisy term its own stream derived from seed and the
// term index.
func (c *Chunk) Reseed(seed int64) {
	for i, r := range c.Material {
		if n, ok := r.(*susceptibility.NoisyLorentzian); ok {
			n.SetSampler(rand.New(rand.NewPCG(uint64(seed), uint64(i))))
		}
	}
}

// Restore swaps in a material and states rebuilt from a checkpoint,
// releasing the current states. w is the drive amplitude of the step the
// snapshot was taken after; W starts from it so the first resumed step sees
// the right previous field.
func (c *Chunk) Restore(m susceptibility.Material, states []*susceptibility.State, w float64) {
	c.Material.ReleaseStates(c.States)
	c.Material = m
	c.States = states
	c.W.Fill(c.Type.Component(c.Drive), w)
}

func (c *Chunk) Release() {
	c.Material.ReleaseStates(c.States)
}
