package experiment

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/san-kum/dispsim/internal/config"
	"github.com/san-kum/dispsim/internal/grid"
	"github.com/san-kum/dispsim/internal/susceptibility"
)

// Builder constructs one material term. index is the term's position in
// the material and seeds its noise stream together with the run seed.
type Builder func(m config.MaterialConfig, seed int64, index int) (susceptibility.Response, error)

type Registry struct {
	kinds map[string]Builder
}

func NewRegistry() *Registry {
	r := &Registry{kinds: make(map[string]Builder)}

	r.kinds["lorentzian"] = func(m config.MaterialConfig, _ int64, _ int) (susceptibility.Response, error) {
		return susceptibility.NewLorentzian(m.Omega0, m.Gamma, m.NoDCOffset), nil
	}
	r.kinds["drude"] = func(m config.MaterialConfig, _ int64, _ int) (susceptibility.Response, error) {
		return susceptibility.NewLorentzian(m.Omega0, m.Gamma, true), nil
	}
	r.kinds["noisy_lorentzian"] = func(m config.MaterialConfig, seed int64, index int) (susceptibility.Response, error) {
		dist, err := susceptibility.ParseDistribution(m.Distribution)
		if err != nil {
			return nil, err
		}
		n := susceptibility.NewNoisyLorentzian(m.NoiseAmp, m.Omega0, m.Gamma, m.NoDCOffset, rand.New(rand.NewPCG(uint64(seed), uint64(index))))
		n.Distribution = dist
		return n, nil
	}
	r.kinds["gyrotropic"] = func(m config.MaterialConfig, _ int64, _ int) (susceptibility.Response, error) {
		if len(m.Bias) != 3 {
			return nil, fmt.Errorf("gyrotropic bias needs 3 components, got %d", len(m.Bias))
		}
		return susceptibility.NewGyrotropic([3]float64{m.Bias[0], m.Bias[1], m.Bias[2]}, m.Alpha, m.Omega0, m.Gamma), nil
	}

	return r
}

func (r *Registry) Get(kind string, m config.MaterialConfig, seed int64, index int) (susceptibility.Response, error) {
	fn, ok := r.kinds[kind]
	if !ok {
		return nil, fmt.Errorf("unknown material kind: %s", kind)
	}
	return fn(m, seed, index)
}

func (r *Registry) Kinds() []string {
	names := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuildMaterial builds every term of cfg and installs its coupling profile
// on gv for the field type ft.
func (r *Registry) BuildMaterial(cfg *config.Config, gv grid.Volume, ft grid.FieldType) (susceptibility.Material, error) {
	m := make(susceptibility.Material, 0, len(cfg.Materials))
	for i, mc := range cfg.Materials {
		resp, err := r.Get(mc.Kind, mc, cfg.Seed, i)
		if err != nil {
			return nil, fmt.Errorf("material %d: %w", i, err)
		}
		if err := ApplySigma(resp, mc.Sigma, gv, ft); err != nil {
			return nil, fmt.Errorf("material %d: %w", i, err)
		}
		m = append(m, resp)
	}
	return m, nil
}

// ApplySigma installs the non-zero entries of s as uniform profiles over
// the filled region of gv.
func ApplySigma(resp susceptibility.Response, s config.SigmaConfig, gv grid.Volume, ft grid.FieldType) error {
	dirs := gv.Dim.Directions()
	mask := FillMask(gv, s.Fill)
	t := s.Tensor()
	for row := range t {
		for col, v := range t[row] {
			if v == 0 {
				continue
			}
			values := make([]float64, len(mask))
			for i, in := range mask {
				if in {
					values[i] = v
				}
			}
			if err := resp.SetSigma(ft.Component(dirs[row]), dirs[col], values); err != nil {
				return err
			}
		}
	}
	return nil
}

// FillMask marks the points within the centred fraction fill of every
// active axis, ghost layers included. fill of zero or one covers the whole
// chunk.
func FillMask(gv grid.Volume, fill float64) []bool {
	mask := make([]bool, gv.Ntot())
	whole := fill <= 0 || fill >= 1
	lo, hi := 0.5-fill/2, 0.5+fill/2
	for i := range mask {
		if whole {
			mask[i] = true
			continue
		}
		coords := [3]int{i / (gv.N[1] * gv.N[2]), (i / gv.N[2]) % gv.N[1], i % gv.N[2]}
		in := true
		for a, c := range coords {
			if gv.N[a] == 1 {
				continue
			}
			pos := (float64(c) + 0.5) / float64(gv.N[a])
			if pos < lo || pos > hi {
				in = false
				break
			}
		}
		mask[i] = in
	}
	return mask
}
