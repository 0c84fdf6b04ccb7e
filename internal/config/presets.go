package config

import (
	"sort"
	"strings"
)

var Presets = map[string]map[string]*Config{
	"lorentzian": {
		"glass": {
			Name: "lorentzian/glass", Grid: GridConfig{Dim: "1d", Nz: 16}, Field: "electric",
			Dt: 0.05, Steps: 4096, Probe: "x",
			Source: SourceConfig{Waveform: "impulse", Amplitude: 1, Polarization: "x"},
			Materials: []MaterialConfig{
				{Kind: "lorentzian", Omega0: 1.0, Gamma: 0.02, Sigma: SigmaConfig{XX: 1.2}},
			},
		},
		"two-pole": {
			Name: "lorentzian/two-pole", Grid: GridConfig{Dim: "1d", Nz: 16}, Field: "electric",
			Dt: 0.05, Steps: 4096, Probe: "x",
			Source: SourceConfig{Waveform: "impulse", Amplitude: 1, Polarization: "x"},
			Materials: []MaterialConfig{
				{Kind: "lorentzian", Omega0: 0.5, Gamma: 0.02, Sigma: SigmaConfig{XX: 1}},
				{Kind: "lorentzian", Omega0: 2.0, Gamma: 0.05, Sigma: SigmaConfig{XX: 0.5}},
			},
		},
		"drude": {
			Name: "lorentzian/drude", Grid: GridConfig{Dim: "1d", Nz: 16}, Field: "electric",
			Dt: 0.05, Steps: 1000, Probe: "x",
			Source: SourceConfig{Waveform: "step", Amplitude: 1, Polarization: "x"},
			Materials: []MaterialConfig{
				{Kind: "drude", Omega0: 1.0, Gamma: 0.1, Sigma: SigmaConfig{XX: 1}},
			},
		},
		"anisotropic": {
			Name: "lorentzian/anisotropic", Grid: GridConfig{Dim: "3d", Nx: 6, Ny: 6, Nz: 6}, Field: "electric",
			Dt: 0.05, Steps: 2000, Probe: "x",
			Source: SourceConfig{Waveform: "pulse", Frequency: 1.0, Width: 2, Delay: 8, Amplitude: 1, Polarization: "y"},
			Materials: []MaterialConfig{
				{Kind: "lorentzian", Omega0: 1.0, Gamma: 0.05, Sigma: SigmaConfig{XX: 1, XY: 0.3, YX: 0.3, YY: 1, ZZ: 1, Fill: 0.5}},
			},
		},
		"unstable": {
			Name: "lorentzian/unstable", Grid: GridConfig{Dim: "1d", Nz: 8}, Field: "electric",
			Dt: 0.5, Steps: 60, Probe: "x",
			Source: SourceConfig{Waveform: "step", Amplitude: 1, Polarization: "x"},
			Materials: []MaterialConfig{
				{Kind: "lorentzian", Omega0: 1.0, Gamma: 0, Sigma: SigmaConfig{XX: 1}},
			},
		},
	},
	"noisy": {
		"emitter": {
			Name: "noisy/emitter", Grid: GridConfig{Dim: "2d", Nx: 8, Ny: 8}, Field: "electric",
			Dt: 0.05, Steps: 4096, Seed: 1, Probe: "z",
			Source: SourceConfig{Waveform: "cw", Frequency: 0, Amplitude: 0, Polarization: "z"},
			Materials: []MaterialConfig{
				{Kind: "noisy_lorentzian", Omega0: 1.0, Gamma: 0.05, NoiseAmp: 0.1, Sigma: SigmaConfig{ZZ: 1}},
			},
		},
		"uniform": {
			Name: "noisy/uniform", Grid: GridConfig{Dim: "1d", Nz: 16}, Field: "electric",
			Dt: 0.05, Steps: 4096, Seed: 7, Probe: "x",
			Source: SourceConfig{Waveform: "cw", Frequency: 0.5, Amplitude: 0.2, Polarization: "x"},
			Materials: []MaterialConfig{
				{Kind: "noisy_lorentzian", Omega0: 1.0, Gamma: 0.1, NoiseAmp: 0.05, Distribution: "uniform", Sigma: SigmaConfig{XX: 1}},
			},
		},
	},
	"gyrotropic": {
		"ferrite": {
			Name: "gyrotropic/ferrite", Grid: GridConfig{Dim: "3d", Nx: 4, Ny: 4, Nz: 4}, Field: "magnetic",
			Dt: 0.05, Steps: 2000, Probe: "y",
			Source: SourceConfig{Waveform: "pulse", Frequency: 0.8, Width: 2, Delay: 8, Amplitude: 1, Polarization: "x"},
			Materials: []MaterialConfig{
				{Kind: "gyrotropic", Omega0: 0.5, Gamma: 0.05, Alpha: 0.1, Bias: []float64{0, 0, 1}, Sigma: SigmaConfig{XX: 1, YY: 1, ZZ: 1}},
			},
		},
		"tilted": {
			Name: "gyrotropic/tilted", Grid: GridConfig{Dim: "3d", Nx: 4, Ny: 4, Nz: 4}, Field: "electric",
			Dt: 0.05, Steps: 2000, Probe: "z",
			Source: SourceConfig{Waveform: "step", Amplitude: 1, Polarization: "x"},
			Materials: []MaterialConfig{
				{Kind: "gyrotropic", Omega0: 1.0, Gamma: 0.1, Alpha: 0.3, Bias: []float64{1, 1, 1}, Sigma: SigmaConfig{XX: 1, YY: 1, ZZ: 1}},
			},
		},
	},
}

func GetPreset(family, preset string) *Config {
	familyPresets, ok := Presets[family]
	if !ok {
		return nil
	}
	cfg, ok := familyPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

// Lookup resolves "family/name".
func Lookup(name string) *Config {
	family, preset, ok := strings.Cut(name, "/")
	if !ok {
		return nil
	}
	return GetPreset(family, preset)
}

func ListPresets(family string) []string {
	familyPresets, ok := Presets[family]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(familyPresets))
	for name := range familyPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func Families() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
