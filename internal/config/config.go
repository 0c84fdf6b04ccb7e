package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/dispsim/internal/grid"
	"github.com/san-kum/dispsim/internal/susceptibility"
)

const (
	DefaultDt        = 0.05
	DefaultSteps     = 2000
	DefaultN         = 16
	DefaultOmega0    = 1.0
	DefaultGamma     = 0.05
	DefaultAmplitude = 1.0
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Name      string           `yaml:"name"`
	Grid      GridConfig       `yaml:"grid"`
	Field     string           `yaml:"field"`
	Dt        float64          `yaml:"dt"`
	Steps     int              `yaml:"steps"`
	Seed      int64            `yaml:"seed"`
	Source    SourceConfig     `yaml:"source"`
	Probe     string           `yaml:"probe"`
	Materials []MaterialConfig `yaml:"materials"`
}

type GridConfig struct {
	Dim string `yaml:"dim"`
	Nx  int    `yaml:"nx"`
	Ny  int    `yaml:"ny"`
	Nz  int    `yaml:"nz"`
}

type SourceConfig struct {
	Waveform     string  `yaml:"waveform"`
	Frequency    float64 `yaml:"frequency"`
	Width        float64 `yaml:"width"`
	Delay        float64 `yaml:"delay"`
	Amplitude    float64 `yaml:"amplitude"`
	Polarization string  `yaml:"polarization"`
}

type MaterialConfig struct {
	Kind         string      `yaml:"kind"`
	Omega0       float64     `yaml:"omega0"`
	Gamma        float64     `yaml:"gamma"`
	NoDCOffset   bool        `yaml:"no_dc_offset,omitempty"`
	NoiseAmp     float64     `yaml:"noise_amp,omitempty"`
	Distribution string      `yaml:"distribution,omitempty"`
	Bias         []float64   `yaml:"bias,omitempty"`
	Alpha        float64     `yaml:"alpha,omitempty"`
	Sigma        SigmaConfig `yaml:"sigma"`
}

// SigmaConfig is a uniform 3×3 coupling tensor. Rows are the polarized
// axis and columns the driving axis, in the coordinate order of the grid
// (x,y,z or r,φ,z). Fill is the centred fraction of each active axis the
// material occupies; zero means the whole chunk.
type SigmaConfig struct {
	XX   float64 `yaml:"xx,omitempty"`
	XY   float64 `yaml:"xy,omitempty"`
	XZ   float64 `yaml:"xz,omitempty"`
	YX   float64 `yaml:"yx,omitempty"`
	YY   float64 `yaml:"yy,omitempty"`
	YZ   float64 `yaml:"yz,omitempty"`
	ZX   float64 `yaml:"zx,omitempty"`
	ZY   float64 `yaml:"zy,omitempty"`
	ZZ   float64 `yaml:"zz,omitempty"`
	Fill float64 `yaml:"fill,omitempty"`
}

// Tensor returns the coupling in row-major order.
func (s SigmaConfig) Tensor() [3][3]float64 {
	return [3][3]float64{
		{s.XX, s.XY, s.XZ},
		{s.YX, s.YY, s.YZ},
		{s.ZX, s.ZY, s.ZZ},
	}
}

func DefaultConfig() *Config {
	return &Config{
		Name:  "default",
		Grid:  GridConfig{Dim: "1d", Nz: DefaultN},
		Field: "electric",
		Dt:    DefaultDt,
		Steps: DefaultSteps,
		Source: SourceConfig{
			Waveform:     "impulse",
			Amplitude:    DefaultAmplitude,
			Polarization: "x",
		},
		Probe: "x",
		Materials: []MaterialConfig{
			{Kind: "lorentzian", Omega0: DefaultOmega0, Gamma: DefaultGamma, Sigma: SigmaConfig{XX: 1}},
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML on top of the defaults. A materials list in the input
// replaces the default one.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	cfg.Materials = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Materials == nil {
		cfg.Materials = DefaultConfig().Materials
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone deep-copies cfg so presets can be modified by callers.
func (c *Config) Clone() *Config {
	out := *c
	out.Materials = make([]MaterialConfig, len(c.Materials))
	for i, m := range c.Materials {
		m.Bias = append([]float64(nil), m.Bias...)
		out.Materials[i] = m
	}
	return &out
}

func (c *Config) Volume() (grid.Volume, error) {
	dim, err := grid.ParseDim(c.Grid.Dim)
	if err != nil {
		return grid.Volume{}, err
	}
	return grid.New(dim, [3]int{c.Grid.Nx, c.Grid.Ny, c.Grid.Nz})
}

func (c *Config) FieldType() (grid.FieldType, error) {
	switch strings.ToLower(c.Field) {
	case "", "e", "electric":
		return grid.E, nil
	case "h", "magnetic":
		return grid.H, nil
	}
	return 0, fmt.Errorf("%w: field %q", ErrInvalid, c.Field)
}

// Axis resolves a polarization name ("x", "y", "z" or the cylindrical
// "r", "p") to one of the three grid directions.
func Axis(dim grid.Dim, name string) (grid.Direction, error) {
	d, err := grid.ParseDirection(name)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	for _, dd := range dim.Directions() {
		if dd == d {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: direction %s is not part of a %s grid", ErrInvalid, d, dim)
}

func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalid, c.Dt)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalid, c.Steps)
	}
	gv, err := c.Volume()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := c.FieldType(); err != nil {
		return err
	}
	if _, err := Axis(gv.Dim, c.Source.Polarization); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if _, err := Axis(gv.Dim, c.Probe); err != nil {
		return fmt.Errorf("probe: %w", err)
	}
	if len(c.Materials) == 0 {
		return fmt.Errorf("%w: no materials", ErrInvalid)
	}
	for i, m := range c.Materials {
		if err := m.validate(); err != nil {
			return fmt.Errorf("material %d: %w", i, err)
		}
	}
	return nil
}

func (m MaterialConfig) validate() error {
	switch m.Kind {
	case "lorentzian", "drude":
	case "noisy_lorentzian":
		if m.NoiseAmp < 0 {
			return fmt.Errorf("%w: negative noise_amp", ErrInvalid)
		}
		if _, err := susceptibility.ParseDistribution(m.Distribution); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	case "gyrotropic":
		if len(m.Bias) != 3 {
			return fmt.Errorf("%w: gyrotropic bias needs 3 components, got %d", ErrInvalid, len(m.Bias))
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalid, m.Kind)
	}
	if m.Gamma < 0 {
		return fmt.Errorf("%w: negative gamma", ErrInvalid)
	}
	if m.Sigma.Fill < 0 || m.Sigma.Fill > 1 {
		return fmt.Errorf("%w: fill must lie in [0,1], got %g", ErrInvalid, m.Sigma.Fill)
	}
	return nil
}

// SetParam sets a tunable value by name. Material parameters ("omega0",
// "gamma", "noise_amp", "alpha") address term 0 unless suffixed with @i.
func (c *Config) SetParam(name string, v float64) error {
	switch name {
	case "dt":
		c.Dt = v
		return nil
	case "amplitude":
		c.Source.Amplitude = v
		return nil
	case "frequency":
		c.Source.Frequency = v
		return nil
	}

	field, idx := name, 0
	if f, n, ok := strings.Cut(name, "@"); ok {
		i, err := strconv.Atoi(n)
		if err != nil {
			return fmt.Errorf("%w: bad term index in %q", ErrInvalid, name)
		}
		field, idx = f, i
	}
	if idx < 0 || idx >= len(c.Materials) {
		return fmt.Errorf("%w: no material term %d", ErrInvalid, idx)
	}
	m := &c.Materials[idx]
	switch field {
	case "omega0":
		m.Omega0 = v
	case "gamma":
		m.Gamma = v
	case "noise_amp":
		m.NoiseAmp = v
	case "alpha":
		m.Alpha = v
	default:
		return fmt.Errorf("%w: unknown parameter %q", ErrInvalid, name)
	}
	return nil
}
