package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/dispsim/internal/config"
	"github.com/san-kum/dispsim/internal/metrics"
	"github.com/san-kum/dispsim/internal/sim"
	"github.com/san-kum/dispsim/internal/susceptibility"
)

// Experiment is a configured chunk and simulator, ready to run.
type Experiment struct {
	cfg       *config.Config
	chunk     *sim.Chunk
	simulator *sim.Simulator
	drive     sim.Drive
	logger    *slog.Logger
	startStep int
}

func New(cfg *config.Config, logger *slog.Logger) (*Experiment, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	gv, err := cfg.Volume()
	if err != nil {
		return nil, err
	}
	ft, err := cfg.FieldType()
	if err != nil {
		return nil, err
	}
	drive, err := config.Axis(gv.Dim, cfg.Source.Polarization)
	if err != nil {
		return nil, err
	}
	probe, err := config.Axis(gv.Dim, cfg.Probe)
	if err != nil {
		return nil, err
	}

	material, err := NewRegistry().BuildMaterial(cfg, gv, ft)
	if err != nil {
		return nil, err
	}

	src := cfg.Source
	waveform, err := sim.NewDrive(src.Waveform, src.Frequency, src.Width, src.Delay, src.Amplitude, cfg.Dt)
	if err != nil {
		return nil, err
	}

	s := sim.New(waveform)
	s.SetLogger(logger)
	for _, m := range metrics.Default() {
		s.AddMetric(m)
	}

	logger.Debug("experiment built", "name", cfg.Name, "grid", gv.Dim, "points", gv.OwnedCount(), "field", ft, "terms", len(material))

	return &Experiment{
		cfg:       cfg,
		chunk:     sim.NewChunk(gv, ft, drive, probe, material, cfg.Dt),
		simulator: s,
		drive:     waveform,
		logger:    logger,
	}, nil
}

func (e *Experiment) Config() *config.Config    { return e.cfg }
func (e *Experiment) Chunk() *sim.Chunk         { return e.chunk }
func (e *Experiment) Simulator() *sim.Simulator { return e.simulator }

// StartStep is the number of the first step a run will take: zero, or one
// past the snapshot the experiment was resumed from.
func (e *Experiment) StartStep() int { return e.startStep }

func (e *Experiment) simConfig(params susceptibility.ParamWriter) sim.Config {
	return sim.Config{
		Dt:            e.cfg.Dt,
		Steps:         e.cfg.Steps,
		Seed:          e.cfg.Seed,
		ValidateState: true,
		Params:        params,
		StartStep:     e.startStep,
	}
}

// Run steps the chunk for the configured number of steps. params, when not
// nil, receives the material's parameter records first.
func (e *Experiment) Run(ctx context.Context, params susceptibility.ParamWriter) (*sim.Result, error) {
	return e.simulator.Run(ctx, e.chunk, e.simConfig(params))
}

// RunWithCallback is Run with a per-step hook that can stop the run early.
func (e *Experiment) RunWithCallback(ctx context.Context, callback func(int, sim.Sample) bool) error {
	return e.simulator.RunWithCallback(ctx, e.chunk, e.simConfig(nil), callback)
}

// RunEnsemble runs n independent copies seeded from the configured seed.
// The experiment's own chunk is left untouched.
func (e *Experiment) RunEnsemble(ctx context.Context, n int) (*sim.EnsembleResult, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: ensemble size must be positive, got %d", sim.ErrInvalidConfig, n)
	}
	ens := sim.NewEnsemble(e.simulator, n, e.cfg.Seed).WithMetrics(metrics.Default)
	return ens.Run(ctx, e.chunk, e.simConfig(nil))
}

// MaterialNames lists the kind of every term in order.
func (e *Experiment) MaterialNames() []string {
	names := make([]string, len(e.chunk.Material))
	for i, r := range e.chunk.Material {
		names[i] = r.Kind().String()
	}
	return names
}

func (e *Experiment) Close() {
	e.chunk.Release()
}
