package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/san-kum/dispsim/internal/susceptibility"
)

type Simulator struct {
	drive     Drive
	metrics   []Metric
	observers []Observer
	logger    *slog.Logger
}

func New(drive Drive) *Simulator {
	return &Simulator{
		drive:     drive,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		logger:    slog.Default(),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) SetLogger(l *slog.Logger) {
	if l != nil {
		s.logger = l
	}
}

func (s *Simulator) Run(ctx context.Context, c *Chunk, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	result := &Result{
		Samples: make([]Sample, 0, cfg.Steps),
		Metrics: make(map[string]float64),
	}
	result.Advisories = s.advise(c.Material, cfg.Dt)

	if cfg.Params != nil {
		start := 0
		if err := c.Material.DumpParams(cfg.Params, &start); err != nil {
			return nil, fmt.Errorf("dump params: %w", err)
		}
		s.logger.Debug("wrote parameter records", "terms", len(c.Material), "values", start)
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	s.logger.Debug("run started", "steps", cfg.Steps, "dt", cfg.Dt, "terms", len(c.Material), "points", c.Volume.OwnedCount())

	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			runErrors.WithLabelValues("canceled").Inc()
			return result, ctx.Err()
		default:
		}

		n := cfg.StartStep + i
		t := float64(n) * cfg.Dt
		begin := time.Now()
		sample, err := c.Step(t, cfg.Dt, s.drive(t))
		stepDuration.Observe(time.Since(begin).Seconds())
		if err != nil {
			cause := "update"
			if errors.Is(err, susceptibility.ErrCylindrical) {
				cause = "cylindrical"
			}
			runErrors.WithLabelValues(cause).Inc()
			return result, &SimulationError{Step: n, Time: t, Wrapped: err}
		}
		stepsTotal.Inc()

		if cfg.ValidateState && !sample.IsValid() {
			runErrors.WithLabelValues("diverged").Inc()
			return result, &SimulationError{Step: n, Time: t, Wrapped: ErrDiverged}
		}

		for _, m := range s.metrics {
			m.Observe(sample)
		}
		for _, obs := range s.observers {
			obs.OnStep(n, sample)
		}

		result.Samples = append(result.Samples, sample)
		result.StepsTaken++
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	s.logger.Debug("run finished", "steps", result.StepsTaken)
	return result, nil
}

// advise runs the advisory stability check on every Lorentzian term. It
// never stops the run.
func (s *Simulator) advise(m susceptibility.Material, dt float64) []string {
	var out []string
	for i, r := range m {
		var l *susceptibility.Lorentzian
		switch v := r.(type) {
		case *susceptibility.Lorentzian:
			l = v
		case *susceptibility.NoisyLorentzian:
			l = &v.Lorentzian
		default:
			continue
		}
		if !l.Unstable(dt) {
			continue
		}
		msg := fmt.Sprintf("term %d (%s #%d): omega0=%g gamma=%g may be unstable at dt=%g (undamped limit %.4g)",
			i, r.Kind(), r.ID(), l.Omega0, l.Gamma, dt, susceptibility.MaxStableDt(l.Omega0))
		s.logger.Warn("stability advisory", "term", i, "kind", r.Kind().String(), "omega0", l.Omega0, "gamma", l.Gamma, "dt", dt)
		advisoriesTotal.WithLabelValues(r.Kind().String()).Inc()
		out = append(out, msg)
	}
	return out
}

func (s *Simulator) validateConfig(cfg Config) error {
	if s.drive == nil {
		return ErrNoDrive
	}
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, cfg.Dt)
	}
	if cfg.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidConfig, cfg.Steps)
	}
	if cfg.StartStep < 0 {
		return fmt.Errorf("%w: start step must not be negative, got %d", ErrInvalidConfig, cfg.StartStep)
	}
	return nil
}

// RunWithCallback steps until the callback returns false or the step budget
// runs out. Nothing is recorded.
func (s *Simulator) RunWithCallback(ctx context.Context, c *Chunk, cfg Config, callback func(int, Sample) bool) error {
	if err := s.validateConfig(cfg); err != nil {
		return err
	}

	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n := cfg.StartStep + i
		t := float64(n) * cfg.Dt
		sample, err := c.Step(t, cfg.Dt, s.drive(t))
		if err != nil {
			return &SimulationError{Step: n, Time: t, Wrapped: err}
		}
		stepsTotal.Inc()

		if !callback(n, sample) {
			return nil
		}
		if cfg.ValidateState && !sample.IsValid() {
			return &SimulationError{Step: n, Time: t, Wrapped: ErrDiverged}
		}
	}
	return nil
}
