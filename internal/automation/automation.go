package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/dispsim/internal/analysis"
	"github.com/san-kum/dispsim/internal/config"
	"github.com/san-kum/dispsim/internal/experiment"
	"github.com/san-kum/dispsim/internal/sim"
	"github.com/san-kum/dispsim/internal/storage"
)

// Scenario defines a scripted sequence of runs
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run: a preset or config file plus overrides.
type ScenarioStep struct {
	Preset string             `yaml:"preset"`
	Config string             `yaml:"config"`
	Steps  int                `yaml:"steps"`
	Seed   int64              `yaml:"seed"`
	Params map[string]float64 `yaml:"params"`
	SaveAs string             `yaml:"save_as"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

func (s ScenarioStep) resolve() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case s.Config != "":
		loaded, err := config.Load(s.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case s.Preset != "":
		cfg = config.Lookup(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	default:
		cfg = config.DefaultConfig()
	}

	if s.Steps > 0 {
		cfg.Steps = s.Steps
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	for name, v := range s.Params {
		if err := cfg.SetParam(name, v); err != nil {
			return nil, err
		}
	}
	if s.SaveAs != "" {
		cfg.Name = s.SaveAs
	}
	return cfg, nil
}

type ScenarioResult struct {
	Name   string
	RunID  string
	Result *sim.Result
}

// RunScenario executes every step in order. When st is not nil each run is
// saved to it.
func RunScenario(ctx context.Context, scenario *Scenario, st *storage.Store, logger *slog.Logger) ([]ScenarioResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	results := make([]ScenarioResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := step.resolve()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		logger.Info("scenario step", "step", i+1, "of", len(scenario.Steps), "name", cfg.Name)

		exp, err := experiment.New(cfg, logger)
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}
		result, err := exp.Run(ctx, nil)
		names := exp.MaterialNames()
		field := exp.Chunk().Type.String()
		exp.Close()
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := ScenarioResult{Name: cfg.Name, Result: result}
		if st != nil {
			sr.RunID, err = st.Save(storage.RunMetadata{
				Name: cfg.Name, Seed: cfg.Seed, Dt: cfg.Dt, Steps: cfg.Steps, Field: field, Materials: names,
			}, result)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, sr)
	}

	return results, nil
}

// ParameterSweep runs Base across a range of values of one parameter.
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

// SweepResult summarizes the probe response at one parameter value.
type SweepResult struct {
	ParamValue float64
	Peak       float64
	Energy     float64
	Growth     float64
	PeakFreq   float64
	Diverged   bool
}

func RunSweep(ctx context.Context, sweep *ParameterSweep, logger *slog.Logger) ([]SweepResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if sweep.NumSteps < 2 {
		return nil, fmt.Errorf("sweep needs at least 2 steps, got %d", sweep.NumSteps)
	}
	results := make([]SweepResult, 0, sweep.NumSteps)
	paramStep := (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)

	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep
		cfg := sweep.Base.Clone()
		if err := cfg.SetParam(sweep.ParamName, paramVal); err != nil {
			return nil, err
		}

		exp, err := experiment.New(cfg, logger)
		if err != nil {
			return nil, err
		}
		result, err := exp.Run(ctx, nil)
		exp.Close()

		r := SweepResult{ParamValue: paramVal}
		switch {
		case errors.Is(err, sim.ErrDiverged):
			r.Diverged = true
		case err != nil:
			return nil, err
		}

		r.Peak = result.Metrics["peak_polarization"]
		r.Energy = result.Metrics["polarization_energy"]
		r.Growth = result.Metrics["energy_growth"]
		if spec, err := analysis.PowerSpectrum(result.Polarization(), cfg.Dt); err == nil {
			r.PeakFreq, _ = spec.Peak(0)
		}
		results = append(results, r)

		logger.Debug("sweep point", "param", sweep.ParamName, "value", paramVal, "peak", r.Peak)
	}

	return results, nil
}
