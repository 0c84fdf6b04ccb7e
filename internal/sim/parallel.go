package sim

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Ensemble runs independent copies of a chunk, each with its own noise
// stream, and averages the probe series.
type Ensemble struct {
	base      *Simulator
	numRuns   int
	seedStart int64
	metrics   func() []Metric
}

func NewEnsemble(s *Simulator, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{base: s, numRuns: numRuns, seedStart: seedStart}
}

// WithMetrics installs a factory for per-member metrics, since a metric
// instance cannot be shared between goroutines.
func (e *Ensemble) WithMetrics(f func() []Metric) *Ensemble {
	e.metrics = f
	return e
}

type EnsembleResult struct {
	Members []*Result
	Mean    []Sample
}

func (e *Ensemble) Run(ctx context.Context, c *Chunk, cfg Config) (*EnsembleResult, error) {
	if e.numRuns <= 0 {
		return nil, fmt.Errorf("%w: ensemble size must be positive, got %d", ErrInvalidConfig, e.numRuns)
	}

	members := make([]*Chunk, e.numRuns)
	for i := range members {
		members[i] = c.Clone()
		members[i].Reseed(e.seedStart + int64(i))
	}

	results := make([]*Result, e.numRuns)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range members {
		g.Go(func() error {
			s := New(e.base.drive)
			s.SetLogger(e.base.logger.With("member", i))
			if e.metrics != nil {
				for _, m := range e.metrics() {
					s.AddMetric(m)
				}
			}

			memberCfg := cfg
			memberCfg.Seed = e.seedStart + int64(i)
			memberCfg.Params = nil

			res, err := s.Run(gctx, members[i], memberCfg)
			if err != nil {
				return fmt.Errorf("member %d: %w", i, err)
			}
			results[i] = res
			ensembleMembers.Inc()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &EnsembleResult{Members: results, Mean: meanSeries(results)}, nil
}

func meanSeries(results []*Result) []Sample {
	if len(results) == 0 {
		return nil
	}
	n := len(results[0].Samples)
	mean := make([]Sample, n)
	for _, r := range results {
		for j := 0; j < n && j < len(r.Samples); j++ {
			s := r.Samples[j]
			mean[j].T = s.T
			mean[j].W += s.W
			mean[j].P += s.P
			mean[j].PPrev += s.PPrev
			mean[j].Corrected += s.Corrected
		}
	}
	k := float64(len(results))
	for j := range mean {
		mean[j].W /= k
		mean[j].P /= k
		mean[j].PPrev /= k
		mean[j].Corrected /= k
	}
	return mean
}
