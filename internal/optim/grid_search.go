package optim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/dispsim/internal/config"
	"github.com/san-kum/dispsim/internal/experiment"
	"github.com/san-kum/dispsim/internal/sim"
)

var ErrNoCandidate = errors.New("optim: no candidate produced the metric")

// GridSearch evaluates a run metric over the cartesian product of parameter
// ranges. Parameter names are those accepted by config.SetParam.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	maximize   bool
	logger     *slog.Logger
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{
		paramNames: params,
		ranges:     ranges,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (g *GridSearch) Maximize() *GridSearch {
	g.maximize = true
	return g
}

func (g *GridSearch) SetLogger(l *slog.Logger) {
	if l != nil {
		g.logger = l
	}
}

type Trial struct {
	Params map[string]float64
	Value  float64
}

// Search runs base once per grid point and returns the best trial. Points
// that fail to build or diverge are skipped.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metricName string) (*Trial, []Trial, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, nil, fmt.Errorf("optim: %d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}

	var points []map[string]float64
	g.enumerate(0, make(map[string]float64), &points)

	var (
		mu     sync.Mutex
		trials []Trial
	)
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for _, params := range points {
		eg.Go(func() error {
			val, err := g.evaluate(gctx, base, params, metricName)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				g.logger.Debug("grid point skipped", "params", params, "err", err)
				return nil
			}
			mu.Lock()
			trials = append(trials, Trial{Params: params, Value: val})
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}

	var best *Trial
	for i := range trials {
		t := &trials[i]
		if math.IsNaN(t.Value) {
			continue
		}
		if best == nil || g.better(t.Value, best.Value) {
			best = t
		}
	}
	if best == nil {
		return nil, trials, ErrNoCandidate
	}
	return best, trials, nil
}

func (g *GridSearch) better(a, b float64) bool {
	if g.maximize {
		return a > b
	}
	return a < b
}

func (g *GridSearch) enumerate(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		*out = append(*out, current)
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		g.enumerate(depth+1, newParams, out)
	}
}

func (g *GridSearch) evaluate(ctx context.Context, base *config.Config, params map[string]float64, metricName string) (float64, error) {
	cfg := base.Clone()
	for name, v := range params {
		if err := cfg.SetParam(name, v); err != nil {
			return 0, err
		}
	}

	exp, err := experiment.New(cfg, g.logger)
	if err != nil {
		return 0, err
	}
	defer exp.Close()

	result, err := exp.Run(ctx, nil)
	if err != nil {
		return 0, err
	}
	val, ok := result.Metrics[metricName]
	if !ok {
		return 0, fmt.Errorf("%w: unknown metric %q", sim.ErrInvalidConfig, metricName)
	}
	return val, nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return out
}

// ParseRange parses "name=lo:hi:n" into a parameter name and its values.
func ParseRange(s string) (string, []float64, error) {
	name, spec, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return "", nil, fmt.Errorf("bad range %q: want name=lo:hi:n", s)
	}
	parts := strings.Split(spec, ":")
	if len(parts) != 3 {
		return "", nil, fmt.Errorf("bad range %q: want name=lo:hi:n", s)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return "", nil, fmt.Errorf("bad range %q: %w", s, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", nil, fmt.Errorf("bad range %q: %w", s, err)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 1 {
		return "", nil, fmt.Errorf("bad range %q: count must be a positive integer", s)
	}
	return name, Linspace(lo, hi, n), nil
}
