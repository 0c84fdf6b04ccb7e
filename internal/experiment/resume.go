package experiment

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/san-kum/dispsim/internal/grid"
	"github.com/san-kum/dispsim/internal/susceptibility"
)

var ErrCheckpointMismatch = errors.New("experiment: checkpoint does not match the configured material")

// Checkpoint is the read side of a checkpoint store: the parameter stream,
// per-term state snapshots and the step each labelled snapshot was taken
// after.
type Checkpoint interface {
	ReadAll() ([]float64, error)
	LoadState(label string, term int) ([]byte, error)
	LoadStep(label string) (int, error)
}

// Resume rebuilds the material from the checkpoint's parameter records and
// restores the states saved under label. The configuration supplies only
// the coupling profiles, which records do not carry, and the noise streams.
// Later runs continue at the step after the snapshot.
func (e *Experiment) Resume(src Checkpoint, label string) error {
	data, err := src.ReadAll()
	if err != nil {
		return fmt.Errorf("read parameter records: %w", err)
	}
	recs, err := susceptibility.DecodeParams(data)
	if err != nil {
		return err
	}
	step, err := src.LoadStep(label)
	if err != nil {
		return err
	}

	c := e.chunk
	if len(recs) != len(c.Material) {
		return fmt.Errorf("%w: %d records for %d terms", ErrCheckpointMismatch, len(recs), len(c.Material))
	}

	material := make(susceptibility.Material, len(recs))
	states := make([]*susceptibility.State, len(recs))
	for i, rec := range recs {
		r, err := e.rebuildTerm(rec, i)
		if err != nil {
			return err
		}
		raw, err := src.LoadState(label, i)
		if err != nil {
			return err
		}
		var snap susceptibility.State
		if err := snap.UnmarshalBinary(raw); err != nil {
			return fmt.Errorf("term %d: %w", i, err)
		}
		if err := checkLayout(r, &snap, c.W, c.Volume); err != nil {
			return fmt.Errorf("term %d: %w", i, err)
		}
		material[i] = r
		states[i] = r.CopyState(&snap)
	}

	c.Restore(material, states, e.drive(float64(step)*e.cfg.Dt))
	e.startStep = step + 1
	e.logger.Info("resumed from checkpoint", "label", label, "step", step, "terms", len(material))
	return nil
}

func (e *Experiment) rebuildTerm(rec susceptibility.ParamRecord, i int) (susceptibility.Response, error) {
	old := e.chunk.Material[i]
	if rec.Kind != old.Kind() {
		return nil, fmt.Errorf("%w: term %d is %s, checkpoint has %s", ErrCheckpointMismatch, i, old.Kind(), rec.Kind)
	}

	r, err := rec.Response(rand.New(rand.NewPCG(uint64(e.cfg.Seed), uint64(i))))
	if err != nil {
		return nil, err
	}
	if n, ok := old.(*susceptibility.NoisyLorentzian); ok {
		r.(*susceptibility.NoisyLorentzian).Distribution = n.Distribution
	}
	for c := grid.Component(0); c < grid.NumComponents; c++ {
		for d := grid.Direction(0); d < grid.NumDirections; d++ {
			s := old.Sigma(c, d)
			if s == nil {
				continue
			}
			if err := r.SetSigma(c, d, s); err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

// checkLayout compares the snapshot's point count and (component, copy)
// pattern with what r would allocate on this chunk.
func checkLayout(r susceptibility.Response, snap *susceptibility.State, W *grid.Fields, gv grid.Volume) error {
	if snap.Ntot() != gv.Ntot() {
		return fmt.Errorf("%w: snapshot has %d points, chunk has %d", ErrCheckpointMismatch, snap.Ntot(), gv.Ntot())
	}
	for c := grid.Component(0); c < grid.NumComponents; c++ {
		for cmp := 0; cmp < 2; cmp++ {
			if (snap.P(c, cmp) != nil) != r.NeedsP(c, cmp, W) {
				return fmt.Errorf("%w: snapshot layout differs at %s copy %d", ErrCheckpointMismatch, c, cmp)
			}
		}
	}
	return nil
}
