// Package checkpoint persists the numeric parameter stream written by
// susceptibility.DumpParams and per-term state snapshots.
package checkpoint

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrOverlap   = errors.New("checkpoint: chunk overlaps existing data")
	ErrNegative  = errors.New("checkpoint: negative offset")
	ErrGap       = errors.New("checkpoint: dataset has a gap")
	ErrNoState   = errors.New("checkpoint: no state snapshot")
	ErrClosed    = errors.New("checkpoint: store closed")
	ErrEmptyPath = errors.New("checkpoint: path is required for a persistent store")
)

// Dataset is an in-memory append-only chunked dataset. It is safe for
// concurrent use.
type Dataset struct {
	mu     sync.Mutex
	chunks map[int][]float64
}

func NewDataset() *Dataset {
	return &Dataset{chunks: make(map[int][]float64)}
}

// WriteChunk stores a copy of data at [start, start+len(data)). Writing over
// a range that is already populated is an error.
func (d *Dataset) WriteChunk(start int, data []float64) error {
	if start < 0 {
		return fmt.Errorf("%w: %d", ErrNegative, start)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for off, c := range d.chunks {
		if off == start || (start < off+len(c) && off < start+len(data)) {
			return fmt.Errorf("%w: [%d,%d) vs [%d,%d)", ErrOverlap, start, start+len(data), off, off+len(c))
		}
	}
	d.chunks[start] = append([]float64(nil), data...)
	return nil
}

// Len is one past the highest written offset.
func (d *Dataset) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for off, c := range d.chunks {
		n = max(n, off+len(c))
	}
	return n
}

// ReadAll concatenates every chunk in offset order. The chunks must tile
// [0, Len()) without gaps.
func (d *Dataset) ReadAll() ([]float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	offs := make([]int, 0, len(d.chunks))
	for off := range d.chunks {
		offs = append(offs, off)
	}
	sort.Ints(offs)
	return concat(offs, func(off int) []float64 { return d.chunks[off] })
}

func concat(offs []int, chunk func(int) []float64) ([]float64, error) {
	var out []float64
	for _, off := range offs {
		if off != len(out) {
			return nil, fmt.Errorf("%w: expected offset %d, found %d", ErrGap, len(out), off)
		}
		out = append(out, chunk(off)...)
	}
	return out, nil
}
