package susceptibility

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/san-kum/dispsim/internal/grid"
)

// State is the auxiliary polarization storage of one response on one chunk.
// A single backing array holds, for every needed (component, copy) pair, the
// current P followed by the previous P. Offsets are assigned component major,
// copy minor, so two states built from the same pattern are laid out
// identically.
type State struct {
	ntot   int
	data   []float64
	offset [grid.NumComponents][2]int
	p      [grid.NumComponents][2][]float64
	pp     [grid.NumComponents][2][]float64
}

func newState(size int) *State {
	st := &State{data: make([]float64, size)}
	st.clearOffsets()
	return st
}

func (st *State) clearOffsets() {
	for c := range st.offset {
		st.offset[c] = [2]int{-1, -1}
		st.p[c] = [2][]float64{}
		st.pp[c] = [2][]float64{}
	}
}

// layout assigns the P and P_prev views for every pair for which present is
// true. It walks components in order and copies 0 then 1 within each.
func (st *State) layout(present func(c grid.Component, cmp int) bool) {
	st.clearOffsets()
	n := st.ntot
	off := 0
	for c := grid.Component(0); c < grid.NumComponents; c++ {
		for cmp := 0; cmp < 2; cmp++ {
			if !present(c, cmp) {
				continue
			}
			st.offset[c][cmp] = off
			st.p[c][cmp] = st.data[off : off+n : off+n]
			st.pp[c][cmp] = st.data[off+n : off+2*n : off+2*n]
			off += 2 * n
		}
	}
}

// P returns the current polarization of copy cmp of c, or nil. The slice
// aliases the state and is only valid until the state is released.
func (st *State) P(c grid.Component, cmp int) []float64 { return st.p[c][cmp] }

// PPrev returns the previous-step polarization of copy cmp of c, or nil.
func (st *State) PPrev(c grid.Component, cmp int) []float64 { return st.pp[c][cmp] }

// Offset returns where the P block of (c, cmp) starts in the backing array.
func (st *State) Offset(c grid.Component, cmp int) (int, bool) {
	o := st.offset[c][cmp]
	return o, o >= 0
}

func (st *State) Ntot() int { return st.ntot }

// Len is the number of reals in the backing array.
func (st *State) Len() int { return len(st.data) }

func (st *State) Released() bool { return st.data == nil }

const snapshotMagic = 0x50534e53 // "PSNS"

// MarshalBinary encodes the point count, the presence pattern and the
// backing array in little-endian order.
func (st *State) MarshalBinary() ([]byte, error) {
	var mask uint64
	for c := grid.Component(0); c < grid.NumComponents; c++ {
		for cmp := 0; cmp < 2; cmp++ {
			if st.p[c][cmp] != nil {
				mask |= 1 << (uint(c)*2 + uint(cmp))
			}
		}
	}

	buf := make([]byte, 0, 32+8*len(st.data))
	buf = binary.LittleEndian.AppendUint32(buf, snapshotMagic)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(st.ntot))
	buf = binary.LittleEndian.AppendUint64(buf, mask)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(st.data)))
	for _, v := range st.data {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
	}
	return buf, nil
}

// UnmarshalBinary restores a snapshot written by MarshalBinary, re-deriving
// every view from the stored pattern.
func (st *State) UnmarshalBinary(buf []byte) error {
	const header = 4 + 8 + 8 + 8
	if len(buf) < header || binary.LittleEndian.Uint32(buf) != snapshotMagic {
		return ErrBadSnapshot
	}
	ntot := int(binary.LittleEndian.Uint64(buf[4:]))
	mask := binary.LittleEndian.Uint64(buf[12:])
	n := int(binary.LittleEndian.Uint64(buf[20:]))
	if len(buf) != header+8*n {
		return fmt.Errorf("%w: want %d values, have %d bytes", ErrBadSnapshot, n, len(buf)-header)
	}

	present := func(c grid.Component, cmp int) bool {
		return mask&(1<<(uint(c)*2+uint(cmp))) != 0
	}
	count := 0
	for c := grid.Component(0); c < grid.NumComponents; c++ {
		for cmp := 0; cmp < 2; cmp++ {
			if present(c, cmp) {
				count++
			}
		}
	}
	if count*2*ntot != n {
		return fmt.Errorf("%w: pattern needs %d values, have %d", ErrBadSnapshot, count*2*ntot, n)
	}

	st.ntot = ntot
	st.data = make([]float64, n)
	for i := range st.data {
		st.data[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[header+8*i:]))
	}
	st.layout(present)
	return nil
}
