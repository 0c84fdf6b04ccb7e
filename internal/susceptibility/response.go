package susceptibility

import "github.com/san-kum/dispsim/internal/grid"

// Response is the contract a field solver relies on for one dispersive term.
// The solver calls NeedsP and NeedsWNotOwned while setting up a chunk, then
// NewState and InitState, then Update followed by SubtractP once per step.
type Response interface {
	Kind() Kind
	ID() int
	Ntot() int

	SetSigma(c grid.Component, d grid.Direction, values []float64) error
	Sigma(c grid.Component, d grid.Direction) []float64
	NeedsP(c grid.Component, cmp int, W *grid.Fields) bool
	NeedsWNotOwned(c grid.Component, W *grid.Fields) bool

	NewState(W *grid.Fields, gv grid.Volume) *State
	InitState(W *grid.Fields, dt float64, gv grid.Volume, st *State)
	CopyState(st *State) *State
	ReleaseState(st *State)

	Update(W, WPrev *grid.Fields, dt float64, gv grid.Volume, st *State) error
	SubtractP(ft grid.FieldType, fMinusP *grid.Fields, st *State)

	NumNotOwnedNeeded(c grid.Component, st *State) int
	NotOwnedPtr(inotowned int, c grid.Component, cmp, n int, st *State) []float64

	DumpParams(w ParamWriter, start *int) error

	// Clone deep-copies the coupling profile and parameters. The ID is kept.
	Clone() Response
}
