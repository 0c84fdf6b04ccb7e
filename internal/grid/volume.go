package grid

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrBadExtent = errors.New("grid: extent must be positive")
	ErrBadDim    = errors.New("grid: unknown dimensionality")
)

// Dim is the dimensionality of a grid volume.
type Dim int

const (
	D1 Dim = iota
	D2
	D3
	Dcyl
)

func (d Dim) String() string {
	switch d {
	case D1:
		return "1d"
	case D2:
		return "2d"
	case D3:
		return "3d"
	case Dcyl:
		return "cyl"
	}
	return fmt.Sprintf("dim(%d)", int(d))
}

func ParseDim(s string) (Dim, error) {
	switch strings.ToLower(s) {
	case "1d", "1":
		return D1, nil
	case "2d", "2":
		return D2, nil
	case "3d", "3":
		return D3, nil
	case "cyl", "cylindrical":
		return Dcyl, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrBadDim, s)
}

// Directions returns the three directions of the coordinate system in cyclic
// order.
func (d Dim) Directions() [3]Direction {
	if d == Dcyl {
		return [3]Direction{R, P, Z}
	}
	return [3]Direction{X, Y, Z}
}

// CycleDirection shifts d cyclically within the coordinate system of dim.
// Directions that do not belong to the coordinate system come back unchanged.
func CycleDirection(dim Dim, d Direction, shift int) Direction {
	dirs := dim.Directions()
	for i, dd := range dirs {
		if dd == d {
			return dirs[(i+shift)%3]
		}
	}
	return d
}

// Volume is the point layout of one grid chunk. Points are stored row-major
// over three axis slots (x|r, y, z) with z fastest. Every active axis carries
// one ghost layer on each side, so an owned point can be offset by one stride
// along any axis and stay in range.
type Volume struct {
	Dim Dim
	N   [3]int
}

func newVolume(dim Dim, n [3]int) (Volume, error) {
	v := Volume{Dim: dim}
	for a := 0; a < 3; a++ {
		switch {
		case n[a] == 0:
			v.N[a] = 1
		case n[a] < 0:
			return Volume{}, fmt.Errorf("%w: axis %d has %d points", ErrBadExtent, a, n[a])
		default:
			v.N[a] = n[a] + 2
		}
	}
	return v, nil
}

func NewVolume1D(nz int) (Volume, error) {
	if nz <= 0 {
		return Volume{}, ErrBadExtent
	}
	return newVolume(D1, [3]int{0, 0, nz})
}

func NewVolume2D(nx, ny int) (Volume, error) {
	if nx <= 0 || ny <= 0 {
		return Volume{}, ErrBadExtent
	}
	return newVolume(D2, [3]int{nx, ny, 0})
}

func NewVolume3D(nx, ny, nz int) (Volume, error) {
	if nx <= 0 || ny <= 0 || nz <= 0 {
		return Volume{}, ErrBadExtent
	}
	return newVolume(D3, [3]int{nx, ny, nz})
}

func NewVolumeCyl(nr, nz int) (Volume, error) {
	if nr <= 0 || nz <= 0 {
		return Volume{}, ErrBadExtent
	}
	return newVolume(Dcyl, [3]int{nr, 0, nz})
}

// New builds a volume from owned extents; unused axes are ignored.
func New(dim Dim, n [3]int) (Volume, error) {
	switch dim {
	case D1:
		return NewVolume1D(n[2])
	case D2:
		return NewVolume2D(n[0], n[1])
	case D3:
		return NewVolume3D(n[0], n[1], n[2])
	case Dcyl:
		return NewVolumeCyl(n[0], n[2])
	}
	return Volume{}, ErrBadDim
}

func (v Volume) Ntot() int { return v.N[0] * v.N[1] * v.N[2] }

func (v Volume) slot(d Direction) int {
	switch d {
	case X:
		if v.Dim == Dcyl {
			return -1
		}
		return 0
	case R:
		if v.Dim != Dcyl {
			return -1
		}
		return 0
	case Y:
		if v.Dim == Dcyl {
			return -1
		}
		return 1
	case Z:
		return 2
	}
	return -1
}

// Stride is the index offset between neighbouring points along d, or 0 when
// d is not an active axis of the volume.
func (v Volume) Stride(d Direction) int {
	s := v.slot(d)
	if s < 0 || v.N[s] == 1 {
		return 0
	}
	switch s {
	case 0:
		return v.N[1] * v.N[2]
	case 1:
		return v.N[2]
	}
	return 1
}

func (v Volume) ownedBounds(a int) (int, int) {
	if v.N[a] == 1 {
		return 0, 0
	}
	return 1, v.N[a] - 2
}

// LoopOwned calls fn for every owned (non-ghost) point in storage order.
func (v Volume) LoopOwned(fn func(i int)) {
	lo0, hi0 := v.ownedBounds(0)
	lo1, hi1 := v.ownedBounds(1)
	lo2, hi2 := v.ownedBounds(2)
	for a := lo0; a <= hi0; a++ {
		for b := lo1; b <= hi1; b++ {
			base := (a*v.N[1] + b) * v.N[2]
			for c := lo2; c <= hi2; c++ {
				fn(base + c)
			}
		}
	}
}

func (v Volume) OwnedCount() int {
	n := 1
	for a := 0; a < 3; a++ {
		lo, hi := v.ownedBounds(a)
		n *= hi - lo + 1
	}
	return n
}

// Index returns the storage index of owned coordinates (0-based, ghosts
// excluded). Coordinates on inactive axes are ignored.
func (v Volume) Index(a, b, c int) int {
	coords := [3]int{a, b, c}
	for s := 0; s < 3; s++ {
		if v.N[s] == 1 {
			coords[s] = 0
		} else {
			coords[s]++
		}
	}
	return (coords[0]*v.N[1]+coords[1])*v.N[2] + coords[2]
}

// Center is the storage index of the middle owned point.
func (v Volume) Center() int {
	var mid [3]int
	for s := 0; s < 3; s++ {
		lo, hi := v.ownedBounds(s)
		mid[s] = (lo + hi) / 2
	}
	return (mid[0]*v.N[1]+mid[1])*v.N[2] + mid[2]
}

// Owned reports whether i lies outside the ghost layer.
func (v Volume) Owned(i int) bool {
	if i < 0 || i >= v.Ntot() {
		return false
	}
	coords := [3]int{i / (v.N[1] * v.N[2]), (i / v.N[2]) % v.N[1], i % v.N[2]}
	for s := 0; s < 3; s++ {
		lo, hi := v.ownedBounds(s)
		if coords[s] < lo || coords[s] > hi {
			return false
		}
	}
	return true
}
