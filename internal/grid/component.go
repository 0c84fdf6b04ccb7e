package grid

import (
	"fmt"
	"strings"
)

// Direction is a spatial axis. R and P are the radial and azimuthal axes of
// cylindrical coordinates.
type Direction int

const (
	X Direction = iota
	Y
	Z
	R
	P
	NumDirections
)

func (d Direction) String() string {
	switch d {
	case X:
		return "x"
	case Y:
		return "y"
	case Z:
		return "z"
	case R:
		return "r"
	case P:
		return "p"
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

// Cartesian reports whether d is one of x, y or z.
func (d Direction) Cartesian() bool { return d >= X && d <= Z }

// FieldType groups the components of one field.
type FieldType int

const (
	E FieldType = iota
	H
	D
	B
	NumFieldTypes
)

func (ft FieldType) String() string {
	switch ft {
	case E:
		return "E"
	case H:
		return "H"
	case D:
		return "D"
	case B:
		return "B"
	}
	return fmt.Sprintf("fieldtype(%d)", int(ft))
}

// Component returns the component of ft along d.
func (ft FieldType) Component(d Direction) Component {
	return Component(int(ft)*int(NumDirections) + int(d))
}

// Polarized returns the field a polarization of type ft is subtracted from:
// electric polarization comes off D, magnetic off B.
func (ft FieldType) Polarized() FieldType {
	if ft == E {
		return D
	}
	return B
}

// Component is a single field component. Components are laid out field-type
// major, direction minor, so iterating 0..NumComponents is deterministic.
type Component int

const (
	Ex Component = iota
	Ey
	Ez
	Er
	Ep
	Hx
	Hy
	Hz
	Hr
	Hp
	Dx
	Dy
	Dz
	Dr
	Dp
	Bx
	By
	Bz
	Br
	Bp
	NumComponents
)

func (c Component) Type() FieldType      { return FieldType(int(c) / int(NumDirections)) }
func (c Component) Direction() Direction { return Direction(int(c) % int(NumDirections)) }
func (c Component) Valid() bool          { return c >= 0 && c < NumComponents }

func (c Component) String() string {
	if !c.Valid() {
		return fmt.Sprintf("component(%d)", int(c))
	}
	return c.Type().String() + c.Direction().String()
}

func IsElectric(c Component) bool { return c.Valid() && c.Type() == E }
func IsMagnetic(c Component) bool { return c.Valid() && c.Type() == H }

// DirectionComponent returns the component of c's field type along d.
func DirectionComponent(c Component, d Direction) Component {
	return c.Type().Component(d)
}

// ParseComponent accepts names like "Ex" or "hz".
func ParseComponent(s string) (Component, error) {
	for c := Component(0); c < NumComponents; c++ {
		if strings.EqualFold(c.String(), s) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown component: %q", s)
}

// ParseDirection accepts "x", "y", "z", "r" or "p".
func ParseDirection(s string) (Direction, error) {
	for d := X; d < NumDirections; d++ {
		if strings.EqualFold(d.String(), s) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown direction: %q", s)
}
