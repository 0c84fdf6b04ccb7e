package susceptibility

import "errors"

var (
	// ErrNotPolarizable is returned when a coefficient is set on a component
	// that is neither electric nor magnetic.
	ErrNotPolarizable = errors.New("susceptibility: component is neither electric nor magnetic")

	// ErrSigmaLength is returned when a coefficient array does not match the
	// chunk's point count.
	ErrSigmaLength = errors.New("susceptibility: sigma length does not match grid points")

	// ErrCylindrical is returned by gyrotropic updates on a non-Cartesian
	// principal direction. It is a setup error and cannot be recovered.
	ErrCylindrical = errors.New("susceptibility: cylindrical coordinates are not supported for gyrotropic media")

	// ErrBadRecord indicates a malformed parameter record stream.
	ErrBadRecord = errors.New("susceptibility: malformed parameter record")

	// ErrBadSnapshot indicates a state snapshot that cannot be decoded.
	ErrBadSnapshot = errors.New("susceptibility: malformed state snapshot")
)
