package field

import "errors"

var (
	// ErrInvalidDimension indicates a grid too small to have interior points.
	ErrInvalidDimension = errors.New("field: grid must be at least 3x3")

	// ErrInvalidParameter indicates a non-positive physical size, diffusion
	// coefficient or a negative step count.
	ErrInvalidParameter = errors.New("field: invalid parameter")

	// ErrIndexOutOfRange is the panic value for accessor misuse.
	ErrIndexOutOfRange = errors.New("field: index out of range")
)
