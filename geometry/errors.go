package geometry

import "errors"

var (
	// ErrIndexOutOfRange is returned when topology references a vertex past
	// the current vertex count, or a mesh operation names a primitive slot
	// that does not exist. The update is rejected before any write.
	ErrIndexOutOfRange = errors.New("geometry: index out of range")

	// ErrDimensionMismatch is returned for input whose shape does not match
	// the draw mode or attribute width.
	ErrDimensionMismatch = errors.New("geometry: dimension mismatch")
)
