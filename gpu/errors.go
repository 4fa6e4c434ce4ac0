package gpu

import "errors"

var (
	// ErrOutOfDeviceMemory is returned when the allocator cannot satisfy an
	// allocation request. Fatal to the requested operation only; the caller
	// may free resources and retry.
	ErrOutOfDeviceMemory = errors.New("gpu: out of device memory")

	// ErrCapacityExceeded is returned when a sub-range write would run past
	// the buffer's capacity. Normally masked by automatic growth; it only
	// surfaces when growth itself fails or is bypassed.
	ErrCapacityExceeded = errors.New("gpu: write exceeds buffer capacity")
)
