package gpu

import "fmt"

// Handle identifies one device allocation. Handles are opaque and never
// reused within a single Allocator.
type Handle uint64

// Allocator owns raw device memory regions. Implementations must keep every
// operation deterministic so buffer logic can be tested without a GPU.
type Allocator interface {
	Allocate(label string, size uint64) (Handle, error)
	Write(h Handle, offset uint64, data []byte) error
	Copy(dst, src Handle, n uint64) error
	Release(h Handle)
}

// HostAllocator is a deterministic in-memory Allocator. It backs headless
// runs and tests, and keeps operation counters so callers can assert that
// in-place sub-writes never trigger a fresh allocation.
type HostAllocator struct {
	regions map[Handle][]byte
	next    Handle

	// Limit caps the total number of resident bytes. Zero means unlimited.
	Limit uint64
	used  uint64

	Allocs   int
	Writes   int
	Copies   int
	Releases int
}

func NewHostAllocator() *HostAllocator {
	return &HostAllocator{regions: make(map[Handle][]byte)}
}

func (a *HostAllocator) Allocate(label string, size uint64) (Handle, error) {
	if a.Limit > 0 && a.used+size > a.Limit {
		return 0, fmt.Errorf("%w: %q needs %d bytes, %d of %d in use",
			ErrOutOfDeviceMemory, label, size, a.used, a.Limit)
	}
	a.next++
	a.regions[a.next] = make([]byte, size)
	a.used += size
	a.Allocs++
	return a.next, nil
}

func (a *HostAllocator) Write(h Handle, offset uint64, data []byte) error {
	region, ok := a.regions[h]
	if !ok {
		return fmt.Errorf("gpu: write to released handle %d", h)
	}
	if offset+uint64(len(data)) > uint64(len(region)) {
		return fmt.Errorf("%w: %d+%d > %d", ErrCapacityExceeded, offset, len(data), len(region))
	}
	copy(region[offset:], data)
	a.Writes++
	return nil
}

func (a *HostAllocator) Copy(dst, src Handle, n uint64) error {
	d, ok := a.regions[dst]
	if !ok {
		return fmt.Errorf("gpu: copy to released handle %d", dst)
	}
	s, ok := a.regions[src]
	if !ok {
		return fmt.Errorf("gpu: copy from released handle %d", src)
	}
	copy(d[:n], s[:n])
	a.Copies++
	return nil
}

func (a *HostAllocator) Release(h Handle) {
	if region, ok := a.regions[h]; ok {
		a.used -= uint64(len(region))
		delete(a.regions, h)
		a.Releases++
	}
}

// Bytes exposes the backing region of a live allocation. Test hook.
func (a *HostAllocator) Bytes(h Handle) []byte {
	return a.regions[h]
}

// Resident reports how many allocations are currently live.
func (a *HostAllocator) Resident() int {
	return len(a.regions)
}
