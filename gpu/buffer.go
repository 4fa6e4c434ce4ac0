// Package gpu manages device-resident memory with an explicit
// capacity/logical-size distinction. Buffers never grow implicitly: a write
// that fits the reserved capacity is a cheap sub-range update, and growth
// happens only through GrowTo, which is a synchronization point (see Device).
package gpu

import "fmt"

// Device wraps an Allocator and tracks handles whose release must be
// deferred until no in-flight work references them. ReleaseDeferred is the
// safe point, normally driven once per frame.
type Device struct {
	alloc    Allocator
	deferred []Handle
}

func NewDevice(alloc Allocator) *Device {
	return &Device{alloc: alloc}
}

// NewBuffer reserves capacity*stride bytes of device memory.
func (d *Device) NewBuffer(label string, capacity, stride int) (*Buffer, error) {
	h, err := d.alloc.Allocate(label, uint64(capacity)*uint64(stride))
	if err != nil {
		return nil, fmt.Errorf("allocating %q: %w", label, err)
	}
	return &Buffer{dev: d, handle: h, label: label, capacity: capacity, stride: stride}, nil
}

// ReleaseDeferred frees every region retired by GrowTo since the last call.
// The caller must guarantee that previously submitted device work has
// completed before invoking it.
func (d *Device) ReleaseDeferred() {
	for _, h := range d.deferred {
		d.alloc.Release(h)
	}
	d.deferred = d.deferred[:0]
}

// PendingReleases reports how many retired regions await ReleaseDeferred.
func (d *Device) PendingReleases() int {
	return len(d.deferred)
}

func (d *Device) Allocator() Allocator {
	return d.alloc
}

// Buffer is an owned, resizable region of device memory. Capacity and
// logical size are counted in elements of stride bytes; logicalSize never
// exceeds capacity.
type Buffer struct {
	dev      *Device
	handle   Handle
	label    string
	capacity int
	logical  int
	stride   int
}

func (b *Buffer) Capacity() int    { return b.capacity }
func (b *Buffer) LogicalSize() int { return b.logical }
func (b *Buffer) Stride() int      { return b.stride }
func (b *Buffer) Label() string    { return b.label }
func (b *Buffer) Handle() Handle   { return b.handle }
func (b *Buffer) Device() *Device  { return b.dev }

// WriteRange updates elements [offset, offset+len(data)/stride) in place.
// It never allocates; a write that does not fit fails with
// ErrCapacityExceeded and leaves the buffer untouched.
func (b *Buffer) WriteRange(offset int, data []byte) error {
	if len(data)%b.stride != 0 {
		return fmt.Errorf("gpu: %q write of %d bytes is not a multiple of stride %d",
			b.label, len(data), b.stride)
	}
	n := len(data) / b.stride
	if offset+n > b.capacity {
		return fmt.Errorf("%w: %q range %d+%d over capacity %d",
			ErrCapacityExceeded, b.label, offset, n, b.capacity)
	}
	return b.dev.alloc.Write(b.handle, uint64(offset)*uint64(b.stride), data)
}

// GrowTo reallocates the buffer at newCapacity elements, copying the live
// contents. The old region is retired to the device's deferred-release list
// rather than freed immediately, so draw or compute commands still
// referencing it stay valid until ReleaseDeferred. Growing to the current
// capacity or less is a no-op.
func (b *Buffer) GrowTo(newCapacity int) error {
	if newCapacity <= b.capacity {
		return nil
	}
	h, err := b.dev.alloc.Allocate(b.label, uint64(newCapacity)*uint64(b.stride))
	if err != nil {
		return fmt.Errorf("growing %q to %d elements: %w", b.label, newCapacity, err)
	}
	if b.logical > 0 {
		if err := b.dev.alloc.Copy(h, b.handle, uint64(b.logical)*uint64(b.stride)); err != nil {
			b.dev.alloc.Release(h)
			return fmt.Errorf("migrating %q: %w", b.label, err)
		}
	}
	b.dev.deferred = append(b.dev.deferred, b.handle)
	b.handle = h
	b.capacity = newCapacity
	return nil
}

// SetLogicalSize adjusts the live element count without touching storage.
func (b *Buffer) SetLogicalSize(n int) error {
	if n < 0 || n > b.capacity {
		return fmt.Errorf("%w: %q logical size %d over capacity %d",
			ErrCapacityExceeded, b.label, n, b.capacity)
	}
	b.logical = n
	return nil
}

// Release frees the backing region immediately. The caller owns the
// synchronization obligation.
func (b *Buffer) Release() {
	if b.handle != 0 {
		b.dev.alloc.Release(b.handle)
		b.handle = 0
	}
}
