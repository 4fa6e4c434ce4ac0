package gpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferSubWriteNeverAllocates(t *testing.T) {
	alloc := NewHostAllocator()
	dev := NewDevice(alloc)

	buf, err := dev.NewBuffer("positions", 16, 4)
	require.NoError(t, err)
	require.Equal(t, 1, alloc.Allocs)

	data := make([]byte, 8*4)
	require.NoError(t, buf.WriteRange(0, data))
	require.NoError(t, buf.WriteRange(8, data))

	assert.Equal(t, 1, alloc.Allocs, "in-place sub-writes must not allocate")
	assert.Equal(t, 2, alloc.Writes)
	assert.Equal(t, 16, buf.Capacity())
}

func TestBufferWriteRangeCapacityExceeded(t *testing.T) {
	dev := NewDevice(NewHostAllocator())
	buf, err := dev.NewBuffer("idx", 4, 4)
	require.NoError(t, err)
	require.NoError(t, buf.SetLogicalSize(4))

	err = buf.WriteRange(2, make([]byte, 3*4))
	require.ErrorIs(t, err, ErrCapacityExceeded)

	// Failure is non-destructive.
	assert.Equal(t, 4, buf.Capacity())
	assert.Equal(t, 4, buf.LogicalSize())
}

func TestBufferWriteRangeStrideMismatch(t *testing.T) {
	dev := NewDevice(NewHostAllocator())
	buf, err := dev.NewBuffer("idx", 4, 4)
	require.NoError(t, err)

	require.Error(t, buf.WriteRange(0, make([]byte, 6)))
}

func TestBufferGrowToCopiesLiveContents(t *testing.T) {
	alloc := NewHostAllocator()
	dev := NewDevice(alloc)

	buf, err := dev.NewBuffer("grow", 4, 1)
	require.NoError(t, err)
	require.NoError(t, buf.WriteRange(0, []byte{1, 2, 3, 4}))
	require.NoError(t, buf.SetLogicalSize(4))

	require.NoError(t, buf.GrowTo(10))
	assert.Equal(t, 10, buf.Capacity())
	assert.Equal(t, 4, buf.LogicalSize())
	assert.Equal(t, []byte{1, 2, 3, 4}, alloc.Bytes(buf.Handle())[:4])
}

func TestBufferGrowToSmallerIsNoop(t *testing.T) {
	alloc := NewHostAllocator()
	dev := NewDevice(alloc)
	buf, err := dev.NewBuffer("grow", 8, 4)
	require.NoError(t, err)

	require.NoError(t, buf.GrowTo(8))
	require.NoError(t, buf.GrowTo(3))
	assert.Equal(t, 8, buf.Capacity())
	assert.Equal(t, 1, alloc.Allocs)
}

func TestDeviceDeferredRelease(t *testing.T) {
	alloc := NewHostAllocator()
	dev := NewDevice(alloc)

	buf, err := dev.NewBuffer("deferred", 4, 4)
	require.NoError(t, err)
	require.NoError(t, buf.GrowTo(16))

	// The retired region stays resident until the safe point.
	assert.Equal(t, 1, dev.PendingReleases())
	assert.Equal(t, 2, alloc.Resident())
	assert.Equal(t, 0, alloc.Releases)

	dev.ReleaseDeferred()
	assert.Equal(t, 0, dev.PendingReleases())
	assert.Equal(t, 1, alloc.Resident())
	assert.Equal(t, 1, alloc.Releases)
}

func TestAllocatorOutOfMemory(t *testing.T) {
	alloc := NewHostAllocator()
	alloc.Limit = 64
	dev := NewDevice(alloc)

	buf, err := dev.NewBuffer("fits", 8, 4)
	require.NoError(t, err)

	_, err = dev.NewBuffer("too big", 16, 4)
	require.ErrorIs(t, err, ErrOutOfDeviceMemory)

	// Growth failure surfaces the allocation error and keeps the buffer intact.
	err = buf.GrowTo(32)
	require.ErrorIs(t, err, ErrOutOfDeviceMemory)
	assert.Equal(t, 8, buf.Capacity())

	// Freeing makes room for a retry.
	buf.Release()
	_, err = dev.NewBuffer("retry", 16, 4)
	require.NoError(t, err)
}

func TestSetLogicalSizeBounds(t *testing.T) {
	dev := NewDevice(NewHostAllocator())
	buf, err := dev.NewBuffer("logical", 4, 4)
	require.NoError(t, err)

	require.NoError(t, buf.SetLogicalSize(4))
	require.ErrorIs(t, buf.SetLogicalSize(5), ErrCapacityExceeded)
	require.Error(t, buf.SetLogicalSize(-1))
	assert.Equal(t, 4, buf.LogicalSize())
}
