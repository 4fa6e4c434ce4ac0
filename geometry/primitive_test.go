package geometry

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyrite3d/pyrite/gpu"
)

func quadPositions() []mgl32.Vec3 {
	return []mgl32.Vec3{
		{0, 0, 0},
		{1, 0, 0},
		{0, 1, 0},
		{1, 1, 0},
	}
}

func newTestDevice() (*gpu.Device, *gpu.HostAllocator) {
	alloc := gpu.NewHostAllocator()
	return gpu.NewDevice(alloc), alloc
}

func TestUpdateTopologyWithinCapacityKeepsCapacity(t *testing.T) {
	dev, alloc := newTestDevice()
	prim, err := NewPrimitive(dev, quadPositions(), []uint32{0, 1, 2, 1, 3, 2}, Triangles, 1.0)
	require.NoError(t, err)

	cap0 := prim.IndexBuffer().Capacity()
	allocs := alloc.Allocs

	require.NoError(t, prim.UpdateTopology([]uint32{0, 1, 3}))

	assert.Equal(t, cap0, prim.IndexBuffer().Capacity(), "fitting update must not change capacity")
	assert.Equal(t, allocs, alloc.Allocs, "fitting update must not allocate")
	assert.Equal(t, 3, prim.IndexBuffer().LogicalSize())
}

func TestReserveRatioContract(t *testing.T) {
	dev, _ := newTestDevice()
	prim, err := NewPrimitive(dev, quadPositions(), []uint32{0, 1}, Lines, 1.5)
	require.NoError(t, err)

	// Trigger growth: 8 indices required, capacity currently 3.
	indices := []uint32{0, 1, 1, 2, 2, 3, 3, 0}
	require.NoError(t, prim.UpdateTopology(indices))

	c := len(indices)
	capacity := prim.IndexBuffer().Capacity()
	assert.GreaterOrEqual(t, capacity, c)
	assert.LessOrEqual(t, capacity, c*3/2+1, "capacity must stay within c*ratio plus rounding")
}

func TestUpdateTopologyAtomicOnBadIndex(t *testing.T) {
	dev, alloc := newTestDevice()
	initial := []uint32{0, 1, 2}
	prim, err := NewPrimitive(dev, quadPositions(), initial, Triangles, 1.0)
	require.NoError(t, err)

	size0 := prim.IndexBuffer().LogicalSize()
	raw0 := append([]byte(nil), alloc.Bytes(prim.IndexBuffer().Handle())...)

	err = prim.UpdateTopology([]uint32{0, 1, 9})
	require.ErrorIs(t, err, ErrIndexOutOfRange)

	assert.Equal(t, size0, prim.IndexBuffer().LogicalSize())
	assert.Equal(t, raw0, alloc.Bytes(prim.IndexBuffer().Handle()), "failed update must leave buffer contents intact")
	assert.Equal(t, initial, prim.Indices())
}

func TestUpdateTopologyTupleWidth(t *testing.T) {
	dev, _ := newTestDevice()
	prim, err := NewPrimitive(dev, quadPositions(), []uint32{0, 1, 2}, Triangles, 1.0)
	require.NoError(t, err)

	err = prim.UpdateTopology([]uint32{0, 1})
	require.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestUpdateTopologyNonIndexed(t *testing.T) {
	dev, _ := newTestDevice()
	prim, err := NewPrimitive(dev, quadPositions(), []uint32{0, 1, 2}, Triangles, 1.0)
	require.NoError(t, err)

	require.NoError(t, prim.UpdateTopology(nil))
	assert.False(t, prim.Indexed())
	assert.Equal(t, 0, prim.IndexBuffer().LogicalSize())
	// Capacity survives for a later switch back to indexed drawing.
	assert.Greater(t, prim.IndexBuffer().Capacity(), 0)

	require.NoError(t, prim.UpdateTopology([]uint32{1, 2, 3}))
	assert.True(t, prim.Indexed())
}

func TestSkeletonRedrawScenario(t *testing.T) {
	// Four joints, four bone segments, reserve ratio 2.
	dev, _ := newTestDevice()
	prim, err := NewPrimitive(dev, quadPositions(), []uint32{0, 1, 1, 2, 2, 3, 3, 0}, Lines, 2.0)
	require.NoError(t, err)
	require.Equal(t, 16, prim.IndexBuffer().Capacity())

	// Two segments: logical size shrinks, capacity untouched.
	require.NoError(t, prim.UpdateTopology([]uint32{0, 1, 2, 3}))
	assert.Equal(t, 4, prim.IndexBuffer().LogicalSize())
	assert.Equal(t, 16, prim.IndexBuffer().Capacity())

	// Ten segments: growth to at least 20 slots.
	ten := make([]uint32, 0, 20)
	for i := 0; i < 10; i++ {
		ten = append(ten, uint32(i%4), uint32((i+1)%4))
	}
	require.NoError(t, prim.UpdateTopology(ten))
	assert.Equal(t, 20, prim.IndexBuffer().LogicalSize())
	assert.GreaterOrEqual(t, prim.IndexBuffer().Capacity(), 20)
	assert.LessOrEqual(t, prim.IndexBuffer().Capacity(), 40)
}

type invalidationCounter struct{ n int }

func (c *invalidationCounter) InvalidateBounds() { c.n++ }

func TestOnlyPositionUpdatesInvalidateBounds(t *testing.T) {
	dev, _ := newTestDevice()
	prim, err := NewPrimitive(dev, quadPositions(), []uint32{0, 1, 2}, Triangles, 1.0)
	require.NoError(t, err)

	counter := &invalidationCounter{}
	prim.AddBoundsListener(counter)

	require.NoError(t, prim.UpdateTopology([]uint32{1, 2, 3}))
	assert.Equal(t, 0, counter.n, "topology alone must not dirty bounds")

	require.NoError(t, prim.UpdatePositions(quadPositions()))
	assert.Equal(t, 1, counter.n)
}

func TestUpdatePositionsGrowth(t *testing.T) {
	dev, _ := newTestDevice()
	prim, err := NewPrimitive(dev, quadPositions()[:2], nil, Points, 2.0)
	require.NoError(t, err)
	assert.Equal(t, 12, prim.PositionBuffer().Capacity())

	require.NoError(t, prim.UpdatePositions(quadPositions()))
	assert.Equal(t, 12, prim.PositionBuffer().LogicalSize())
	assert.GreaterOrEqual(t, prim.PositionBuffer().Capacity(), 12)
	assert.Equal(t, 4, prim.VertexCount())
}

func TestUpdatePositionsShrinkUnderLiveTopology(t *testing.T) {
	dev, _ := newTestDevice()
	prim, err := NewPrimitive(dev, quadPositions(), []uint32{0, 3, 2}, Triangles, 1.0)
	require.NoError(t, err)

	err = prim.UpdatePositions(quadPositions()[:2])
	require.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.Equal(t, 4, prim.VertexCount(), "rejected shrink must not touch the buffer")
}

func TestUpdatePositionsRaw(t *testing.T) {
	dev, _ := newTestDevice()
	prim, err := NewPrimitive(dev, quadPositions()[:3], nil, Points, 1.0)
	require.NoError(t, err)

	require.ErrorIs(t, prim.UpdatePositionsRaw([]float32{1, 2}), ErrDimensionMismatch)

	require.NoError(t, prim.UpdatePositionsRaw([]float32{0, 0, 5, 1, 0, 5, 0, 1, 5}))
	assert.Equal(t, mgl32.Vec3{0, 0, 5}, prim.Positions()[0])
}

func TestConstructorRejectsBadIndices(t *testing.T) {
	dev, _ := newTestDevice()
	_, err := NewPrimitive(dev, quadPositions(), []uint32{0, 1, 7}, Triangles, 1.0)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}
