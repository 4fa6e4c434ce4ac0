// Package geometry implements mutable mesh primitives whose vertex and index
// data live in device buffers. Topology and positions can be restructured at
// runtime without recreating the primitive; buffer capacity is reserved ahead
// of need through a configurable reserve ratio so repeated growth amortizes.
package geometry

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pyrite3d/pyrite/gpu"
)

const scalarSize = 4 // float32 and uint32 on the device

// BoundsListener is notified when a position mutation changes the spatial
// extent of a primitive. Scene nodes register themselves to keep their
// bounds caches coherent.
type BoundsListener interface {
	InvalidateBounds()
}

// Primitive owns a position buffer of packed 3-vectors and an optional index
// buffer. Both buffers are exclusive to the primitive.
type Primitive struct {
	mode         DrawMode
	reserveRatio float32

	positions []mgl32.Vec3
	indices   []uint32

	posBuf *gpu.Buffer
	idxBuf *gpu.Buffer

	listeners []BoundsListener
}

// NewPrimitive uploads the initial geometry. reserveRatio scales every buffer
// allocation above the exact requirement; values below 1 are treated as 1
// (exact fit).
func NewPrimitive(dev *gpu.Device, positions []mgl32.Vec3, indices []uint32, mode DrawMode, reserveRatio float32) (*Primitive, error) {
	if reserveRatio < 1 {
		reserveRatio = 1
	}
	p := &Primitive{mode: mode, reserveRatio: reserveRatio}

	if len(indices) > 0 {
		if err := p.validateIndices(indices, len(positions)); err != nil {
			return nil, err
		}
	}

	posBuf, err := dev.NewBuffer("primitive positions", p.reserve(len(positions)*3), scalarSize)
	if err != nil {
		return nil, err
	}
	if err := posBuf.WriteRange(0, vec3Bytes(positions)); err != nil {
		posBuf.Release()
		return nil, err
	}
	if err := posBuf.SetLogicalSize(len(positions) * 3); err != nil {
		posBuf.Release()
		return nil, err
	}
	p.posBuf = posBuf
	p.positions = append([]mgl32.Vec3(nil), positions...)

	if len(indices) > 0 {
		idxBuf, err := dev.NewBuffer("primitive indices", p.reserve(len(indices)), scalarSize)
		if err != nil {
			posBuf.Release()
			return nil, err
		}
		if err := idxBuf.WriteRange(0, u32Bytes(indices)); err != nil {
			idxBuf.Release()
			posBuf.Release()
			return nil, err
		}
		if err := idxBuf.SetLogicalSize(len(indices)); err != nil {
			idxBuf.Release()
			posBuf.Release()
			return nil, err
		}
		p.idxBuf = idxBuf
		p.indices = append([]uint32(nil), indices...)
	}

	return p, nil
}

func (p *Primitive) Mode() DrawMode          { return p.mode }
func (p *Primitive) ReserveRatio() float32   { return p.reserveRatio }
func (p *Primitive) Positions() []mgl32.Vec3 { return p.positions }
func (p *Primitive) Indices() []uint32       { return p.indices }
func (p *Primitive) Indexed() bool           { return p.indices != nil }

// VertexCount derives the vertex range from the position buffer's logical
// size in scalars.
func (p *Primitive) VertexCount() int {
	return p.posBuf.LogicalSize() / 3
}

// PositionBuffer exposes the device buffer for draw binding and tests.
func (p *Primitive) PositionBuffer() *gpu.Buffer { return p.posBuf }

// IndexBuffer is nil until the primitive first receives indices.
func (p *Primitive) IndexBuffer() *gpu.Buffer { return p.idxBuf }

// AddBoundsListener registers a listener for position mutations.
func (p *Primitive) AddBoundsListener(l BoundsListener) {
	p.listeners = append(p.listeners, l)
}

// UpdateTopology replaces the index data. A nil or empty slice makes the
// primitive non-indexed; draws then cover the raw vertex range. The update
// is atomic: validation failures leave the previous indices untouched.
// Topology changes never invalidate bounds, since connectivity does not move
// vertices.
func (p *Primitive) UpdateTopology(indices []uint32) error {
	if len(indices) == 0 {
		p.indices = nil
		if p.idxBuf != nil {
			return p.idxBuf.SetLogicalSize(0)
		}
		return nil
	}

	if err := p.validateIndices(indices, p.VertexCount()); err != nil {
		return err
	}

	if p.idxBuf == nil {
		idxBuf, err := p.posBuf.Device().NewBuffer("primitive indices", p.reserve(len(indices)), scalarSize)
		if err != nil {
			return err
		}
		p.idxBuf = idxBuf
	} else if len(indices) > p.idxBuf.Capacity() {
		if err := p.idxBuf.GrowTo(p.reserve(len(indices))); err != nil {
			return err
		}
	}

	if err := p.idxBuf.WriteRange(0, u32Bytes(indices)); err != nil {
		return err
	}
	if err := p.idxBuf.SetLogicalSize(len(indices)); err != nil {
		return err
	}
	p.indices = append(p.indices[:0], indices...)
	return nil
}

// UpdatePositions replaces the vertex positions and invalidates the bounds
// of every registered listener. Shrinking the vertex range below an index
// still referenced by the current topology is rejected before any write.
func (p *Primitive) UpdatePositions(positions []mgl32.Vec3) error {
	if p.indices != nil {
		if err := p.validateIndices(p.indices, len(positions)); err != nil {
			return fmt.Errorf("positions shrink under live topology: %w", err)
		}
	}

	required := len(positions) * 3
	if required > p.posBuf.Capacity() {
		if err := p.posBuf.GrowTo(p.reserve(required)); err != nil {
			return err
		}
	}
	if err := p.posBuf.WriteRange(0, vec3Bytes(positions)); err != nil {
		return err
	}
	if err := p.posBuf.SetLogicalSize(required); err != nil {
		return err
	}
	p.positions = append(p.positions[:0], positions...)

	for _, l := range p.listeners {
		l.InvalidateBounds()
	}
	return nil
}

// UpdatePositionsRaw accepts a flat scalar array as delivered by asset
// loaders. The length must be a multiple of 3.
func (p *Primitive) UpdatePositionsRaw(data []float32) error {
	if len(data)%3 != 0 {
		return fmt.Errorf("%w: %d scalars do not form 3-vectors", ErrDimensionMismatch, len(data))
	}
	positions := make([]mgl32.Vec3, len(data)/3)
	for i := range positions {
		positions[i] = mgl32.Vec3{data[i*3], data[i*3+1], data[i*3+2]}
	}
	return p.UpdatePositions(positions)
}

// Release frees both device buffers.
func (p *Primitive) Release() {
	p.posBuf.Release()
	if p.idxBuf != nil {
		p.idxBuf.Release()
	}
}

func (p *Primitive) validateIndices(indices []uint32, vertexCount int) error {
	unit := p.mode.IndexStride()
	if len(indices)%unit != 0 {
		return fmt.Errorf("%w: %d indices are not %s tuples of %d",
			ErrDimensionMismatch, len(indices), p.mode, unit)
	}
	for i, idx := range indices {
		if int(idx) >= vertexCount {
			return fmt.Errorf("%w: index %d at position %d, vertex count %d",
				ErrIndexOutOfRange, idx, i, vertexCount)
		}
	}
	return nil
}

func (p *Primitive) reserve(n int) int {
	return int(math32.Ceil(float32(n) * p.reserveRatio))
}

func vec3Bytes(v []mgl32.Vec3) []byte {
	out := make([]byte, len(v)*3*scalarSize)
	for i, p := range v {
		binary.LittleEndian.PutUint32(out[i*12:], math.Float32bits(p.X()))
		binary.LittleEndian.PutUint32(out[i*12+4:], math.Float32bits(p.Y()))
		binary.LittleEndian.PutUint32(out[i*12+8:], math.Float32bits(p.Z()))
	}
	return out
}

func u32Bytes(v []uint32) []byte {
	out := make([]byte, len(v)*scalarSize)
	for i, x := range v {
		binary.LittleEndian.PutUint32(out[i*4:], x)
	}
	return out
}
