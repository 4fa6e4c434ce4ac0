package geometry

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Mesh is an ordered collection of primitives. Mutations address primitives
// by position; nothing links the primitives to each other.
type Mesh struct {
	primitives []*Primitive
}

func NewMesh(primitives ...*Primitive) *Mesh {
	return &Mesh{primitives: primitives}
}

func (m *Mesh) Primitives() []*Primitive { return m.primitives }

func (m *Mesh) Primitive(i int) (*Primitive, error) {
	if i < 0 || i >= len(m.primitives) {
		return nil, fmt.Errorf("%w: primitive %d of %d", ErrIndexOutOfRange, i, len(m.primitives))
	}
	return m.primitives[i], nil
}

// UpdateTopology forwards new index data to the primitive at primitiveIndex.
func (m *Mesh) UpdateTopology(indices []uint32, primitiveIndex int) error {
	p, err := m.Primitive(primitiveIndex)
	if err != nil {
		return err
	}
	return p.UpdateTopology(indices)
}

// UpdatePositions forwards new vertex positions to the primitive at
// primitiveIndex.
func (m *Mesh) UpdatePositions(positions []mgl32.Vec3, primitiveIndex int) error {
	p, err := m.Primitive(primitiveIndex)
	if err != nil {
		return err
	}
	return p.UpdatePositions(positions)
}

// Release frees the device buffers of every primitive.
func (m *Mesh) Release() {
	for _, p := range m.primitives {
		p.Release()
	}
}
