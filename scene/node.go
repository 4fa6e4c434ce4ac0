// Package scene provides the nodes a renderer traverses and their lazily
// computed spatial extents. Geometry mutations push a dirty flag; reading
// bounds pulls a rescan only when something actually moved.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/pyrite3d/pyrite/geometry"
)

// AABB is an axis-aligned box as {min, max}.
type AABB [2]mgl32.Vec3

func (a AABB) Min() mgl32.Vec3 { return a[0] }
func (a AABB) Max() mgl32.Vec3 { return a[1] }

func (a AABB) Center() mgl32.Vec3 {
	return a[0].Add(a[1]).Mul(0.5)
}

func (a AABB) Extents() mgl32.Vec3 {
	return a[1].Sub(a[0])
}

func (a AABB) Union(b AABB) AABB {
	return AABB{
		{min(a[0].X(), b[0].X()), min(a[0].Y(), b[0].Y()), min(a[0].Z(), b[0].Z())},
		{max(a[1].X(), b[1].X()), max(a[1].Y(), b[1].Y()), max(a[1].Z(), b[1].Z())},
	}
}

// Node attaches a bounds cache to a list of primitives. The node registers
// itself as a bounds listener, so any position mutation reaching one of its
// primitives marks the cache dirty.
type Node struct {
	ID string

	primitives []*geometry.Primitive

	bounds AABB
	valid  bool
	dirty  bool
	scans  int
}

func NewNode(primitives ...*geometry.Primitive) *Node {
	n := &Node{
		ID:         uuid.NewString(),
		primitives: primitives,
		dirty:      true,
	}
	for _, p := range primitives {
		p.AddBoundsListener(n)
	}
	return n
}

func (n *Node) Primitives() []*geometry.Primitive { return n.primitives }

// InvalidateBounds marks the cached extent stale. Idempotent.
func (n *Node) InvalidateBounds() {
	n.dirty = true
}

// Dirty reports whether the next Bounds call will rescan.
func (n *Node) Dirty() bool { return n.dirty }

// Scans counts how many times the position buffers have been rescanned.
// Test hook for the laziness contract.
func (n *Node) Scans() int { return n.scans }

// Bounds returns the axis-aligned extent over all primitives, recomputing
// only when dirty. ok is false when no primitive contributes a vertex.
func (n *Node) Bounds() (box AABB, ok bool) {
	if !n.dirty {
		return n.bounds, n.valid
	}
	n.scans++
	n.dirty = false
	n.valid = false

	lo := mgl32.Vec3{mgl32.InfPos, mgl32.InfPos, mgl32.InfPos}
	hi := mgl32.Vec3{mgl32.InfNeg, mgl32.InfNeg, mgl32.InfNeg}
	for _, p := range n.primitives {
		for _, v := range p.Positions() {
			lo = mgl32.Vec3{min(lo.X(), v.X()), min(lo.Y(), v.Y()), min(lo.Z(), v.Z())}
			hi = mgl32.Vec3{max(hi.X(), v.X()), max(hi.Y(), v.Y()), max(hi.Z(), v.Z())}
			n.valid = true
		}
	}
	if n.valid {
		n.bounds = AABB{lo, hi}
	} else {
		n.bounds = AABB{}
	}
	return n.bounds, n.valid
}
