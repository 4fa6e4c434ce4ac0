package sim

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// ForceField supplies an external acceleration per position. Implementations
// must be pure: the simulation step samples them concurrently.
type ForceField interface {
	At(pos mgl32.Vec3) mgl32.Vec3
}

// Uniform applies the same vector everywhere, e.g. wind.
type Uniform struct {
	Vec mgl32.Vec3
}

func (f Uniform) At(mgl32.Vec3) mgl32.Vec3 { return f.Vec }

// PointAttractor pulls particles toward a point with inverse-square falloff.
// The +1 in the denominator keeps the force finite at zero distance.
type PointAttractor struct {
	Pos      mgl32.Vec3
	Strength float32
}

func (f PointAttractor) At(pos mgl32.Vec3) mgl32.Vec3 {
	d := f.Pos.Sub(pos)
	d2 := d.Dot(d)
	dist := math32.Sqrt(d2)
	if dist == 0 {
		return mgl32.Vec3{}
	}
	return d.Mul(f.Strength / (dist * (d2 + 1)))
}
