// Package tess computes adaptive subdivision levels per patch from viewer
// distance and expands triangular patches into displaced geometry. All three
// outer edge levels and the inner level share one value per patch; adjacent
// patches may therefore tessellate differently and T-junction cracks are an
// accepted limitation of the design.
package tess

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Params is the per-draw-call configuration, supplied fresh each call.
type Params struct {
	BaseLevel          float32
	DistanceMultiplier float32
	MaxLevel           float32
	Viewer             mgl32.Vec3
}

// Vertex is one patch corner.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
}

// Patch is a triangular input patch.
type Patch struct {
	V0, V1, V2 Vertex
}

func (p Patch) Center() mgl32.Vec3 {
	return p.V0.Position.Add(p.V1.Position).Add(p.V2.Position).Mul(1.0 / 3.0)
}

// LevelFor picks the subdivision level for a patch:
// clamp(base * multiplier / distance(center, viewer), 1, max).
// A viewer sitting on the patch center gets the maximum level.
func (p Params) LevelFor(patch Patch) float32 {
	dist := patch.Center().Sub(p.Viewer).Len()
	if dist == 0 {
		return p.MaxLevel
	}
	return mgl32.Clamp(p.BaseLevel*p.DistanceMultiplier/dist, 1, p.MaxLevel)
}

// HeightField samples displacement heights over the patch UV domain.
type HeightField interface {
	Sample(u, v float32) float32
}

// ConstantField returns the same height everywhere.
type ConstantField float32

func (f ConstantField) Sample(u, v float32) float32 { return float32(f) }

// TextureField samples a row-major float grid with bilinear filtering and
// clamped edges.
type TextureField struct {
	W, H int
	Data []float32
}

func (f *TextureField) Sample(u, v float32) float32 {
	if f.W == 0 || f.H == 0 {
		return 0
	}
	x := mgl32.Clamp(u, 0, 1) * float32(f.W-1)
	y := mgl32.Clamp(v, 0, 1) * float32(f.H-1)
	x0, y0 := int(x), int(y)
	x1, y1 := x0+1, y0+1
	if x1 >= f.W {
		x1 = f.W - 1
	}
	if y1 >= f.H {
		y1 = f.H - 1
	}
	fx, fy := x-float32(x0), y-float32(y0)

	top := f.at(x0, y0)*(1-fx) + f.at(x1, y0)*fx
	bot := f.at(x0, y1)*(1-fx) + f.at(x1, y1)*fx
	return top*(1-fy) + bot*fy
}

func (f *TextureField) at(x, y int) float32 {
	return f.Data[y*f.W+x]
}

// Tessellate subdivides a patch at the given level and displaces every
// generated point along its interpolated, renormalized normal by
// field.Sample(uv)*scale + bias. Levels are truncated to integers, minimum 1.
// The returned indices triangulate the barycentric grid.
func Tessellate(patch Patch, level float32, field HeightField, scale, bias float32) ([]Vertex, []uint32) {
	n := int(level)
	if n < 1 {
		n = 1
	}

	// Points at barycentric coordinates (i, j, n-i-j)/n, row-major by i.
	verts := make([]Vertex, 0, (n+1)*(n+2)/2)
	rowStart := make([]int, n+1)
	for i := 0; i <= n; i++ {
		rowStart[i] = len(verts)
		for j := 0; j <= n-i; j++ {
			b := mgl32.Vec3{
				float32(n-i-j) / float32(n),
				float32(j) / float32(n),
				float32(i) / float32(n),
			}
			verts = append(verts, displacedPoint(patch, b, field, scale, bias))
		}
	}

	indices := make([]uint32, 0, n*n*3)
	for i := 0; i < n; i++ {
		for j := 0; j < n-i; j++ {
			a := rowStart[i] + j
			b := a + 1
			c := rowStart[i+1] + j
			indices = append(indices, uint32(a), uint32(b), uint32(c))
			if j < n-i-1 {
				d := rowStart[i+1] + j + 1
				indices = append(indices, uint32(b), uint32(d), uint32(c))
			}
		}
	}
	return verts, indices
}

func displacedPoint(patch Patch, bary mgl32.Vec3, field HeightField, scale, bias float32) Vertex {
	pos := patch.V0.Position.Mul(bary.X()).
		Add(patch.V1.Position.Mul(bary.Y())).
		Add(patch.V2.Position.Mul(bary.Z()))
	normal := patch.V0.Normal.Mul(bary.X()).
		Add(patch.V1.Normal.Mul(bary.Y())).
		Add(patch.V2.Normal.Mul(bary.Z()))
	uv := mgl32.Vec2{
		patch.V0.UV.X()*bary.X() + patch.V1.UV.X()*bary.Y() + patch.V2.UV.X()*bary.Z(),
		patch.V0.UV.Y()*bary.X() + patch.V1.UV.Y()*bary.Y() + patch.V2.UV.Y()*bary.Z(),
	}

	if l := normal.Len(); l > 1e-6 {
		normal = normal.Mul(1 / l)
	} else {
		normal = mgl32.Vec3{0, 1, 0}
	}

	height := float32(0)
	if field != nil {
		height = field.Sample(uv.X(), uv.Y())
	}
	pos = pos.Add(normal.Mul(height*scale + bias))

	return Vertex{Position: pos, Normal: normal, UV: uv}
}

// SubdividedTriangles reports how many triangles a level produces, useful
// for sizing output buffers ahead of a dispatch.
func SubdividedTriangles(level float32) int {
	n := int(level)
	if n < 1 {
		n = 1
	}
	return n * n
}
