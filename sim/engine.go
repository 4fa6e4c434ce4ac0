// Package sim advances a fixed-size particle population with a double-buffered
// state and a per-record life cycle. Each step is a pure parallel map: a
// record reads only its own previous state, so workers never synchronize.
package sim

import (
	"runtime"
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Particle is one simulation record. Life at or below zero marks the record
// dead and pending respawn on the next step.
type Particle struct {
	Position mgl32.Vec3
	Velocity mgl32.Vec3
	Life     float32
	Size     float32
	Color    mgl32.Vec4
}

// Params is the read-only per-step configuration block.
type Params struct {
	DeltaTime float32
	Gravity   mgl32.Vec3
	Damping   float32

	MinLife float32
	MaxLife float32

	EmitRadius float32
	MinSpeed   float32
	MaxSpeed   float32
	MinSize    float32
	MaxSize    float32

	ColorEnabled bool
}

// Engine owns two equally sized record arrays used in ping-pong fashion:
// the front array is authoritative for reads this frame, the back array
// receives the next state. Population size is fixed at creation.
type Engine struct {
	buf   [2][]Particle
	front int

	step    uint32
	seed    uint32
	field   ForceField
	workers int
}

// NewEngine creates an engine with count records, all dead, so the first
// step spawns the whole population deterministically from seed.
func NewEngine(count int, seed uint32, field ForceField) *Engine {
	return &Engine{
		buf:     [2][]Particle{make([]Particle, count), make([]Particle, count)},
		seed:    seed,
		field:   field,
		workers: runtime.GOMAXPROCS(0),
	}
}

// SetWorkers overrides the parallelism. Values below 1 reset to 1.
func (e *Engine) SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	e.workers = n
}

// Particles is the authoritative record array for the current frame.
func (e *Engine) Particles() []Particle { return e.buf[e.front] }

// Previous is last frame's state, kept valid for interpolated rendering.
func (e *Engine) Previous() []Particle { return e.buf[1-e.front] }

// StepCount reports how many steps have been simulated.
func (e *Engine) StepCount() uint32 { return e.step }

// Step advances every record once by p.DeltaTime and swaps the buffers.
func (e *Engine) Step(p Params) {
	src := e.buf[e.front]
	dst := e.buf[1-e.front]

	parallelFor(len(src), e.workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			dst[i] = e.advance(src[i], uint32(i), p)
		}
	})

	e.front = 1 - e.front
	e.step++
}

func (e *Engine) advance(pt Particle, index uint32, p Params) Particle {
	pt.Life -= p.DeltaTime
	if pt.Life <= 0 {
		// Dead records respawn in the same step; no step is consumed dormant.
		return e.respawn(index, p)
	}

	force := p.Gravity
	if e.field != nil {
		force = force.Add(e.field.At(pt.Position))
	}
	pt.Velocity = pt.Velocity.Mul(p.Damping).Add(force.Mul(p.DeltaTime))
	pt.Position = pt.Position.Add(pt.Velocity.Mul(p.DeltaTime))
	return pt
}

func (e *Engine) respawn(index uint32, p Params) Particle {
	r := newRNG(e.seed, e.step, index)

	// Uniform volumetric density: radius distributed as cbrt of a uniform draw.
	theta := 2 * math32.Pi * r.float()
	cosPhi := 2*r.float() - 1
	sinPhi := math32.Sqrt(1 - cosPhi*cosPhi)
	radius := p.EmitRadius * math32.Cbrt(r.float())

	pos := mgl32.Vec3{
		radius * sinPhi * math32.Cos(theta),
		radius * sinPhi * math32.Sin(theta),
		radius * cosPhi,
	}

	dir := mgl32.Vec3{sinPhi * math32.Cos(theta), sinPhi * math32.Sin(theta), cosPhi}

	pt := Particle{
		Position: pos,
		Velocity: dir.Mul(r.rangeFloat(p.MinSpeed, p.MaxSpeed)),
		Life:     r.rangeFloat(p.MinLife, p.MaxLife),
		Size:     r.rangeFloat(p.MinSize, p.MaxSize),
	}
	if p.ColorEnabled {
		pt.Color = mgl32.Vec4{
			0.5 + 0.5*r.float(),
			0.5 + 0.5*r.float(),
			0.5 + 0.5*r.float(),
			1,
		}
	}
	return pt
}

func parallelFor(n, workers int, fn func(lo, hi int)) {
	if workers <= 1 || n < 256 {
		fn(0, n)
		return
	}
	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += chunk {
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fn(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}
