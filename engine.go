// Package pyrite ties the device, scene, and simulation layers together
// behind a single engine with a fixed per-frame lifecycle: mutate geometry,
// step simulation, then EndFrame to retire replaced buffers.
package pyrite

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pyrite3d/pyrite/geometry"
	"github.com/pyrite3d/pyrite/gpu"
	"github.com/pyrite3d/pyrite/post"
	"github.com/pyrite3d/pyrite/scene"
	"github.com/pyrite3d/pyrite/sim"
)

type Engine struct {
	cfg Config
	log Logger

	device *gpu.Device
	scene  *scene.Scene
	sim    *sim.Engine
	post   *post.Stage

	frame uint64
}

// NewEngine builds an engine over a host allocator. For a real GPU,
// use NewEngineWithAllocator and a wgpu-backed allocator.
func NewEngine(cfg Config) *Engine {
	return NewEngineWithAllocator(cfg, gpu.NewHostAllocator())
}

func NewEngineWithAllocator(cfg Config, alloc gpu.Allocator) *Engine {
	e := &Engine{
		cfg:    cfg,
		log:    NewDefaultLogger(cfg.LogPrefix, cfg.Debug),
		device: gpu.NewDevice(alloc),
		scene:  scene.NewScene(),
		post:   post.NewStage(),
	}
	if cfg.Sim.ParticleCount > 0 {
		e.sim = sim.NewEngine(cfg.Sim.ParticleCount, cfg.Sim.Seed, nil)
		if cfg.Sim.Workers > 0 {
			e.sim.SetWorkers(cfg.Sim.Workers)
		}
	}
	return e
}

func (e *Engine) SetLogger(l Logger) {
	if l != nil {
		e.log = l
	}
}

func (e *Engine) Device() *gpu.Device { return e.device }
func (e *Engine) Scene() *scene.Scene { return e.scene }
func (e *Engine) Sim() *sim.Engine    { return e.sim }
func (e *Engine) Post() *post.Stage   { return e.post }
func (e *Engine) Frame() uint64       { return e.frame }

// SetForceField replaces the force field applied to particles each step.
func (e *Engine) SetForceField(f sim.ForceField) {
	if e.sim == nil {
		return
	}
	e.sim = sim.NewEngine(e.cfg.Sim.ParticleCount, e.cfg.Sim.Seed, f)
	if e.cfg.Sim.Workers > 0 {
		e.sim.SetWorkers(e.cfg.Sim.Workers)
	}
}

// NewPrimitive allocates a primitive with the configured reserve ratio.
func (e *Engine) NewPrimitive(positions []mgl32.Vec3, indices []uint32, mode geometry.DrawMode) (*geometry.Primitive, error) {
	p, err := geometry.NewPrimitive(e.device, positions, indices, mode, float32(e.cfg.Geometry.ReserveRatio))
	if err != nil {
		return nil, fmt.Errorf("failed to create primitive: %w", err)
	}
	return p, nil
}

// AddNode wraps primitives in a scene node and adds it to the scene.
func (e *Engine) AddNode(primitives ...*geometry.Primitive) *scene.Node {
	return e.scene.Add(scene.NewNode(primitives...))
}

// Step advances the particle simulation by dt.
func (e *Engine) Step(dt float32) {
	if e.sim == nil {
		return
	}
	e.sim.Step(e.cfg.Sim.SimParams(dt))
}

// EndFrame marks the frame boundary. Buffers replaced by growth during the
// frame are released here, once no command can still reference them.
func (e *Engine) EndFrame() {
	e.frame++
	if n := e.device.PendingReleases(); n > 0 {
		e.log.Debugf("frame %d: releasing %d retired buffers", e.frame, n)
	}
	e.device.ReleaseDeferred()
}

// Close releases every buffer still held by scene primitives, then drains
// the deferred list.
func (e *Engine) Close() {
	for _, n := range e.scene.Nodes() {
		for _, p := range n.Primitives() {
			p.Release()
		}
	}
	e.device.ReleaseDeferred()
}
