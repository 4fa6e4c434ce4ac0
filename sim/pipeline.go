package sim

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/pyrite3d/pyrite/shaders"
)

const particleStride = 48 // vec3+life, vec3+size, vec4 color

// Pipeline runs the particle step on the device. State lives in two storage
// buffers bound alternately as read and write, the GPU mirror of the host
// engine's ping-pong arrays.
type Pipeline struct {
	device   *wgpu.Device
	pipeline *wgpu.ComputePipeline

	paramsBuf  *wgpu.Buffer
	stateBufs  [2]*wgpu.Buffer
	bindGroups [2]*wgpu.BindGroup

	count int
	front int
	step  uint32
	seed  uint32

	attractor         [3]float32
	attractorStrength float32
}

func NewPipeline(device *wgpu.Device, count int, seed uint32) (*Pipeline, error) {
	p := &Pipeline{device: device, count: count, seed: seed}

	module, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "ParticleSimShader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.ParticleSimWGSL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create particle shader module: %w", err)
	}
	defer module.Release()

	p.pipeline, err = device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label: "ParticleSimPipeline",
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: "simulate",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create particle pipeline: %w", err)
	}

	p.paramsBuf, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "SimParams",
		Size:  80,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create sim params buffer: %w", err)
	}

	for i := range p.stateBufs {
		p.stateBufs[i], err = device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: fmt.Sprintf("ParticleState%d", i),
			Size:  uint64(count) * particleStride,
			Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst | wgpu.BufferUsageCopySrc | wgpu.BufferUsageVertex,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create particle state buffer %d: %w", i, err)
		}
	}

	layout := p.pipeline.GetBindGroupLayout(0)
	defer layout.Release()
	for i := range p.bindGroups {
		p.bindGroups[i], err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Layout: layout,
			Entries: []wgpu.BindGroupEntry{
				{Binding: 0, Buffer: p.paramsBuf, Size: wgpu.WholeSize},
				{Binding: 1, Buffer: p.stateBufs[i], Size: wgpu.WholeSize},
				{Binding: 2, Buffer: p.stateBufs[1-i], Size: wgpu.WholeSize},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create particle bind group %d: %w", i, err)
		}
	}

	return p, nil
}

// StateBuffer is the buffer holding the authoritative state this frame,
// bindable as a vertex buffer for billboard rendering.
func (p *Pipeline) StateBuffer() *wgpu.Buffer {
	return p.stateBufs[p.front]
}

// Dispatch encodes one simulation step and swaps the ping-pong binding.
func (p *Pipeline) Dispatch(params Params) error {
	p.device.GetQueue().WriteBuffer(p.paramsBuf, 0, p.packParams(params))

	encoder, err := p.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("failed to create sim encoder: %w", err)
	}
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(p.pipeline)
	pass.SetBindGroup(0, p.bindGroups[p.front], nil)
	pass.DispatchWorkgroups((uint32(p.count)+63)/64, 1, 1)
	pass.End()

	cmdBuf, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("failed to finish sim encoder: %w", err)
	}
	p.device.GetQueue().Submit(cmdBuf)

	p.front = 1 - p.front
	p.step++
	return nil
}

// SetAttractor points the device-side force field at pos. Strength zero
// disables it, leaving gravity alone.
func (p *Pipeline) SetAttractor(pos [3]float32, strength float32) {
	p.attractor = pos
	p.attractorStrength = strength
}

func (p *Pipeline) packParams(params Params) []byte {
	out := make([]byte, 80)
	putF32 := func(off int, v float32) {
		binary.LittleEndian.PutUint32(out[off:], math.Float32bits(v))
	}
	putF32(0, params.Gravity.X())
	putF32(4, params.Gravity.Y())
	putF32(8, params.Gravity.Z())
	putF32(12, params.DeltaTime)
	putF32(16, params.Damping)
	putF32(20, params.MinLife)
	putF32(24, params.MaxLife)
	putF32(28, params.EmitRadius)
	putF32(32, params.MinSpeed)
	putF32(36, params.MaxSpeed)
	putF32(40, params.MinSize)
	putF32(44, params.MaxSize)
	binary.LittleEndian.PutUint32(out[48:], p.seed)
	binary.LittleEndian.PutUint32(out[52:], p.step)
	var colorEnabled uint32
	if params.ColorEnabled {
		colorEnabled = 1
	}
	binary.LittleEndian.PutUint32(out[56:], colorEnabled)
	binary.LittleEndian.PutUint32(out[60:], uint32(p.count))
	putF32(64, p.attractor[0])
	putF32(68, p.attractor[1])
	putF32(72, p.attractor[2])
	putF32(76, p.attractorStrength)
	return out
}

// Release frees every device resource the pipeline owns.
func (p *Pipeline) Release() {
	for _, bg := range p.bindGroups {
		if bg != nil {
			bg.Release()
		}
	}
	for _, buf := range p.stateBufs {
		if buf != nil {
			buf.Release()
		}
	}
	if p.paramsBuf != nil {
		p.paramsBuf.Release()
	}
	if p.pipeline != nil {
		p.pipeline.Release()
	}
}
