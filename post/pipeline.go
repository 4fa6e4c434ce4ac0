package post

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/pyrite3d/pyrite/shaders"
)

// Pipeline runs the post-process pass on the device over a storage buffer of
// packed RGBA float pixels.
type Pipeline struct {
	device   *wgpu.Device
	pipeline *wgpu.ComputePipeline

	paramsBuf *wgpu.Buffer
	pixelBuf  *wgpu.Buffer
	bindGroup *wgpu.BindGroup

	w, h int
}

func NewPipeline(device *wgpu.Device, w, h int) (*Pipeline, error) {
	p := &Pipeline{device: device, w: w, h: h}

	module, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "PostProcessShader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.PostProcessWGSL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create post-process shader module: %w", err)
	}
	defer module.Release()

	p.pipeline, err = device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label: "PostProcessPipeline",
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: "postprocess",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create post-process pipeline: %w", err)
	}

	p.paramsBuf, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "PostParams",
		Size:  32,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create post params buffer: %w", err)
	}

	p.pixelBuf, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "PostPixels",
		Size:  uint64(w) * uint64(h) * 16,
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst | wgpu.BufferUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create post pixel buffer: %w", err)
	}

	layout := p.pipeline.GetBindGroupLayout(0)
	defer layout.Release()
	p.bindGroup, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: p.paramsBuf, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: p.pixelBuf, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create post bind group: %w", err)
	}

	return p, nil
}

// Upload stages a frame into the pixel buffer. The frame must match the
// pipeline resolution.
func (p *Pipeline) Upload(f *Frame) error {
	if f.W != p.w || f.H != p.h {
		return fmt.Errorf("post: frame %dx%d does not match pipeline %dx%d", f.W, f.H, p.w, p.h)
	}
	p.device.GetQueue().WriteBuffer(p.pixelBuf, 0, wgpu.ToBytes(f.Pix))
	return nil
}

// Dispatch encodes one post-process pass over the uploaded pixels.
func (p *Pipeline) Dispatch(params Params) error {
	out := make([]byte, 32)
	putF32 := func(off int, v float32) {
		binary.LittleEndian.PutUint32(out[off:], math.Float32bits(v))
	}
	putF32(0, params.Exposure)
	putF32(4, params.Contrast)
	putF32(8, params.Saturation)
	putF32(12, params.VignetteStrength)
	binary.LittleEndian.PutUint32(out[16:], uint32(params.Width))
	binary.LittleEndian.PutUint32(out[20:], uint32(params.Height))
	p.device.GetQueue().WriteBuffer(p.paramsBuf, 0, out)

	encoder, err := p.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("failed to create post encoder: %w", err)
	}
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(p.pipeline)
	pass.SetBindGroup(0, p.bindGroup, nil)
	pass.DispatchWorkgroups((uint32(p.w)+7)/8, (uint32(p.h)+7)/8, 1)
	pass.End()

	cmdBuf, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("failed to finish post encoder: %w", err)
	}
	p.device.GetQueue().Submit(cmdBuf)
	return nil
}

// PixelBuffer exposes the storage buffer for readback or composition.
func (p *Pipeline) PixelBuffer() *wgpu.Buffer {
	return p.pixelBuf
}

func (p *Pipeline) Release() {
	if p.bindGroup != nil {
		p.bindGroup.Release()
	}
	if p.pixelBuf != nil {
		p.pixelBuf.Release()
	}
	if p.paramsBuf != nil {
		p.paramsBuf.Release()
	}
	if p.pipeline != nil {
		p.pipeline.Release()
	}
}
