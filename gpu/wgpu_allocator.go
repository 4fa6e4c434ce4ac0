package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// WgpuAllocator backs buffers with real device memory through webgpu.
// Regions are created with storage, vertex, index and copy usage so one
// allocation can serve geometry uploads and compute bindings alike.
type WgpuAllocator struct {
	device  *wgpu.Device
	buffers map[Handle]*wgpu.Buffer
	next    Handle
	usage   wgpu.BufferUsage
}

func NewWgpuAllocator(device *wgpu.Device) *WgpuAllocator {
	return &WgpuAllocator{
		device:  device,
		buffers: make(map[Handle]*wgpu.Buffer),
		usage: wgpu.BufferUsageStorage | wgpu.BufferUsageVertex | wgpu.BufferUsageIndex |
			wgpu.BufferUsageCopyDst | wgpu.BufferUsageCopySrc,
	}
}

func (a *WgpuAllocator) Allocate(label string, size uint64) (Handle, error) {
	buf, err := a.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: a.usage,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrOutOfDeviceMemory, err)
	}
	a.next++
	a.buffers[a.next] = buf
	return a.next, nil
}

func (a *WgpuAllocator) Write(h Handle, offset uint64, data []byte) error {
	buf, ok := a.buffers[h]
	if !ok {
		return fmt.Errorf("gpu: write to released handle %d", h)
	}
	a.device.GetQueue().WriteBuffer(buf, offset, data)
	return nil
}

func (a *WgpuAllocator) Copy(dst, src Handle, n uint64) error {
	d, ok := a.buffers[dst]
	if !ok {
		return fmt.Errorf("gpu: copy to released handle %d", dst)
	}
	s, ok := a.buffers[src]
	if !ok {
		return fmt.Errorf("gpu: copy from released handle %d", src)
	}
	encoder, err := a.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("gpu: create copy encoder: %w", err)
	}
	encoder.CopyBufferToBuffer(s, 0, d, 0, n)
	cmdBuf, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("gpu: finish copy encoder: %w", err)
	}
	a.device.GetQueue().Submit(cmdBuf)
	return nil
}

func (a *WgpuAllocator) Release(h Handle) {
	if buf, ok := a.buffers[h]; ok {
		buf.Release()
		delete(a.buffers, h)
	}
}

// Raw returns the underlying wgpu buffer for bind group construction.
func (a *WgpuAllocator) Raw(h Handle) *wgpu.Buffer {
	return a.buffers[h]
}
