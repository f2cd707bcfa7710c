//go:build windows

package webgpu

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/pkg/errors"
)

// maxWorkgroups is the per-dimension dispatch limit guaranteed by WebGPU.
const maxWorkgroups = 65535

// uniforms is the Params struct of a kernel, one 32-bit word per field.
// Every kernel declares total first.
type uniforms []uint32

// params starts a Params struct from integer fields.
func params(fields ...int) uniforms {
	u := make(uniforms, len(fields))
	for i, f := range fields {
		u[i] = uint32(f) //nolint:gosec // G115: shapes are bounded well below 2^32
	}
	return u
}

// float appends an f32 field.
func (u uniforms) float(k float32) uniforms {
	return append(u, math.Float32bits(k))
}

// bytes encodes the struct padded to the 16-byte uniform alignment.
func (u uniforms) bytes() []byte {
	size := (len(u)*4 + 15) &^ 15
	out := make([]byte, size)
	for i, w := range u {
		binary.LittleEndian.PutUint32(out[i*4:], w)
	}
	return out
}

// pipeline returns the cached compute pipeline for a kernel, compiling it
// on first use.
func (d *Device) pipeline(name, code string) *wgpu.ComputePipeline {
	if p, ok := d.pipelines[name]; ok {
		return p
	}
	shader, ok := d.shaders[name]
	if !ok {
		shader = d.device.CreateShaderModuleWGSL(code)
		d.shaders[name] = shader
	}
	// Auto layout (nil) from the shader's bindings.
	p := d.device.CreateComputePipelineSimple(nil, shader, "main")
	d.pipelines[name] = p
	return p
}

// createBuffer creates a buffer initialized with data.
func (d *Device) createBuffer(data []byte, usage wgpu.BufferUsage) *wgpu.Buffer {
	size := uint64(len(data))
	buffer := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            usage,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})
	mapped := buffer.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy view of the mapped range
	copy(unsafe.Slice((*byte)(mapped), size), data)
	buffer.Unmap()
	return buffer
}

// dispatch queues one pass of a kernel over total invocations. The storage
// buffers are bound in order from binding 0 and the uniforms follow them.
func (d *Device) dispatch(name, code string, total int, u uniforms, bufs ...gpuBuffer) {
	pipeline := d.pipeline(name, code)

	data := u.bytes()
	uniform := d.createBuffer(data, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)
	defer uniform.Release()

	entries := make([]wgpu.BindGroupEntry, 0, len(bufs)+1)
	for i, b := range bufs {
		entries = append(entries, wgpu.BufferBindingEntry(uint32(i), b.buf, 0, b.size)) //nolint:gosec // G115: few bindings
	}
	entries = append(entries, wgpu.BufferBindingEntry(uint32(len(bufs)), uniform, 0, uint64(len(data)))) //nolint:gosec // G115: few bindings
	bindGroup := d.device.CreateBindGroupSimple(pipeline.GetBindGroupLayout(0), entries)
	defer bindGroup.Release()

	x, y := workgroups(total)
	encoder := d.device.CreateCommandEncoder(nil)
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.DispatchWorkgroups(x, y, 1)
	pass.End()
	d.queue.Submit(encoder.Finish(nil))
}

// workgroups splits ceil(total/workgroupSize) groups over two dimensions
// so large tensors stay under the per-dimension limit. Kernels recover the
// flat index as gid.x + gid.y * nwg.x * workgroupSize.
func workgroups(total int) (x, y uint32) {
	groups := max((total+workgroupSize-1)/workgroupSize, 1)
	nx := min(groups, maxWorkgroups)
	ny := (groups + nx - 1) / nx
	return uint32(nx), uint32(ny) //nolint:gosec // G115: bounded by maxWorkgroups
}

// upload writes values into b through a mapped staging buffer.
func (d *Device) upload(b gpuBuffer, values []float32) {
	data := make([]byte, len(values)*elemSize)
	for i, v := range values {
		binary.LittleEndian.PutUint32(data[i*elemSize:], math.Float32bits(v))
	}
	staging := d.createBuffer(data, wgpu.BufferUsageCopySrc)
	defer staging.Release()

	encoder := d.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(staging, 0, b.buf, 0, b.size)
	d.queue.Submit(encoder.Finish(nil))
}

// copyBuffer queues a copy of src into dst, which must be the same size.
func (d *Device) copyBuffer(src, dst gpuBuffer) {
	encoder := d.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(src.buf, 0, dst.buf, 0, src.size)
	d.queue.Submit(encoder.Finish(nil))
}

// download reads b back to host memory.
// Storage buffers can't be mapped directly, so the copy goes through a
// MAP_READ staging buffer; mapping it waits for the queue.
func (d *Device) download(b gpuBuffer) ([]float32, error) {
	staging := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		Size:  b.size,
	})
	defer staging.Release()

	encoder := d.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(b.buf, 0, staging, 0, b.size)
	d.queue.Submit(encoder.Finish(nil))

	if err := staging.MapAsync(d.device, wgpu.MapModeRead, 0, b.size); err != nil {
		return nil, errors.Wrapf(ErrUnavailable, "read: map staging buffer: %v", err)
	}
	mapped := staging.GetMappedRange(0, b.size)
	//nolint:gosec // unsafe.Slice for zero-copy view of the mapped range
	raw := unsafe.Slice((*byte)(mapped), b.size)
	out := make([]float32, b.size/elemSize)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*elemSize:]))
	}
	staging.Unmap()
	return out, nil
}
