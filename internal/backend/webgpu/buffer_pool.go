//go:build windows

package webgpu

import (
	"github.com/go-webgpu/webgpu/wgpu"
)

const (
	// storageUsage is the usage of every tensor buffer.
	storageUsage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst

	maxPooledPerSize = 16 // Max idle buffers kept per byte size
)

// bufferPool recycles freed tensor buffers by exact byte size.
// Graphs rebuilt every iteration allocate the same sizes over and over,
// so exact matching keeps the hit rate high without wasting memory.
type bufferPool struct {
	device *wgpu.Device
	idle   map[uint64][]*wgpu.Buffer

	// Statistics
	created uint64
	hits    uint64
	misses  uint64
}

func newBufferPool(device *wgpu.Device) *bufferPool {
	return &bufferPool{
		device: device,
		idle:   make(map[uint64][]*wgpu.Buffer),
	}
}

// acquire returns an idle buffer of the given size or creates one.
// The contents of a recycled buffer are unspecified.
func (p *bufferPool) acquire(size uint64) *wgpu.Buffer {
	if list := p.idle[size]; len(list) > 0 {
		buf := list[len(list)-1]
		p.idle[size] = list[:len(list)-1]
		p.hits++
		return buf
	}
	p.misses++
	p.created++
	return p.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: storageUsage,
		Size:  size,
	})
}

// release parks buf for reuse, or releases it when the size class is full.
func (p *bufferPool) release(buf *wgpu.Buffer, size uint64) {
	if len(p.idle[size]) >= maxPooledPerSize {
		buf.Release()
		return
	}
	p.idle[size] = append(p.idle[size], buf)
}

// clear releases every idle buffer.
func (p *bufferPool) clear() {
	for size, list := range p.idle {
		for _, buf := range list {
			buf.Release()
		}
		delete(p.idle, size)
	}
}

// stats returns creation and reuse counters and the number of idle buffers.
func (p *bufferPool) stats() (created, hits, misses uint64, idle int) {
	for _, list := range p.idle {
		idle += len(list)
	}
	return p.created, p.hits, p.misses, idle
}
