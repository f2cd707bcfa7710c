// Package webgpu implements the WebGPU device with WGSL compute shaders.
// Uses go-webgpu (github.com/go-webgpu/webgpu) for zero-CGO WebGPU bindings.
//
// The device is only built on windows. On other platforms Open reports
// ErrUnavailable so callers can fall back to the CPU device.
package webgpu

import (
	"github.com/born-ml/graphcore/internal/tensor"
	"github.com/pkg/errors"
)

// ErrUnavailable reports that no WebGPU adapter could be opened.
var ErrUnavailable = errors.New("webgpu: unavailable")

type config struct {
	seed        *uint64
	memoryLimit int
	onLeak      tensor.LeakHandler
}

// Option configures a WebGPU device.
type Option func(*config)

// WithSeed seeds the device's random generator. Draws match a CPU device
// created with the same seed.
func WithSeed(seed uint64) Option {
	return func(c *config) {
		c.seed = &seed
	}
}

// WithMemoryLimit caps the total bytes of live buffers. Zero means no limit.
func WithMemoryLimit(bytes int) Option {
	return func(c *config) {
		c.memoryLimit = bytes
	}
}

// WithLeakHandler replaces the fatal leak report run by Close.
func WithLeakHandler(h tensor.LeakHandler) Option {
	return func(c *config) {
		c.onLeak = h
	}
}
