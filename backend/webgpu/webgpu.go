// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides the WebGPU device.
//
// The device runs WGSL compute shaders through go-webgpu and is built on
// windows only. Elsewhere Open fails with ErrUnavailable, which makes a
// CPU fallback straightforward:
//
//	var dev tensor.Device
//	dev, err := webgpu.Open(webgpu.WithSeed(1))
//	if errors.Is(err, webgpu.ErrUnavailable) {
//	    dev = cpu.New(cpu.WithSeed(1))
//	}
//	defer dev.Close()
package webgpu

import (
	internalwebgpu "github.com/born-ml/graphcore/internal/backend/webgpu"
	"github.com/born-ml/graphcore/tensor"
)

// ErrUnavailable reports that no WebGPU adapter could be opened.
var ErrUnavailable = internalwebgpu.ErrUnavailable

// Option configures a WebGPU device.
type Option = internalwebgpu.Option

// Open creates a WebGPU device on the default high-performance adapter.
func Open(opts ...Option) (tensor.Device, error) {
	return internalwebgpu.Open(opts...)
}

// Available reports whether a WebGPU adapter can be opened.
func Available() bool {
	return internalwebgpu.Available()
}

// AdapterName describes the default adapter.
func AdapterName() (string, error) {
	return internalwebgpu.AdapterName()
}

// WithSeed seeds the device's random generator. Draws match a CPU device
// created with the same seed.
func WithSeed(seed uint64) Option {
	return internalwebgpu.WithSeed(seed)
}

// WithMemoryLimit caps the total bytes of live buffers. Zero means no limit.
func WithMemoryLimit(bytes int) Option {
	return internalwebgpu.WithMemoryLimit(bytes)
}

// WithLeakHandler replaces the fatal leak report run by Close.
func WithLeakHandler(h tensor.LeakHandler) Option {
	return internalwebgpu.WithLeakHandler(h)
}
