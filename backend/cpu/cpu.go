// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go reference device.
//
// Every kernel runs in a fixed accumulation order, so results are
// reproducible for a given seed whatever the number of workers.
//
// Example:
//
//	import (
//	    "github.com/born-ml/graphcore/backend/cpu"
//	    "github.com/born-ml/graphcore/graph"
//	)
//
//	func main() {
//	    dev := cpu.New(cpu.WithSeed(42))
//	    defer dev.Close()
//
//	    g := graph.New(dev)
//	    defer g.Close()
//	}
package cpu

import (
	internalcpu "github.com/born-ml/graphcore/internal/backend/cpu"
	"github.com/born-ml/graphcore/internal/parallel"
	"github.com/born-ml/graphcore/tensor"
)

// Device is the CPU implementation of tensor.Device.
type Device = internalcpu.Device

// Compile-time check that Device implements tensor.Device.
var _ tensor.Device = (*Device)(nil)

// Option configures a CPU device.
type Option = internalcpu.Option

// New creates a CPU device. Without WithSeed the generator is seeded randomly.
func New(opts ...Option) *Device {
	return internalcpu.New(opts...)
}

// WithSeed seeds the device's random generator for reproducible draws.
func WithSeed(seed uint64) Option {
	return internalcpu.WithSeed(seed)
}

// WithWorkers bounds the goroutines a kernel fans out to.
// One or fewer keeps every kernel on the calling goroutine.
func WithWorkers(n int) Option {
	if n <= 1 {
		return internalcpu.WithParallel(parallel.Sequential())
	}
	cfg := parallel.DefaultConfig()
	cfg.Enabled = true
	cfg.NumWorkers = n
	return internalcpu.WithParallel(cfg)
}

// WithMemoryLimit caps the total bytes of live buffers. Zero means no limit.
func WithMemoryLimit(bytes int) Option {
	return internalcpu.WithMemoryLimit(bytes)
}

// WithLeakHandler replaces the fatal leak report run by Close.
func WithLeakHandler(h tensor.LeakHandler) Option {
	return internalcpu.WithLeakHandler(h)
}

// Features lists the SIMD extensions reported by the host CPU.
func Features() []string {
	return internalcpu.Features()
}
