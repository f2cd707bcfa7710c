package cpu

import (
	"github.com/born-ml/graphcore/internal/parallel"
	"github.com/born-ml/graphcore/internal/tensor"
)

type config struct {
	seed        *uint64
	parallel    parallel.Config
	memoryLimit int
	onLeak      tensor.LeakHandler
}

func defaultConfig() config {
	return config{parallel: parallel.DefaultConfig()}
}

// Option configures a CPU device.
type Option func(*config)

// WithSeed seeds the device's random generator for reproducible draws.
func WithSeed(seed uint64) Option {
	return func(c *config) {
		c.seed = &seed
	}
}

// WithParallel sets how kernels fan out over goroutines.
// Use parallel.Sequential() to keep every kernel on the calling goroutine.
func WithParallel(cfg parallel.Config) Option {
	return func(c *config) {
		c.parallel = cfg
	}
}

// WithMemoryLimit caps the total bytes of live buffers. Allocations beyond
// the cap fail with tensor.ErrOutOfMemory. Zero means no limit.
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
