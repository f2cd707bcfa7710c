// Package cpu implements the reference CPU device in pure Go.
//
// Every kernel follows the same indexing and broadcasting rules as the
// other backends; this device is the one they are validated against, so
// kernels favour a fixed accumulation order over clever blocking.
package cpu

import (
	"fmt"
	"math/rand/v2"

	"github.com/born-ml/graphcore/internal/parallel"
	"github.com/born-ml/graphcore/internal/tensor"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

const elemSize = 4 // bytes per float32

// Compile-time check that Device implements tensor.Device.
var _ tensor.Device = (*Device)(nil)

// Device is the CPU implementation of tensor.Device.
type Device struct {
	blocks tensor.BlockTable[[]float32]
	src    rand.Source
	seed   uint64

	parallel    parallel.Config
	memoryLimit int
	onLeak      tensor.LeakHandler
}

// New creates a CPU device. Without WithSeed the generator is seeded randomly.
func New(opts ...Option) *Device {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	seed := rand.Uint64()
	if cfg.seed != nil {
		seed = *cfg.seed
	}
	d := &Device{
		src:         rand.NewPCG(seed, seed^pcgStream),
		seed:        seed,
		parallel:    cfg.parallel,
		memoryLimit: cfg.memoryLimit,
		onLeak:      cfg.onLeak,
	}
	klog.V(2).InfoS("cpu device created", "seed", seed, "workers", cfg.parallel.NumWorkers, "features", Features())
	return d
}

// pcgStream selects the PCG stream from the seed.
const pcgStream = 0x9e3779b97f4a7c15

// Name returns the device name.
func (d *Device) Name() string {
	return "CPU"
}

// Seed returns the seed of the device's random generator.
func (d *Device) Seed() uint64 {
	return d.seed
}

// Allocate registers a new uninitialized buffer for shape.
func (d *Device) Allocate(shape tensor.Shape) (*tensor.Tensor, error) {
	t, _, err := d.newTensor(shape)
	return t, err
}

func (d *Device) newTensor(shape tensor.Shape) (*tensor.Tensor, []float32, error) {
	n := shape.TotalElements()
	size := n * elemSize
	if d.memoryLimit > 0 && d.blocks.Bytes()+size > d.memoryLimit {
		return nil, nil, errors.Wrapf(tensor.ErrOutOfMemory,
			"memory allocation failed: requested %d bytes, %d of %d in use", size, d.blocks.Bytes(), d.memoryLimit)
	}
	data, err := allocate(n)
	if err != nil {
		return nil, nil, err
	}
	h := d.blocks.Insert(data, size)
	if klog.V(4).Enabled() {
		klog.V(4).InfoS("allocate", "device", d.Name(), "handle", h.String(), "shape", shape.String(), "bytes", size)
	}
	return tensor.New(shape, d, h), data, nil
}

// allocate converts a failed host allocation into ErrOutOfMemory.
func allocate(n int) (data []float32, err error) {
	defer func() {
		if r := recover(); r != nil {
			data = nil
			err = errors.Wrapf(tensor.ErrOutOfMemory, "memory allocation failed: requested %d bytes: %v", n*elemSize, r)
		}
	}()
	return make([]float32, n), nil
}

// Free unregisters and drops the buffer behind h.
func (d *Device) Free(h tensor.Handle) error {
	if _, err := d.blocks.Remove(h); err != nil {
		return errors.Wrap(err, "attempted to dispose unknown memory block")
	}
	if klog.V(4).Enabled() {
		klog.V(4).InfoS("free", "device", d.Name(), "handle", h.String())
	}
	return nil
}

// LiveBlocks lists the buffers currently registered.
func (d *Device) LiveBlocks() []tensor.BlockInfo {
	return d.blocks.Blocks()
}

// Close checks that every buffer has been freed. Leaked buffers are passed
// to the leak handler, which by default reports them and exits.
func (d *Device) Close() error {
	return tensor.CheckLeaks(d.Name(), &d.blocks, d.onLeak)
}

// data returns the buffer of x after checking that d owns it.
func (d *Device) data(op string, x *tensor.Tensor) ([]float32, error) {
	if err := tensor.CheckOwner(op, d, x); err != nil {
		return nil, err
	}
	data, err := d.blocks.Lookup(x.Handle())
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	return data, nil
}

// forEach runs f over [0, n) using the device's parallel configuration.
func (d *Device) forEach(n int, f func(i int)) {
	parallel.For(n, f, d.parallel)
}

// Read copies the tensor contents to host memory.
func (d *Device) Read(x *tensor.Tensor) ([]float32, error) {
	src, err := d.data("read", x)
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(src))
	copy(out, src)
	return out, nil
}

// WriteConstant sets every element of x to k.
func (d *Device) WriteConstant(x *tensor.Tensor, k float32) error {
	dst, err := d.data("write", x)
	if err != nil {
		return err
	}
	for i := range dst {
		dst[i] = k
	}
	return nil
}

// WriteValues copies values into x.
func (d *Device) WriteValues(x *tensor.Tensor, values []float32) error {
	dst, err := d.data("write", x)
	if err != nil {
		return err
	}
	if len(values) != len(dst) {
		return errors.Wrapf(tensor.ErrShape, "write: shape %s requires %d values, but got %d", x.Shape(), len(dst), len(values))
	}
	copy(dst, values)
	return nil
}

// Duplicate returns a copy of x.
func (d *Device) Duplicate(x *tensor.Tensor) (*tensor.Tensor, error) {
	src, err := d.data("duplicate", x)
	if err != nil {
		return nil, err
	}
	y, dst, err := d.newTensor(x.Shape())
	if err != nil {
		return nil, err
	}
	copy(dst, src)
	return y, nil
}

// String describes the device and its memory usage.
func (d *Device) String() string {
	return fmt.Sprintf("CPU(seed=%d, blocks=%d, bytes=%d)", d.seed, d.blocks.Len(), d.blocks.Bytes())
}
