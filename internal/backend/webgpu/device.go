//go:build windows

package webgpu

import (
	"fmt"
	"math/rand/v2"

	"github.com/born-ml/graphcore/internal/tensor"
	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

const elemSize = 4 // bytes per float32

// pcgStream selects the PCG stream from the seed, as the CPU device does.
const pcgStream = 0x9e3779b97f4a7c15

// Compile-time check that Device implements tensor.Device.
var _ tensor.Device = (*Device)(nil)

// gpuBuffer is a storage buffer holding one tensor.
type gpuBuffer struct {
	buf  *wgpu.Buffer
	size uint64
}

// Device is the WebGPU implementation of tensor.Device.
//
// Kernels are queued as compute passes; Read maps a staging buffer and is
// the only point where the host waits for the GPU.
type Device struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	info     wgpu.AdapterInfo

	blocks    tensor.BlockTable[gpuBuffer]
	pool      *bufferPool
	shaders   map[string]*wgpu.ShaderModule
	pipelines map[string]*wgpu.ComputePipeline

	src  rand.Source
	seed uint64

	memoryLimit int
	onLeak      tensor.LeakHandler
	closed      bool
}

// New opens the default high-performance adapter.
// Returns an error wrapping ErrUnavailable if WebGPU cannot be initialized.
func New(opts ...Option) (dev *Device, err error) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			dev = nil
			err = errors.Wrapf(ErrUnavailable, "native library not available: %v", r)
		}
	}()

	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	instance := wgpu.CreateInstance(nil)
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		instance.Release()
		return nil, errors.Wrapf(ErrUnavailable, "request adapter: %v", err)
	}
	info := adapter.GetInfo()

	device, err := adapter.RequestDevice(nil)
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, errors.Wrapf(ErrUnavailable, "request device: %v", err)
	}
	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, errors.Wrap(ErrUnavailable, "no queue")
	}

	seed := rand.Uint64()
	if cfg.seed != nil {
		seed = *cfg.seed
	}
	d := &Device{
		instance:    instance,
		adapter:     adapter,
		device:      device,
		queue:       queue,
		info:        info,
		pool:        newBufferPool(device),
		shaders:     make(map[string]*wgpu.ShaderModule),
		pipelines:   make(map[string]*wgpu.ComputePipeline),
		src:         rand.NewPCG(seed, seed^pcgStream),
		seed:        seed,
		memoryLimit: cfg.memoryLimit,
		onLeak:      cfg.onLeak,
	}
	klog.V(2).InfoS("webgpu device created", "adapter", info.Name, "vendor", info.VendorName, "seed", seed)
	return d, nil
}

// Open returns a new Device as a tensor.Device.
func Open(opts ...Option) (tensor.Device, error) {
	d, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Available reports whether a WebGPU adapter can be opened.
func Available() (available bool) {
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		return false
	}
	adapter.Release()
	return true
}

// AdapterName describes the default adapter.
func AdapterName() (name string, err error) {
	defer func() {
		if r := recover(); r != nil {
			name = ""
			err = errors.Wrapf(ErrUnavailable, "native library not available: %v", r)
		}
	}()

	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		return "", errors.Wrapf(ErrUnavailable, "request adapter: %v", err)
	}
	defer adapter.Release()

	info := adapter.GetInfo()
	return fmt.Sprintf("%s (%s)", info.Name, info.VendorName), nil
}

// Name returns the device name.
func (d *Device) Name() string {
	return "WebGPU"
}

// Seed returns the seed of the device's random generator.
func (d *Device) Seed() uint64 {
	return d.seed
}

// Allocate registers a new buffer for shape. Its contents are unspecified.
func (d *Device) Allocate(shape tensor.Shape) (*tensor.Tensor, error) {
	t, _, err := d.newTensor(shape)
	return t, err
}

func (d *Device) newTensor(shape tensor.Shape) (*tensor.Tensor, gpuBuffer, error) {
	if d.closed {
		return nil, gpuBuffer{}, errors.Wrap(tensor.ErrMemory, "allocate: device is closed")
	}
	size := shape.TotalElements() * elemSize
	if d.memoryLimit > 0 && d.blocks.Bytes()+size > d.memoryLimit {
		return nil, gpuBuffer{}, errors.Wrapf(tensor.ErrOutOfMemory,
			"memory allocation failed: requested %d bytes, %d of %d in use", size, d.blocks.Bytes(), d.memoryLimit)
	}
	b := gpuBuffer{size: uint64(size)} //nolint:gosec // G115: size is positive
	b.buf = d.pool.acquire(b.size)
	if b.buf == nil {
		return nil, gpuBuffer{}, errors.Wrapf(tensor.ErrOutOfMemory, "memory allocation failed: requested %d bytes", size)
	}
	h := d.blocks.Insert(b, size)
	if klog.V(4).Enabled() {
		klog.V(4).InfoS("allocate", "device", d.Name(), "handle", h.String(), "shape", shape.String(), "bytes", size)
	}
	return tensor.New(shape, d, h), b, nil
}

// Free unregisters the buffer behind h and returns it to the pool.
func (d *Device) Free(h tensor.Handle) error {
	b, err := d.blocks.Remove(h)
	if err != nil {
		return errors.Wrap(err, "attempted to dispose unknown memory block")
	}
	if d.closed {
		b.buf.Release()
	} else {
		d.pool.release(b.buf, b.size)
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

// Close checks that every buffer has been freed and releases the GPU.
// Leaked buffers are passed to the leak handler, which by default reports
// them and exits.
func (d *Device) Close() error {
	leak := tensor.CheckLeaks(d.Name(), &d.blocks, d.onLeak)
	if d.closed {
		return leak
	}
	d.closed = true

	created, hits, misses, idle := d.pool.stats()
	klog.V(2).InfoS("webgpu device closed", "buffers", created, "poolHits", hits, "poolMisses", misses, "idle", idle)
	d.pool.clear()

	for _, p := range d.pipelines {
		p.Release()
	}
	d.pipelines = nil
	for _, s := range d.shaders {
		s.Release()
	}
	d.shaders = nil

	d.queue.Release()
	d.device.Release()
	d.adapter.Release()
	d.instance.Release()
	return leak
}

// buffer returns the storage buffer of x after checking that d owns it.
func (d *Device) buffer(op string, x *tensor.Tensor) (gpuBuffer, error) {
	if err := tensor.CheckOwner(op, d, x); err != nil {
		return gpuBuffer{}, err
	}
	b, err := d.blocks.Lookup(x.Handle())
	if err != nil {
		return gpuBuffer{}, errors.Wrap(err, op)
	}
	return b, nil
}

// Read copies the tensor contents to host memory, waiting for every queued
// kernel that writes it.
func (d *Device) Read(x *tensor.Tensor) ([]float32, error) {
	b, err := d.buffer("read", x)
	if err != nil {
		return nil, err
	}
	return d.download(b)
}

// WriteConstant sets every element of x to k.
func (d *Device) WriteConstant(x *tensor.Tensor, k float32) error {
	b, err := d.buffer("write", x)
	if err != nil {
		return err
	}
	n := x.Shape().TotalElements()
	d.dispatch("fill", fillShader, n, params(n).float(k), b)
	return nil
}

// WriteValues copies values into x.
func (d *Device) WriteValues(x *tensor.Tensor, values []float32) error {
	b, err := d.buffer("write", x)
	if err != nil {
		return err
	}
	if n := x.Shape().TotalElements(); len(values) != n {
		return errors.Wrapf(tensor.ErrShape, "write: shape %s requires %d values, but got %d", x.Shape(), n, len(values))
	}
	d.upload(b, values)
	return nil
}

// Duplicate returns a copy of x.
func (d *Device) Duplicate(x *tensor.Tensor) (*tensor.Tensor, error) {
	src, err := d.buffer("duplicate", x)
	if err != nil {
		return nil, err
	}
	y, dst, err := d.newTensor(x.Shape())
	if err != nil {
		return nil, err
	}
	d.copyBuffer(src, dst)
	return y, nil
}

// String describes the device and its memory usage.
func (d *Device) String() string {
	return fmt.Sprintf("WebGPU(%s %s, seed=%d, blocks=%d, bytes=%d)",
		d.info.Name, d.info.VendorName, d.seed, d.blocks.Len(), d.blocks.Bytes())
}
