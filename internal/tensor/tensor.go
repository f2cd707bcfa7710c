package tensor

import (
	"fmt"

	"github.com/pkg/errors"
)

// Tensor is a handle to a buffer owned by a Device, tagged with its Shape.
//
// A Tensor exclusively owns its buffer: Release returns it to the device
// exactly once, and Take moves ownership to a new Tensor. The zero Tensor,
// a released Tensor and a moved-from Tensor are all invalid.
//
// Tensor contents are only ever written by the owning Device.
type Tensor struct {
	shape  Shape
	device Device
	handle Handle
}

// New wraps a freshly registered buffer. Only Device implementations
// should call it, right after registering the buffer in their block table.
func New(shape Shape, device Device, handle Handle) *Tensor {
	return &Tensor{shape: shape, device: device, handle: handle}
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// Device returns the device owning the buffer, or nil for an invalid tensor.
func (t *Tensor) Device() Device {
	return t.device
}

// Handle returns the buffer handle.
func (t *Tensor) Handle() Handle {
	return t.handle
}

// Valid reports whether the tensor still owns a buffer.
func (t *Tensor) Valid() bool {
	return t != nil && t.device != nil && t.handle.Valid()
}

// Take moves the buffer into a new Tensor and invalidates t.
func (t *Tensor) Take() *Tensor {
	moved := &Tensor{shape: t.shape, device: t.device, handle: t.handle}
	t.invalidate()
	return moved
}

// Release returns the buffer to its device. Releasing an invalid tensor is
// a no-op. If the device does not recognise the handle, the ownership
// invariant is already broken and Release panics.
func (t *Tensor) Release() {
	if !t.Valid() {
		return
	}
	dev, h := t.device, t.handle
	t.invalidate()
	if err := dev.Free(h); err != nil {
		panic(fmt.Sprintf("release: %v", err))
	}
}

func (t *Tensor) invalidate() {
	t.device = nil
	t.handle = Handle{}
}

// Reshape relabels the tensor with a shape of the same total size.
// The buffer is unchanged.
func (t *Tensor) Reshape(shape Shape) error {
	if shape.TotalElements() != t.shape.TotalElements() {
		return errors.Wrapf(ErrShape, "reshape: %s -> %s (different number of elements)", t.shape, shape)
	}
	t.shape = shape
	return nil
}

// Values reads the tensor contents in column-major order, batch slowest.
func (t *Tensor) Values() ([]float32, error) {
	if !t.Valid() {
		return nil, errors.Wrap(ErrMemory, "values: invalid tensor")
	}
	return t.device.Read(t)
}

// SetValues overwrites the tensor contents.
// len(values) must equal Shape().TotalElements().
func (t *Tensor) SetValues(values []float32) error {
	if !t.Valid() {
		return errors.Wrap(ErrMemory, "set values: invalid tensor")
	}
	return t.device.WriteValues(t, values)
}

// Fill sets every element to k.
func (t *Tensor) Fill(k float32) error {
	if !t.Valid() {
		return errors.Wrap(ErrMemory, "fill: invalid tensor")
	}
	return t.device.WriteConstant(t, k)
}

// AddGradient accumulates x into t using the batch broadcast rule.
func (t *Tensor) AddGradient(x *Tensor) error {
	if !t.Valid() {
		return errors.Wrap(ErrMemory, "add gradient: invalid tensor")
	}
	return t.device.AddGradient(t, x)
}

// String describes the tensor without reading its contents.
func (t *Tensor) String() string {
	if !t.Valid() {
		return "Tensor(invalid)"
	}
	return fmt.Sprintf("Tensor(%s on %s %s)", t.shape, t.device.Name(), t.handle)
}
