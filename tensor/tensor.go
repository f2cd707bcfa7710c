// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/graphcore/internal/tensor"
)

// MaxDepth is the largest number of dimensions a Shape can hold.
const MaxDepth = tensor.MaxDepth

// Shape describes the dimensions and batch size of a tensor.
// Trailing dimensions of size 1 are dropped, so shapes compare with ==.
type Shape = tensor.Shape

// NewShape creates a shape from dims and a batch size.
func NewShape(dims []int, batch int) (Shape, error) {
	return tensor.NewShape(dims, batch)
}

// MustShape is like NewShape but panics on invalid input.
func MustShape(dims []int, batch int) Shape {
	return tensor.MustShape(dims, batch)
}

// Scalar returns the shape of a scalar per sample.
func Scalar(batch int) Shape {
	return tensor.Scalar(batch)
}

// Tensor is a move-only handle to a buffer owned by a Device.
type Tensor = tensor.Tensor

// Device is the contract every compute backend implements.
type Device = tensor.Device

// Handle identifies a device buffer.
type Handle = tensor.Handle

// BlockInfo describes one live device buffer.
type BlockInfo = tensor.BlockInfo

// LeakError lists the buffers a device still owned when it was closed.
type LeakError = tensor.LeakError

// LeakHandler is invoked by a device's Close when buffers are still live.
type LeakHandler = tensor.LeakHandler

// FatalLeakHandler logs the leaked blocks and exits. It is the default.
func FatalLeakHandler(e *LeakError) {
	tensor.FatalLeakHandler(e)
}

// Error kinds. Every error returned by devices and graphs wraps one of them.
var (
	ErrShape         = tensor.ErrShape
	ErrOutOfMemory   = tensor.ErrOutOfMemory
	ErrMemory        = tensor.ErrMemory
	ErrState         = tensor.ErrState
	ErrGraphMismatch = tensor.ErrGraphMismatch
)
