package cpu

import "github.com/born-ml/graphcore/internal/tensor"

// AddConst computes x + k.
func (d *Device) AddConst(x *tensor.Tensor, k float32) (*tensor.Tensor, error) {
	return d.unary("add const", x, func(v float32) float32 { return v + k })
}

// SubConstL computes k - x.
func (d *Device) SubConstL(k float32, x *tensor.Tensor) (*tensor.Tensor, error) {
	return d.unary("sub const", x, func(v float32) float32 { return k - v })
}

// SubConstR computes x - k.
func (d *Device) SubConstR(x *tensor.Tensor, k float32) (*tensor.Tensor, error) {
	return d.unary("sub const", x, func(v float32) float32 { return v - k })
}

// MulConst computes x * k.
func (d *Device) MulConst(x *tensor.Tensor, k float32) (*tensor.Tensor, error) {
	return d.unary("mul const", x, func(v float32) float32 { return v * k })
}

// DivConstL computes k / x.
func (d *Device) DivConstL(k float32, x *tensor.Tensor) (*tensor.Tensor, error) {
	return d.unary("div const", x, func(v float32) float32 { return k / v })
}

// DivConstR computes x / k.
func (d *Device) DivConstR(x *tensor.Tensor, k float32) (*tensor.Tensor, error) {
	return d.unary("div const", x, func(v float32) float32 { return v / k })
}
