package cpu

import (
	"math"

	"github.com/born-ml/graphcore/internal/tensor"
)

// unary applies f to every element of x.
func (d *Device) unary(op string, x *tensor.Tensor, f func(float32) float32) (*tensor.Tensor, error) {
	src, err := d.data(op, x)
	if err != nil {
		return nil, err
	}
	y, dst, err := d.newTensor(x.Shape())
	if err != nil {
		return nil, err
	}
	for i, v := range src {
		dst[i] = f(v)
	}
	return y, nil
}

// Negate computes -x.
func (d *Device) Negate(x *tensor.Tensor) (*tensor.Tensor, error) {
	return d.unary("negate", x, func(v float32) float32 { return -v })
}

// Exp computes e^x.
func (d *Device) Exp(x *tensor.Tensor) (*tensor.Tensor, error) {
	return d.unary("exp", x, func(v float32) float32 {
		return float32(math.Exp(float64(v)))
	})
}

// Log computes the natural logarithm of x.
func (d *Device) Log(x *tensor.Tensor) (*tensor.Tensor, error) {
	return d.unary("log", x, func(v float32) float32 {
		return float32(math.Log(float64(v)))
	})
}

// Tanh computes the hyperbolic tangent of x.
func (d *Device) Tanh(x *tensor.Tensor) (*tensor.Tensor, error) {
	return d.unary("tanh", x, func(v float32) float32 {
		return float32(math.Tanh(float64(v)))
	})
}

// Sigmoid computes 1/(1+e^-x) as 0.5+0.5*tanh(0.5x), which does not
// overflow for large |x|.
func (d *Device) Sigmoid(x *tensor.Tensor) (*tensor.Tensor, error) {
	return d.unary("sigmoid", x, func(v float32) float32 {
		return 0.5 + 0.5*float32(math.Tanh(0.5*float64(v)))
	})
}

// Step computes 1 where x > 0, else 0.
func (d *Device) Step(x *tensor.Tensor) (*tensor.Tensor, error) {
	return d.unary("step", x, func(v float32) float32 {
		if v > 0 {
			return 1
		}
		return 0
	})
}

// ReLU computes max(x, 0).
func (d *Device) ReLU(x *tensor.Tensor) (*tensor.Tensor, error) {
	return d.unary("relu", x, func(v float32) float32 {
		return max(v, 0)
	})
}
