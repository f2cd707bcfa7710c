package ops

import "github.com/born-ml/graphcore/internal/tensor"

// TanhOp computes the hyperbolic tangent.
//
// d(tanh(x))/dx = 1 - tanh²(x), and tanh(x) is the output, so
// gx += gy * (1 - y²).
type TanhOp struct{}

// NewTanhOp creates a TanhOp.
func NewTanhOp() *TanhOp { return &TanhOp{} }

// Name returns "tanh".
func (op *TanhOp) Name() string { return "tanh" }

// Shape returns the argument shape.
func (op *TanhOp) Shape(args []tensor.Shape) (tensor.Shape, error) {
	return unaryShape(op.Name(), args)
}

// Forward computes tanh(x).
func (op *TanhOp) Forward(dev tensor.Device, xs []*tensor.Tensor) (*tensor.Tensor, error) {
	return dev.Tanh(xs[0])
}

// Backward computes the gradient for tanh.
func (op *TanhOp) Backward(dev tensor.Device, _ []*tensor.Tensor, y, gy *tensor.Tensor, gxs []*tensor.Tensor) error {
	sq, err := dev.Mul(y, y)
	if err != nil {
		return err
	}
	defer sq.Release()
	d, err := dev.SubConstL(1, sq)
	if err != nil {
		return err
	}
	defer d.Release()
	g, err := dev.Mul(gy, d)
	return accumulate(dev, gxs[0], g, err)
}
