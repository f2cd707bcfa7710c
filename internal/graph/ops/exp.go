package ops

import "github.com/born-ml/graphcore/internal/tensor"

// ExpOp computes e^x. Since d(e^x)/dx = e^x, backward reuses the output:
// gx += gy * y.
type ExpOp struct{}

// NewExpOp creates an ExpOp.
func NewExpOp() *ExpOp { return &ExpOp{} }

// Name returns "exp".
func (op *ExpOp) Name() string { return "exp" }

// Shape returns the argument shape.
func (op *ExpOp) Shape(args []tensor.Shape) (tensor.Shape, error) {
	return unaryShape(op.Name(), args)
}

// Forward computes e^x.
func (op *ExpOp) Forward(dev tensor.Device, xs []*tensor.Tensor) (*tensor.Tensor, error) {
	return dev.Exp(xs[0])
}

// Backward computes the gradient for exp.
func (op *ExpOp) Backward(dev tensor.Device, _ []*tensor.Tensor, y, gy *tensor.Tensor, gxs []*tensor.Tensor) error {
	g, err := dev.Mul(gy, y)
	return accumulate(dev, gxs[0], g, err)
}
