package ops

import "github.com/born-ml/graphcore/internal/tensor"

// NegateOp computes -x. Backward: gx -= gy.
type NegateOp struct{}

// NewNegateOp creates a NegateOp.
func NewNegateOp() *NegateOp { return &NegateOp{} }

// Name returns "negate".
func (op *NegateOp) Name() string { return "negate" }

// Shape returns the argument shape.
func (op *NegateOp) Shape(args []tensor.Shape) (tensor.Shape, error) {
	return unaryShape(op.Name(), args)
}

// Forward computes -x.
func (op *NegateOp) Forward(dev tensor.Device, xs []*tensor.Tensor) (*tensor.Tensor, error) {
	return dev.Negate(xs[0])
}

// Backward accumulates -gy.
func (op *NegateOp) Backward(dev tensor.Device, _ []*tensor.Tensor, _, gy *tensor.Tensor, gxs []*tensor.Tensor) error {
	g, err := dev.Negate(gy)
	return accumulate(dev, gxs[0], g, err)
}
