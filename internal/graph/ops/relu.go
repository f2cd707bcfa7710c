package ops

import "github.com/born-ml/graphcore/internal/tensor"

// ReLUOp computes max(0, x). Backward: gx += gy where x > 0.
type ReLUOp struct{}

// NewReLUOp creates a ReLUOp.
func NewReLUOp() *ReLUOp { return &ReLUOp{} }

// Name returns "relu".
func (op *ReLUOp) Name() string { return "relu" }

// Shape returns the argument shape.
func (op *ReLUOp) Shape(args []tensor.Shape) (tensor.Shape, error) {
	return unaryShape(op.Name(), args)
}

// Forward computes max(0, x).
func (op *ReLUOp) Forward(dev tensor.Device, xs []*tensor.Tensor) (*tensor.Tensor, error) {
	return dev.ReLU(xs[0])
}

// Backward masks gy with step(x).
func (op *ReLUOp) Backward(dev tensor.Device, xs []*tensor.Tensor, _, gy *tensor.Tensor, gxs []*tensor.Tensor) error {
	mask, err := dev.Step(xs[0])
	if err != nil {
		return err
	}
	defer mask.Release()
	g, err := dev.Mul(gy, mask)
	return accumulate(dev, gxs[0], g, err)
}
