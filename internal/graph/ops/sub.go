package ops

import "github.com/born-ml/graphcore/internal/tensor"

// SubOp computes a - b. Backward: ga += gy, gb -= gy.
type SubOp struct{}

// NewSubOp creates a SubOp.
func NewSubOp() *SubOp { return &SubOp{} }

// Name returns "sub".
func (op *SubOp) Name() string { return "sub" }

// Shape returns the broadcast shape of the operands.
func (op *SubOp) Shape(args []tensor.Shape) (tensor.Shape, error) {
	return binaryShape(op.Name(), args)
}

// Forward computes a - b.
func (op *SubOp) Forward(dev tensor.Device, xs []*tensor.Tensor) (*tensor.Tensor, error) {
	return dev.Sub(xs[0], xs[1])
}

// Backward computes input gradients for subtraction.
func (op *SubOp) Backward(dev tensor.Device, _ []*tensor.Tensor, _, gy *tensor.Tensor, gxs []*tensor.Tensor) error {
	if err := dev.AddGradient(gxs[0], gy); err != nil {
		return err
	}
	g, err := dev.Negate(gy)
	return accumulate(dev, gxs[1], g, err)
}
