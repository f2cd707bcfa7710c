package ops

import "github.com/born-ml/graphcore/internal/tensor"

// DivOp computes a / b element-wise.
//
// Backward:
//   - ga += gy / b
//   - gb -= gy * y / b, since d(a/b)/db = -a/b² = -y/b
type DivOp struct{}

// NewDivOp creates a DivOp.
func NewDivOp() *DivOp { return &DivOp{} }

// Name returns "div".
func (op *DivOp) Name() string { return "div" }

// Shape returns the broadcast shape of the operands.
func (op *DivOp) Shape(args []tensor.Shape) (tensor.Shape, error) {
	return binaryShape(op.Name(), args)
}

// Forward computes a / b.
func (op *DivOp) Forward(dev tensor.Device, xs []*tensor.Tensor) (*tensor.Tensor, error) {
	return dev.Div(xs[0], xs[1])
}

// Backward computes input gradients for division.
func (op *DivOp) Backward(dev tensor.Device, xs []*tensor.Tensor, y, gy *tensor.Tensor, gxs []*tensor.Tensor) error {
	b := xs[1]
	ga, err := dev.Div(gy, b)
	if err := accumulate(dev, gxs[0], ga, err); err != nil {
		return err
	}
	t1, err := dev.Mul(gy, y)
	if err != nil {
		return err
	}
	defer t1.Release()
	t2, err := dev.Div(t1, b)
	if err != nil {
		return err
	}
	defer t2.Release()
	gb, err := dev.Negate(t2)
	return accumulate(dev, gxs[1], gb, err)
}
