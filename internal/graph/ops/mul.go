package ops

import "github.com/born-ml/graphcore/internal/tensor"

// MulOp computes a * b element-wise.
//
// Backward:
//   - d(a*b)/da = b, so ga += gy * b
//   - d(a*b)/db = a, so gb += gy * a
type MulOp struct{}

// NewMulOp creates a MulOp.
func NewMulOp() *MulOp { return &MulOp{} }

// Name returns "mul".
func (op *MulOp) Name() string { return "mul" }

// Shape returns the broadcast shape of the operands.
func (op *MulOp) Shape(args []tensor.Shape) (tensor.Shape, error) {
	return binaryShape(op.Name(), args)
}

// Forward computes a * b.
func (op *MulOp) Forward(dev tensor.Device, xs []*tensor.Tensor) (*tensor.Tensor, error) {
	return dev.Mul(xs[0], xs[1])
}

// Backward computes input gradients for multiplication.
func (op *MulOp) Backward(dev tensor.Device, xs []*tensor.Tensor, _, gy *tensor.Tensor, gxs []*tensor.Tensor) error {
	a, b := xs[0], xs[1]
	ga, err := dev.Mul(gy, b)
	if err := accumulate(dev, gxs[0], ga, err); err != nil {
		return err
	}
	gb, err := dev.Mul(gy, a)
	return accumulate(dev, gxs[1], gb, err)
}
