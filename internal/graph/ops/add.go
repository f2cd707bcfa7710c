package ops

import "github.com/born-ml/graphcore/internal/tensor"

// AddOp computes a + b.
//
// Backward: ga += gy, gb += gy. When an operand was batch-broadcast,
// AddGradient sums the samples of gy into its gradient.
type AddOp struct{}

// NewAddOp creates an AddOp.
func NewAddOp() *AddOp { return &AddOp{} }

// Name returns "add".
func (op *AddOp) Name() string { return "add" }

// Shape returns the broadcast shape of the operands.
func (op *AddOp) Shape(args []tensor.Shape) (tensor.Shape, error) {
	return binaryShape(op.Name(), args)
}

// Forward computes a + b.
func (op *AddOp) Forward(dev tensor.Device, xs []*tensor.Tensor) (*tensor.Tensor, error) {
	return dev.Add(xs[0], xs[1])
}

// Backward routes gy to both operands.
func (op *AddOp) Backward(dev tensor.Device, _ []*tensor.Tensor, _, gy *tensor.Tensor, gxs []*tensor.Tensor) error {
	if err := dev.AddGradient(gxs[0], gy); err != nil {
		return err
	}
	return dev.AddGradient(gxs[1], gy)
}
