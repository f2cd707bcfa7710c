package ops

import "github.com/born-ml/graphcore/internal/tensor"

// SigmoidOp computes 1 / (1 + e^-x).
//
// d(σ(x))/dx = σ(x)·(1 - σ(x)), so gx += gy * y * (1 - y).
type SigmoidOp struct{}

// NewSigmoidOp creates a SigmoidOp.
func NewSigmoidOp() *SigmoidOp { return &SigmoidOp{} }

// Name returns "sigmoid".
func (op *SigmoidOp) Name() string { return "sigmoid" }

// Shape returns the argument shape.
func (op *SigmoidOp) Shape(args []tensor.Shape) (tensor.Shape, error) {
	return unaryShape(op.Name(), args)
}

// Forward computes σ(x).
func (op *SigmoidOp) Forward(dev tensor.Device, xs []*tensor.Tensor) (*tensor.Tensor, error) {
	return dev.Sigmoid(xs[0])
}

// Backward computes the gradient for sigmoid.
func (op *SigmoidOp) Backward(dev tensor.Device, _ []*tensor.Tensor, y, gy *tensor.Tensor, gxs []*tensor.Tensor) error {
	oneMinus, err := dev.SubConstL(1, y)
	if err != nil {
		return err
	}
	defer oneMinus.Release()
	d, err := dev.Mul(y, oneMinus)
	if err != nil {
		return err
	}
	defer d.Release()
	g, err := dev.Mul(gy, d)
	return accumulate(dev, gxs[0], g, err)
}
