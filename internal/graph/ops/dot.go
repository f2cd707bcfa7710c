package ops

import "github.com/born-ml/graphcore/internal/tensor"

// DotOp represents a batched matrix product: output = a·b.
//
// Backward pass:
//   - d(A·B)/dA = grad·Bᵀ
//   - d(A·B)/dB = Aᵀ·grad
//
// An operand with batch size 1 receives the sum over samples.
type DotOp struct{}

// NewDotOp creates a DotOp.
func NewDotOp() *DotOp { return &DotOp{} }

// Name returns "dot".
func (op *DotOp) Name() string { return "dot" }

// Shape returns the product shape.
func (op *DotOp) Shape(args []tensor.Shape) (tensor.Shape, error) {
	if err := checkArity(op.Name(), args, 2); err != nil {
		return tensor.Shape{}, err
	}
	return tensor.DotShape(args[0], args[1])
}

// Forward computes a·b.
func (op *DotOp) Forward(dev tensor.Device, xs []*tensor.Tensor) (*tensor.Tensor, error) {
	return dev.Dot(xs[0], xs[1])
}

// Backward computes input gradients for the matrix product.
func (op *DotOp) Backward(dev tensor.Device, xs []*tensor.Tensor, _, gy *tensor.Tensor, gxs []*tensor.Tensor) error {
	a, b := xs[0], xs[1]

	bT, err := dev.Transpose(b)
	if err != nil {
		return err
	}
	defer bT.Release()
	ga, err := dev.Dot(gy, bT)
	if err := accumulate(dev, gxs[0], ga, err); err != nil {
		return err
	}

	aT, err := dev.Transpose(a)
	if err != nil {
		return err
	}
	defer aT.Release()
	gb, err := dev.Dot(aT, gy)
	return accumulate(dev, gxs[1], gb, err)
}
