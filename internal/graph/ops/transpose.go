package ops

import "github.com/born-ml/graphcore/internal/tensor"

// TransposeOp swaps the two leading dimensions of a matrix.
// Backward: gx += transpose(gy).
type TransposeOp struct{}

// NewTransposeOp creates a TransposeOp.
func NewTransposeOp() *TransposeOp { return &TransposeOp{} }

// Name returns "transpose".
func (op *TransposeOp) Name() string { return "transpose" }

// Shape returns the transposed shape.
func (op *TransposeOp) Shape(args []tensor.Shape) (tensor.Shape, error) {
	if err := checkArity(op.Name(), args, 1); err != nil {
		return tensor.Shape{}, err
	}
	return tensor.TransposeShape(args[0])
}

// Forward transposes x.
func (op *TransposeOp) Forward(dev tensor.Device, xs []*tensor.Tensor) (*tensor.Tensor, error) {
	return dev.Transpose(xs[0])
}

// Backward transposes the output gradient back.
func (op *TransposeOp) Backward(dev tensor.Device, _ []*tensor.Tensor, _, gy *tensor.Tensor, gxs []*tensor.Tensor) error {
	g, err := dev.Transpose(gy)
	return accumulate(dev, gxs[0], g, err)
}
