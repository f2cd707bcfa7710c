package ops

import (
	"fmt"

	"github.com/born-ml/graphcore/internal/tensor"
)

// ConcatOp joins its arguments along one dimension.
// Backward slices gy into the window each argument came from.
type ConcatOp struct {
	dim int
}

// NewConcatOp creates a ConcatOp.
func NewConcatOp(dim int) *ConcatOp {
	return &ConcatOp{dim: dim}
}

// Name returns the operator with its dimension, e.g. "concat(0)".
func (op *ConcatOp) Name() string {
	return fmt.Sprintf("concat(%d)", op.dim)
}

// Shape returns the joined shape.
func (op *ConcatOp) Shape(args []tensor.Shape) (tensor.Shape, error) {
	return tensor.ConcatShape(args, op.dim)
}

// Forward concatenates xs.
func (op *ConcatOp) Forward(dev tensor.Device, xs []*tensor.Tensor) (*tensor.Tensor, error) {
	return dev.Concat(xs, op.dim)
}

// Backward routes each window of gy to its argument.
func (op *ConcatOp) Backward(dev tensor.Device, xs []*tensor.Tensor, _, gy *tensor.Tensor, gxs []*tensor.Tensor) error {
	offset := 0
	for i, x := range xs {
		n := x.Shape().Dim(op.dim)
		g, err := dev.Slice(gy, op.dim, offset, offset+n)
		if err := accumulate(dev, gxs[i], g, err); err != nil {
			return err
		}
		offset += n
	}
	return nil
}
