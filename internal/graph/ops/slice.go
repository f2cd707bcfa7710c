package ops

import (
	"fmt"

	"github.com/born-ml/graphcore/internal/tensor"
)

// SliceOp extracts [lower, upper) along one dimension.
// Backward scatters gy back into the same window of gx.
type SliceOp struct {
	dim, lower, upper int
}

// NewSliceOp creates a SliceOp.
func NewSliceOp(dim, lower, upper int) *SliceOp {
	return &SliceOp{dim: dim, lower: lower, upper: upper}
}

// Name returns the operator with its range, e.g. "slice(1,0:2)".
func (op *SliceOp) Name() string {
	return fmt.Sprintf("slice(%d,%d:%d)", op.dim, op.lower, op.upper)
}

// Shape returns the sliced shape.
func (op *SliceOp) Shape(args []tensor.Shape) (tensor.Shape, error) {
	if err := checkArity(op.Name(), args, 1); err != nil {
		return tensor.Shape{}, err
	}
	return tensor.SliceShape(args[0], op.dim, op.lower, op.upper)
}

// Forward copies the window.
func (op *SliceOp) Forward(dev tensor.Device, xs []*tensor.Tensor) (*tensor.Tensor, error) {
	return dev.Slice(xs[0], op.dim, op.lower, op.upper)
}

// Backward adds gy at the slice offset.
func (op *SliceOp) Backward(dev tensor.Device, _ []*tensor.Tensor, _, gy *tensor.Tensor, gxs []*tensor.Tensor) error {
	return dev.AddGradientOffset(gxs[0], gy, op.dim, op.lower)
}
