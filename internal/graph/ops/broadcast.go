package ops

import (
	"fmt"

	"github.com/born-ml/graphcore/internal/tensor"
)

// BroadcastOp repeats a size-1 dimension. Backward: gx += sum(gy, dim).
type BroadcastOp struct {
	dim, size int
}

// NewBroadcastOp creates a BroadcastOp.
func NewBroadcastOp(dim, size int) *BroadcastOp {
	return &BroadcastOp{dim: dim, size: size}
}

// Name returns the operator with its arguments, e.g. "broadcast(0,3)".
func (op *BroadcastOp) Name() string {
	return fmt.Sprintf("broadcast(%d,%d)", op.dim, op.size)
}

// Shape returns the broadcast shape.
func (op *BroadcastOp) Shape(args []tensor.Shape) (tensor.Shape, error) {
	if err := checkArity(op.Name(), args, 1); err != nil {
		return tensor.Shape{}, err
	}
	return tensor.BroadcastShape(args[0], op.dim, op.size)
}

// Forward repeats x.
func (op *BroadcastOp) Forward(dev tensor.Device, xs []*tensor.Tensor) (*tensor.Tensor, error) {
	return dev.Broadcast(xs[0], op.dim, op.size)
}

// Backward sums gy over the broadcast dimension.
func (op *BroadcastOp) Backward(dev tensor.Device, _ []*tensor.Tensor, _, gy *tensor.Tensor, gxs []*tensor.Tensor) error {
	g, err := dev.Sum(gy, op.dim)
	return accumulate(dev, gxs[0], g, err)
}
