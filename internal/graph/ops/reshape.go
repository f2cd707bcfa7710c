package ops

import (
	"github.com/born-ml/graphcore/internal/tensor"
	"github.com/pkg/errors"
)

// ReshapeOp relabels every sample with new dimensions. The batch size is
// kept from the argument.
//
// Backward: the output gradient reshaped back to the input shape.
type ReshapeOp struct {
	dims tensor.Shape
}

// NewReshapeOp creates a ReshapeOp. Only the dimensions of shape are used.
func NewReshapeOp(shape tensor.Shape) *ReshapeOp {
	return &ReshapeOp{dims: shape}
}

// Name returns "reshape".
func (op *ReshapeOp) Name() string { return "reshape" }

// Shape returns the target dimensions with the argument's batch size.
func (op *ReshapeOp) Shape(args []tensor.Shape) (tensor.Shape, error) {
	if err := checkArity(op.Name(), args, 1); err != nil {
		return tensor.Shape{}, err
	}
	x := args[0]
	if x.ElementsPerSample() != op.dims.ElementsPerSample() {
		return tensor.Shape{}, errors.Wrapf(tensor.ErrShape, "reshape: cannot reshape %s to %v", x, op.dims.Dims())
	}
	return op.dims.ResizeBatch(x.BatchSize())
}

// Forward copies x under the new shape.
func (op *ReshapeOp) Forward(dev tensor.Device, xs []*tensor.Tensor) (*tensor.Tensor, error) {
	x := xs[0]
	shape, err := op.dims.ResizeBatch(x.Shape().BatchSize())
	if err != nil {
		return nil, err
	}
	y, err := dev.Duplicate(x)
	if err != nil {
		return nil, err
	}
	if err := y.Reshape(shape); err != nil {
		y.Release()
		return nil, err
	}
	return y, nil
}

// Backward reshapes gy back to the input shape.
func (op *ReshapeOp) Backward(dev tensor.Device, xs []*tensor.Tensor, _, gy *tensor.Tensor, gxs []*tensor.Tensor) error {
	g, err := dev.Duplicate(gy)
	if err != nil {
		return err
	}
	if err := g.Reshape(xs[0].Shape()); err != nil {
		g.Release()
		return err
	}
	return accumulate(dev, gxs[0], g, nil)
}
