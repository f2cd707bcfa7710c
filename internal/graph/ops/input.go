package ops

import (
	"github.com/born-ml/graphcore/internal/tensor"
	"github.com/pkg/errors"
)

// InputOp is a leaf holding host values, written to the device on forward.
type InputOp struct {
	shape  tensor.Shape
	values []float32
}

// NewInputOp creates an input leaf. values is copied and must hold exactly
// shape.TotalElements() elements.
func NewInputOp(shape tensor.Shape, values []float32) (*InputOp, error) {
	if len(values) != shape.TotalElements() {
		return nil, errors.Wrapf(tensor.ErrShape, "input: shape %s requires %d values, but got %d",
			shape, shape.TotalElements(), len(values))
	}
	return &InputOp{shape: shape, values: append([]float32(nil), values...)}, nil
}

// Name returns "input".
func (op *InputOp) Name() string { return "input" }

// Shape returns the leaf shape.
func (op *InputOp) Shape(args []tensor.Shape) (tensor.Shape, error) {
	if err := checkArity(op.Name(), args, 0); err != nil {
		return tensor.Shape{}, err
	}
	return op.shape, nil
}

// Forward allocates the tensor and writes the values.
func (op *InputOp) Forward(dev tensor.Device, _ []*tensor.Tensor) (*tensor.Tensor, error) {
	y, err := dev.Allocate(op.shape)
	if err != nil {
		return nil, err
	}
	if err := dev.WriteValues(y, op.values); err != nil {
		y.Release()
		return nil, err
	}
	return y, nil
}

// Backward is a no-op: inputs are not trainable.
func (op *InputOp) Backward(tensor.Device, []*tensor.Tensor, *tensor.Tensor, *tensor.Tensor, []*tensor.Tensor) error {
	return nil
}

// ConstantOp is a leaf filled with a single value.
type ConstantOp struct {
	shape tensor.Shape
	k     float32
}

// NewConstantOp creates a constant leaf.
func NewConstantOp(shape tensor.Shape, k float32) *ConstantOp {
	return &ConstantOp{shape: shape, k: k}
}

// Name returns "constant".
func (op *ConstantOp) Name() string { return "constant" }

// Shape returns the leaf shape.
func (op *ConstantOp) Shape(args []tensor.Shape) (tensor.Shape, error) {
	if err := checkArity(op.Name(), args, 0); err != nil {
		return tensor.Shape{}, err
	}
	return op.shape, nil
}

// Forward allocates the tensor and fills it.
func (op *ConstantOp) Forward(dev tensor.Device, _ []*tensor.Tensor) (*tensor.Tensor, error) {
	y, err := dev.Allocate(op.shape)
	if err != nil {
		return nil, err
	}
	if err := dev.WriteConstant(y, op.k); err != nil {
		y.Release()
		return nil, err
	}
	return y, nil
}

// Backward is a no-op.
func (op *ConstantOp) Backward(tensor.Device, []*tensor.Tensor, *tensor.Tensor, *tensor.Tensor, []*tensor.Tensor) error {
	return nil
}
