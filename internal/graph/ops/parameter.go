package ops

import "github.com/born-ml/graphcore/internal/tensor"

// ParameterOp exposes a trainable value that outlives the graph.
//
// Forward returns the value itself, which stays owned by the parameter.
// Backward accumulates the node gradient into the parameter's gradient, so
// several nodes of the same parameter add up.
type ParameterOp struct {
	value *tensor.Tensor
	grad  *tensor.Tensor
}

// NewParameterOp creates a parameter leaf over value and its gradient.
func NewParameterOp(value, grad *tensor.Tensor) *ParameterOp {
	return &ParameterOp{value: value, grad: grad}
}

// Name returns "parameter".
func (op *ParameterOp) Name() string { return "parameter" }

// Borrowed reports that the value belongs to the parameter.
func (op *ParameterOp) Borrowed() bool { return true }

// Shape returns the parameter shape.
func (op *ParameterOp) Shape(args []tensor.Shape) (tensor.Shape, error) {
	if err := checkArity(op.Name(), args, 0); err != nil {
		return tensor.Shape{}, err
	}
	return op.value.Shape(), nil
}

// Forward returns the parameter value.
func (op *ParameterOp) Forward(dev tensor.Device, _ []*tensor.Tensor) (*tensor.Tensor, error) {
	if err := tensor.CheckOwner(op.Name(), dev, op.value, op.grad); err != nil {
		return nil, err
	}
	return op.value, nil
}

// Backward adds gy into the parameter gradient.
func (op *ParameterOp) Backward(dev tensor.Device, _ []*tensor.Tensor, _, gy *tensor.Tensor, _ []*tensor.Tensor) error {
	return dev.AddGradient(op.grad, gy)
}
