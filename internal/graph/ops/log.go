package ops

import "github.com/born-ml/graphcore/internal/tensor"

// LogOp computes the natural logarithm. Backward: gx += gy / x.
type LogOp struct{}

// NewLogOp creates a LogOp.
func NewLogOp() *LogOp { return &LogOp{} }

// Name returns "log".
func (op *LogOp) Name() string { return "log" }

// Shape returns the argument shape.
func (op *LogOp) Shape(args []tensor.Shape) (tensor.Shape, error) {
	return unaryShape(op.Name(), args)
}

// Forward computes ln(x).
func (op *LogOp) Forward(dev tensor.Device, xs []*tensor.Tensor) (*tensor.Tensor, error) {
	return dev.Log(xs[0])
}

// Backward computes the gradient for log.
func (op *LogOp) Backward(dev tensor.Device, xs []*tensor.Tensor, _, gy *tensor.Tensor, gxs []*tensor.Tensor) error {
	g, err := dev.Div(gy, xs[0])
	return accumulate(dev, gxs[0], g, err)
}
