package ops

import (
	"fmt"

	"github.com/born-ml/graphcore/internal/tensor"
)

// LogSumExpOp computes log(Σ exp(x)) along one dimension.
//
// The derivative is softmax(x) = exp(x - y), so
// gx += broadcast(gy) * exp(x - broadcast(y)).
type LogSumExpOp struct {
	dim int
}

// NewLogSumExpOp creates a LogSumExpOp.
func NewLogSumExpOp(dim int) *LogSumExpOp {
	return &LogSumExpOp{dim: dim}
}

// Name returns the operator with its dimension, e.g. "logsumexp(0)".
func (op *LogSumExpOp) Name() string {
	return fmt.Sprintf("logsumexp(%d)", op.dim)
}

// Shape returns the reduced shape.
func (op *LogSumExpOp) Shape(args []tensor.Shape) (tensor.Shape, error) {
	if err := checkArity(op.Name(), args, 1); err != nil {
		return tensor.Shape{}, err
	}
	return tensor.SumShape(args[0], op.dim)
}

// Forward computes the reduction.
func (op *LogSumExpOp) Forward(dev tensor.Device, xs []*tensor.Tensor) (*tensor.Tensor, error) {
	return dev.LogSumExp(xs[0], op.dim)
}

// Backward computes the softmax-weighted gradient.
func (op *LogSumExpOp) Backward(dev tensor.Device, xs []*tensor.Tensor, y, gy *tensor.Tensor, gxs []*tensor.Tensor) error {
	x := xs[0]
	n := x.Shape().Dim(op.dim)

	yb, err := dev.Broadcast(y, op.dim, n)
	if err != nil {
		return err
	}
	defer yb.Release()
	shifted, err := dev.Sub(x, yb)
	if err != nil {
		return err
	}
	defer shifted.Release()
	p, err := dev.Exp(shifted)
	if err != nil {
		return err
	}
	defer p.Release()
	gyb, err := dev.Broadcast(gy, op.dim, n)
	if err != nil {
		return err
	}
	defer gyb.Release()
	g, err := dev.Mul(p, gyb)
	return accumulate(dev, gxs[0], g, err)
}
