package ops

import (
	"fmt"

	"github.com/born-ml/graphcore/internal/tensor"
)

// SumOp adds up one dimension, leaving it with size 1.
// Backward broadcasts gy over that dimension.
type SumOp struct {
	dim int
}

// NewSumOp creates a SumOp.
func NewSumOp(dim int) *SumOp {
	return &SumOp{dim: dim}
}

// Name returns the operator with its dimension, e.g. "sum(1)".
func (op *SumOp) Name() string {
	return fmt.Sprintf("sum(%d)", op.dim)
}

// Shape returns the reduced shape.
func (op *SumOp) Shape(args []tensor.Shape) (tensor.Shape, error) {
	if err := checkArity(op.Name(), args, 1); err != nil {
		return tensor.Shape{}, err
	}
	return tensor.SumShape(args[0], op.dim)
}

// Forward sums x along the dimension.
func (op *SumOp) Forward(dev tensor.Device, xs []*tensor.Tensor) (*tensor.Tensor, error) {
	return dev.Sum(xs[0], op.dim)
}

// Backward broadcasts gy back to the input size.
func (op *SumOp) Backward(dev tensor.Device, xs []*tensor.Tensor, _, gy *tensor.Tensor, gxs []*tensor.Tensor) error {
	g, err := dev.Broadcast(gy, op.dim, xs[0].Shape().Dim(op.dim))
	return accumulate(dev, gxs[0], g, err)
}

// BatchSumOp adds up the samples of a batch.
// Backward adds gy to every sample of gx.
type BatchSumOp struct{}

// NewBatchSumOp creates a BatchSumOp.
func NewBatchSumOp() *BatchSumOp { return &BatchSumOp{} }

// Name returns "batch_sum".
func (op *BatchSumOp) Name() string { return "batch_sum" }

// Shape returns the argument shape with batch size 1.
func (op *BatchSumOp) Shape(args []tensor.Shape) (tensor.Shape, error) {
	if err := checkArity(op.Name(), args, 1); err != nil {
		return tensor.Shape{}, err
	}
	return args[0].ResizeBatch(1)
}

// Forward sums the samples.
func (op *BatchSumOp) Forward(dev tensor.Device, xs []*tensor.Tensor) (*tensor.Tensor, error) {
	return dev.BatchSum(xs[0])
}

// Backward relies on AddGradient broadcasting the single-sample gy.
func (op *BatchSumOp) Backward(dev tensor.Device, _ []*tensor.Tensor, _, gy *tensor.Tensor, gxs []*tensor.Tensor) error {
	return dev.AddGradient(gxs[0], gy)
}
