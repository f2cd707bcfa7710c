package graph

import (
	"github.com/born-ml/graphcore/internal/graph/ops"
	"github.com/born-ml/graphcore/internal/tensor"
)

// Negate returns -x.
func Negate(x Node) (Node, error) { return apply(ops.NewNegateOp(), x) }

// AddConst returns x + k.
func AddConst(x Node, k float32) (Node, error) { return apply(ops.NewScalarOp(ops.AddConst, k), x) }

// SubConstL returns k - x.
func SubConstL(k float32, x Node) (Node, error) { return apply(ops.NewScalarOp(ops.SubConstL, k), x) }

// SubConstR returns x - k.
func SubConstR(x Node, k float32) (Node, error) { return apply(ops.NewScalarOp(ops.SubConstR, k), x) }

// MulConst returns x * k.
func MulConst(x Node, k float32) (Node, error) { return apply(ops.NewScalarOp(ops.MulConst, k), x) }

// DivConstL returns k / x.
func DivConstL(k float32, x Node) (Node, error) { return apply(ops.NewScalarOp(ops.DivConstL, k), x) }

// DivConstR returns x / k.
func DivConstR(x Node, k float32) (Node, error) { return apply(ops.NewScalarOp(ops.DivConstR, k), x) }

// Add returns a + b with batch broadcasting.
func Add(a, b Node) (Node, error) { return apply(ops.NewAddOp(), a, b) }

// Sub returns a - b with batch broadcasting.
func Sub(a, b Node) (Node, error) { return apply(ops.NewSubOp(), a, b) }

// Mul returns a * b with batch broadcasting.
func Mul(a, b Node) (Node, error) { return apply(ops.NewMulOp(), a, b) }

// Div returns a / b with batch broadcasting.
func Div(a, b Node) (Node, error) { return apply(ops.NewDivOp(), a, b) }

// Exp returns e^x.
func Exp(x Node) (Node, error) { return apply(ops.NewExpOp(), x) }

// Log returns ln(x).
func Log(x Node) (Node, error) { return apply(ops.NewLogOp(), x) }

// Tanh returns tanh(x).
func Tanh(x Node) (Node, error) { return apply(ops.NewTanhOp(), x) }

// Sigmoid returns 1 / (1 + e^-x).
func Sigmoid(x Node) (Node, error) { return apply(ops.NewSigmoidOp(), x) }

// ReLU returns max(0, x).
func ReLU(x Node) (Node, error) { return apply(ops.NewReLUOp(), x) }

// Transpose swaps the two leading dimensions of a matrix.
func Transpose(x Node) (Node, error) { return apply(ops.NewTransposeOp(), x) }

// Dot returns the batched matrix product a·b.
func Dot(a, b Node) (Node, error) { return apply(ops.NewDotOp(), a, b) }

// Sum adds up dimension dim.
func Sum(x Node, dim int) (Node, error) { return apply(ops.NewSumOp(dim), x) }

// BatchSum adds up the samples of x.
func BatchSum(x Node) (Node, error) { return apply(ops.NewBatchSumOp(), x) }

// Broadcast repeats dimension dim, which must have size 1, size times.
func Broadcast(x Node, dim, size int) (Node, error) { return apply(ops.NewBroadcastOp(dim, size), x) }

// LogSumExp returns log(Σ exp(x)) along dim.
func LogSumExp(x Node, dim int) (Node, error) { return apply(ops.NewLogSumExpOp(dim), x) }

// Slice returns the range [lower, upper) of x along dim.
func Slice(x Node, dim, lower, upper int) (Node, error) {
	return apply(ops.NewSliceOp(dim, lower, upper), x)
}

// Concat joins xs along dim.
func Concat(xs []Node, dim int) (Node, error) { return apply(ops.NewConcatOp(dim), xs...) }

// Reshape relabels every sample of x with the dimensions of shape. The
// batch size of x is kept.
func Reshape(x Node, shape tensor.Shape) (Node, error) { return apply(ops.NewReshapeOp(shape), x) }

// SoftmaxCrossEntropy returns the cross-entropy between softmax(x) and the
// target distributions t along dim.
func SoftmaxCrossEntropy(x, t Node, dim int) (Node, error) {
	return apply(ops.NewSoftmaxCrossEntropyOp(dim), x, t)
}
