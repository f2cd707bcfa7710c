// Package ops defines the operators a graph node can apply.
//
// Each operator provides:
//   - Shape: result shape inference, run eagerly when the node is built
//   - Forward: the result, computed by the device
//   - Backward: the contribution of the output gradient to every input
//     gradient, accumulated in place
//
// Supported operators:
//   - Leaves: InputOp, ConstantOp, ParameterOp, RandomBernoulliOp,
//     RandomUniformOp, RandomNormalOp
//   - Element-wise: NegateOp, ScalarOp, AddOp, SubOp, MulOp, DivOp, ExpOp,
//     LogOp, TanhOp, SigmoidOp, ReLUOp
//   - Structural: TransposeOp, ReshapeOp, SliceOp, ConcatOp, BroadcastOp
//   - Reductions: SumOp, BatchSumOp, LogSumExpOp
//   - DotOp (d(A·B)/dA = grad·Bᵀ, d(A·B)/dB = Aᵀ·grad)
//   - SoftmaxCrossEntropyOp
package ops

import (
	"github.com/born-ml/graphcore/internal/tensor"
	"github.com/pkg/errors"
)

// Operator is a differentiable function of zero or more tensors.
//
// Operators are stateless unless they implement Releaser; a new value is
// created for every node, so per-node caches live in the operator itself.
type Operator interface {
	// Name identifies the operator in errors and logs.
	Name() string

	// Shape infers the result shape from the argument shapes.
	Shape(args []tensor.Shape) (tensor.Shape, error)

	// Forward computes the result. The returned tensor is owned by the caller.
	Forward(dev tensor.Device, xs []*tensor.Tensor) (*tensor.Tensor, error)

	// Backward accumulates the contribution of gy into gxs, which are the
	// gradients of xs. y is the forward result. Temporaries must be released
	// before returning.
	//
	// Example for AddOp:
	//   gxs[0] += gy
	//   gxs[1] += gy
	Backward(dev tensor.Device, xs []*tensor.Tensor, y, gy *tensor.Tensor, gxs []*tensor.Tensor) error
}

// Releaser is implemented by operators that keep forward intermediates for
// their backward rule. Release frees them and is called when the graph closes.
type Releaser interface {
	Release()
}

// Borrower is implemented by operators whose forward result is not owned by
// the graph. The graph never releases a borrowed value.
type Borrower interface {
	Borrowed() bool
}

func checkArity(name string, args []tensor.Shape, n int) error {
	if len(args) != n {
		return errors.Wrapf(tensor.ErrShape, "%s: expected %d arguments, got %d", name, n, len(args))
	}
	return nil
}

// accumulate adds the contribution g into gx and releases g.
func accumulate(dev tensor.Device, gx, g *tensor.Tensor, err error) error {
	if err != nil {
		return err
	}
	defer g.Release()
	return dev.AddGradient(gx, g)
}

// release frees temporaries. Invalid and nil tensors are skipped.
func release(ts ...*tensor.Tensor) {
	for _, t := range ts {
		t.Release()
	}
}

func unaryShape(name string, args []tensor.Shape) (tensor.Shape, error) {
	if err := checkArity(name, args, 1); err != nil {
		return tensor.Shape{}, err
	}
	return args[0], nil
}

func binaryShape(name string, args []tensor.Shape) (tensor.Shape, error) {
	if err := checkArity(name, args, 2); err != nil {
		return tensor.Shape{}, err
	}
	return tensor.BinaryShape(name, args[0], args[1])
}
