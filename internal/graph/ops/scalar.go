package ops

import (
	"fmt"

	"github.com/born-ml/graphcore/internal/tensor"
)

// ScalarKind selects the arithmetic of a ScalarOp.
type ScalarKind int

// Scalar-tensor operations. The L/R suffix gives the side of the constant.
const (
	AddConst  ScalarKind = iota // x + k
	SubConstL                   // k - x
	SubConstR                   // x - k
	MulConst                    // x * k
	DivConstL                   // k / x
	DivConstR                   // x / k
)

var scalarNames = [...]string{"add_const", "sub_const_l", "sub_const_r", "mul_const", "div_const_l", "div_const_r"}

// ScalarOp combines a tensor with a constant k.
//
// Backward:
//   - x + k, x - k: gx += gy
//   - k - x: gx -= gy
//   - x * k: gx += k·gy
//   - x / k: gx += gy / k
//   - k / x: gx -= gy·y / x
type ScalarOp struct {
	kind ScalarKind
	k    float32
}

// NewScalarOp creates a ScalarOp.
func NewScalarOp(kind ScalarKind, k float32) *ScalarOp {
	return &ScalarOp{kind: kind, k: k}
}

// Name returns the operation name and constant, e.g. "mul_const(2)".
func (op *ScalarOp) Name() string {
	return fmt.Sprintf("%s(%g)", scalarNames[op.kind], op.k)
}

// Shape returns the argument shape.
func (op *ScalarOp) Shape(args []tensor.Shape) (tensor.Shape, error) {
	return unaryShape(op.Name(), args)
}

// Forward applies the operation.
func (op *ScalarOp) Forward(dev tensor.Device, xs []*tensor.Tensor) (*tensor.Tensor, error) {
	x := xs[0]
	switch op.kind {
	case AddConst:
		return dev.AddConst(x, op.k)
	case SubConstL:
		return dev.SubConstL(op.k, x)
	case SubConstR:
		return dev.SubConstR(x, op.k)
	case MulConst:
		return dev.MulConst(x, op.k)
	case DivConstL:
		return dev.DivConstL(op.k, x)
	default:
		return dev.DivConstR(x, op.k)
	}
}

// Backward accumulates the input gradient.
func (op *ScalarOp) Backward(dev tensor.Device, xs []*tensor.Tensor, y, gy *tensor.Tensor, gxs []*tensor.Tensor) error {
	switch op.kind {
	case AddConst, SubConstR:
		return dev.AddGradient(gxs[0], gy)
	case SubConstL:
		g, err := dev.Negate(gy)
		return accumulate(dev, gxs[0], g, err)
	case MulConst:
		g, err := dev.MulConst(gy, op.k)
		return accumulate(dev, gxs[0], g, err)
	case DivConstR:
		g, err := dev.DivConstR(gy, op.k)
		return accumulate(dev, gxs[0], g, err)
	default:
		// d(k/x)/dx = -k/x² = -y/x
		t1, err := dev.Mul(gy, y)
		if err != nil {
			return err
		}
		defer t1.Release()
		t2, err := dev.Div(t1, xs[0])
		if err != nil {
			return err
		}
		defer t2.Release()
		g, err := dev.Negate(t2)
		return accumulate(dev, gxs[0], g, err)
	}
}
