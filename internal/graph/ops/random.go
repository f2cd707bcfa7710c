package ops

import (
	"github.com/born-ml/graphcore/internal/tensor"
	"github.com/pkg/errors"
)

// RandomKind selects the distribution of a RandomOp.
type RandomKind int

// Distributions supported by RandomOp.
const (
	Bernoulli RandomKind = iota // 1 with probability A, else 0
	Uniform                     // [A, B)
	Normal                      // mean A, standard deviation B
)

func (k RandomKind) String() string {
	switch k {
	case Bernoulli:
		return "bernoulli"
	case Uniform:
		return "uniform"
	case Normal:
		return "normal"
	default:
		return "unknown"
	}
}

// RandomOp is a leaf drawn from the device's generator on forward.
// Its value is not differentiable.
type RandomOp struct {
	kind  RandomKind
	shape tensor.Shape
	a, b  float32
}

// NewRandomOp creates a random leaf. Arguments are validated here so the
// error surfaces when the node is built rather than on forward.
func NewRandomOp(kind RandomKind, shape tensor.Shape, a, b float32) (*RandomOp, error) {
	switch kind {
	case Bernoulli:
		if !(a >= 0 && a <= 1) {
			return nil, errors.Wrapf(tensor.ErrShape, "bernoulli: invalid probability %v", a)
		}
	case Uniform:
		if !(a < b) {
			return nil, errors.Wrapf(tensor.ErrShape, "uniform: invalid range [%v, %v)", a, b)
		}
	case Normal:
		if !(b >= 0) {
			return nil, errors.Wrapf(tensor.ErrShape, "normal: invalid standard deviation %v", b)
		}
	default:
		return nil, errors.Errorf("random: unknown distribution %d", kind)
	}
	return &RandomOp{kind: kind, shape: shape, a: a, b: b}, nil
}

// Name returns the distribution name.
func (op *RandomOp) Name() string { return op.kind.String() }

// Shape returns the leaf shape.
func (op *RandomOp) Shape(args []tensor.Shape) (tensor.Shape, error) {
	if err := checkArity(op.Name(), args, 0); err != nil {
		return tensor.Shape{}, err
	}
	return op.shape, nil
}

// Forward draws the values.
func (op *RandomOp) Forward(dev tensor.Device, _ []*tensor.Tensor) (*tensor.Tensor, error) {
	switch op.kind {
	case Bernoulli:
		return dev.RandomBernoulli(op.shape, op.a)
	case Uniform:
		return dev.RandomUniform(op.shape, op.a, op.b)
	default:
		return dev.RandomNormal(op.shape, op.a, op.b)
	}
}

// Backward is a no-op.
func (op *RandomOp) Backward(tensor.Device, []*tensor.Tensor, *tensor.Tensor, *tensor.Tensor, []*tensor.Tensor) error {
	return nil
}
