package ops

import (
	"fmt"

	"github.com/born-ml/graphcore/internal/tensor"
)

// SoftmaxCrossEntropyOp computes the cross-entropy between softmax(x) and a
// target distribution t along one dimension:
//
//	y = -Σ t · log_softmax(x),  log_softmax(x) = x - logsumexp(x)
//
// Backward:
//
//	gx += (softmax(x) - t) · gy
//	gt -= log_softmax(x) · gy
//
// The gx rule assumes every target distribution sums to 1. The
// log-probabilities are kept from the forward pass.
type SoftmaxCrossEntropyOp struct {
	dim  int
	logp *tensor.Tensor
}

// NewSoftmaxCrossEntropyOp creates a SoftmaxCrossEntropyOp.
func NewSoftmaxCrossEntropyOp(dim int) *SoftmaxCrossEntropyOp {
	return &SoftmaxCrossEntropyOp{dim: dim}
}

// Name returns the operator with its dimension.
func (op *SoftmaxCrossEntropyOp) Name() string {
	return fmt.Sprintf("softmax_cross_entropy(%d)", op.dim)
}

// Shape returns the reduced broadcast shape of logits and targets.
func (op *SoftmaxCrossEntropyOp) Shape(args []tensor.Shape) (tensor.Shape, error) {
	s, err := binaryShape(op.Name(), args)
	if err != nil {
		return tensor.Shape{}, err
	}
	return tensor.SumShape(s, op.dim)
}

// Forward computes the loss and caches log_softmax(x).
func (op *SoftmaxCrossEntropyOp) Forward(dev tensor.Device, xs []*tensor.Tensor) (*tensor.Tensor, error) {
	x, t := xs[0], xs[1]
	n := x.Shape().Dim(op.dim)

	lse, err := dev.LogSumExp(x, op.dim)
	if err != nil {
		return nil, err
	}
	defer lse.Release()
	lseb, err := dev.Broadcast(lse, op.dim, n)
	if err != nil {
		return nil, err
	}
	defer lseb.Release()
	logp, err := dev.Sub(x, lseb)
	if err != nil {
		return nil, err
	}
	prod, err := dev.Mul(t, logp)
	if err != nil {
		logp.Release()
		return nil, err
	}
	defer prod.Release()
	s, err := dev.Sum(prod, op.dim)
	if err != nil {
		logp.Release()
		return nil, err
	}
	defer s.Release()
	y, err := dev.Negate(s)
	if err != nil {
		logp.Release()
		return nil, err
	}
	op.Release()
	op.logp = logp
	return y, nil
}

// Backward computes gradients for logits and targets.
func (op *SoftmaxCrossEntropyOp) Backward(dev tensor.Device, xs []*tensor.Tensor, _, gy *tensor.Tensor, gxs []*tensor.Tensor) error {
	t := xs[1]
	n := xs[0].Shape().Dim(op.dim)

	gyb, err := dev.Broadcast(gy, op.dim, n)
	if err != nil {
		return err
	}
	defer gyb.Release()

	p, err := dev.Exp(op.logp)
	if err != nil {
		return err
	}
	defer p.Release()
	diff, err := dev.Sub(p, t)
	if err != nil {
		return err
	}
	defer diff.Release()
	gx, err := dev.Mul(diff, gyb)
	if err := accumulate(dev, gxs[0], gx, err); err != nil {
		return err
	}

	w, err := dev.Mul(op.logp, gyb)
	if err != nil {
		return err
	}
	defer w.Release()
	gt, err := dev.Negate(w)
	return accumulate(dev, gxs[1], gt, err)
}

// Release frees the cached log-probabilities.
func (op *SoftmaxCrossEntropyOp) Release() {
	op.logp.Release()
	op.logp = nil
}
