package graph

import (
	"github.com/born-ml/graphcore/internal/tensor"
	"github.com/pkg/errors"
)

// Mean averages x along dim.
func Mean(x Node, dim int) (Node, error) {
	s, err := Sum(x, dim)
	if err != nil {
		return Node{}, err
	}
	return DivConstR(s, float32(x.Shape().Dim(dim)))
}

// BatchMean averages the samples of x.
func BatchMean(x Node) (Node, error) {
	s, err := BatchSum(x)
	if err != nil {
		return Node{}, err
	}
	return DivConstR(s, float32(x.Shape().BatchSize()))
}

// Square returns x * x.
func Square(x Node) (Node, error) {
	return Mul(x, x)
}

// Softmax returns exp(x - logsumexp(x)) along dim.
func Softmax(x Node, dim int) (Node, error) {
	lse, err := LogSumExp(x, dim)
	if err != nil {
		return Node{}, err
	}
	b, err := Broadcast(lse, dim, x.Shape().Dim(dim))
	if err != nil {
		return Node{}, err
	}
	d, err := Sub(x, b)
	if err != nil {
		return Node{}, err
	}
	return Exp(d)
}

// Flatten reshapes every sample of x into a vector.
func Flatten(x Node) (Node, error) {
	shape, err := tensor.NewShape([]int{x.Shape().ElementsPerSample()}, 1)
	if err != nil {
		return Node{}, err
	}
	return Reshape(x, shape)
}

// Dropout zeroes each element of x with probability rate and scales the
// rest by 1/(1-rate). With train false, or rate 0, x is returned unchanged.
// Rate 1 drops everything and yields 0·x.
func Dropout(x Node, rate float32, train bool) (Node, error) {
	if !(rate >= 0 && rate <= 1) {
		return Node{}, errors.Wrapf(tensor.ErrShape, "dropout: rate %g outside [0, 1]", rate)
	}
	if !train || rate == 0 {
		return x, nil
	}
	if !x.Valid() {
		return Node{}, mismatch("dropout", nil, x)
	}
	if rate == 1 {
		return MulConst(x, 0)
	}
	keep := 1 - rate
	mask, err := x.g.RandomBernoulli(x.Shape(), keep)
	if err != nil {
		return Node{}, err
	}
	m, err := Mul(x, mask)
	if err != nil {
		return Node{}, err
	}
	return DivConstR(m, keep)
}
