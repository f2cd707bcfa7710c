package cpu

import (
	"github.com/born-ml/graphcore/internal/parallel"
	"github.com/born-ml/graphcore/internal/tensor"
)

// Dot computes the batched matrix product a·b for column-major matrices
// a (d1×d2) and b (d2×d3). An operand with batch size 1 is reused for every
// sample of the other.
//
// This is the naive O(d1·d2·d3) product. Every output element accumulates
// its d2 terms in index order, and rows are distributed over workers without
// changing that order.
func (d *Device) Dot(a, b *tensor.Tensor) (*tensor.Tensor, error) {
	shape, err := tensor.DotShape(a.Shape(), b.Shape())
	if err != nil {
		return nil, err
	}
	srcA, err := d.data("dot", a)
	if err != nil {
		return nil, err
	}
	srcB, err := d.data("dot", b)
	if err != nil {
		return nil, err
	}
	y, dst, err := d.newTensor(shape)
	if err != nil {
		return nil, err
	}

	d1, d2, d3 := a.Shape().Dim(0), a.Shape().Dim(1), b.Shape().Dim(1)
	destShift := d1 * d3
	shiftA := batchSkip(a.Shape(), d1*d2)
	shiftB := batchSkip(b.Shape(), d2*d3)
	parallel.ForBatch(shape.BatchSize(), d1, func(bt, i int) {
		pa := srcA[bt*shiftA:]
		pb := srcB[bt*shiftB:]
		out := dst[bt*destShift:]
		for col := 0; col < d3; col++ {
			var acc float32
			for j := 0; j < d2; j++ {
				acc += pa[i+j*d1] * pb[j+col*d2]
			}
			out[i+col*d1] = acc
		}
	}, d.parallel)
	return y, nil
}
