package cpu

import (
	"math"

	"github.com/born-ml/graphcore/internal/tensor"
)

// reduceDim folds dimension dim of x: for each output position, f receives
// the n strided source values along dim (stride skip1) and returns the result.
func (d *Device) reduceDim(op string, x *tensor.Tensor, dim int, f func(src []float32, offset, n, stride int) float32) (*tensor.Tensor, error) {
	shape, err := tensor.SumShape(x.Shape(), dim)
	if err != nil {
		return nil, err
	}
	src, err := d.data(op, x)
	if err != nil {
		return nil, err
	}
	y, dst, err := d.newTensor(shape)
	if err != nil {
		return nil, err
	}

	n := x.Shape().Dim(dim)
	skip1 := shape.ElementsUnderRank(dim)
	skip2 := skip1 * n
	d.forEach(len(dst), func(i int) {
		dst[i] = f(src, i%skip1+(i/skip1)*skip2, n, skip1)
	})
	return y, nil
}

// Sum adds up the elements of x along dim, leaving that dimension with size 1.
func (d *Device) Sum(x *tensor.Tensor, dim int) (*tensor.Tensor, error) {
	return d.reduceDim("sum", x, dim, func(src []float32, offset, n, stride int) float32 {
		var acc float32
		for j := 0; j < n; j++ {
			acc += src[offset]
			offset += stride
		}
		return acc
	})
}

// LogSumExp computes log(sum(exp(x))) along dim, shifted by the maximum
// so large inputs do not overflow.
func (d *Device) LogSumExp(x *tensor.Tensor, dim int) (*tensor.Tensor, error) {
	return d.reduceDim("logsumexp", x, dim, func(src []float32, offset, n, stride int) float32 {
		m := float32(math.Inf(-1))
		for j, p := 0, offset; j < n; j, p = j+1, p+stride {
			m = max(m, src[p])
		}
		var acc float64
		for j, p := 0, offset; j < n; j, p = j+1, p+stride {
			acc += math.Exp(float64(src[p] - m))
		}
		return m + float32(math.Log(acc))
	})
}

// BatchSum adds up the samples of x, producing a single-sample tensor.
func (d *Device) BatchSum(x *tensor.Tensor) (*tensor.Tensor, error) {
	src, err := d.data("batch sum", x)
	if err != nil {
		return nil, err
	}
	shape, err := x.Shape().ResizeBatch(1)
	if err != nil {
		return nil, err
	}
	y, dst, err := d.newTensor(shape)
	if err != nil {
		return nil, err
	}

	bs := x.Shape().BatchSize()
	size := len(dst)
	for i := 0; i < size; i++ {
		var acc float32
		for b, pos := 0, i; b < bs; b, pos = b+1, pos+size {
			acc += src[pos]
		}
		dst[i] = acc
	}
	return y, nil
}
