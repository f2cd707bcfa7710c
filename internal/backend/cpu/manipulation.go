package cpu

import "github.com/born-ml/graphcore/internal/tensor"

// Slice copies the range [lower, upper) of x along dim.
func (d *Device) Slice(x *tensor.Tensor, dim, lower, upper int) (*tensor.Tensor, error) {
	shape, err := tensor.SliceShape(x.Shape(), dim, lower, upper)
	if err != nil {
		return nil, err
	}
	src, err := d.data("slice", x)
	if err != nil {
		return nil, err
	}
	y, dst, err := d.newTensor(shape)
	if err != nil {
		return nil, err
	}

	base := shape.ElementsUnderRank(dim)
	span := base * shape.Dim(dim)
	skip := base * x.Shape().Dim(dim)
	repeat := shape.TotalElements() / span
	for i, sp := 0, base*lower; i < repeat; i, sp = i+1, sp+skip {
		copy(dst[i*span:(i+1)*span], src[sp:sp+span])
	}
	return y, nil
}

// Concat joins xs along dim. Arguments with batch size 1 are repeated for
// every sample of the result.
func (d *Device) Concat(xs []*tensor.Tensor, dim int) (*tensor.Tensor, error) {
	shapes := make([]tensor.Shape, len(xs))
	srcs := make([][]float32, len(xs))
	for i, x := range xs {
		src, err := d.data("concat", x)
		if err != nil {
			return nil, err
		}
		shapes[i] = x.Shape()
		srcs[i] = src
	}
	shape, err := tensor.ConcatShape(shapes, dim)
	if err != nil {
		return nil, err
	}
	y, dst, err := d.newTensor(shape)
	if err != nil {
		return nil, err
	}

	base := shape.ElementsUnderRank(dim)
	skip := base * shape.Dim(dim)
	repeat := shape.ElementsPerSample() / skip
	offset := 0
	for i, src := range srcs {
		span := base * shapes[i].Dim(dim)
		bSkip := 0
		if shapes[i].HasBatch() {
			bSkip = span * repeat
		}
		dp := offset
		for b, bp := 0, 0; b < shape.BatchSize(); b, bp = b+1, bp+bSkip {
			sp := bp
			for r := 0; r < repeat; r++ {
				copy(dst[dp:dp+span], src[sp:sp+span])
				sp += span
				dp += skip
			}
		}
		offset += span
	}
	return y, nil
}

// Transpose swaps the two leading dimensions of every sample.
func (d *Device) Transpose(x *tensor.Tensor) (*tensor.Tensor, error) {
	shape, err := tensor.TransposeShape(x.Shape())
	if err != nil {
		return nil, err
	}
	src, err := d.data("transpose", x)
	if err != nil {
		return nil, err
	}
	y, dst, err := d.newTensor(shape)
	if err != nil {
		return nil, err
	}

	d1, d2 := x.Shape().Dim(0), x.Shape().Dim(1)
	ms := d1 * d2
	for b := 0; b < shape.BatchSize(); b++ {
		in := src[b*ms : (b+1)*ms]
		out := dst[b*ms : (b+1)*ms]
		for j := 0; j < d2; j++ {
			for i := 0; i < d1; i++ {
				out[j+i*d2] = in[i+j*d1]
			}
		}
	}
	return y, nil
}

// Broadcast repeats x size times along dim, which must have size 1.
func (d *Device) Broadcast(x *tensor.Tensor, dim, size int) (*tensor.Tensor, error) {
	shape, err := tensor.BroadcastShape(x.Shape(), dim, size)
	if err != nil {
		return nil, err
	}
	src, err := d.data("broadcast", x)
	if err != nil {
		return nil, err
	}
	y, dst, err := d.newTensor(shape)
	if err != nil {
		return nil, err
	}

	base := x.Shape().ElementsUnderRank(dim)
	repeat := len(src) / base
	dp := 0
	for r := 0; r < repeat; r++ {
		block := src[r*base : (r+1)*base]
		for j := 0; j < size; j++ {
			copy(dst[dp:dp+base], block)
			dp += base
		}
	}
	return y, nil
}
