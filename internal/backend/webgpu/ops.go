//go:build windows

package webgpu

import (
	"github.com/born-ml/graphcore/internal/tensor"
)

// unary runs an element-wise kernel from unaryShaders.
func (d *Device) unary(op, kernel string, x *tensor.Tensor, k float32) (*tensor.Tensor, error) {
	src, err := d.buffer(op, x)
	if err != nil {
		return nil, err
	}
	y, dst, err := d.newTensor(x.Shape())
	if err != nil {
		return nil, err
	}
	n := x.Shape().TotalElements()
	d.dispatch(kernel, unaryShaders[kernel], n, params(n).float(k), src, dst)
	return y, nil
}

// Negate computes -x.
func (d *Device) Negate(x *tensor.Tensor) (*tensor.Tensor, error) {
	return d.unary("negate", "negate", x, 0)
}

// Exp computes e^x.
func (d *Device) Exp(x *tensor.Tensor) (*tensor.Tensor, error) {
	return d.unary("exp", "exp", x, 0)
}

// Log computes the natural logarithm of x.
func (d *Device) Log(x *tensor.Tensor) (*tensor.Tensor, error) {
	return d.unary("log", "log", x, 0)
}

// Tanh computes the hyperbolic tangent of x.
func (d *Device) Tanh(x *tensor.Tensor) (*tensor.Tensor, error) {
	return d.unary("tanh", "tanh", x, 0)
}

// Sigmoid computes 0.5+0.5*tanh(0.5x).
func (d *Device) Sigmoid(x *tensor.Tensor) (*tensor.Tensor, error) {
	return d.unary("sigmoid", "sigmoid", x, 0)
}

// Step computes 1 where x > 0, else 0.
func (d *Device) Step(x *tensor.Tensor) (*tensor.Tensor, error) {
	return d.unary("step", "step", x, 0)
}

// ReLU computes max(x, 0).
func (d *Device) ReLU(x *tensor.Tensor) (*tensor.Tensor, error) {
	return d.unary("relu", "relu", x, 0)
}

// AddConst computes x + k.
func (d *Device) AddConst(x *tensor.Tensor, k float32) (*tensor.Tensor, error) {
	return d.unary("add const", "add_const", x, k)
}

// SubConstL computes k - x.
func (d *Device) SubConstL(k float32, x *tensor.Tensor) (*tensor.Tensor, error) {
	return d.unary("sub const", "sub_const_l", x, k)
}

// SubConstR computes x - k.
func (d *Device) SubConstR(x *tensor.Tensor, k float32) (*tensor.Tensor, error) {
	return d.unary("sub const", "sub_const_r", x, k)
}

// MulConst computes x * k.
func (d *Device) MulConst(x *tensor.Tensor, k float32) (*tensor.Tensor, error) {
	return d.unary("mul const", "mul_const", x, k)
}

// DivConstL computes k / x.
func (d *Device) DivConstL(k float32, x *tensor.Tensor) (*tensor.Tensor, error) {
	return d.unary("div const", "div_const_l", x, k)
}

// DivConstR computes x / k.
func (d *Device) DivConstR(x *tensor.Tensor, k float32) (*tensor.Tensor, error) {
	return d.unary("div const", "div_const_r", x, k)
}

// batchSkip returns how far an operand advances per batch step:
// size when it has its own batch, 0 when it is broadcast.
func batchSkip(s tensor.Shape, size int) int {
	if s.HasBatch() {
		return size
	}
	return 0
}

// binary runs a batch-broadcasting kernel from binaryShaders.
func (d *Device) binary(op string, a, b *tensor.Tensor) (*tensor.Tensor, error) {
	shape, err := tensor.BinaryShape(op, a.Shape(), b.Shape())
	if err != nil {
		return nil, err
	}
	bufA, err := d.buffer(op, a)
	if err != nil {
		return nil, err
	}
	bufB, err := d.buffer(op, b)
	if err != nil {
		return nil, err
	}
	y, dst, err := d.newTensor(shape)
	if err != nil {
		return nil, err
	}
	n, size := shape.TotalElements(), shape.ElementsPerSample()
	u := params(n, size, batchSkip(a.Shape(), size), batchSkip(b.Shape(), size))
	d.dispatch(op, binaryShaders[op], n, u, bufA, bufB, dst)
	return y, nil
}

// Add computes a + b.
func (d *Device) Add(a, b *tensor.Tensor) (*tensor.Tensor, error) {
	return d.binary("add", a, b)
}

// Sub computes a - b.
func (d *Device) Sub(a, b *tensor.Tensor) (*tensor.Tensor, error) {
	return d.binary("sub", a, b)
}

// Mul computes a * b.
func (d *Device) Mul(a, b *tensor.Tensor) (*tensor.Tensor, error) {
	return d.binary("mul", a, b)
}

// Div computes a / b.
func (d *Device) Div(a, b *tensor.Tensor) (*tensor.Tensor, error) {
	return d.binary("div", a, b)
}

// reduceDim runs a reduction kernel over dimension dim of x.
func (d *Device) reduceDim(op, code string, x *tensor.Tensor, dim int) (*tensor.Tensor, error) {
	shape, err := tensor.SumShape(x.Shape(), dim)
	if err != nil {
		return nil, err
	}
	src, err := d.buffer(op, x)
	if err != nil {
		return nil, err
	}
	y, dst, err := d.newTensor(shape)
	if err != nil {
		return nil, err
	}
	n := x.Shape().Dim(dim)
	skip1 := shape.ElementsUnderRank(dim)
	total := shape.TotalElements()
	d.dispatch(op, code, total, params(total, n, skip1, skip1*n), src, dst)
	return y, nil
}

// Sum adds up the elements of x along dim, leaving that dimension with size 1.
func (d *Device) Sum(x *tensor.Tensor, dim int) (*tensor.Tensor, error) {
	return d.reduceDim("sum", sumShader, x, dim)
}

// LogSumExp computes log(sum(exp(x))) along dim, shifted by the maximum.
func (d *Device) LogSumExp(x *tensor.Tensor, dim int) (*tensor.Tensor, error) {
	return d.reduceDim("logsumexp", logSumExpShader, x, dim)
}

// BatchSum adds up the samples of x, producing a single-sample tensor.
func (d *Device) BatchSum(x *tensor.Tensor) (*tensor.Tensor, error) {
	src, err := d.buffer("batch sum", x)
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
	size := shape.TotalElements()
	d.dispatch("batch_sum", batchSumShader, size, params(size, x.Shape().BatchSize()), src, dst)
	return y, nil
}

// Slice copies the range [lower, upper) of x along dim.
func (d *Device) Slice(x *tensor.Tensor, dim, lower, upper int) (*tensor.Tensor, error) {
	shape, err := tensor.SliceShape(x.Shape(), dim, lower, upper)
	if err != nil {
		return nil, err
	}
	src, err := d.buffer("slice", x)
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
	total := shape.TotalElements()
	d.dispatch("slice", sliceShader, total, params(total, span, skip, base*lower), src, dst)
	return y, nil
}

// Concat joins xs along dim. Arguments with batch size 1 are repeated for
// every sample of the result.
func (d *Device) Concat(xs []*tensor.Tensor, dim int) (*tensor.Tensor, error) {
	shapes := make([]tensor.Shape, len(xs))
	srcs := make([]gpuBuffer, len(xs))
	for i, x := range xs {
		b, err := d.buffer("concat", x)
		if err != nil {
			return nil, err
		}
		shapes[i] = x.Shape()
		srcs[i] = b
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
	runs := shape.ElementsPerSample() / skip
	offset := 0
	for i, src := range srcs {
		span := base * shapes[i].Dim(dim)
		total := span * runs * shape.BatchSize()
		u := params(total, span, skip, runs, offset, batchSkip(shapes[i], span*runs))
		d.dispatch("concat", concatShader, total, u, src, dst)
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
	src, err := d.buffer("transpose", x)
	if err != nil {
		return nil, err
	}
	y, dst, err := d.newTensor(shape)
	if err != nil {
		return nil, err
	}
	total := shape.TotalElements()
	d.dispatch("transpose", transposeShader, total, params(total, x.Shape().Dim(0), x.Shape().Dim(1)), src, dst)
	return y, nil
}

// Broadcast repeats x size times along dim, which must have size 1.
func (d *Device) Broadcast(x *tensor.Tensor, dim, size int) (*tensor.Tensor, error) {
	shape, err := tensor.BroadcastShape(x.Shape(), dim, size)
	if err != nil {
		return nil, err
	}
	src, err := d.buffer("broadcast", x)
	if err != nil {
		return nil, err
	}
	y, dst, err := d.newTensor(shape)
	if err != nil {
		return nil, err
	}
	total := shape.TotalElements()
	d.dispatch("broadcast", broadcastShader, total, params(total, x.Shape().ElementsUnderRank(dim), size), src, dst)
	return y, nil
}

// Dot computes the batched matrix product a·b for column-major matrices
// a (d1×d2) and b (d2×d3). An operand with batch size 1 is reused for every
// sample of the other.
func (d *Device) Dot(a, b *tensor.Tensor) (*tensor.Tensor, error) {
	shape, err := tensor.DotShape(a.Shape(), b.Shape())
	if err != nil {
		return nil, err
	}
	bufA, err := d.buffer("dot", a)
	if err != nil {
		return nil, err
	}
	bufB, err := d.buffer("dot", b)
	if err != nil {
		return nil, err
	}
	y, dst, err := d.newTensor(shape)
	if err != nil {
		return nil, err
	}
	d1, d2, d3 := a.Shape().Dim(0), a.Shape().Dim(1), b.Shape().Dim(1)
	total := shape.TotalElements()
	u := params(total, d1, d2, d3, batchSkip(a.Shape(), d1*d2), batchSkip(b.Shape(), d2*d3))
	d.dispatch("dot", dotShader, total, u, bufA, bufB, dst)
	return y, nil
}

// AddGradient adds src into dst in place. If dst has batch size 1 and src
// does not, every sample of src is accumulated into dst; if src has batch
// size 1, it is added to every sample of dst.
func (d *Device) AddGradient(dst, src *tensor.Tensor) error {
	if err := tensor.CheckGradient(dst.Shape(), src.Shape()); err != nil {
		return err
	}
	size := dst.Shape().ElementsPerSample()
	return d.addWindow("add gradient", dst, src, size, 1, size, 0)
}

// AddGradientOffset adds src into the window of dst that starts at offset
// along dim. It is the inverse of Slice.
func (d *Device) AddGradientOffset(dst, src *tensor.Tensor, dim, offset int) error {
	if err := tensor.CheckGradientOffset(dst.Shape(), src.Shape(), dim, offset); err != nil {
		return err
	}
	sd, ss := dst.Shape(), src.Shape()
	base := sd.ElementsUnderRank(dim)
	skip := base * sd.Dim(dim)
	return d.addWindow("add gradient offset", dst, src, base*ss.Dim(dim), sd.ElementsPerSample()/skip, skip, base*offset)
}

// addWindow accumulates src into runs windows of span elements of dst,
// one every skip from offset. One invocation owns each dst element, folding
// every src sample that maps onto it in sample order.
func (d *Device) addWindow(op string, dst, src *tensor.Tensor, span, runs, skip, offset int) error {
	bd, err := d.buffer(op, dst)
	if err != nil {
		return err
	}
	bs, err := d.buffer(op, src)
	if err != nil {
		return err
	}
	sd, ss := dst.Shape(), src.Shape()
	srcSample := span * runs
	reps, repStride := 1, 0
	if !sd.HasBatch() && ss.HasBatch() {
		reps, repStride = ss.BatchSize(), srcSample
	}
	total := sd.BatchSize() * srcSample
	u := params(total, span, runs, skip, offset,
		batchSkip(sd, sd.ElementsPerSample()), batchSkip(ss, srcSample), reps, repStride)
	d.dispatch("add_gradient", addGradientShader, total, u, bd, bs)
	return nil
}
