package cpu

import "github.com/born-ml/graphcore/internal/tensor"

// binary applies f element-wise with batch broadcasting: an operand whose
// batch size is 1 is re-read for every sample of the other operand.
func (d *Device) binary(op string, a, b *tensor.Tensor, f func(x, y float32) float32) (*tensor.Tensor, error) {
	shape, err := tensor.BinaryShape(op, a.Shape(), b.Shape())
	if err != nil {
		return nil, err
	}
	srcA, err := d.data(op, a)
	if err != nil {
		return nil, err
	}
	srcB, err := d.data(op, b)
	if err != nil {
		return nil, err
	}
	y, dst, err := d.newTensor(shape)
	if err != nil {
		return nil, err
	}

	size := shape.ElementsPerSample()
	skipA := batchSkip(a.Shape(), size)
	skipB := batchSkip(b.Shape(), size)
	for bt, offA, offB := 0, 0, 0; bt < shape.BatchSize(); bt++ {
		out := dst[bt*size : (bt+1)*size]
		pa := srcA[offA : offA+size]
		pb := srcB[offB : offB+size]
		for i := range out {
			out[i] = f(pa[i], pb[i])
		}
		offA += skipA
		offB += skipB
	}
	return y, nil
}

// batchSkip returns how far an operand advances per batch step:
// size when it has its own batch, 0 when it is broadcast.
func batchSkip(s tensor.Shape, size int) int {
	if s.HasBatch() {
		return size
	}
	return 0
}

// Add computes a + b.
func (d *Device) Add(a, b *tensor.Tensor) (*tensor.Tensor, error) {
	return d.binary("add", a, b, func(x, y float32) float32 { return x + y })
}

// Sub computes a - b.
func (d *Device) Sub(a, b *tensor.Tensor) (*tensor.Tensor, error) {
	return d.binary("sub", a, b, func(x, y float32) float32 { return x - y })
}

// Mul computes a * b.
func (d *Device) Mul(a, b *tensor.Tensor) (*tensor.Tensor, error) {
	return d.binary("mul", a, b, func(x, y float32) float32 { return x * y })
}

// Div computes a / b.
func (d *Device) Div(a, b *tensor.Tensor) (*tensor.Tensor, error) {
	return d.binary("div", a, b, func(x, y float32) float32 { return x / y })
}
