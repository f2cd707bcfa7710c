//go:build windows

package webgpu

import (
	"math/rand/v2"
	"testing"

	"github.com/born-ml/graphcore/internal/backend/cpu"
	"github.com/born-ml/graphcore/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestDevice opens a seeded device whose leak check fails the test,
// skipping when no adapter is present.
func newTestDevice(t *testing.T, opts ...Option) *Device {
	t.Helper()
	base := []Option{
		WithSeed(42),
		WithLeakHandler(func(e *tensor.LeakError) { t.Errorf("%v", e) }),
	}
	d, err := New(append(base, opts...)...)
	if err != nil {
		t.Skipf("WebGPU not available: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func newCPU(t *testing.T) *cpu.Device {
	t.Helper()
	d := cpu.New(cpu.WithSeed(42), cpu.WithLeakHandler(func(e *tensor.LeakError) { t.Errorf("%v", e) }))
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func upload(t *testing.T, d tensor.Device, shape tensor.Shape, values []float32) *tensor.Tensor {
	t.Helper()
	x, err := d.Allocate(shape)
	require.NoError(t, err)
	t.Cleanup(x.Release)
	require.NoError(t, x.SetValues(values))
	return x
}

func read(t *testing.T, x *tensor.Tensor) []float32 {
	t.Helper()
	v, err := x.Values()
	require.NoError(t, err)
	return v
}

// sample returns n values in [lo, hi) from a fixed generator.
func sample(r *rand.Rand, n int, lo, hi float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = lo + (hi-lo)*r.Float32()
	}
	return out
}

func TestDevice_New(t *testing.T) {
	d := newTestDevice(t)
	assert.Equal(t, "WebGPU", d.Name())
	assert.Equal(t, uint64(42), d.Seed())
	assert.Empty(t, d.LiveBlocks())
	assert.Contains(t, d.String(), "seed=42")
}

func TestDevice_ReadWrite(t *testing.T) {
	d := newTestDevice(t)

	x := upload(t, d, tensor.MustShape([]int{2, 2}, 2), []float32{1, 2, 3, 4, 5, 6, 7, 8})
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6, 7, 8}, read(t, x))

	require.NoError(t, d.WriteConstant(x, 3))
	assert.Equal(t, []float32{3, 3, 3, 3, 3, 3, 3, 3}, read(t, x))

	assert.ErrorIs(t, d.WriteValues(x, []float32{1}), tensor.ErrShape)

	y, err := d.Duplicate(x)
	require.NoError(t, err)
	defer y.Release()
	require.NoError(t, d.WriteConstant(x, 0))
	assert.Equal(t, []float32{3, 3, 3, 3, 3, 3, 3, 3}, read(t, y))
}

func TestDevice_BufferReuse(t *testing.T) {
	d := newTestDevice(t)
	shape := tensor.MustShape([]int{64}, 1)

	for i := 0; i < 4; i++ {
		x, err := d.Allocate(shape)
		require.NoError(t, err)
		x.Release()
	}
	created, hits, _, idle := d.pool.stats()
	assert.Equal(t, uint64(1), created)
	assert.Equal(t, uint64(3), hits)
	assert.Equal(t, 1, idle)
}

func TestDevice_MemoryErrors(t *testing.T) {
	d := newTestDevice(t, WithMemoryLimit(64))
	other := newCPU(t)

	_, err := d.Allocate(tensor.MustShape([]int{32}, 1))
	assert.ErrorIs(t, err, tensor.ErrOutOfMemory)

	foreign := upload(t, other, tensor.MustShape([]int{2}, 1), []float32{1, 2})
	_, err = d.Negate(foreign)
	assert.ErrorIs(t, err, tensor.ErrMemory)
}

type parityCase struct {
	name   string
	shapes []tensor.Shape
	lo, hi float32
	run    func(d tensor.Device, xs []*tensor.Tensor) (*tensor.Tensor, error)
}

func unaryCase(name string, lo, hi float32, f func(tensor.Device, *tensor.Tensor) (*tensor.Tensor, error)) parityCase {
	return parityCase{
		name:   name,
		shapes: []tensor.Shape{tensor.MustShape([]int{3, 5}, 2)},
		lo:     lo,
		hi:     hi,
		run: func(d tensor.Device, xs []*tensor.Tensor) (*tensor.Tensor, error) {
			return f(d, xs[0])
		},
	}
}

func binaryCase(name string, a, b tensor.Shape, f func(tensor.Device, *tensor.Tensor, *tensor.Tensor) (*tensor.Tensor, error)) parityCase {
	return parityCase{
		name:   name,
		shapes: []tensor.Shape{a, b},
		lo:     0.5,
		hi:     2,
		run: func(d tensor.Device, xs []*tensor.Tensor) (*tensor.Tensor, error) {
			return f(d, xs[0], xs[1])
		},
	}
}

func TestDevice_Parity(t *testing.T) {
	s := func(dims []int, batch int) tensor.Shape { return tensor.MustShape(dims, batch) }
	m := s([]int{3, 4}, 3)
	m1 := s([]int{3, 4}, 1)

	tests := []parityCase{
		unaryCase("negate", -2, 2, tensor.Device.Negate),
		unaryCase("exp", -3, 3, tensor.Device.Exp),
		unaryCase("log", 0.1, 10, tensor.Device.Log),
		unaryCase("tanh", -30, 30, tensor.Device.Tanh),
		unaryCase("sigmoid", -30, 30, tensor.Device.Sigmoid),
		unaryCase("step", -1, 1, tensor.Device.Step),
		unaryCase("relu", -1, 1, tensor.Device.ReLU),
		unaryCase("add_const", -1, 1, func(d tensor.Device, x *tensor.Tensor) (*tensor.Tensor, error) { return d.AddConst(x, 1.5) }),
		unaryCase("sub_const_l", -1, 1, func(d tensor.Device, x *tensor.Tensor) (*tensor.Tensor, error) { return d.SubConstL(1.5, x) }),
		unaryCase("sub_const_r", -1, 1, func(d tensor.Device, x *tensor.Tensor) (*tensor.Tensor, error) { return d.SubConstR(x, 1.5) }),
		unaryCase("mul_const", -1, 1, func(d tensor.Device, x *tensor.Tensor) (*tensor.Tensor, error) { return d.MulConst(x, -3) }),
		unaryCase("div_const_l", 0.5, 2, func(d tensor.Device, x *tensor.Tensor) (*tensor.Tensor, error) { return d.DivConstL(2, x) }),
		unaryCase("div_const_r", -1, 1, func(d tensor.Device, x *tensor.Tensor) (*tensor.Tensor, error) { return d.DivConstR(x, 4) }),
		unaryCase("sum_0", -1, 1, func(d tensor.Device, x *tensor.Tensor) (*tensor.Tensor, error) { return d.Sum(x, 0) }),
		unaryCase("sum_1", -1, 1, func(d tensor.Device, x *tensor.Tensor) (*tensor.Tensor, error) { return d.Sum(x, 1) }),
		unaryCase("sum_2", -1, 1, func(d tensor.Device, x *tensor.Tensor) (*tensor.Tensor, error) { return d.Sum(x, 2) }),
		unaryCase("logsumexp_0", -50, 50, func(d tensor.Device, x *tensor.Tensor) (*tensor.Tensor, error) { return d.LogSumExp(x, 0) }),
		unaryCase("logsumexp_1", -50, 50, func(d tensor.Device, x *tensor.Tensor) (*tensor.Tensor, error) { return d.LogSumExp(x, 1) }),
		unaryCase("batch_sum", -1, 1, tensor.Device.BatchSum),
		unaryCase("transpose", -1, 1, tensor.Device.Transpose),
		unaryCase("slice_0", -1, 1, func(d tensor.Device, x *tensor.Tensor) (*tensor.Tensor, error) { return d.Slice(x, 0, 1, 3) }),
		unaryCase("slice_1", -1, 1, func(d tensor.Device, x *tensor.Tensor) (*tensor.Tensor, error) { return d.Slice(x, 1, 2, 4) }),
		{
			name:   "broadcast",
			shapes: []tensor.Shape{s([]int{3, 1, 2}, 2)},
			lo:     -1, hi: 1,
			run: func(d tensor.Device, xs []*tensor.Tensor) (*tensor.Tensor, error) { return d.Broadcast(xs[0], 1, 4) },
		},
		binaryCase("add", m, m, tensor.Device.Add),
		binaryCase("sub_broadcast_left", m1, m, tensor.Device.Sub),
		binaryCase("mul_broadcast_right", m, m1, tensor.Device.Mul),
		binaryCase("div", m, m, tensor.Device.Div),
		binaryCase("dot", s([]int{3, 4}, 2), s([]int{4, 5}, 2), tensor.Device.Dot),
		binaryCase("dot_broadcast", s([]int{3, 4}, 1), s([]int{4, 5}, 2), tensor.Device.Dot),
		{
			name:   "concat",
			shapes: []tensor.Shape{s([]int{3, 2}, 2), s([]int{3, 1}, 1), s([]int{3, 3}, 2)},
			lo:     -1, hi: 1,
			run: func(d tensor.Device, xs []*tensor.Tensor) (*tensor.Tensor, error) { return d.Concat(xs, 1) },
		},
	}

	gpu := newTestDevice(t)
	host := newCPU(t)
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := rand.New(rand.NewPCG(uint64(i), 7))
			var xg, xc []*tensor.Tensor
			for _, shape := range tt.shapes {
				v := sample(r, shape.TotalElements(), tt.lo, tt.hi)
				xg = append(xg, upload(t, gpu, shape, v))
				xc = append(xc, upload(t, host, shape, v))
			}
			yg, err := tt.run(gpu, xg)
			require.NoError(t, err)
			defer yg.Release()
			yc, err := tt.run(host, xc)
			require.NoError(t, err)
			defer yc.Release()

			assert.Equal(t, yc.Shape(), yg.Shape())
			assert.InDeltaSlice(t, read(t, yc), read(t, yg), 1e-4)
		})
	}
}

func TestDevice_AddGradientParity(t *testing.T) {
	s := func(dims []int, batch int) tensor.Shape { return tensor.MustShape(dims, batch) }
	tests := []struct {
		name     string
		dst, src tensor.Shape
		dim, off int
		offset   bool
	}{
		{name: "same", dst: s([]int{3, 4}, 2), src: s([]int{3, 4}, 2)},
		{name: "accumulate_batch", dst: s([]int{3, 4}, 1), src: s([]int{3, 4}, 3)},
		{name: "broadcast_batch", dst: s([]int{3, 4}, 3), src: s([]int{3, 4}, 1)},
		{name: "offset_0", dst: s([]int{5, 2}, 2), src: s([]int{2, 2}, 2), dim: 0, off: 3, offset: true},
		{name: "offset_1", dst: s([]int{2, 5}, 1), src: s([]int{2, 3}, 2), dim: 1, off: 1, offset: true},
	}

	gpu := newTestDevice(t)
	host := newCPU(t)
	r := rand.New(rand.NewPCG(1, 2))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dv := sample(r, tt.dst.TotalElements(), -1, 1)
			sv := sample(r, tt.src.TotalElements(), -1, 1)
			dg, sg := upload(t, gpu, tt.dst, dv), upload(t, gpu, tt.src, sv)
			dc, sc := upload(t, host, tt.dst, dv), upload(t, host, tt.src, sv)
			if tt.offset {
				require.NoError(t, gpu.AddGradientOffset(dg, sg, tt.dim, tt.off))
				require.NoError(t, host.AddGradientOffset(dc, sc, tt.dim, tt.off))
			} else {
				require.NoError(t, gpu.AddGradient(dg, sg))
				require.NoError(t, host.AddGradient(dc, sc))
			}
			assert.InDeltaSlice(t, read(t, dc), read(t, dg), 1e-5)
		})
	}
}

func TestDevice_RandomMatchesCPU(t *testing.T) {
	gpu := newTestDevice(t)
	host := newCPU(t)
	shape := tensor.MustShape([]int{4, 4}, 2)

	draws := []func(d tensor.Device) (*tensor.Tensor, error){
		func(d tensor.Device) (*tensor.Tensor, error) { return d.RandomUniform(shape, -1, 1) },
		func(d tensor.Device) (*tensor.Tensor, error) { return d.RandomNormal(shape, 0, 2) },
		func(d tensor.Device) (*tensor.Tensor, error) { return d.RandomBernoulli(shape, 0.3) },
	}
	for _, draw := range draws {
		yg, err := draw(gpu)
		require.NoError(t, err)
		yc, err := draw(host)
		require.NoError(t, err)
		assert.Equal(t, read(t, yc), read(t, yg))
		yg.Release()
		yc.Release()
	}

	_, err := gpu.RandomBernoulli(shape, 2)
	assert.ErrorIs(t, err, tensor.ErrShape)
}
