package ops_test

import (
	"testing"

	"github.com/born-ml/graphcore/internal/backend/cpu"
	"github.com/born-ml/graphcore/internal/graph/ops"
	"github.com/born-ml/graphcore/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDevice(t *testing.T) *cpu.Device {
	t.Helper()
	dev := cpu.New(cpu.WithSeed(11), cpu.WithLeakHandler(func(e *tensor.LeakError) {
		t.Errorf("%v", e)
	}))
	t.Cleanup(func() { _ = dev.Close() })
	return dev
}

func fromValues(t *testing.T, dev *cpu.Device, shape tensor.Shape, values []float32) *tensor.Tensor {
	t.Helper()
	x, err := dev.Allocate(shape)
	require.NoError(t, err)
	t.Cleanup(x.Release)
	require.NoError(t, dev.WriteValues(x, values))
	return x
}

func zeros(t *testing.T, dev *cpu.Device, shape tensor.Shape) *tensor.Tensor {
	t.Helper()
	return fromValues(t, dev, shape, make([]float32, shape.TotalElements()))
}

func TestOperator_Arity(t *testing.T) {
	s := tensor.MustShape([]int{2}, 1)
	tests := []struct {
		op   ops.Operator
		args []tensor.Shape
	}{
		{ops.NewNegateOp(), nil},
		{ops.NewAddOp(), []tensor.Shape{s}},
		{ops.NewDotOp(), []tensor.Shape{s, s, s}},
		{ops.NewConstantOp(s, 1), []tensor.Shape{s}},
		{ops.NewSumOp(0), nil},
		{ops.NewSoftmaxCrossEntropyOp(0), []tensor.Shape{s}},
	}
	for _, tt := range tests {
		t.Run(tt.op.Name(), func(t *testing.T) {
			_, err := tt.op.Shape(tt.args)
			assert.ErrorIs(t, err, tensor.ErrShape)
		})
	}
}

func TestOperator_Names(t *testing.T) {
	assert.Equal(t, "div_const_l(0.5)", ops.NewScalarOp(ops.DivConstL, 0.5).Name())
	assert.Equal(t, "slice(1,0:2)", ops.NewSliceOp(1, 0, 2).Name())
	assert.Equal(t, "broadcast(0,3)", ops.NewBroadcastOp(0, 3).Name())
	assert.Equal(t, "concat(2)", ops.NewConcatOp(2).Name())
	assert.Equal(t, "softmax_cross_entropy(0)", ops.NewSoftmaxCrossEntropyOp(0).Name())
	assert.Equal(t, "uniform", ops.Uniform.String())
}

func TestAddOp_BroadcastBackward(t *testing.T) {
	dev := newDevice(t)

	// a has batch 1, b has batch 3: ga receives the sum over samples.
	a := fromValues(t, dev, tensor.MustShape([]int{2}, 1), []float32{1, 2})
	b := fromValues(t, dev, tensor.MustShape([]int{2}, 3), []float32{1, 2, 3, 4, 5, 6})
	gy := fromValues(t, dev, tensor.MustShape([]int{2}, 3), []float32{1, 1, 1, 2, 1, 3})
	ga := zeros(t, dev, a.Shape())
	gb := zeros(t, dev, b.Shape())

	op := ops.NewAddOp()
	require.NoError(t, op.Backward(dev, []*tensor.Tensor{a, b}, nil, gy, []*tensor.Tensor{ga, gb}))

	v, err := dev.Read(ga)
	require.NoError(t, err)
	assert.Equal(t, []float32{3, 6}, v)
	v, err = dev.Read(gb)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 1, 1, 2, 1, 3}, v)
	assert.Len(t, dev.LiveBlocks(), 5, "backward must release its temporaries")
}

func TestDotOp_Backward(t *testing.T) {
	dev := newDevice(t)

	// a = [[1 2]], b = [[3] [4]], y = [[11]]
	a := fromValues(t, dev, tensor.MustShape([]int{1, 2}, 1), []float32{1, 2})
	b := fromValues(t, dev, tensor.MustShape([]int{2}, 1), []float32{3, 4})
	gy := fromValues(t, dev, tensor.Scalar(1), []float32{2})
	ga := zeros(t, dev, a.Shape())
	gb := zeros(t, dev, b.Shape())

	op := ops.NewDotOp()
	shape, err := op.Shape([]tensor.Shape{a.Shape(), b.Shape()})
	require.NoError(t, err)
	assert.Equal(t, tensor.Scalar(1), shape)

	y, err := op.Forward(dev, []*tensor.Tensor{a, b})
	require.NoError(t, err)
	defer y.Release()
	require.NoError(t, op.Backward(dev, []*tensor.Tensor{a, b}, y, gy, []*tensor.Tensor{ga, gb}))

	v, err := dev.Read(ga)
	require.NoError(t, err)
	assert.Equal(t, []float32{6, 8}, v)
	v, err = dev.Read(gb)
	require.NoError(t, err)
	assert.Equal(t, []float32{2, 4}, v)
}

func TestParameterOp_Borrowed(t *testing.T) {
	dev := newDevice(t)
	value := fromValues(t, dev, tensor.MustShape([]int{2}, 1), []float32{1, 2})
	grad := zeros(t, dev, value.Shape())

	op := ops.NewParameterOp(value, grad)
	assert.True(t, op.Borrowed())

	y, err := op.Forward(dev, nil)
	require.NoError(t, err)
	assert.Same(t, value, y)

	gy := fromValues(t, dev, value.Shape(), []float32{0.5, 1})
	require.NoError(t, op.Backward(dev, nil, y, gy, nil))
	require.NoError(t, op.Backward(dev, nil, y, gy, nil))
	v, err := dev.Read(grad)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, v)

	other := cpu.New(cpu.WithSeed(1))
	_, err = op.Forward(other, nil)
	assert.ErrorIs(t, err, tensor.ErrMemory)
	require.NoError(t, other.Close())
}

func TestSoftmaxCrossEntropyOp_Release(t *testing.T) {
	dev := newDevice(t)
	x := fromValues(t, dev, tensor.MustShape([]int{2}, 1), []float32{0, 0})
	target := fromValues(t, dev, tensor.MustShape([]int{2}, 1), []float32{0, 1})

	op := ops.NewSoftmaxCrossEntropyOp(0)
	y, err := op.Forward(dev, []*tensor.Tensor{x, target})
	require.NoError(t, err)
	v, err := dev.Read(y)
	require.NoError(t, err)
	assert.InDelta(t, 0.6931472, v[0], 1e-6)
	y.Release()

	// x, target and the cached log-probabilities.
	assert.Len(t, dev.LiveBlocks(), 3)
	op.Release()
	assert.Len(t, dev.LiveBlocks(), 2)
	op.Release()
}

func TestInputOp(t *testing.T) {
	dev := newDevice(t)
	values := []float32{1, 2, 3}
	op, err := ops.NewInputOp(tensor.MustShape([]int{3}, 1), values)
	require.NoError(t, err)
	values[0] = 9 // the op keeps its own copy

	y, err := op.Forward(dev, nil)
	require.NoError(t, err)
	defer y.Release()
	v, err := dev.Read(y)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, v)

	_, err = ops.NewInputOp(tensor.MustShape([]int{3}, 2), values)
	assert.ErrorIs(t, err, tensor.ErrShape)
}
