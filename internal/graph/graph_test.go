package graph_test

import (
	"math"
	"testing"

	"github.com/born-ml/graphcore/internal/backend/cpu"
	"github.com/born-ml/graphcore/internal/graph"
	"github.com/born-ml/graphcore/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newDevice creates a seeded CPU device that fails the test on leaks.
func newDevice(t *testing.T) *cpu.Device {
	t.Helper()
	dev := cpu.New(cpu.WithSeed(7), cpu.WithLeakHandler(func(e *tensor.LeakError) {
		t.Errorf("%v", e)
	}))
	t.Cleanup(func() { _ = dev.Close() })
	return dev
}

func newGraph(t *testing.T, dev tensor.Device) *graph.Graph {
	t.Helper()
	g := graph.New(dev)
	t.Cleanup(g.Close)
	return g
}

func newParameter(t *testing.T, dev tensor.Device, shape tensor.Shape, values []float32) *graph.Parameter {
	t.Helper()
	p, err := graph.NewParameter(dev, "p", shape)
	require.NoError(t, err)
	t.Cleanup(p.Release)
	require.NoError(t, p.Value().SetValues(values))
	return p
}

func TestGraph_New(t *testing.T) {
	dev := newDevice(t)
	g1, g2 := newGraph(t, dev), newGraph(t, dev)
	assert.NotEqual(t, g1.ID(), g2.ID())
	assert.Equal(t, dev, g1.Device())
	assert.Equal(t, 0, g1.Len())

	var invalid graph.Node
	assert.False(t, invalid.Valid())
	assert.False(t, invalid.Shape().Valid())
}

func TestGraph_ForwardIsMemoizedAndLazy(t *testing.T) {
	dev := newDevice(t)
	g := newGraph(t, dev)

	a, err := g.Input(tensor.MustShape([]int{2}, 1), []float32{1, 2})
	require.NoError(t, err)
	b, err := graph.MulConst(a, 3)
	require.NoError(t, err)
	unused, err := graph.Exp(a)
	require.NoError(t, err)
	assert.Equal(t, 3, g.Len())
	assert.Equal(t, "mul_const(3)", b.Operator())

	v1, err := g.Forward(b)
	require.NoError(t, err)
	v2, err := g.Forward(b)
	require.NoError(t, err)
	assert.Same(t, v1, v2)

	values, err := b.Values()
	require.NoError(t, err)
	assert.Equal(t, []float32{3, 6}, values)

	// Only a and b hold buffers.
	assert.Len(t, dev.LiveBlocks(), 2)
	_, err = unused.Value()
	assert.ErrorIs(t, err, tensor.ErrState)
	_, err = a.Value()
	assert.NoError(t, err)
}

func TestGraph_StateErrors(t *testing.T) {
	dev := newDevice(t)
	g := graph.New(dev)

	x, err := g.Input(tensor.Scalar(1), []float32{2})
	require.NoError(t, err)
	y, err := graph.Square(x)
	require.NoError(t, err)

	_, err = y.Value()
	assert.ErrorIs(t, err, tensor.ErrState)
	_, err = y.Gradient()
	assert.ErrorIs(t, err, tensor.ErrState)

	_, err = g.Forward(y)
	require.NoError(t, err)
	_, err = y.Gradient()
	assert.ErrorIs(t, err, tensor.ErrState)

	require.NoError(t, g.Backward(y))
	grad, err := x.Gradients()
	require.NoError(t, err)
	assert.Equal(t, []float32{4}, grad)
	assert.ErrorIs(t, g.Backward(y), tensor.ErrState)

	g.Close()
	g.Close()
	assert.Empty(t, dev.LiveBlocks())
	_, err = y.Value()
	assert.ErrorIs(t, err, tensor.ErrState)
	_, err = g.Constant(tensor.Scalar(1), 1)
	assert.ErrorIs(t, err, tensor.ErrState)
	_, err = g.Forward(y)
	assert.ErrorIs(t, err, tensor.ErrState)
}

func TestGraph_Mismatch(t *testing.T) {
	dev := newDevice(t)
	g1, g2 := newGraph(t, dev), newGraph(t, dev)

	a, err := g1.Constant(tensor.Scalar(1), 1)
	require.NoError(t, err)
	b, err := g2.Constant(tensor.Scalar(1), 2)
	require.NoError(t, err)

	_, err = graph.Add(a, b)
	assert.ErrorIs(t, err, tensor.ErrGraphMismatch)
	_, err = graph.Concat([]graph.Node{a, b}, 0)
	assert.ErrorIs(t, err, tensor.ErrGraphMismatch)
	_, err = graph.Add(a, graph.Node{})
	assert.ErrorIs(t, err, tensor.ErrGraphMismatch)
	_, err = graph.Exp(graph.Node{})
	assert.ErrorIs(t, err, tensor.ErrGraphMismatch)
	_, err = graph.Concat(nil, 0)
	assert.ErrorIs(t, err, tensor.ErrGraphMismatch)

	_, err = g2.Forward(a)
	assert.ErrorIs(t, err, tensor.ErrGraphMismatch)
	assert.ErrorIs(t, g2.Backward(a), tensor.ErrGraphMismatch)
	_, err = graph.Node{}.Value()
	assert.ErrorIs(t, err, tensor.ErrGraphMismatch)

	other := cpu.New(cpu.WithSeed(1))
	p, err := graph.NewParameter(other, "w", tensor.Scalar(1))
	require.NoError(t, err)
	_, err = g1.Param(p)
	assert.ErrorIs(t, err, tensor.ErrMemory)
	p.Release()
	require.NoError(t, other.Close())
}

func TestGraph_ShapeErrors(t *testing.T) {
	dev := newDevice(t)
	g := newGraph(t, dev)

	a, err := g.Constant(tensor.MustShape([]int{2}, 2), 1)
	require.NoError(t, err)
	b, err := g.Constant(tensor.MustShape([]int{3}, 1), 1)
	require.NoError(t, err)
	c, err := g.Constant(tensor.MustShape([]int{2}, 3), 1)
	require.NoError(t, err)

	tests := []struct {
		name  string
		build func() (graph.Node, error)
	}{
		{"AddDims", func() (graph.Node, error) { return graph.Add(a, b) }},
		{"AddBatch", func() (graph.Node, error) { return graph.Mul(a, c) }},
		{"Dot", func() (graph.Node, error) { return graph.Dot(b, b) }},
		{"Slice", func() (graph.Node, error) { return graph.Slice(a, 0, 1, 3) }},
		{"Broadcast", func() (graph.Node, error) { return graph.Broadcast(a, 0, 2) }},
		{"SumDim", func() (graph.Node, error) { return graph.Sum(a, tensor.MaxDepth) }},
		{"Reshape", func() (graph.Node, error) { return graph.Reshape(a, tensor.MustShape([]int{3}, 1)) }},
		{"Input", func() (graph.Node, error) { return g.Input(tensor.MustShape([]int{2}, 1), []float32{1}) }},
		{"Bernoulli", func() (graph.Node, error) { return g.RandomBernoulli(tensor.Scalar(1), 2) }},
		{"Uniform", func() (graph.Node, error) { return g.RandomUniform(tensor.Scalar(1), 1, 0) }},
		{"Normal", func() (graph.Node, error) { return g.RandomNormal(tensor.Scalar(1), 0, -1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := g.Len()
			_, err := tt.build()
			assert.ErrorIs(t, err, tensor.ErrShape)
			assert.Equal(t, n, g.Len(), "failed construction must not add a node")
		})
	}

	t.Run("NonScalarRoot", func(t *testing.T) {
		assert.ErrorIs(t, g.Backward(a), tensor.ErrShape)
	})
}

func TestGraph_ParameterAccumulation(t *testing.T) {
	dev := newDevice(t)
	p := newParameter(t, dev, tensor.MustShape([]int{2}, 1), []float32{1, 2})

	step := func() {
		g := graph.New(dev)
		defer g.Close()
		a, err := g.Param(p)
		require.NoError(t, err)
		b, err := g.Param(p)
		require.NoError(t, err)
		b3, err := graph.MulConst(b, 3)
		require.NoError(t, err)
		s, err := graph.Add(a, b3)
		require.NoError(t, err)
		loss, err := graph.Sum(s, 0)
		require.NoError(t, err)

		values, err := loss.Values()
		require.ErrorIs(t, err, tensor.ErrState)
		assert.Nil(t, values)
		require.NoError(t, g.Backward(loss))
		values, err = loss.Values()
		require.NoError(t, err)
		assert.Equal(t, []float32{12}, values)
	}

	step()
	grad, err := p.Gradient().Values()
	require.NoError(t, err)
	assert.Equal(t, []float32{4, 4}, grad)

	step()
	grad, err = p.Gradient().Values()
	require.NoError(t, err)
	assert.Equal(t, []float32{8, 8}, grad)

	require.NoError(t, p.ResetGradient())
	grad, err = p.Gradient().Values()
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0}, grad)

	// The graph never frees the parameter's value.
	value, err := p.Value().Values()
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, value)
	assert.Len(t, dev.LiveBlocks(), 2)
}

func TestGraph_SharedSubexpression(t *testing.T) {
	dev := newDevice(t)
	g := newGraph(t, dev)

	// y = x² + x², dy/dx = 4x
	x, err := g.Input(tensor.MustShape([]int{3}, 1), []float32{1, -2, 0.5})
	require.NoError(t, err)
	sq, err := graph.Square(x)
	require.NoError(t, err)
	y, err := graph.Add(sq, sq)
	require.NoError(t, err)
	loss, err := graph.Sum(y, 0)
	require.NoError(t, err)

	require.NoError(t, g.Backward(loss))
	grad, err := x.Gradients()
	require.NoError(t, err)
	assert.Equal(t, []float32{4, -8, 2}, grad)
}

func TestGraph_SoftmaxCrossEntropyForward(t *testing.T) {
	dev := newDevice(t)
	g := newGraph(t, dev)

	x, err := g.Input(tensor.MustShape([]int{2}, 2), []float32{0, 0, 3, 1})
	require.NoError(t, err)
	target, err := g.Input(tensor.MustShape([]int{2}, 1), []float32{1, 0})
	require.NoError(t, err)
	loss, err := graph.SoftmaxCrossEntropy(x, target, 0)
	require.NoError(t, err)
	assert.Equal(t, tensor.Scalar(2), loss.Shape())

	_, err = g.Forward(loss)
	require.NoError(t, err)
	values, err := loss.Values()
	require.NoError(t, err)
	// -log(1/2) and -log(e³/(e³+e))
	assert.InDeltaSlice(t, []float32{0.6931472, 0.126928}, values, 1e-5)
}

func TestGraph_Softmax(t *testing.T) {
	dev := newDevice(t)
	g := newGraph(t, dev)

	x, err := g.Input(tensor.MustShape([]int{3}, 1), []float32{1, 2, 3})
	require.NoError(t, err)
	y, err := graph.Softmax(x, 0)
	require.NoError(t, err)
	_, err = g.Forward(y)
	require.NoError(t, err)
	values, err := y.Values()
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{0.09003057, 0.24472847, 0.66524096}, values, 1e-6)
}

func TestGraph_Dropout(t *testing.T) {
	dev := newDevice(t)
	g := newGraph(t, dev)

	x, err := g.Constant(tensor.MustShape([]int{64}, 2), 3)
	require.NoError(t, err)

	same, err := graph.Dropout(x, 0.5, false)
	require.NoError(t, err)
	assert.Equal(t, x, same)

	y, err := graph.Dropout(x, 0.5, true)
	require.NoError(t, err)
	_, err = g.Forward(y)
	require.NoError(t, err)
	values, err := y.Values()
	require.NoError(t, err)
	for _, v := range values {
		assert.Contains(t, []float32{0, 6}, v)
	}

	for _, rate := range []float32{-0.1, 1.5, float32(math.NaN())} {
		_, err := graph.Dropout(x, rate, true)
		assert.ErrorIs(t, err, tensor.ErrShape, "rate %g", rate)
		assert.ErrorContains(t, err, "rate")
	}
}

func TestGraph_DropoutRateOne(t *testing.T) {
	dev := newDevice(t)
	g := newGraph(t, dev)

	x, err := g.Input(tensor.MustShape([]int{4}, 2), []float32{1, 2, 3, 4, 5, 6, 7, 8})
	require.NoError(t, err)
	y, err := graph.Dropout(x, 1, true)
	require.NoError(t, err)
	s, err := graph.Sum(y, 0)
	require.NoError(t, err)
	loss, err := graph.BatchSum(s)
	require.NoError(t, err)

	_, err = g.Forward(loss)
	require.NoError(t, err)
	values, err := y.Values()
	require.NoError(t, err)
	assert.Equal(t, make([]float32, 8), values)

	require.NoError(t, g.Backward(loss))
	grad, err := x.Gradients()
	require.NoError(t, err)
	assert.Equal(t, make([]float32, 8), grad)
}

func TestGraph_RandomLeaves(t *testing.T) {
	dev := newDevice(t)
	g := newGraph(t, dev)

	u, err := g.RandomUniform(tensor.MustShape([]int{100}, 1), 2, 3)
	require.NoError(t, err)
	n, err := g.RandomNormal(tensor.MustShape([]int{100}, 1), 0, 0)
	require.NoError(t, err)
	s, err := graph.Add(u, n)
	require.NoError(t, err)
	_, err = g.Forward(s)
	require.NoError(t, err)

	values, err := s.Values()
	require.NoError(t, err)
	for _, v := range values {
		assert.GreaterOrEqual(t, v, float32(2))
		assert.Less(t, v, float32(3))
	}
}

func TestGraph_FlattenAndMean(t *testing.T) {
	dev := newDevice(t)
	g := newGraph(t, dev)

	x, err := g.Input(tensor.MustShape([]int{2, 2}, 2), []float32{1, 2, 3, 4, 5, 6, 7, 8})
	require.NoError(t, err)
	f, err := graph.Flatten(x)
	require.NoError(t, err)
	assert.Equal(t, tensor.MustShape([]int{4}, 2), f.Shape())

	m, err := graph.Mean(x, 1)
	require.NoError(t, err)
	bm, err := graph.BatchMean(m)
	require.NoError(t, err)
	_, err = g.Forward(bm)
	require.NoError(t, err)

	values, err := bm.Values()
	require.NoError(t, err)
	// per-sample row means: [2 3] and [6 7]
	assert.Equal(t, []float32{4, 5}, values)
	assert.Equal(t, "#5 div_const_r(2) [2]x1", bm.String())
}
