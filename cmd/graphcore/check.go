package main

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/born-ml/graphcore/backend/cpu"
	"github.com/born-ml/graphcore/backend/webgpu"
	"github.com/born-ml/graphcore/graph"
	"github.com/born-ml/graphcore/tensor"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

const (
	checkSeed  = 42
	checkBatch = 5

	gradientEps = 1e-2
	gradientTol = 1e-2
	parityTol   = 1e-4
)

// mlp is a one-hidden-layer classifier:
// loss = batch_mean(softmax_cross_entropy(w2·tanh(w1·x + b1), t)).
type mlp struct {
	w1, b1, w2 *graph.Parameter
	x, t       []float32
}

func newMLP(dev tensor.Device, seed uint64) (*mlp, error) {
	r := rand.New(rand.NewPCG(seed, 1))
	m := &mlp{}
	var err error
	if m.w1, err = randomParameter(dev, r, "w1", []int{4, 3}); err != nil {
		return nil, err
	}
	if m.b1, err = randomParameter(dev, r, "b1", []int{4}); err != nil {
		m.release()
		return nil, err
	}
	if m.w2, err = randomParameter(dev, r, "w2", []int{2, 4}); err != nil {
		m.release()
		return nil, err
	}
	m.x = make([]float32, 3*checkBatch)
	for i := range m.x {
		m.x[i] = 2*r.Float32() - 1
	}
	m.t = make([]float32, 2*checkBatch)
	for b := 0; b < checkBatch; b++ {
		m.t[2*b+b%2] = 1
	}
	return m, nil
}

func randomParameter(dev tensor.Device, r *rand.Rand, name string, dims []int) (*graph.Parameter, error) {
	shape, err := tensor.NewShape(dims, 1)
	if err != nil {
		return nil, err
	}
	p, err := graph.NewParameter(dev, name, shape)
	if err != nil {
		return nil, err
	}
	values := make([]float32, shape.TotalElements())
	for i := range values {
		values[i] = float32(r.NormFloat64()) * 0.5
	}
	if err := p.Value().SetValues(values); err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

func (m *mlp) params() []*graph.Parameter {
	return []*graph.Parameter{m.w1, m.b1, m.w2}
}

func (m *mlp) release() {
	for _, p := range m.params() {
		if p != nil {
			p.Release()
		}
	}
}

// loss evaluates the model on a fresh graph. With backward set, gradients
// are accumulated into the parameters.
func (m *mlp) loss(dev tensor.Device, backward bool) (float32, error) {
	g := graph.New(dev)
	defer g.Close()

	x, err := g.Input(tensor.MustShape([]int{3}, checkBatch), m.x)
	if err != nil {
		return 0, err
	}
	t, err := g.Input(tensor.MustShape([]int{2}, checkBatch), m.t)
	if err != nil {
		return 0, err
	}
	w1, err := g.Param(m.w1)
	if err != nil {
		return 0, err
	}
	b1, err := g.Param(m.b1)
	if err != nil {
		return 0, err
	}
	w2, err := g.Param(m.w2)
	if err != nil {
		return 0, err
	}

	h, err := graph.Dot(w1, x)
	if err == nil {
		h, err = graph.Add(h, b1)
	}
	if err == nil {
		h, err = graph.Tanh(h)
	}
	logits, err := chain(h, err, func(n graph.Node) (graph.Node, error) { return graph.Dot(w2, n) })
	ce, err := chain(logits, err, func(n graph.Node) (graph.Node, error) { return graph.SoftmaxCrossEntropy(n, t, 0) })
	loss, err := chain(ce, err, graph.BatchMean)
	if err != nil {
		return 0, err
	}

	if _, err := g.Forward(loss); err != nil {
		return 0, err
	}
	if backward {
		if err := g.Backward(loss); err != nil {
			return 0, err
		}
	}
	v, err := loss.Values()
	if err != nil {
		return 0, err
	}
	return v[0], nil
}

// chain applies f unless a previous step failed.
func chain(n graph.Node, err error, f func(graph.Node) (graph.Node, error)) (graph.Node, error) {
	if err != nil {
		return graph.Node{}, err
	}
	return f(n)
}

// gradients runs one forward/backward pass and returns the loss and the
// gradient of every parameter.
func (m *mlp) gradients(dev tensor.Device) (float32, [][]float32, error) {
	for _, p := range m.params() {
		if err := p.ResetGradient(); err != nil {
			return 0, nil, err
		}
	}
	loss, err := m.loss(dev, true)
	if err != nil {
		return 0, nil, err
	}
	grads := make([][]float32, 0, 3)
	for _, p := range m.params() {
		g, err := p.Gradient().Values()
		if err != nil {
			return 0, nil, err
		}
		grads = append(grads, g)
	}
	return loss, grads, nil
}

// checkGradients compares backpropagated gradients with central finite
// differences of the loss.
func checkGradients(dev tensor.Device) error {
	m, err := newMLP(dev, checkSeed)
	if err != nil {
		return err
	}
	defer m.release()

	_, grads, err := m.gradients(dev)
	if err != nil {
		return err
	}
	for pi, p := range m.params() {
		values, err := p.Value().Values()
		if err != nil {
			return err
		}
		worst := 0.0
		for i := range values {
			numeric, err := m.centralDifference(dev, p, values, i)
			if err != nil {
				return err
			}
			diff := math.Abs(float64(grads[pi][i])-numeric) / math.Max(1, math.Abs(numeric))
			worst = math.Max(worst, diff)
			if diff > gradientTol {
				return errors.Errorf("%s[%d]: backprop %g, finite difference %g", p.Name(), i, grads[pi][i], numeric)
			}
		}
		fmt.Printf("gradient  %-8s %-3s max relative error %.2e\n", dev.Name(), p.Name(), worst)
	}
	return nil
}

func (m *mlp) centralDifference(dev tensor.Device, p *graph.Parameter, values []float32, i int) (float64, error) {
	x := append([]float32(nil), values...)
	eval := func(v float32) (float64, error) {
		x[i] = v
		if err := p.Value().SetValues(x); err != nil {
			return 0, err
		}
		l, err := m.loss(dev, false)
		return float64(l), err
	}
	hi, err := eval(values[i] + gradientEps)
	if err != nil {
		return 0, err
	}
	lo, err := eval(values[i] - gradientEps)
	if err != nil {
		return 0, err
	}
	if err := p.Value().SetValues(values); err != nil {
		return 0, err
	}
	return (hi - lo) / (2 * gradientEps), nil
}

// checkParity runs the same step on both devices and compares the loss,
// the gradients and a random draw.
func checkParity(host, gpu tensor.Device) error {
	mc, err := newMLP(host, checkSeed)
	if err != nil {
		return err
	}
	defer mc.release()
	mg, err := newMLP(gpu, checkSeed)
	if err != nil {
		return err
	}
	defer mg.release()

	lc, gc, err := mc.gradients(host)
	if err != nil {
		return err
	}
	lg, gg, err := mg.gradients(gpu)
	if err != nil {
		return err
	}
	if d := math.Abs(float64(lc - lg)); d > parityTol {
		return errors.Errorf("loss: %s %g, %s %g", host.Name(), lc, gpu.Name(), lg)
	}
	for pi, p := range mc.params() {
		for i := range gc[pi] {
			if d := math.Abs(float64(gc[pi][i] - gg[pi][i])); d > parityTol {
				return errors.Errorf("gradient %s[%d]: %s %g, %s %g", p.Name(), i, host.Name(), gc[pi][i], gpu.Name(), gg[pi][i])
			}
		}
	}
	fmt.Printf("parity    %s/%s loss %.6f\n", host.Name(), gpu.Name(), lc)

	shape := tensor.MustShape([]int{16}, 4)
	rc, err := host.RandomNormal(shape, 0, 1)
	if err != nil {
		return err
	}
	defer rc.Release()
	rg, err := gpu.RandomNormal(shape, 0, 1)
	if err != nil {
		return err
	}
	defer rg.Release()
	vc, err := rc.Values()
	if err != nil {
		return err
	}
	vg, err := rg.Values()
	if err != nil {
		return err
	}
	for i := range vc {
		if vc[i] != vg[i] {
			return errors.Errorf("random normal draw %d: %s %g, %s %g", i, host.Name(), vc[i], gpu.Name(), vg[i])
		}
	}
	fmt.Printf("parity    %s/%s random draws\n", host.Name(), gpu.Name())
	return nil
}

// check runs the gradient check on every available device and, when a GPU
// is present, CPU/GPU parity.
func check() error {
	host := cpu.New(cpu.WithSeed(checkSeed))
	defer host.Close()

	if err := checkGradients(host); err != nil {
		return err
	}

	gpu, err := webgpu.Open(webgpu.WithSeed(checkSeed))
	if errors.Is(err, webgpu.ErrUnavailable) {
		klog.V(1).InfoS("skipping GPU checks", "reason", err.Error())
		fmt.Println("webgpu    skipped (unavailable)")
		return nil
	}
	if err != nil {
		return err
	}
	defer gpu.Close()

	if err := checkGradients(gpu); err != nil {
		return err
	}
	return checkParity(host, gpu)
}
