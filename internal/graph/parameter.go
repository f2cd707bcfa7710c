package graph

import (
	"github.com/born-ml/graphcore/internal/tensor"
	"k8s.io/klog/v2"
)

// Parameter is a trainable tensor that outlives graphs. It owns its value
// and gradient on one device.
//
// Typical cycle:
//
//	p.ResetGradient()
//	g := graph.New(dev)
//	w, _ := g.Param(p)
//	... build loss, g.Backward(loss) ...
//	g.Close()
//	update p.Value() from p.Gradient()
type Parameter struct {
	name  string
	value *tensor.Tensor
	grad  *tensor.Tensor
}

// NewParameter allocates a zero-valued parameter with a zero gradient.
// Populate the value through Value().SetValues or Value().Fill.
func NewParameter(dev tensor.Device, name string, shape tensor.Shape) (*Parameter, error) {
	value, err := dev.Allocate(shape)
	if err != nil {
		return nil, err
	}
	grad, err := dev.Allocate(shape)
	if err != nil {
		value.Release()
		return nil, err
	}
	p := &Parameter{name: name, value: value, grad: grad}
	if err := dev.WriteConstant(value, 0); err != nil {
		p.Release()
		return nil, err
	}
	if err := p.ResetGradient(); err != nil {
		p.Release()
		return nil, err
	}
	klog.V(3).InfoS("parameter created", "name", name, "shape", shape.String(), "device", dev.Name())
	return p, nil
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Shape returns the parameter shape.
func (p *Parameter) Shape() tensor.Shape {
	return p.value.Shape()
}

// Value returns the parameter value. It stays owned by the parameter.
func (p *Parameter) Value() *tensor.Tensor {
	return p.value
}

// Gradient returns the accumulated gradient. It stays owned by the parameter.
func (p *Parameter) Gradient() *tensor.Tensor {
	return p.grad
}

// ResetGradient zero-fills the gradient.
func (p *Parameter) ResetGradient() error {
	return p.grad.Fill(0)
}

// Release frees the value and the gradient.
func (p *Parameter) Release() {
	p.value.Release()
	p.grad.Release()
}
