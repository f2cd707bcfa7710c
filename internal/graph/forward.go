package graph

import (
	"github.com/born-ml/graphcore/internal/tensor"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Forward computes the value of n, evaluating only the nodes it depends
// on. Values already computed are reused. The returned tensor stays owned
// by the graph.
func (g *Graph) Forward(n Node) (*tensor.Tensor, error) {
	if n.g != g {
		return nil, mismatch("forward", g, n)
	}
	if err := g.checkOpen(); err != nil {
		return nil, err
	}
	if err := g.forward(n.id); err != nil {
		return nil, err
	}
	return g.nodes[n.id].value, nil
}

func (g *Graph) forward(id int) error {
	nd := &g.nodes[id]
	if nd.value != nil {
		return nil
	}
	xs := make([]*tensor.Tensor, len(nd.args))
	for i, a := range nd.args {
		if err := g.forward(a); err != nil {
			return err
		}
		xs[i] = g.nodes[a].value
	}

	y, err := nd.op.Forward(g.dev, xs)
	if err != nil {
		return errors.WithMessagef(err, "forward node %d (%s)", id, nd.op.Name())
	}
	if y.Shape() != nd.shape {
		// Release unless the operator handed out a borrowed value.
		if !borrowed(nd) {
			y.Release()
		}
		return errors.Wrapf(tensor.ErrShape, "forward node %d (%s): device produced %s, inferred %s",
			id, nd.op.Name(), y.Shape(), nd.shape)
	}
	nd.value = y
	if klog.V(5).Enabled() {
		klog.V(5).InfoS("forward", "graph", g.id, "node", id, "op", nd.op.Name(), "shape", nd.shape.String())
	}
	return nil
}
