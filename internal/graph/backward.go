package graph

import (
	"github.com/born-ml/graphcore/internal/graph/ops"
	"github.com/born-ml/graphcore/internal/tensor"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Backward computes the gradient of root with respect to every node it
// depends on.
//
// Algorithm:
//  1. Forward root if needed and seed its gradient with 1
//  2. Walk nodes from root down to index 0; inputs always have lower indices
//  3. For each node holding a gradient, let its operator accumulate the
//     contributions into its inputs' gradients, allocated zero-filled on
//     first use
//
// root must hold a single value (a scalar with batch size 1). A graph can be
// backpropagated once; Parameter gradients keep accumulating across graphs
// until reset.
func (g *Graph) Backward(root Node) error {
	if root.g != g {
		return mismatch("backward", g, root)
	}
	if err := g.checkOpen(); err != nil {
		return err
	}
	if g.backwarded {
		return errors.Wrapf(tensor.ErrState, "backward: graph %s has already been backpropagated", g.id)
	}
	rn := &g.nodes[root.id]
	if rn.shape.TotalElements() != 1 {
		return errors.Wrapf(tensor.ErrShape, "backward: root node %d has shape %s, expected a scalar", root.id, rn.shape)
	}
	if err := g.forward(root.id); err != nil {
		return err
	}

	seed, err := g.zeros(rn.shape)
	if err != nil {
		return err
	}
	if err := g.dev.WriteConstant(seed, 1); err != nil {
		seed.Release()
		return err
	}
	rn.grad = seed
	g.backwarded = true

	visited := 0
	for id := root.id; id >= 0; id-- {
		nd := &g.nodes[id]
		if nd.grad == nil {
			continue
		}
		if err := g.backwardNode(id); err != nil {
			return errors.WithMessagef(err, "backward node %d (%s)", id, nd.op.Name())
		}
		visited++
	}
	klog.V(3).InfoS("backward", "graph", g.id, "root", root.id, "visited", visited)
	return nil
}

// backwardNode runs the backward rule of one node.
func (g *Graph) backwardNode(id int) error {
	nd := &g.nodes[id]
	xs := make([]*tensor.Tensor, len(nd.args))
	gxs := make([]*tensor.Tensor, len(nd.args))
	for i, a := range nd.args {
		in := &g.nodes[a]
		if in.grad == nil {
			gr, err := g.zeros(in.shape)
			if err != nil {
				return err
			}
			in.grad = gr
		}
		xs[i] = in.value
		gxs[i] = in.grad
	}
	return nd.op.Backward(g.dev, xs, nd.value, nd.grad, gxs)
}

// zeros allocates a zero-filled tensor.
func (g *Graph) zeros(shape tensor.Shape) (*tensor.Tensor, error) {
	t, err := g.dev.Allocate(shape)
	if err != nil {
		return nil, err
	}
	if err := g.dev.WriteConstant(t, 0); err != nil {
		t.Release()
		return nil, err
	}
	return t, nil
}

func borrowed(nd *node) bool {
	b, ok := nd.op.(ops.Borrower)
	return ok && b.Borrowed()
}
