package graph

import (
	"fmt"

	"github.com/born-ml/graphcore/internal/tensor"
	"github.com/pkg/errors"
)

// Node refers to one operator application in a Graph. It is a small value
// and can be copied freely. The zero Node is invalid.
type Node struct {
	g  *Graph
	id int
}

// Valid reports whether the node belongs to a graph.
func (n Node) Valid() bool {
	return n.g != nil
}

// Graph returns the graph the node belongs to.
func (n Node) Graph() *Graph {
	return n.g
}

// ID returns the index of the node in its graph.
func (n Node) ID() int {
	return n.id
}

// Shape returns the inferred result shape, or the zero Shape for an
// invalid node.
func (n Node) Shape() tensor.Shape {
	if n.g == nil {
		return tensor.Shape{}
	}
	return n.g.nodes[n.id].shape
}

// Operator returns the name of the node's operator.
func (n Node) Operator() string {
	if n.g == nil {
		return ""
	}
	return n.g.nodes[n.id].op.Name()
}

func (n Node) check(what string) (*node, error) {
	if n.g == nil {
		return nil, errors.Wrapf(tensor.ErrGraphMismatch, "%s: invalid node", what)
	}
	if err := n.g.checkOpen(); err != nil {
		return nil, err
	}
	return &n.g.nodes[n.id], nil
}

// Value returns the computed value. It fails with tensor.ErrState until the
// graph has forwarded the node. The tensor stays owned by the graph.
func (n Node) Value() (*tensor.Tensor, error) {
	nd, err := n.check("value")
	if err != nil {
		return nil, err
	}
	if nd.value == nil {
		return nil, errors.Wrapf(tensor.ErrState, "value: node %d (%s) has not been forwarded", n.id, nd.op.Name())
	}
	return nd.value, nil
}

// Values reads the computed value to host memory.
func (n Node) Values() ([]float32, error) {
	v, err := n.Value()
	if err != nil {
		return nil, err
	}
	return n.g.dev.Read(v)
}

// Gradient returns the accumulated gradient. It fails with tensor.ErrState
// until a backward pass has reached the node. The tensor stays owned by the
// graph.
func (n Node) Gradient() (*tensor.Tensor, error) {
	nd, err := n.check("gradient")
	if err != nil {
		return nil, err
	}
	if nd.grad == nil {
		return nil, errors.Wrapf(tensor.ErrState, "gradient: node %d (%s) has no gradient", n.id, nd.op.Name())
	}
	return nd.grad, nil
}

// Gradients reads the accumulated gradient to host memory.
func (n Node) Gradients() ([]float32, error) {
	gr, err := n.Gradient()
	if err != nil {
		return nil, err
	}
	return n.g.dev.Read(gr)
}

// String formats the node as "#id op shape".
func (n Node) String() string {
	if n.g == nil {
		return "#invalid"
	}
	return fmt.Sprintf("#%d %s %s", n.id, n.Operator(), n.Shape())
}
