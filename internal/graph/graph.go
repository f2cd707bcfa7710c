// Package graph implements reverse-mode automatic differentiation over
// device tensors.
//
// A Graph is an arena of nodes. Each Node applies an operator to earlier
// nodes, so node indices form a topological order and backward is a
// reverse index scan. Values are computed on demand and memoized:
//
//	g := graph.New(dev)
//	defer g.Close()
//
//	x, _ := g.Input(shape, values)
//	w, _ := g.Param(weights)
//	y, _ := graph.Dot(w, x)
//	loss, _ := graph.BatchMean(y)
//
//	_, _ = g.Forward(loss)
//	_ = g.Backward(loss)
//	grad := weights.Gradient()
//
// There is no ambient graph: leaves are created through Graph methods and
// derived nodes take their graph from their arguments. Mixing nodes of two
// graphs fails with tensor.ErrGraphMismatch.
//
// A Graph, like its Device, must be used from a single goroutine. Use a
// fresh Graph per forward/backward cycle.
package graph

import (
	"github.com/born-ml/graphcore/internal/graph/ops"
	"github.com/born-ml/graphcore/internal/tensor"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// node is one operator application in the arena.
type node struct {
	op    ops.Operator
	args  []int
	shape tensor.Shape
	value *tensor.Tensor // nil until forward
	grad  *tensor.Tensor // nil until backward reaches the node
}

// Graph records operator applications on one device.
type Graph struct {
	id         uuid.UUID
	dev        tensor.Device
	nodes      []node
	backwarded bool
	closed     bool
}

// New creates an empty graph computing on dev.
func New(dev tensor.Device) *Graph {
	g := &Graph{
		id:    uuid.New(),
		dev:   dev,
		nodes: make([]node, 0, 64),
	}
	klog.V(2).InfoS("graph created", "graph", g.id, "device", dev.Name())
	return g
}

// ID returns the unique identifier of the graph.
func (g *Graph) ID() uuid.UUID {
	return g.id
}

// Device returns the device the graph computes on.
func (g *Graph) Device() tensor.Device {
	return g.dev
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Close releases every value, gradient and cached intermediate owned by the
// graph. Parameter values are left to their Parameter. Closing twice is a
// no-op.
func (g *Graph) Close() {
	if g.closed {
		return
	}
	g.closed = true
	computed := 0
	for i := range g.nodes {
		n := &g.nodes[i]
		if n.value != nil {
			computed++
			if !borrowed(n) {
				n.value.Release()
			}
			n.value = nil
		}
		n.grad.Release()
		n.grad = nil
		if r, ok := n.op.(ops.Releaser); ok {
			r.Release()
		}
	}
	klog.V(2).InfoS("graph closed", "graph", g.id, "nodes", len(g.nodes), "computed", computed)
}

func (g *Graph) checkOpen() error {
	if g.closed {
		return errors.Wrapf(tensor.ErrState, "graph %s is closed", g.id)
	}
	return nil
}

// add appends a node applying op to args, inferring its shape eagerly.
func (g *Graph) add(op ops.Operator, args ...Node) (Node, error) {
	if err := g.checkOpen(); err != nil {
		return Node{}, err
	}
	shapes := make([]tensor.Shape, len(args))
	ids := make([]int, len(args))
	for i, a := range args {
		if a.g != g {
			return Node{}, mismatch(op.Name(), g, a)
		}
		shapes[i] = g.nodes[a.id].shape
		ids[i] = a.id
	}
	shape, err := op.Shape(shapes)
	if err != nil {
		return Node{}, err
	}
	g.nodes = append(g.nodes, node{op: op, args: ids, shape: shape})
	return Node{g: g, id: len(g.nodes) - 1}, nil
}

func mismatch(op string, g *Graph, n Node) error {
	if n.g == nil {
		return errors.Wrapf(tensor.ErrGraphMismatch, "%s: invalid node", op)
	}
	return errors.Wrapf(tensor.ErrGraphMismatch, "%s: node %d belongs to graph %s, not %s", op, n.id, n.g.id, g.id)
}

// apply builds a derived node, taking the graph from the first argument.
func apply(op ops.Operator, args ...Node) (Node, error) {
	if len(args) == 0 || args[0].g == nil {
		return Node{}, errors.Wrapf(tensor.ErrGraphMismatch, "%s: invalid node", op.Name())
	}
	return args[0].g.add(op, args...)
}
