package graph

import (
	"github.com/born-ml/graphcore/internal/graph/ops"
	"github.com/born-ml/graphcore/internal/tensor"
)

// Input adds a leaf holding values, laid out column-major with the batch
// slowest. len(values) must equal shape.TotalElements().
func (g *Graph) Input(shape tensor.Shape, values []float32) (Node, error) {
	op, err := ops.NewInputOp(shape, values)
	if err != nil {
		return Node{}, err
	}
	return g.add(op)
}

// Constant adds a leaf filled with k.
func (g *Graph) Constant(shape tensor.Shape, k float32) (Node, error) {
	return g.add(ops.NewConstantOp(shape, k))
}

// Param adds a leaf exposing p. Gradients reaching the node accumulate into
// p's gradient. p must live on the graph's device.
func (g *Graph) Param(p *Parameter) (Node, error) {
	if err := tensor.CheckOwner("param", g.dev, p.value, p.grad); err != nil {
		return Node{}, err
	}
	return g.add(ops.NewParameterOp(p.value, p.grad))
}

// RandomBernoulli adds a leaf of 0/1 draws with P(1) = p.
func (g *Graph) RandomBernoulli(shape tensor.Shape, p float32) (Node, error) {
	return g.random(ops.Bernoulli, shape, p, 0)
}

// RandomUniform adds a leaf of draws from [lower, upper).
func (g *Graph) RandomUniform(shape tensor.Shape, lower, upper float32) (Node, error) {
	return g.random(ops.Uniform, shape, lower, upper)
}

// RandomNormal adds a leaf of draws from N(mean, sd²).
func (g *Graph) RandomNormal(shape tensor.Shape, mean, sd float32) (Node, error) {
	return g.random(ops.Normal, shape, mean, sd)
}

func (g *Graph) random(kind ops.RandomKind, shape tensor.Shape, a, b float32) (Node, error) {
	op, err := ops.NewRandomOp(kind, shape, a, b)
	if err != nil {
		return Node{}, err
	}
	return g.add(op)
}
