// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package graph provides reverse-mode automatic differentiation.
//
// A Graph records operator applications on one device. Values are computed
// lazily by Forward and memoized; Backward walks the recorded nodes in
// reverse and accumulates gradients into every Parameter reached.
//
// Example:
//
//	import (
//	    "github.com/born-ml/graphcore/backend/cpu"
//	    "github.com/born-ml/graphcore/graph"
//	    "github.com/born-ml/graphcore/tensor"
//	)
//
//	func main() {
//	    dev := cpu.New(cpu.WithSeed(1))
//	    defer dev.Close()
//
//	    w, _ := graph.NewParameter(dev, "w", tensor.MustShape([]int{1, 3}, 1))
//	    defer w.Release()
//
//	    g := graph.New(dev)
//	    defer g.Close()
//
//	    x, _ := g.Input(tensor.MustShape([]int{3}, 2), []float32{1, 2, 3, 4, 5, 6})
//	    pw, _ := g.Param(w)
//	    y, _ := graph.Dot(pw, x)
//	    loss, _ := graph.BatchMean(y)
//
//	    _, _ = g.Forward(loss)
//	    _ = g.Backward(loss)
//	    grad, _ := w.Gradient().Values()
//	}
package graph

import (
	"github.com/born-ml/graphcore/internal/graph"
	"github.com/born-ml/graphcore/tensor"
)

// Graph is an arena of operator applications on one device.
type Graph = graph.Graph

// Node is a handle to one node of a Graph.
type Node = graph.Node

// Parameter owns a trainable value and its gradient across graphs.
type Parameter = graph.Parameter

// New creates an empty graph on dev.
func New(dev tensor.Device) *Graph {
	return graph.New(dev)
}

// NewParameter allocates a zero-filled value and gradient of shape on dev.
func NewParameter(dev tensor.Device, name string, shape tensor.Shape) (*Parameter, error) {
	return graph.NewParameter(dev, name, shape)
}

// Element-wise operations.
var (
	Negate    = graph.Negate
	Exp       = graph.Exp
	Log       = graph.Log
	Tanh      = graph.Tanh
	Sigmoid   = graph.Sigmoid
	ReLU      = graph.ReLU
	Square    = graph.Square
	AddConst  = graph.AddConst
	SubConstL = graph.SubConstL
	SubConstR = graph.SubConstR
	MulConst  = graph.MulConst
	DivConstL = graph.DivConstL
	DivConstR = graph.DivConstR
)

// Binary operations with batch broadcasting.
var (
	Add = graph.Add
	Sub = graph.Sub
	Mul = graph.Mul
	Div = graph.Div
	Dot = graph.Dot
)

// Reductions.
var (
	Sum       = graph.Sum
	Mean      = graph.Mean
	BatchSum  = graph.BatchSum
	BatchMean = graph.BatchMean
	LogSumExp = graph.LogSumExp
	Softmax   = graph.Softmax
)

// SoftmaxCrossEntropy computes -sum(t * log softmax(x)) along dim.
func SoftmaxCrossEntropy(x, t Node, dim int) (Node, error) {
	return graph.SoftmaxCrossEntropy(x, t, dim)
}

// Structural operations.
var (
	Transpose = graph.Transpose
	Broadcast = graph.Broadcast
	Slice     = graph.Slice
	Concat    = graph.Concat
	Reshape   = graph.Reshape
	Flatten   = graph.Flatten
)

// Dropout zeroes elements with probability rate while train is set.
// rate must lie in [0, 1].
func Dropout(x Node, rate float32, train bool) (Node, error) {
	return graph.Dropout(x, rate, train)
}
