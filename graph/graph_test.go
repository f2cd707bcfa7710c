// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package graph_test

import (
	"testing"

	"github.com/born-ml/graphcore/backend/cpu"
	"github.com/born-ml/graphcore/graph"
	"github.com/born-ml/graphcore/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPublicAPI runs the package example end to end.
func TestPublicAPI(t *testing.T) {
	dev := cpu.New(cpu.WithSeed(1), cpu.WithWorkers(1),
		cpu.WithLeakHandler(func(e *tensor.LeakError) { t.Errorf("%v", e) }))
	defer func() { assert.NoError(t, dev.Close()) }()

	w, err := graph.NewParameter(dev, "w", tensor.MustShape([]int{1, 3}, 1))
	require.NoError(t, err)
	defer w.Release()

	g := graph.New(dev)
	defer g.Close()

	x, err := g.Input(tensor.MustShape([]int{3}, 2), []float32{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	pw, err := g.Param(w)
	require.NoError(t, err)
	y, err := graph.Dot(pw, x)
	require.NoError(t, err)
	loss, err := graph.BatchMean(y)
	require.NoError(t, err)

	_, err = g.Forward(loss)
	require.NoError(t, err)
	require.NoError(t, g.Backward(loss))

	grad, err := w.Gradient().Values()
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{2.5, 3.5, 4.5}, grad, 1e-6)

	// A second backward on the same graph is rejected.
	assert.ErrorIs(t, g.Backward(loss), tensor.ErrState)
}
