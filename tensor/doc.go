// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public tensor types of graphcore.
//
// # Overview
//
// A Tensor is a handle to a float32 buffer owned by a Device. The package
// provides:
//   - Shape: up to MaxDepth dimensions plus a batch size
//   - Tensor: a move-only buffer handle (Release once, Take to move)
//   - Device: the backend contract (see backend/cpu and backend/webgpu)
//   - Error kinds to test with errors.Is
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/graphcore/backend/cpu"
//	    "github.com/born-ml/graphcore/tensor"
//	)
//
//	func main() {
//	    dev := cpu.New(cpu.WithSeed(1))
//	    defer dev.Close()
//
//	    x, err := dev.Allocate(tensor.MustShape([]int{2, 3}, 4))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer x.Release()
//
//	    _ = x.Fill(0.5)
//	    values, _ := x.Values()
//	}
//
// # Layout
//
// Values are exchanged column-major with the batch slowest: element (i, j)
// of sample b in a [d0, d1] tensor is at i + j*d0 + b*d0*d1.
//
// # Batch Broadcasting
//
// Binary operations accept operands with the same dimensions whose batch
// sizes are equal or 1. An operand with batch size 1 is reused for every
// sample of the other:
//
//	a: [3, 4] x 1
//	b: [3, 4] x 8
//	a + b: [3, 4] x 8
//
// # Memory Management
//
// Every buffer must be released before its device is closed. Close reports
// buffers still live as a *LeakError; the default handler logs them and
// exits the process.
package tensor
