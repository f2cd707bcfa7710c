//go:build !windows

package webgpu

import (
	"runtime"

	"github.com/born-ml/graphcore/internal/tensor"
	"github.com/pkg/errors"
)

// Open always fails on this platform.
func Open(_ ...Option) (tensor.Device, error) {
	return nil, errors.Wrapf(ErrUnavailable, "not supported on %s", runtime.GOOS)
}

// Available reports whether a WebGPU adapter can be opened.
func Available() bool {
	return false
}

// AdapterName describes the default adapter, or why there is none.
func AdapterName() (string, error) {
	return "", errors.Wrapf(ErrUnavailable, "not supported on %s", runtime.GOOS)
}
