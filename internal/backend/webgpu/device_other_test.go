//go:build !windows

package webgpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpen_Unavailable(t *testing.T) {
	d, err := Open(WithSeed(1))
	assert.Nil(t, d)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.False(t, Available())

	_, err = AdapterName()
	assert.ErrorIs(t, err, ErrUnavailable)
}
