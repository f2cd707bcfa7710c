package cpu

import (
	"math"

	"github.com/born-ml/graphcore/internal/tensor"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distuv"
)

// fill allocates a tensor of shape and fills it with draws from rnd.
// Draws happen sequentially so a seeded device is reproducible.
func (d *Device) fill(shape tensor.Shape, rnd func() float32) (*tensor.Tensor, error) {
	y, dst, err := d.newTensor(shape)
	if err != nil {
		return nil, err
	}
	for i := range dst {
		dst[i] = rnd()
	}
	return y, nil
}

// RandomBernoulli draws 1 with probability p and 0 otherwise.
func (d *Device) RandomBernoulli(shape tensor.Shape, p float32) (*tensor.Tensor, error) {
	if !(p >= 0 && p <= 1) {
		return nil, errors.Wrapf(tensor.ErrShape, "bernoulli: invalid probability %v", p)
	}
	dist := distuv.Bernoulli{P: float64(p), Src: d.src}
	return d.fill(shape, func() float32 { return float32(dist.Rand()) })
}

// RandomUniform draws from the half-open interval [lower, upper).
func (d *Device) RandomUniform(shape tensor.Shape, lower, upper float32) (*tensor.Tensor, error) {
	if !(lower < upper) || math.IsInf(float64(upper-lower), 0) {
		return nil, errors.Wrapf(tensor.ErrShape, "uniform: invalid range [%v, %v)", lower, upper)
	}
	dist := distuv.Uniform{Min: float64(lower), Max: float64(upper), Src: d.src}
	return d.fill(shape, func() float32 {
		// Rounding to float32 can land exactly on upper.
		v := float32(dist.Rand())
		if v >= upper {
			return lower
		}
		return v
	})
}

// RandomNormal draws from N(mean, sd²).
func (d *Device) RandomNormal(shape tensor.Shape, mean, sd float32) (*tensor.Tensor, error) {
	if !(sd >= 0) {
		return nil, errors.Wrapf(tensor.ErrShape, "normal: invalid standard deviation %v", sd)
	}
	dist := distuv.Normal{Mu: float64(mean), Sigma: float64(sd), Src: d.src}
	return d.fill(shape, func() float32 { return float32(dist.Rand()) })
}
