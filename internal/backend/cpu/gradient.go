package cpu

import "github.com/born-ml/graphcore/internal/tensor"

// AddGradient adds src into dst in place. If dst has batch size 1 and src
// does not, every sample of src is accumulated into dst; if src has batch
// size 1, it is added to every sample of dst.
func (d *Device) AddGradient(dst, src *tensor.Tensor) error {
	if err := tensor.CheckGradient(dst.Shape(), src.Shape()); err != nil {
		return err
	}
	pd, err := d.data("add gradient", dst)
	if err != nil {
		return err
	}
	ps, err := d.data("add gradient", src)
	if err != nil {
		return err
	}

	sd, ss := dst.Shape(), src.Shape()
	size := sd.ElementsPerSample()
	bs := max(sd.BatchSize(), ss.BatchSize())
	skipD := batchSkip(sd, size)
	skipS := batchSkip(ss, size)
	for b, od, os := 0, 0, 0; b < bs; b, od, os = b+1, od+skipD, os+skipS {
		out := pd[od : od+size]
		in := ps[os : os+size]
		for i := range out {
			out[i] += in[i]
		}
	}
	return nil
}

// AddGradientOffset adds src into the window of dst that starts at offset
// along dim. It is the inverse of Slice.
func (d *Device) AddGradientOffset(dst, src *tensor.Tensor, dim, offset int) error {
	if err := tensor.CheckGradientOffset(dst.Shape(), src.Shape(), dim, offset); err != nil {
		return err
	}
	pd, err := d.data("add gradient offset", dst)
	if err != nil {
		return err
	}
	ps, err := d.data("add gradient offset", src)
	if err != nil {
		return err
	}

	sd, ss := dst.Shape(), src.Shape()
	base := sd.ElementsUnderRank(dim)
	span := base * ss.Dim(dim)
	skip := base * sd.Dim(dim)
	repeat := sd.ElementsPerSample() / skip
	bs := max(sd.BatchSize(), ss.BatchSize())
	skipD := batchSkip(sd, sd.ElementsPerSample())
	skipS := batchSkip(ss, ss.ElementsPerSample())
	for b, od, os := 0, base*offset, 0; b < bs; b, od, os = b+1, od+skipD, os+skipS {
		dp, sp := od, os
		for r := 0; r < repeat; r++ {
			out := pd[dp : dp+span]
			in := ps[sp : sp+span]
			for i := range out {
				out[i] += in[i]
			}
			dp += skip
			sp += span
		}
	}
	return nil
}
