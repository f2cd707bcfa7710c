package tensor

import "github.com/pkg/errors"

// Shape inference shared by every Device implementation. Keeping these in
// one place guarantees that all backends accept and reject the same inputs.

func checkDim(op string, dim int) error {
	if dim < 0 || dim >= MaxDepth {
		return errors.Wrapf(ErrShape, "%s: dimension %d out of range [0, %d)", op, dim, MaxDepth)
	}
	return nil
}

func maxBatch(a, b Shape) int {
	return max(a.BatchSize(), b.BatchSize())
}

// BinaryShape returns the result shape of an element-wise binary operation.
// The operands must have identical dimensions and compatible batch sizes.
func BinaryShape(op string, a, b Shape) (Shape, error) {
	if !a.HasSameDims(b) || !a.HasCompatibleBatch(b) {
		return Shape{}, errors.Wrapf(ErrShape, "%s: incompatible shapes %s and %s", op, a, b)
	}
	return a.ResizeBatch(maxBatch(a, b))
}

// SliceShape returns the shape of x restricted to [lower, upper) along dim.
func SliceShape(x Shape, dim, lower, upper int) (Shape, error) {
	if err := checkDim("slice", dim); err != nil {
		return Shape{}, err
	}
	if lower < 0 || lower >= upper || upper > x.Dim(dim) {
		return Shape{}, errors.Wrapf(ErrShape, "slice: invalid range [%d, %d) for dimension %d of %s", lower, upper, dim, x)
	}
	return x.ResizeDim(dim, upper-lower)
}

// ConcatShape returns the shape of xs concatenated along dim.
func ConcatShape(xs []Shape, dim int) (Shape, error) {
	if len(xs) == 0 {
		return Shape{}, errors.Wrap(ErrShape, "concat: no arguments")
	}
	if err := checkDim("concat", dim); err != nil {
		return Shape{}, err
	}
	first := xs[0]
	total := 0
	batch := 1
	for _, s := range xs {
		if s.BatchSize() > 1 {
			if batch > 1 && s.BatchSize() != batch {
				return Shape{}, errors.Wrapf(ErrShape, "concat: incompatible batch sizes %d and %d", batch, s.BatchSize())
			}
			batch = s.BatchSize()
		}
		for d := 0; d < MaxDepth; d++ {
			if d != dim && s.Dim(d) != first.Dim(d) {
				return Shape{}, errors.Wrapf(ErrShape, "concat: incompatible shapes %s and %s along dimension %d", first, s, dim)
			}
		}
		total += s.Dim(dim)
	}
	out, err := first.ResizeDim(dim, total)
	if err != nil {
		return Shape{}, err
	}
	return out.ResizeBatch(batch)
}

// TransposeShape returns the shape of a transposed matrix.
func TransposeShape(x Shape) (Shape, error) {
	if !x.IsMatrix() {
		return Shape{}, errors.Wrapf(ErrShape, "transpose: %s is not a matrix", x)
	}
	return NewShape([]int{x.Dim(1), x.Dim(0)}, x.BatchSize())
}

// DotShape returns the shape of the batched matrix product a·b.
func DotShape(a, b Shape) (Shape, error) {
	if !a.IsMatrix() || !b.IsMatrix() || a.Dim(1) != b.Dim(0) || !a.HasCompatibleBatch(b) {
		return Shape{}, errors.Wrapf(ErrShape, "dot: incompatible shapes %s and %s", a, b)
	}
	return NewShape([]int{a.Dim(0), b.Dim(1)}, maxBatch(a, b))
}

// SumShape returns the shape of x reduced along dim.
func SumShape(x Shape, dim int) (Shape, error) {
	if err := checkDim("sum", dim); err != nil {
		return Shape{}, err
	}
	return x.ResizeDim(dim, 1)
}

// BroadcastShape returns the shape of x repeated size times along dim.
// The dimension must currently have size 1.
func BroadcastShape(x Shape, dim, size int) (Shape, error) {
	if err := checkDim("broadcast", dim); err != nil {
		return Shape{}, err
	}
	if x.Dim(dim) != 1 || size < 1 {
		return Shape{}, errors.Wrapf(ErrShape, "broadcast: cannot broadcast dimension %d of %s to %d", dim, x, size)
	}
	return x.ResizeDim(dim, size)
}

// CheckGradient validates the operands of AddGradient.
func CheckGradient(dst, src Shape) error {
	if !dst.HasSameDims(src) || !dst.HasCompatibleBatch(src) {
		return errors.Wrapf(ErrShape, "add gradient: incompatible shapes %s and %s", dst, src)
	}
	return nil
}

// CheckGradientOffset validates the operands of AddGradientOffset.
func CheckGradientOffset(dst, src Shape, dim, offset int) error {
	if err := checkDim("add gradient offset", dim); err != nil {
		return err
	}
	for d := 0; d < MaxDepth; d++ {
		if d != dim && dst.Dim(d) != src.Dim(d) {
			return errors.Wrapf(ErrShape, "add gradient offset: incompatible shapes %s and %s", dst, src)
		}
	}
	if offset < 0 || offset+src.Dim(dim) > dst.Dim(dim) || !dst.HasCompatibleBatch(src) {
		return errors.Wrapf(ErrShape, "add gradient offset: %s does not fit in %s at offset %d of dimension %d", src, dst, offset, dim)
	}
	return nil
}

// CheckOwner verifies that every tensor is valid and owned by dev.
func CheckOwner(op string, dev Device, xs ...*Tensor) error {
	for _, x := range xs {
		if !x.Valid() {
			return errors.Wrapf(ErrMemory, "%s: invalid tensor", op)
		}
		if x.Device() != dev {
			return errors.Wrapf(ErrMemory, "%s: tensor %s belongs to device %s, not %s", op, x.Handle(), x.Device().Name(), dev.Name())
		}
	}
	return nil
}
