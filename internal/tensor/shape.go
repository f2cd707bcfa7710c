// Package tensor provides the core types shared by every compute device:
// shapes and their broadcasting algebra, tensor handles, the Device
// contract and the block table devices use to account for their memory.
package tensor

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// MaxDepth is the maximum number of non-batch dimensions a Shape can hold.
const MaxDepth = 8

// Shape describes the dimensions of a tensor plus an independent batch size.
//
// Trailing dimensions of size 1 are trimmed, so Shape{2, 1} and Shape{2}
// compare equal. Shape is comparable and can be used as a map key.
//
// The zero Shape is not a valid shape: it marks the absence of one (the
// shape of an invalid Node) and never equals a shape built by NewShape.
type Shape struct {
	dims  [MaxDepth]int
	depth int
	batch int
}

// NewShape creates a shape from the given dimensions and batch size.
// Every dimension and the batch size must be positive.
func NewShape(dims []int, batch int) (Shape, error) {
	if len(dims) > MaxDepth {
		return Shape{}, errors.Wrapf(ErrShape, "depth %d exceeds maximum %d", len(dims), MaxDepth)
	}
	if batch < 1 {
		return Shape{}, errors.Wrapf(ErrShape, "invalid batch size %d (must be > 0)", batch)
	}
	var s Shape
	for i, d := range dims {
		if d < 1 {
			return Shape{}, errors.Wrapf(ErrShape, "invalid dimension at index %d: %d (must be > 0)", i, d)
		}
		s.dims[i] = d
	}
	s.depth = len(dims)
	s.batch = batch
	s.trim()
	return s, nil
}

// MustShape is like NewShape but panics on invalid input.
// Intended for shape literals in tests and examples.
func MustShape(dims []int, batch int) Shape {
	s, err := NewShape(dims, batch)
	if err != nil {
		panic(err)
	}
	return s
}

// Scalar returns the shape of a single value per sample.
func Scalar(batch int) Shape {
	return MustShape(nil, batch)
}

// trim drops trailing dimensions of size 1, zeroing them so that equal
// shapes compare equal with ==.
func (s *Shape) trim() {
	for s.depth > 0 && s.dims[s.depth-1] == 1 {
		s.depth--
		s.dims[s.depth] = 0
	}
}

// Dim returns the size of dimension d, or 1 if d is beyond the depth.
func (s Shape) Dim(d int) int {
	if d < s.depth {
		return s.dims[d]
	}
	return 1
}

// Dims returns a copy of the non-batch dimensions.
func (s Shape) Dims() []int {
	out := make([]int, s.depth)
	copy(out, s.dims[:s.depth])
	return out
}

// Depth returns the number of non-trivial dimensions.
func (s Shape) Depth() int {
	return s.depth
}

// Valid reports whether s was built by NewShape rather than being the zero
// Shape.
func (s Shape) Valid() bool {
	return s.batch > 0
}

// BatchSize returns the batch size. The zero Shape reports 1.
func (s Shape) BatchSize() int {
	if s.batch == 0 {
		return 1
	}
	return s.batch
}

// HasBatch reports whether the batch size is greater than 1.
func (s Shape) HasBatch() bool {
	return s.batch > 1
}

// IsScalar reports whether each sample holds exactly one value.
func (s Shape) IsScalar() bool {
	return s.depth == 0
}

// IsMatrix reports whether the shape has at most two dimensions.
func (s Shape) IsMatrix() bool {
	return s.depth <= 2
}

// ElementsPerSample returns the product of the non-batch dimensions.
func (s Shape) ElementsPerSample() int {
	n := 1
	for i := 0; i < s.depth; i++ {
		n *= s.dims[i]
	}
	return n
}

// TotalElements returns ElementsPerSample multiplied by the batch size.
func (s Shape) TotalElements() int {
	return s.ElementsPerSample() * s.BatchSize()
}

// ElementsUnderRank returns the product of the dimensions below axis d.
func (s Shape) ElementsUnderRank(d int) int {
	n := 1
	for i := 0; i < min(d, s.depth); i++ {
		n *= s.dims[i]
	}
	return n
}

// ResizeBatch returns a copy of the shape with a new batch size.
func (s Shape) ResizeBatch(n int) (Shape, error) {
	if n < 1 {
		return Shape{}, errors.Wrapf(ErrShape, "resize batch of %s: invalid batch size %d", s, n)
	}
	s.batch = n
	return s, nil
}

// ResizeDim returns a copy of the shape with dimension d set to n.
func (s Shape) ResizeDim(d, n int) (Shape, error) {
	if d < 0 || d >= MaxDepth {
		return Shape{}, errors.Wrapf(ErrShape, "resize dim of %s: dimension %d out of range", s, d)
	}
	if n < 1 {
		return Shape{}, errors.Wrapf(ErrShape, "resize dim of %s: invalid size %d for dimension %d", s, n, d)
	}
	if d >= s.depth {
		for i := s.depth; i < d; i++ {
			s.dims[i] = 1
		}
		s.depth = d + 1
	}
	s.dims[d] = n
	if s.batch == 0 {
		s.batch = 1
	}
	s.trim()
	return s, nil
}

// HasSameDims reports whether two shapes have identical non-batch dimensions.
func (s Shape) HasSameDims(other Shape) bool {
	return s.depth == other.depth && s.dims == other.dims
}

// HasCompatibleBatch reports whether two batch sizes can be broadcast together.
func (s Shape) HasCompatibleBatch(other Shape) bool {
	a, b := s.BatchSize(), other.BatchSize()
	return a == b || a == 1 || b == 1
}

// String formats the shape as "[d0,d1,...]xB".
func (s Shape) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i := 0; i < s.depth; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(s.dims[i]))
	}
	sb.WriteString("]x")
	sb.WriteString(strconv.Itoa(s.BatchSize()))
	return sb.String()
}
