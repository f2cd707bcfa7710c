package tensor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShape(t *testing.T) {
	tests := []struct {
		name    string
		dims    []int
		batch   int
		depth   int
		total   int
		wantErr bool
	}{
		{"Scalar", nil, 1, 0, 1, false},
		{"Vector", []int{3}, 1, 1, 3, false},
		{"Batched", []int{2, 3}, 4, 2, 24, false},
		{"TrimsTrailingOnes", []int{2, 1, 1}, 1, 1, 2, false},
		{"KeepsInnerOnes", []int{1, 3}, 1, 2, 3, false},
		{"ZeroDim", []int{2, 0}, 1, 0, 0, true},
		{"ZeroBatch", []int{2}, 0, 0, 0, true},
		{"TooDeep", []int{1, 1, 1, 1, 1, 1, 1, 1, 2}, 1, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewShape(tt.dims, tt.batch)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrShape))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.depth, s.Depth())
			assert.Equal(t, tt.total, s.TotalElements())
		})
	}
}

func TestShape_Equality(t *testing.T) {
	a := MustShape([]int{2, 1}, 1)
	b := MustShape([]int{2}, 1)
	assert.Equal(t, a, b)
	assert.True(t, a == b)

	seen := map[Shape]int{a: 1}
	assert.Equal(t, 1, seen[b])

	assert.NotEqual(t, MustShape([]int{2}, 1), MustShape([]int{2}, 3))
}

func TestShape_ZeroValue(t *testing.T) {
	var zero Shape
	assert.False(t, zero.Valid())
	assert.True(t, Scalar(1).Valid())
	assert.False(t, zero == Scalar(1))
	assert.Equal(t, 1, zero.BatchSize())
	assert.Equal(t, 1, zero.TotalElements())
}

func TestShape_Derived(t *testing.T) {
	s := MustShape([]int{2, 3, 4}, 5)

	assert.Equal(t, 2, s.Dim(0))
	assert.Equal(t, 4, s.Dim(2))
	assert.Equal(t, 1, s.Dim(3))
	assert.Equal(t, 1, s.Dim(100))
	assert.Equal(t, 24, s.ElementsPerSample())
	assert.Equal(t, 120, s.TotalElements())
	assert.Equal(t, 1, s.ElementsUnderRank(0))
	assert.Equal(t, 2, s.ElementsUnderRank(1))
	assert.Equal(t, 6, s.ElementsUnderRank(2))
	assert.Equal(t, 24, s.ElementsUnderRank(3))
	assert.Equal(t, 24, s.ElementsUnderRank(7))
	assert.Equal(t, []int{2, 3, 4}, s.Dims())
	assert.Equal(t, "[2,3,4]x5", s.String())
	assert.True(t, s.HasBatch())
	assert.False(t, s.IsMatrix())
}

func TestShape_ResizeBatchIdempotent(t *testing.T) {
	shapes := []Shape{
		Scalar(1),
		MustShape([]int{3}, 2),
		MustShape([]int{2, 3, 4}, 7),
	}
	for _, s := range shapes {
		for _, n := range []int{1, 2, 9} {
			for _, m := range []int{1, 4, 16} {
				once, err := s.ResizeBatch(n)
				require.NoError(t, err)
				twice, err := once.ResizeBatch(m)
				require.NoError(t, err)
				direct, err := s.ResizeBatch(m)
				require.NoError(t, err)
				assert.Equal(t, direct, twice, "shape %s n=%d m=%d", s, n, m)
			}
		}
	}

	_, err := Scalar(1).ResizeBatch(0)
	assert.ErrorIs(t, err, ErrShape)
}

func TestShape_ResizeDim(t *testing.T) {
	s := MustShape([]int{2, 3}, 2)

	r, err := s.ResizeDim(1, 1)
	require.NoError(t, err)
	assert.Equal(t, MustShape([]int{2}, 2), r)

	r, err = s.ResizeDim(3, 5)
	require.NoError(t, err)
	assert.Equal(t, MustShape([]int{2, 3, 1, 5}, 2), r)

	_, err = s.ResizeDim(0, 0)
	assert.ErrorIs(t, err, ErrShape)

	_, err = s.ResizeDim(MaxDepth, 2)
	assert.ErrorIs(t, err, ErrShape)
}

func TestBinaryShape(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Shape
		want    Shape
		wantErr bool
	}{
		{"Same", MustShape([]int{2, 3}, 1), MustShape([]int{2, 3}, 1), MustShape([]int{2, 3}, 1), false},
		{"BroadcastLeft", MustShape([]int{2, 3}, 1), MustShape([]int{2, 3}, 4), MustShape([]int{2, 3}, 4), false},
		{"BroadcastRight", MustShape([]int{2}, 5), MustShape([]int{2}, 1), MustShape([]int{2}, 5), false},
		{"EqualBatch", MustShape([]int{2}, 3), MustShape([]int{2}, 3), MustShape([]int{2}, 3), false},
		{"BatchMismatch", MustShape([]int{2}, 2), MustShape([]int{2}, 3), Shape{}, true},
		{"DimMismatch", MustShape([]int{2, 3}, 1), MustShape([]int{3, 2}, 1), Shape{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BinaryShape("add", tt.a, tt.b)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrShape)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStructuralShapes(t *testing.T) {
	x := MustShape([]int{4, 3}, 2)

	s, err := SliceShape(x, 0, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, MustShape([]int{2, 3}, 2), s)

	_, err = SliceShape(x, 1, 2, 2)
	assert.ErrorIs(t, err, ErrShape)
	_, err = SliceShape(x, 1, 0, 4)
	assert.ErrorIs(t, err, ErrShape)

	c, err := ConcatShape([]Shape{MustShape([]int{4, 1}, 1), MustShape([]int{4, 2}, 2)}, 1)
	require.NoError(t, err)
	assert.Equal(t, MustShape([]int{4, 3}, 2), c)

	_, err = ConcatShape([]Shape{MustShape([]int{4}, 2), MustShape([]int{4}, 3)}, 0)
	assert.ErrorIs(t, err, ErrShape)
	_, err = ConcatShape(nil, 0)
	assert.ErrorIs(t, err, ErrShape)

	tr, err := TransposeShape(x)
	require.NoError(t, err)
	assert.Equal(t, MustShape([]int{3, 4}, 2), tr)
	_, err = TransposeShape(MustShape([]int{2, 2, 2}, 1))
	assert.ErrorIs(t, err, ErrShape)

	d, err := DotShape(MustShape([]int{2, 3}, 1), MustShape([]int{3, 5}, 4))
	require.NoError(t, err)
	assert.Equal(t, MustShape([]int{2, 5}, 4), d)
	_, err = DotShape(MustShape([]int{2, 3}, 1), MustShape([]int{2, 3}, 1))
	assert.ErrorIs(t, err, ErrShape)

	sm, err := SumShape(x, 0)
	require.NoError(t, err)
	assert.Equal(t, MustShape([]int{1, 3}, 2), sm)

	b, err := BroadcastShape(sm, 0, 4)
	require.NoError(t, err)
	assert.Equal(t, x, b)
	_, err = BroadcastShape(x, 0, 4)
	assert.ErrorIs(t, err, ErrShape)

	assert.NoError(t, CheckGradientOffset(x, MustShape([]int{1, 3}, 1), 0, 3))
	assert.ErrorIs(t, CheckGradientOffset(x, MustShape([]int{2, 3}, 1), 0, 3), ErrShape)
	assert.NoError(t, CheckGradient(x, MustShape([]int{4, 3}, 1)))
	assert.ErrorIs(t, CheckGradient(x, MustShape([]int{4, 3}, 3)), ErrShape)
}
