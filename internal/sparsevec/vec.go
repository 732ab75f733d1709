// Package sparsevec implements sparse vectors keyed by index and the routing
// backend that merges them.
package sparsevec

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/born-ml/sparsegrad/internal/dense"
	"github.com/born-ml/sparsegrad/internal/routing"
)

// Vec is a vector of n entries that is absent outside idx.
// The k-th value of v belongs to position idx[k].
//
// Values can be dense ([]float64, *mat.VecDense) or any vector-like operand
// with a Len() method, such as a forward value. The values decide which
// routing backend merges the vector in Sparsesum.
type Vec struct {
	n   int
	idx []int
	v   any
}

// Compile-time check that Vec is a sparsesum term.
var _ routing.Term = (*Vec)(nil)

// New creates a sparse vector of length n with values v at positions idx.
// idx need not be sorted or unique.
func New(n int, idx []int, v any) (*Vec, error) {
	if n < 0 {
		return nil, fmt.Errorf("sparsevec: negative length %d", n)
	}
	m, ok := lengthOf(v)
	if !ok {
		return nil, fmt.Errorf("sparsevec: %w: values of type %T", routing.ErrUnsupportedOperand, v)
	}
	if m != len(idx) {
		return nil, fmt.Errorf("sparsevec: %w: %d values for %d indices", routing.ErrLengthMismatch, m, len(idx))
	}
	for _, i := range idx {
		if i < 0 || i >= n {
			return nil, fmt.Errorf("sparsevec: %w: %d not in [0, %d)", routing.ErrIndexOutOfRange, i, n)
		}
	}
	return &Vec{n: n, idx: idx, v: v}, nil
}

func lengthOf(v any) (int, bool) {
	if l, ok := v.(interface{ Len() int }); ok {
		return l.Len(), true
	}
	if shape, ok := dense.ShapeOf(v); ok && len(shape) == 1 {
		return shape[0], true
	}
	return 0, false
}

// Len returns the full length of the vector.
func (s *Vec) Len() int {
	return s.n
}

// Indices returns the positions that carry values.
func (s *Vec) Indices() []int {
	return s.idx
}

// V returns the values at Indices().
func (s *Vec) V() any {
	return s.v
}

// NNZ returns the number of stored entries.
func (s *Vec) NNZ() int {
	return len(s.idx)
}

// Pattern returns the set of stored positions.
func (s *Vec) Pattern() *roaring.Bitmap {
	bm := roaring.New()
	for _, i := range s.idx {
		bm.Add(uint32(i))
	}
	return bm
}

// Dense expands a vector with dense values, summing repeated indices.
func (s *Vec) Dense() ([]float64, error) {
	out, err := dense.New().Sparsesum([]routing.Term{s})
	if err != nil {
		return nil, err
	}
	return out.([]float64), nil
}

// String returns a human-readable summary of the vector.
func (s *Vec) String() string {
	return fmt.Sprintf("SparseVec(n=%d, nnz=%d, %T)", s.n, len(s.idx), s.v)
}
