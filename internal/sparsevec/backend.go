package sparsevec

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/born-ml/sparsegrad/internal/dense"
	"github.com/born-ml/sparsegrad/internal/routing"
)

// Backend merges sparse vectors with dense values into a sparse vector.
// It is the default backend of sparsesum when operand types decide nothing.
type Backend struct{}

// Compile-time check that Backend implements routing.Backend.
var _ routing.Backend = (*Backend)(nil)

// NewBackend creates a sparse-vector backend.
func NewBackend() *Backend {
	return &Backend{}
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "sparsevec"
}

// Accepts reports whether v is a *Vec.
func (b *Backend) Accepts(v any) bool {
	_, ok := v.(*Vec)
	return ok
}

// Hstack concatenates sparse vectors and dense segments into one *Vec.
// Dense segments are stored in full.
func (b *Backend) Hstack(arrays []any) (any, error) {
	idx := []int{}
	vals := []float64{}
	offset := 0
	for i, a := range arrays {
		switch x := a.(type) {
		case *Vec:
			data, ok := dense.ToSlice(x.v)
			if !ok {
				return nil, fmt.Errorf("hstack: operand %d: %w: values of type %T", i, routing.ErrUnsupportedOperand, x.v)
			}
			for _, j := range x.idx {
				idx = append(idx, j+offset)
			}
			vals = append(vals, data...)
			offset += x.n
		default:
			data, ok := dense.ToSlice(a)
			if !ok {
				return nil, fmt.Errorf("hstack: operand %d: %w: %T", i, routing.ErrUnsupportedOperand, a)
			}
			for j := range data {
				idx = append(idx, j+offset)
			}
			vals = append(vals, data...)
			offset += len(data)
		}
	}
	return New(offset, idx, vals)
}

// Sparsesum merges terms with dense values into a *Vec with ascending,
// unique indices. With no terms the result is an empty *Vec of
// routing.WithLength.
func (b *Backend) Sparsesum(terms []routing.Term, opts ...routing.SumOption) (any, error) {
	o := routing.ApplySumOptions(opts...)
	if err := o.Validate(); err != nil {
		return nil, fmt.Errorf("sparsesum: %w", err)
	}
	n, err := routing.CheckTerms(terms)
	if err != nil {
		return nil, fmt.Errorf("sparsesum: %w", err)
	}
	if len(terms) == 0 {
		return New(o.Length, []int{}, []float64{})
	}

	vals, err := dense.TermValues(terms)
	if err != nil {
		return nil, err
	}

	covered := roaring.New()
	acc := make(map[int]float64)
	err = routing.Merge(terms, o,
		func(t, k, pos int) {
			covered.Add(uint32(pos))
			acc[pos] = vals[t][k]
		},
		func(t, k, pos int) { acc[pos] += vals[t][k] },
	)
	if err != nil {
		return nil, fmt.Errorf("sparsesum: %w", err)
	}

	idx := make([]int, 0, covered.GetCardinality())
	out := make([]float64, 0, covered.GetCardinality())
	it := covered.Iterator()
	for it.HasNext() {
		pos := int(it.Next())
		idx = append(idx, pos)
		out = append(out, acc[pos])
	}
	return New(n, idx, out)
}
