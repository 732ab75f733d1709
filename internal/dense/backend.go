package dense

import (
	"fmt"

	"github.com/born-ml/sparsegrad/internal/routing"
)

// Backend is the plain routing backend.
//
// Hstack concatenates into a []float64 and Sparsesum scatters terms into a
// zero []float64, so results are always dense.
type Backend struct{}

// Compile-time check that Backend implements routing.Backend.
var _ routing.Backend = (*Backend)(nil)

// New creates a dense backend.
func New() *Backend {
	return &Backend{}
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "dense"
}

// Accepts reports whether v is a numeric dense operand.
func (b *Backend) Accepts(v any) bool {
	_, ok := ShapeOf(v)
	return ok
}

// Hstack concatenates operands end-to-end. Scalars contribute one element.
func (b *Backend) Hstack(arrays []any) (any, error) {
	var out []float64
	for i, a := range arrays {
		data, ok := ToSlice(a)
		if !ok {
			return nil, fmt.Errorf("hstack: operand %d: %w: %T", i, routing.ErrUnsupportedOperand, a)
		}
		out = append(out, data...)
	}
	if out == nil {
		out = []float64{}
	}
	return out, nil
}

// Sparsesum scatters terms into a dense vector. Positions no term covers
// are zero.
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
		n = o.Length
	}

	vals, err := TermValues(terms)
	if err != nil {
		return nil, err
	}

	out := make([]float64, n)
	err = routing.Merge(terms, o,
		func(t, k, pos int) { out[pos] = vals[t][k] },
		func(t, k, pos int) { out[pos] += vals[t][k] },
	)
	if err != nil {
		return nil, fmt.Errorf("sparsesum: %w", err)
	}
	return out, nil
}

// TermValues extracts each term's dense values and checks their count
// against the term's indices.
func TermValues(terms []routing.Term) ([][]float64, error) {
	vals := make([][]float64, len(terms))
	for t, term := range terms {
		data, ok := ToSlice(term.V())
		if !ok {
			return nil, fmt.Errorf("sparsesum: term %d: %w: %T", t, routing.ErrUnsupportedOperand, term.V())
		}
		if len(data) != len(term.Indices()) {
			return nil, fmt.Errorf("sparsesum: term %d: %w: %d values for %d indices",
				t, routing.ErrLengthMismatch, len(data), len(term.Indices()))
		}
		vals[t] = data
	}
	return vals, nil
}
