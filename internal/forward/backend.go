package forward

import (
	"fmt"

	"github.com/born-ml/sparsegrad/internal/routing"
)

// Backend services hstack and sparsesum when any operand is a *Value or a
// sparse term carrying one. Dense operands mixed in are promoted to
// constants and sparse terms are expanded.
type Backend struct{}

// Compile-time check that Backend implements routing.Backend.
var _ routing.Backend = (*Backend)(nil)

// NewBackend creates a forward-value backend.
func NewBackend() *Backend {
	return &Backend{}
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "forward"
}

// Accepts reports whether v is a *Value or a sparse term of them.
func (b *Backend) Accepts(v any) bool {
	_, ok := varsOf(v)
	return ok
}

// Hstack concatenates values and their Jacobian rows.
func (b *Backend) Hstack(arrays []any) (any, error) {
	nvars, _ := varsOf(arrays...)
	out := &Value{v: []float64{}, d: newJacobian(0, nvars)}
	for i, a := range arrays {
		v, err := promote(a, nvars)
		if err != nil {
			return nil, fmt.Errorf("hstack: operand %d: %w", i, err)
		}
		out.v = append(out.v, v.v...)
		for _, r := range v.d.rows {
			out.d.rows = append(out.d.rows, cloneRow(r))
		}
	}
	return out, nil
}

// Sparsesum scatters terms into a value of the common term length.
// Positions no term covers hold zero with an empty Jacobian row.
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

	values := make([]any, len(terms))
	for t, term := range terms {
		values[t] = term.V()
	}
	nvars, _ := varsOf(values...)

	vals := make([]*Value, len(terms))
	for t, term := range terms {
		v, err := promote(term.V(), nvars)
		if err != nil {
			return nil, fmt.Errorf("sparsesum: term %d: %w", t, err)
		}
		if v.Len() != len(term.Indices()) {
			return nil, fmt.Errorf("sparsesum: term %d: %w: %d values for %d indices",
				t, routing.ErrLengthMismatch, v.Len(), len(term.Indices()))
		}
		vals[t] = v
	}

	out := &Value{v: make([]float64, n), d: newJacobian(n, nvars)}
	err = routing.Merge(terms, o,
		func(t, k, pos int) {
			out.v[pos] = vals[t].v[k]
			out.d.rows[pos] = cloneRow(vals[t].d.rows[k])
		},
		func(t, k, pos int) {
			out.v[pos] += vals[t].v[k]
			out.d.rows[pos] = axpy(out.d.rows[pos], 1, vals[t].d.rows[k])
		},
	)
	if err != nil {
		return nil, fmt.Errorf("sparsesum: %w", err)
	}
	return out, nil
}
