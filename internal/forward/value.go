// Package forward provides values that carry a sparse Jacobian with respect
// to a set of independent variables, and the routing backend that merges,
// stacks and selects them.
//
// Only the generic operations needed by routing and branching are defined
// here (selection, stacking, broadcasting, sums and products with
// constants); elementwise derivative arithmetic belongs to callers.
package forward

import (
	"fmt"

	"github.com/born-ml/sparsegrad/internal/dense"
	"github.com/born-ml/sparsegrad/internal/routing"
	"github.com/born-ml/sparsegrad/internal/tensor"
)

// Value is a vector together with its Jacobian: row i of the Jacobian is
// the gradient of element i. Values are immutable once built.
type Value struct {
	v []float64
	d *Jacobian
}

// Seed returns x as the independent variables: its Jacobian is the identity.
func Seed(x []float64) *Value {
	return &Value{v: append([]float64(nil), x...), d: identity(len(x))}
}

// Constant returns x with a zero Jacobian over nvars variables.
func Constant(x []float64, nvars int) *Value {
	return &Value{v: append([]float64(nil), x...), d: newJacobian(len(x), nvars)}
}

// Len returns the number of elements.
func (x *Value) Len() int {
	return len(x.v)
}

// Vars returns the number of independent variables.
func (x *Value) Vars() int {
	return x.d.cols
}

// Values returns the element values.
// The slice aliases the Value and must not be modified.
func (x *Value) Values() []float64 {
	return x.v
}

// Jacobian returns the derivative of the value.
func (x *Value) Jacobian() *Jacobian {
	return x.d
}

// Index selects the elements at idx, together with their Jacobian rows.
func (x *Value) Index(idx []int) (*Value, error) {
	out := &Value{v: make([]float64, len(idx)), d: newJacobian(len(idx), x.d.cols)}
	for k, i := range idx {
		if i < 0 || i >= len(x.v) {
			return nil, fmt.Errorf("index: %w: %d not in [0, %d)", routing.ErrIndexOutOfRange, i, len(x.v))
		}
		out.v[k] = x.v[i]
		out.d.rows[k] = cloneRow(x.d.rows[i])
	}
	return out, nil
}

// String returns a human-readable summary of the value.
func (x *Value) String() string {
	return fmt.Sprintf("forward.Value(len=%d, vars=%d, nnz=%d)", len(x.v), x.d.cols, x.d.NNZ())
}

// promote converts a forward, dense or sparse operand into a *Value over
// nvars variables. Dense operands get a zero Jacobian; sparse terms are
// expanded to their full length.
func promote(v any, nvars int) (*Value, error) {
	switch x := v.(type) {
	case *Value:
		if x.d.cols != nvars {
			return nil, fmt.Errorf("%w: value over %d variables, expected %d", tensor.ErrShapeMismatch, x.d.cols, nvars)
		}
		return x, nil
	case routing.Term:
		return expand(x, nvars)
	}
	data, ok := dense.ToSlice(v)
	if !ok {
		return nil, fmt.Errorf("%w: %T", routing.ErrUnsupportedOperand, v)
	}
	return Constant(data, nvars), nil
}

// expand scatters a sparse term into a value of length t.Len(). Repeated
// indices add up.
func expand(t routing.Term, nvars int) (*Value, error) {
	inner, err := promote(t.V(), nvars)
	if err != nil {
		return nil, err
	}
	idx := t.Indices()
	if inner.Len() != len(idx) {
		return nil, fmt.Errorf("%w: %d values for %d indices", routing.ErrLengthMismatch, inner.Len(), len(idx))
	}

	n := t.Len()
	out := &Value{v: make([]float64, n), d: newJacobian(n, nvars)}
	for k, i := range idx {
		if i < 0 || i >= n {
			return nil, fmt.Errorf("%w: %d not in [0, %d)", routing.ErrIndexOutOfRange, i, n)
		}
		out.v[i] += inner.v[k]
		out.d.rows[i] = axpy(out.d.rows[i], 1, inner.d.rows[k])
	}
	return out, nil
}

// varsOf returns the variable count of the first *Value among operands,
// looking inside sparse terms.
func varsOf(operands ...any) (int, bool) {
	for _, v := range operands {
		switch x := v.(type) {
		case *Value:
			return x.d.cols, true
		case routing.Term:
			if n, ok := varsOf(x.V()); ok {
				return n, true
			}
		}
	}
	return 0, false
}
