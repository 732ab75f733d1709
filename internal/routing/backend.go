// Package routing decides which numeric backend services an aggregate
// operation (hstack, sparsesum) from the runtime types of its operands.
package routing

import (
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

// Common errors.
var (
	ErrAmbiguousBackend   = errors.New("no backend recognizes the operands")
	ErrEmptyBackend       = errors.New("empty operand collection and no default backend")
	ErrLengthMismatch     = errors.New("terms have different lengths")
	ErrIndexOutOfRange    = errors.New("index out of range")
	ErrDuplicateIndex     = errors.New("index covered by more than one term")
	ErrUnsupportedOperand = errors.New("unsupported operand type")
)

// Backend is a numeric representation that can service aggregate operations.
//
// Implementations:
//   - dense: float64 scalars and []float64 vectors (gonum)
//   - sparsevec: sparse vectors keyed by index
//   - forward: values carrying a sparse Jacobian
type Backend interface {
	// Name identifies the backend in logs and errors.
	Name() string

	// Accepts reports whether v is an operand of this backend.
	Accepts(v any) bool

	// Hstack concatenates operands end-to-end.
	Hstack(arrays []any) (any, error)

	// Sparsesum merges sparse terms into one result.
	// Options are interpreted by the backend, never by the router.
	Sparsesum(terms []Term, opts ...SumOption) (any, error)
}

// Term is a sparse-vector-like operand of Sparsesum: a vector of Len()
// entries that is absent outside Indices(). V() holds the values at
// Indices(), in the same order, and decides which backend merges the terms.
type Term interface {
	Len() int
	Indices() []int
	V() any
}

// CheckTerms verifies that all terms share one length and that their indices
// lie inside it. Returns the common length (0 for no terms).
func CheckTerms(terms []Term) (int, error) {
	if len(terms) == 0 {
		return 0, nil
	}
	n := terms[0].Len()
	for t, term := range terms {
		if term.Len() != n {
			return 0, fmt.Errorf("%w: term %d has length %d, term 0 has length %d",
				ErrLengthMismatch, t, term.Len(), n)
		}
		for _, i := range term.Indices() {
			if i < 0 || i >= n {
				return 0, fmt.Errorf("%w: term %d index %d not in [0, %d)", ErrIndexOutOfRange, t, i, n)
			}
		}
	}
	return n, nil
}

// Overlap returns the positions covered by more than one term.
// Repeated indices inside a single term count as overlap too.
func Overlap(terms []Term) *roaring.Bitmap {
	seen := roaring.New()
	dup := roaring.New()
	for _, term := range terms {
		for _, i := range term.Indices() {
			if !seen.CheckedAdd(uint32(i)) {
				dup.Add(uint32(i))
			}
		}
	}
	return dup
}
