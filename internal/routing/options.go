package routing

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

// DuplicatePolicy controls how Sparsesum treats a position covered by more
// than one term.
type DuplicatePolicy int

// Duplicate policies.
const (
	// DuplicateSum adds the values of all terms covering a position.
	DuplicateSum DuplicatePolicy = iota
	// DuplicateOverwrite keeps the value of the last term covering a position.
	DuplicateOverwrite
	// DuplicateReject fails with ErrDuplicateIndex.
	DuplicateReject
)

// String returns a human-readable name for the policy.
func (p DuplicatePolicy) String() string {
	switch p {
	case DuplicateSum:
		return "sum"
	case DuplicateOverwrite:
		return "overwrite"
	case DuplicateReject:
		return "reject"
	default:
		return fmt.Sprintf("DuplicatePolicy(%d)", int(p))
	}
}

// SumOptions are the backend-interpreted options of Sparsesum.
type SumOptions struct {
	Duplicates DuplicatePolicy // Policy for positions covered by several terms.
	Length     int             // Result length when there are no terms.
}

// SumOption configures SumOptions.
type SumOption func(*SumOptions)

// WithDuplicates sets the duplicate-index policy.
func WithDuplicates(p DuplicatePolicy) SumOption {
	return func(o *SumOptions) {
		o.Duplicates = p
	}
}

// WithLength sets the result length used when no terms are given.
func WithLength(n int) SumOption {
	return func(o *SumOptions) {
		o.Length = n
	}
}

// ApplySumOptions folds opts over the defaults (sum duplicates, length 0).
func ApplySumOptions(opts ...SumOption) SumOptions {
	var o SumOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Validate checks the options before a backend sizes its result.
func (o SumOptions) Validate() error {
	if o.Length < 0 {
		return fmt.Errorf("%w: negative length %d", ErrLengthMismatch, o.Length)
	}
	switch o.Duplicates {
	case DuplicateSum, DuplicateOverwrite, DuplicateReject:
		return nil
	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedOperand, o.Duplicates)
	}
}

// Merge drives a scatter of terms under the policy in o.
// set is called for the first write to a position and add for every later
// one under DuplicateSum; under DuplicateOverwrite every write calls set.
// Term t's k-th value targets position terms[t].Indices()[k].
func Merge(terms []Term, o SumOptions, set, add func(t, k, pos int)) error {
	if o.Duplicates == DuplicateReject {
		if dup := Overlap(terms); !dup.IsEmpty() {
			return fmt.Errorf("%w: %d positions, first %d", ErrDuplicateIndex, dup.GetCardinality(), dup.Minimum())
		}
	}

	written := roaring.New()
	for t, term := range terms {
		for k, pos := range term.Indices() {
			switch {
			case written.CheckedAdd(uint32(pos)):
				set(t, k, pos)
			case o.Duplicates == DuplicateSum:
				add(t, k, pos)
			default:
				set(t, k, pos)
			}
		}
	}
	return nil
}
