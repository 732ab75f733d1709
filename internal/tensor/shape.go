// Package tensor holds the shape and broadcasting rules shared by every backend.
package tensor

import (
	"errors"
	"fmt"
)

// ErrShapeMismatch is returned when an operand cannot be broadcast to a target shape.
var ErrShapeMismatch = errors.New("shape mismatch")

// Shape represents the dimensions of an array operand.
// A nil or empty Shape denotes a scalar.
type Shape []int

// NumElements returns the total number of elements.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks that no dimension is negative.
// Zero-length dimensions are legal: an empty index subset has Shape{0}.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim < 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be >= 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// IsScalar reports whether the shape has no dimensions.
func (s Shape) IsScalar() bool {
	return len(s) == 0
}

// BroadcastShapes implements NumPy-style broadcasting rules.
//
// Rules:
// 1. Compare shapes element-wise from right to left
// 2. Dimensions are compatible if:
//   - They are equal, OR
//   - One of them is 1
//
// 3. Missing dimensions are treated as 1
//
// Returns the broadcasted shape, a flag indicating if broadcasting is needed,
// and an error wrapping ErrShapeMismatch if incompatible.
//
// Examples:
//
//	(3, 1) + (3, 5) → (3, 5), true, nil
//	(1,)   + (0,)   → (0,), true, nil
//	(3, 5) + (3, 5) → (3, 5), false, nil
//	(3, 4) + (3, 5) → nil, false, Error
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	maxLen := max(len(a), len(b))
	result := make(Shape, maxLen)
	needsBroadcast := len(a) != len(b)

	for i := 0; i < maxLen; i++ {
		aIdx := len(a) - 1 - i
		bIdx := len(b) - 1 - i

		aDim := 1
		if aIdx >= 0 {
			aDim = a[aIdx]
		}

		bDim := 1
		if bIdx >= 0 {
			bDim = b[bIdx]
		}

		switch {
		case aDim == bDim:
			result[maxLen-1-i] = aDim
		case aDim == 1:
			result[maxLen-1-i] = bDim
			needsBroadcast = true
		case bDim == 1:
			result[maxLen-1-i] = aDim
			needsBroadcast = true
		default:
			return nil, false, fmt.Errorf("%w: shapes not compatible for broadcasting: %v vs %v (dimension %d: %d vs %d)",
				ErrShapeMismatch, a, b, maxLen-1-i, aDim, bDim)
		}
	}

	return result, needsBroadcast, nil
}

// BroadcastTo checks that src can be stretched to exactly dst.
// Unlike BroadcastShapes the target is fixed: dst may not grow.
//
//	()   -> (4,)  ok
//	(1,) -> (0,)  ok
//	(3,) -> (4,)  ErrShapeMismatch
//	(4,) -> ()    ErrShapeMismatch
func BroadcastTo(src, dst Shape) error {
	if err := dst.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrShapeMismatch, err)
	}
	out, _, err := BroadcastShapes(src, dst)
	if err != nil {
		return err
	}
	if !out.Equal(dst) {
		return fmt.Errorf("%w: cannot broadcast %v to %v", ErrShapeMismatch, src, dst)
	}
	return nil
}

// AsShape converts a shape-like argument (Shape, []int or a single int
// length) into a Shape.
func AsShape(v any) (Shape, error) {
	switch s := v.(type) {
	case Shape:
		return s, nil
	case []int:
		return Shape(s), nil
	case int:
		return Shape{s}, nil
	default:
		return nil, fmt.Errorf("%w: %T is not a shape", ErrShapeMismatch, v)
	}
}
