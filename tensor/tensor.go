// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/sparsegrad/internal/tensor"
)

// Shape represents the dimensions of an operand.
// Example: Shape{3} is a vector of three elements, Shape{} a scalar.
type Shape = tensor.Shape

// ErrShapeMismatch is returned when shapes cannot be broadcast together.
var ErrShapeMismatch = tensor.ErrShapeMismatch

// BroadcastShapes computes the broadcast shape of a and b. The bool reports
// whether either input had to be stretched.
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	return tensor.BroadcastShapes(a, b)
}

// BroadcastTo checks that src broadcasts to dst.
func BroadcastTo(src, dst Shape) error {
	return tensor.BroadcastTo(src, dst)
}

// AsShape converts a Shape, []int or int to a Shape.
func AsShape(v any) (Shape, error) {
	return tensor.AsShape(v)
}
