// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides shapes and NumPy-style broadcasting rules for
// sparsegrad operands.
//
// # Broadcasting
//
// Shapes are aligned from the right. Two dimensions are compatible when
// they are equal or one of them is 1:
//
//	out, _, err := tensor.BroadcastShapes(tensor.Shape{3, 1}, tensor.Shape{4}) // (3, 4)
//
// A scalar has the empty shape and broadcasts to every shape.
//
// # Operands
//
// Operations built on this package accept a shape as a tensor.Shape, a
// []int or a plain int (a 1-D length); AsShape normalizes all three.
package tensor
