// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package forward provides forward-mode values with sparse Jacobians.
//
// A Value pairs a vector with the Jacobian of that vector with respect to
// the independent variables. Jacobian rows are sparse, so the sparsity
// pattern of a derivative is available alongside its entries.
//
// Example:
//
//	x := forward.Seed([]float64{1, 2, 3})  // identity Jacobian
//	y, _ := functions.Dot(2.0, x)          // 2·I
//	fmt.Println(mat.Formatted(y.(*forward.Value).Jacobian().Dense()))
package forward

import (
	"github.com/born-ml/sparsegrad/internal/forward"
)

// Value is a vector with its sparse Jacobian.
type Value = forward.Value

// Jacobian is a sparse matrix stored by rows.
type Jacobian = forward.Jacobian

// Backend is the routing backend for forward values.
type Backend = forward.Backend

// Seed creates the independent variables x with an identity Jacobian.
func Seed(x []float64) *Value {
	return forward.Seed(x)
}

// Constant creates a value with an all-zero Jacobian over nvars variables.
func Constant(x []float64, nvars int) *Value {
	return forward.Constant(x, nvars)
}

// NewBackend creates a forward routing backend.
func NewBackend() *Backend {
	return forward.NewBackend()
}
