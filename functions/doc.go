// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package functions provides the generic operations of sparsegrad.
//
// # Overview
//
// Every operation accepts plain numeric operands (float64, []float64,
// *mat.VecDense), forward-mode values (*forward.Value) and sparse vectors
// (*sparsevec.Vec), and picks an implementation from the operand types:
//   - Dot, Where, Sum, BroadcastTo dispatch per call on operand types
//   - Hstack, Stack, Sparsesum route the whole collection to one backend
//   - Branch evaluates a piecewise function on index subsets
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/sparsegrad/forward"
//	    "github.com/born-ml/sparsegrad/functions"
//	)
//
//	func main() {
//	    x := forward.Seed([]float64{-1, 2, -3})
//	    cond := []bool{false, true, false}
//
//	    // relu(x), with the Jacobian rows of the negative entries empty.
//	    y, err := functions.Branch(cond,
//	        func(idx []int) (any, error) { return x.Index(idx) },
//	        func(idx []int) (any, error) { return 0.0, nil },
//	    )
//	}
//
// # Extending
//
// Implementations for new operand types are added to the operation's
// generic function. Existing registrations keep resolving as before:
//
//	dot, _ := functions.Lookup(functions.OpDot)
//	err := dot.Add(functions.Sig(reflect.TypeFor[MyVec](), functions.Any), myDot)
//
// Register before first use; the package-level helpers share one default
// Functions set.
package functions
