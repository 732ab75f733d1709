// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package functions_test

import (
	"fmt"

	"github.com/born-ml/sparsegrad/functions"
)

func ExamplePartition() {
	ixtrue, ixfalse := functions.Partition([]bool{true, false, false, true})
	fmt.Println(ixtrue, ixfalse)
	// Output: [0 3] [1 2]
}

func ExampleBranch() {
	x := []float64{-2, 1, 3}
	cond := []bool{false, true, true}

	y, err := functions.Branch(cond,
		func(idx []int) (any, error) {
			out := make([]float64, len(idx))
			for k, i := range idx {
				out[k] = x[i] * x[i]
			}
			return out, nil
		},
		func(_ []int) (any, error) { return 0.0, nil },
	)
	if err != nil {
		panic(err)
	}
	fmt.Println(y)
	// Output: [0 1 9]
}
