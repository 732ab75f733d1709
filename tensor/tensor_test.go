// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"errors"
	"testing"

	"github.com/born-ml/sparsegrad/tensor"
)

// TestBroadcastShapesAPI verifies the re-exported broadcasting rules.
func TestBroadcastShapesAPI(t *testing.T) {
	out, stretched, err := tensor.BroadcastShapes(tensor.Shape{3, 1}, tensor.Shape{4})
	if err != nil {
		t.Fatalf("BroadcastShapes failed: %v", err)
	}
	if !out.Equal(tensor.Shape{3, 4}) {
		t.Errorf("BroadcastShapes = %v, want [3 4]", out)
	}
	if !stretched {
		t.Error("expected a stretched input")
	}

	_, _, err = tensor.BroadcastShapes(tensor.Shape{2}, tensor.Shape{3})
	if !errors.Is(err, tensor.ErrShapeMismatch) {
		t.Errorf("BroadcastShapes([2], [3]) error = %v, want ErrShapeMismatch", err)
	}
}

// TestAsShapeAPI verifies the accepted shape operands.
func TestAsShapeAPI(t *testing.T) {
	for _, v := range []any{tensor.Shape{5}, []int{5}, 5} {
		s, err := tensor.AsShape(v)
		if err != nil {
			t.Fatalf("AsShape(%v) failed: %v", v, err)
		}
		if !s.Equal(tensor.Shape{5}) {
			t.Errorf("AsShape(%v) = %v, want [5]", v, s)
		}
	}

	if err := tensor.BroadcastTo(tensor.Shape{}, tensor.Shape{3}); err != nil {
		t.Errorf("scalar must broadcast to [3]: %v", err)
	}
}
