// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package sparsevec provides sparse vectors: a length, the indices of the
// stored entries and their values.
//
// The values may be any operand the generic operations understand, so a
// sparse vector can carry forward-mode values as well as plain numbers.
package sparsevec

import (
	"github.com/born-ml/sparsegrad/internal/sparsevec"
)

// Vec is a sparse vector.
type Vec = sparsevec.Vec

// Backend is the routing backend for sparse vectors.
type Backend = sparsevec.Backend

// New creates a sparse vector of length n with values v at idx.
func New(n int, idx []int, v any) (*Vec, error) {
	return sparsevec.New(n, idx, v)
}

// NewBackend creates a sparse-vector routing backend.
func NewBackend() *Backend {
	return sparsevec.NewBackend()
}
