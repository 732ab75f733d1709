// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package functions

import (
	"reflect"
	"sync"

	"github.com/born-ml/sparsegrad/internal/dispatch"
	"github.com/born-ml/sparsegrad/internal/functions"
	"github.com/born-ml/sparsegrad/internal/routing"
)

// Type aliases for public API

// Functions is a set of generic operations bound to one registry and router.
type Functions = functions.Functions

// Config controls how a Functions set is built.
type Config = functions.Config

// Arm evaluates one side of a Branch on an index subset.
type Arm = functions.Arm

// Generic is a generic operation with per-signature implementations.
type Generic = dispatch.Generic

// Func is an implementation registered on a Generic.
type Func = dispatch.Func

// Signature is an ordered sequence of operand categories.
type Signature = dispatch.Signature

// Backend services aggregate operations for a family of operand types.
type Backend = routing.Backend

// Term is one addend of Sparsesum.
type Term = routing.Term

// SumOption configures Sparsesum.
type SumOption = routing.SumOption

// DuplicatePolicy controls how Sparsesum treats overlapping indices.
type DuplicatePolicy = routing.DuplicatePolicy

// Duplicate policies.
const (
	DuplicateSum       DuplicatePolicy = routing.DuplicateSum
	DuplicateOverwrite DuplicatePolicy = routing.DuplicateOverwrite
	DuplicateReject    DuplicatePolicy = routing.DuplicateReject
)

// Operation names accepted by Lookup.
const (
	OpDot         = functions.OpDot
	OpWhere       = functions.OpWhere
	OpSum         = functions.OpSum
	OpBroadcastTo = functions.OpBroadcastTo
	OpBranch      = functions.OpBranch
)

// Errors.
var (
	ErrUnknownOperation   = functions.ErrUnknownOperation
	ErrDuplicateSignature = dispatch.ErrDuplicateSignature
	ErrNoImplementation   = dispatch.ErrNoImplementation
	ErrAmbiguousBackend   = routing.ErrAmbiguousBackend
	ErrEmptyBackend       = routing.ErrEmptyBackend
	ErrLengthMismatch     = routing.ErrLengthMismatch
	ErrIndexOutOfRange    = routing.ErrIndexOutOfRange
	ErrDuplicateIndex     = routing.ErrDuplicateIndex
	ErrUnsupportedOperand = routing.ErrUnsupportedOperand
)

// Any matches every operand in a Signature.
var Any = dispatch.Any

// Sig builds a Signature.
func Sig(types ...reflect.Type) Signature {
	return dispatch.Sig(types...)
}

// New builds a Functions set from cfg.
func New(cfg Config) *Functions {
	return functions.New(cfg)
}

// DefaultConfig returns the configuration used by Default.
func DefaultConfig() Config {
	return functions.DefaultConfig()
}

var defaultFunctions = sync.OnceValue(func() *Functions {
	return functions.New(functions.DefaultConfig())
})

// Default returns the shared Functions set behind the package-level helpers.
func Default() *Functions {
	return defaultFunctions()
}

// WithDuplicates selects the duplicate-index policy of Sparsesum.
func WithDuplicates(p DuplicatePolicy) SumOption {
	return routing.WithDuplicates(p)
}

// WithLength sets the result length of a Sparsesum with no terms.
func WithLength(n int) SumOption {
	return routing.WithLength(n)
}

// Partition splits positions into those where cond holds and the rest.
func Partition(cond []bool) (ixtrue, ixfalse []int) {
	return functions.Partition(cond)
}

// Lookup returns the named operation of the default set.
func Lookup(name string) (*Generic, error) {
	return Default().Generic(name)
}

// Dot is the generalized numpy.dot.
func Dot(a, b any) (any, error) {
	return Default().Dot(a, b)
}

// Where is the generalized numpy.where.
func Where(cond, a, b any) (any, error) {
	return Default().Where(cond, a, b)
}

// Sum is the generalized numpy.sum.
func Sum(x any) (any, error) {
	return Default().Sum(x)
}

// BroadcastTo is the generalized numpy.broadcast_to.
func BroadcastTo(x, shape any) (any, error) {
	return Default().BroadcastTo(x, shape)
}

// Hstack is the generalized numpy.hstack.
func Hstack(arrays []any) (any, error) {
	return Default().Hstack(arrays)
}

// Stack is Hstack with variadic operands.
func Stack(arrays ...any) (any, error) {
	return Default().Stack(arrays...)
}

// Sparsesum merges sparse terms.
func Sparsesum(terms []Term, opts ...SumOption) (any, error) {
	return Default().Sparsesum(terms, opts...)
}

// Branch evaluates a piecewise function.
//
// Note that, in some cases (propagation of sparsity pattern), both arms can
// be executed more than once.
func Branch(cond any, iftrue, iffalse Arm) (any, error) {
	return Default().Branch(cond, iftrue, iffalse)
}
