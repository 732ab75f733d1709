// Package functions is the generic operation surface: dot, where, sum,
// broadcast_to, hstack, stack, sparsesum and branch.
//
// Elementwise and reduction operations dispatch on operand types through a
// dispatch.Generic per operation. Aggregate operations (hstack, stack,
// sparsesum) pick a backend through a routing.Router and hand it the whole
// operand collection.
//
// A Functions set is built once by New and is read-only afterwards; embedding
// code may extend it through Generic(name).Add before use.
package functions

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/sirupsen/logrus"

	"github.com/born-ml/sparsegrad/internal/dense"
	"github.com/born-ml/sparsegrad/internal/dispatch"
	"github.com/born-ml/sparsegrad/internal/forward"
	"github.com/born-ml/sparsegrad/internal/routing"
	"github.com/born-ml/sparsegrad/internal/sparsevec"
)

// ErrUnknownOperation is returned by Generic for a name with no operation.
var ErrUnknownOperation = errors.New("unknown generic operation")

// Operation names.
const (
	OpDot         = "dot"
	OpWhere       = "where"
	OpSum         = "sum"
	OpBroadcastTo = "broadcast_to"
	OpBranch      = "branch"
)

var valueType = reflect.TypeFor[*forward.Value]()

// Functions is a set of generic operations bound to one registry and router.
type Functions struct {
	dot         *dispatch.Generic
	where       *dispatch.Generic
	sum         *dispatch.Generic
	broadcastTo *dispatch.Generic
	branch      *dispatch.Generic

	router *routing.Router
	sparse routing.Backend // default backend of Sparsesum
	log    logrus.FieldLogger
}

// New builds the operation set and registers the dense and forward
// implementations.
func New(cfg Config) *Functions {
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	sparse := sparsevec.NewBackend()
	specialized := append(append([]routing.Backend{}, cfg.Backends...), forward.NewBackend(), sparse)
	router := routing.NewRouter(dense.New(), specialized...)
	router.SetLogger(log)

	f := &Functions{
		dot:         dispatch.New(OpDot, dispatch.WithLogger(log)),
		where:       dispatch.New(OpWhere, dispatch.WithLogger(log)),
		sum:         dispatch.New(OpSum, dispatch.WithLogger(log)),
		broadcastTo: dispatch.New(OpBroadcastTo, dispatch.WithLogger(log)),
		branch:      dispatch.New(OpBranch, dispatch.WithLogger(log)),
		router:      router,
		sparse:      sparse,
		log:         log,
	}

	any2 := dispatch.Sig(dispatch.Any, dispatch.Any)
	any3 := dispatch.Sig(dispatch.Any, dispatch.Any, dispatch.Any)
	must(f.dot.Add(any2, binary(dense.Dot)))
	must(f.dot.Add(dispatch.Sig(valueType, dispatch.Any), binary(forward.Dot)))
	must(f.dot.Add(dispatch.Sig(dispatch.Any, valueType), binary(forward.Dot)))

	must(f.where.Add(any3, ternary(dense.Where)))
	must(f.where.Add(dispatch.Sig(dispatch.Any, valueType, dispatch.Any), ternary(forward.Where)))
	must(f.where.Add(dispatch.Sig(dispatch.Any, dispatch.Any, valueType), ternary(forward.Where)))

	must(f.sum.Add(dispatch.Sig(dispatch.Any), unary(dense.Sum)))
	must(f.sum.Add(dispatch.Sig(valueType), unary(forward.Sum)))

	must(f.broadcastTo.Add(any2, binary(dense.BroadcastTo)))
	must(f.broadcastTo.Add(dispatch.Sig(valueType, dispatch.Any), binary(forward.BroadcastTo)))

	must(f.branch.Add(any3, f.evalBranch))

	return f
}

// must panics on a registration error. Built-in signatures are distinct, so
// this only fires on a programming error in New.
func must(err error) {
	if err != nil {
		panic(fmt.Sprintf("functions: %v", err))
	}
}

func unary(fn func(a any) (any, error)) dispatch.Func {
	return func(args ...any) (any, error) {
		return fn(args[0])
	}
}

func binary(fn func(a, b any) (any, error)) dispatch.Func {
	return func(args ...any) (any, error) {
		return fn(args[0], args[1])
	}
}

func ternary(fn func(a, b, c any) (any, error)) dispatch.Func {
	return func(args ...any) (any, error) {
		return fn(args[0], args[1], args[2])
	}
}

// Generic returns the named operation so embedding code can register
// implementations for new operand types.
func (f *Functions) Generic(name string) (*dispatch.Generic, error) {
	switch name {
	case OpDot:
		return f.dot, nil
	case OpWhere:
		return f.where, nil
	case OpSum:
		return f.sum, nil
	case OpBroadcastTo:
		return f.broadcastTo, nil
	case OpBranch:
		return f.branch, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, name)
	}
}

// Router returns the router used by Hstack, Stack and Sparsesum.
func (f *Functions) Router() *routing.Router {
	return f.router
}

// Dot is the generalized numpy.dot.
func (f *Functions) Dot(a, b any) (any, error) {
	return f.dot.Call(a, b)
}

// Where is the generalized numpy.where.
func (f *Functions) Where(cond, a, b any) (any, error) {
	return f.where.Call(cond, a, b)
}

// Sum is the generalized numpy.sum over all elements.
func (f *Functions) Sum(x any) (any, error) {
	return f.sum.Call(x)
}

// BroadcastTo is the generalized numpy.broadcast_to. shape is a
// tensor.Shape, []int or int.
func (f *Functions) BroadcastTo(x, shape any) (any, error) {
	return f.broadcastTo.Call(x, shape)
}

// Hstack is the generalized numpy.hstack. The backend is chosen from the
// operand types; an empty collection fails with routing.ErrEmptyBackend.
func (f *Functions) Hstack(arrays []any) (any, error) {
	if len(arrays) == 0 {
		return nil, fmt.Errorf("hstack: %w", routing.ErrEmptyBackend)
	}
	b, err := f.router.Find(arrays, nil)
	if err != nil {
		return nil, fmt.Errorf("hstack: %w", err)
	}
	return b.Hstack(arrays)
}

// Stack is Hstack taking its operands as separate arguments.
func (f *Functions) Stack(arrays ...any) (any, error) {
	return f.Hstack(arrays)
}

// Sparsesum merges sparse terms. The backend is chosen from each term's
// V(); with no conclusive type the sparse-vector backend is used. opts are
// passed to the backend unchanged.
func (f *Functions) Sparsesum(terms []routing.Term, opts ...routing.SumOption) (any, error) {
	values := make([]any, len(terms))
	for i, t := range terms {
		values[i] = t.V()
	}
	b, err := f.router.Find(values, f.sparse)
	if err != nil {
		return nil, fmt.Errorf("sparsesum: %w", err)
	}
	return b.Sparsesum(terms, opts...)
}
