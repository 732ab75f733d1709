package functions

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/sirupsen/logrus"

	"github.com/born-ml/sparsegrad/internal/routing"
	"github.com/born-ml/sparsegrad/internal/sparsevec"
	"github.com/born-ml/sparsegrad/internal/tensor"
)

// Arm evaluates one side of a Branch on the positions idx.
//
// idx is nil in the scalar case and a non-nil, possibly empty, ascending
// slice otherwise. The result must broadcast to len(idx) elements.
//
// Arms must be pure functions of idx: during sparsity-pattern propagation
// an arm can be called more than once, with different or overlapping
// subsets, and with an empty subset.
type Arm func(idx []int) (any, error)

// Partition splits the positions of cond into those where it holds and the
// rest. Both slices are ascending and non-nil; together they cover
// [0, len(cond)) exactly once.
func Partition(cond []bool) (ixtrue, ixfalse []int) {
	n := len(cond)
	bm := roaring.New()
	for i, c := range cond {
		if c {
			bm.Add(uint32(i))
		}
	}
	rest := roaring.Flip(bm, 0, uint64(n))
	return toInts(bm), toInts(rest)
}

func toInts(bm *roaring.Bitmap) []int {
	out := make([]int, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}

// Branch evaluates a piecewise function through the branch generic
// operation, so other condition types can register their own evaluation.
//
// The built-in implementation handles bool and []bool conditions. For a bool
// cond only the selected arm runs, with a nil index subset, and its result
// is returned as is. For a []bool cond each arm runs on its own subset; the
// results are broadcast to the subset lengths, wrapped as sparse vectors
// over len(cond) positions and merged with Sparsesum.
//
// Note that, in some cases (propagation of sparsity pattern), both arms can
// be executed more than once.
func (f *Functions) Branch(cond any, iftrue, iffalse Arm) (any, error) {
	return f.branch.Call(cond, iftrue, iffalse)
}

// AsArm converts a branch operand to an Arm. Implementations registered on
// the branch operation receive arms as Arm or as a plain function literal.
func AsArm(v any) (Arm, bool) {
	switch a := v.(type) {
	case Arm:
		return a, a != nil
	case func([]int) (any, error):
		return a, a != nil
	default:
		return nil, false
	}
}

func (f *Functions) evalBranch(args ...any) (any, error) {
	iftrue, ok := AsArm(args[1])
	if !ok {
		return nil, fmt.Errorf("branch: %w: iftrue %T", routing.ErrUnsupportedOperand, args[1])
	}
	iffalse, ok := AsArm(args[2])
	if !ok {
		return nil, fmt.Errorf("branch: %w: iffalse %T", routing.ErrUnsupportedOperand, args[2])
	}

	switch c := args[0].(type) {
	case bool:
		if c {
			return iftrue(nil)
		}
		return iffalse(nil)
	case []bool:
		return f.branchVector(c, iftrue, iffalse)
	default:
		return nil, fmt.Errorf("branch: %w: condition %T", routing.ErrUnsupportedOperand, args[0])
	}
}

func (f *Functions) branchVector(cond []bool, iftrue, iffalse Arm) (any, error) {
	n := len(cond)
	ixtrue, ixfalse := Partition(cond)

	f.log.WithFields(logrus.Fields{
		"n":     n,
		"true":  len(ixtrue),
		"false": len(ixfalse),
	}).Debug("branch")

	vtrue, err := f.evalArm("iftrue", iftrue, n, ixtrue)
	if err != nil {
		return nil, err
	}
	vfalse, err := f.evalArm("iffalse", iffalse, n, ixfalse)
	if err != nil {
		return nil, err
	}
	return f.Sparsesum([]routing.Term{vtrue, vfalse})
}

// evalArm runs arm on idx and wraps the broadcast result as a sparse vector
// of length n.
func (f *Functions) evalArm(name string, arm Arm, n int, idx []int) (*sparsevec.Vec, error) {
	raw, err := arm(idx)
	if err != nil {
		return nil, fmt.Errorf("branch %s: %w", name, err)
	}
	v, err := f.BroadcastTo(raw, tensor.Shape{len(idx)})
	if err != nil {
		return nil, fmt.Errorf("branch %s: result for %d positions: %w", name, len(idx), err)
	}
	return sparsevec.New(n, idx, v)
}
