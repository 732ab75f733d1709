package forward

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/sparsegrad/internal/dense"
	"github.com/born-ml/sparsegrad/internal/routing"
	"github.com/born-ml/sparsegrad/internal/tensor"
)

// BroadcastTo stretches a one-element value to shape, or returns x itself
// when it already has the target length. Forward values are 1-D; a rank 0
// target requires a one-element value.
func BroadcastTo(x, shape any) (any, error) {
	v, ok := x.(*Value)
	if !ok {
		return nil, fmt.Errorf("broadcast_to: %w: %T", routing.ErrUnsupportedOperand, x)
	}
	dst, err := tensor.AsShape(shape)
	if err != nil {
		return nil, fmt.Errorf("broadcast_to: %w", err)
	}

	switch {
	case dst.IsScalar() && v.Len() == 1:
		return v, nil
	case len(dst) != 1:
		return nil, fmt.Errorf("broadcast_to: %w: cannot broadcast %d elements to %v", tensor.ErrShapeMismatch, v.Len(), dst)
	}
	if err := tensor.BroadcastTo(tensor.Shape{v.Len()}, dst); err != nil {
		return nil, fmt.Errorf("broadcast_to: %w", err)
	}
	if v.Len() == dst[0] {
		return v, nil
	}

	n := dst[0]
	out := &Value{v: make([]float64, n), d: newJacobian(n, v.d.cols)}
	for i := 0; i < n; i++ {
		out.v[i] = v.v[0]
		out.d.rows[i] = cloneRow(v.d.rows[0])
	}
	return out, nil
}

// Where selects elements and Jacobian rows from a where cond holds and from
// b elsewhere. Either of a, b may be dense.
func Where(cond, a, b any) (any, error) {
	var c []bool
	var cShape tensor.Shape
	switch x := cond.(type) {
	case bool:
		c, cShape = []bool{x}, tensor.Shape{}
	case []bool:
		c, cShape = x, tensor.Shape{len(x)}
	default:
		return nil, fmt.Errorf("where: %w: condition %T", routing.ErrUnsupportedOperand, cond)
	}

	nvars, ok := varsOf(a, b)
	if !ok {
		return dense.Where(cond, a, b)
	}
	av, err := promote(a, nvars)
	if err != nil {
		return nil, fmt.Errorf("where: %w", err)
	}
	bv, err := promote(b, nvars)
	if err != nil {
		return nil, fmt.Errorf("where: %w", err)
	}

	outShape, _, err := tensor.BroadcastShapes(cShape, tensor.Shape{av.Len()})
	if err != nil {
		return nil, fmt.Errorf("where: %w", err)
	}
	outShape, _, err = tensor.BroadcastShapes(outShape, tensor.Shape{bv.Len()})
	if err != nil {
		return nil, fmt.Errorf("where: %w", err)
	}

	n := outShape[0]
	out := &Value{v: make([]float64, n), d: newJacobian(n, nvars)}
	for i := 0; i < n; i++ {
		src := bv
		if pick(c, i) {
			src = av
		}
		j := i
		if src.Len() == 1 {
			j = 0
		}
		out.v[i] = src.v[j]
		out.d.rows[i] = cloneRow(src.d.rows[j])
	}
	return out, nil
}

func pick(c []bool, i int) bool {
	if len(c) == 1 {
		return c[0]
	}
	return c[i]
}

// Sum returns a one-element value holding the sum of x and the sum of its
// Jacobian rows.
func Sum(x any) (any, error) {
	v, ok := x.(*Value)
	if !ok {
		return nil, fmt.Errorf("sum: %w: %T", routing.ErrUnsupportedOperand, x)
	}
	out := &Value{v: []float64{floats.Sum(v.v)}, d: newJacobian(1, v.d.cols)}
	for _, r := range v.d.rows {
		out.d.rows[0] = axpy(out.d.rows[0], 1, r)
	}
	return out, nil
}

// Dot multiplies a forward value by a dense constant. A scalar constant
// scales the value; a vector constant gives a one-element inner product.
// The product of two forward values is not defined here.
func Dot(a, b any) (any, error) {
	v, ok := a.(*Value)
	c := b
	if !ok {
		v, ok = b.(*Value)
		c = a
	}
	if !ok {
		return dense.Dot(a, b)
	}
	if _, both := c.(*Value); both {
		return nil, fmt.Errorf("dot: %w: product of two forward values", routing.ErrUnsupportedOperand)
	}

	shape, ok := dense.ShapeOf(c)
	if !ok {
		return nil, fmt.Errorf("dot: %w: %T", routing.ErrUnsupportedOperand, c)
	}
	coef, _ := dense.ToSlice(c)

	if shape.IsScalar() {
		out := &Value{v: make([]float64, v.Len()), d: newJacobian(v.Len(), v.d.cols)}
		floats.ScaleTo(out.v, coef[0], v.v)
		for i, r := range v.d.rows {
			out.d.rows[i] = axpy(nil, coef[0], r)
		}
		return out, nil
	}

	if len(coef) != v.Len() {
		return nil, fmt.Errorf("dot: %w: %d and %d elements", tensor.ErrShapeMismatch, v.Len(), len(coef))
	}
	out := &Value{v: []float64{floats.Dot(v.v, coef)}, d: newJacobian(1, v.d.cols)}
	for i, r := range v.d.rows {
		out.d.rows[0] = axpy(out.d.rows[0], coef[i], r)
	}
	return out, nil
}
