// Package dense implements the plain vector backend: float64 scalars,
// []float64 vectors and gonum *mat.VecDense operands, with NumPy-style
// broadcasting for rank 0 and rank 1.
package dense

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/sparsegrad/internal/routing"
	"github.com/born-ml/sparsegrad/internal/tensor"
)

// ShapeOf returns the shape of a numeric dense operand.
func ShapeOf(v any) (tensor.Shape, bool) {
	switch x := v.(type) {
	case float64, int:
		return tensor.Shape{}, true
	case []float64:
		return tensor.Shape{len(x)}, true
	case *mat.VecDense:
		return tensor.Shape{x.Len()}, true
	default:
		return nil, false
	}
}

// ToSlice returns the elements of a numeric dense operand.
// Scalars become one-element slices. []float64 is returned as is;
// *mat.VecDense is copied.
func ToSlice(v any) ([]float64, bool) {
	switch x := v.(type) {
	case float64:
		return []float64{x}, true
	case int:
		return []float64{float64(x)}, true
	case []float64:
		return x, true
	case *mat.VecDense:
		return mat.Col(nil, 0, x), true
	default:
		return nil, false
	}
}

// condition returns the elements and shape of a boolean condition.
func condition(v any) ([]bool, tensor.Shape, bool) {
	switch c := v.(type) {
	case bool:
		return []bool{c}, tensor.Shape{}, true
	case []bool:
		return c, tensor.Shape{len(c)}, true
	default:
		return nil, nil, false
	}
}

func operand(op string, v any) ([]float64, tensor.Shape, error) {
	shape, ok := ShapeOf(v)
	if !ok {
		return nil, nil, fmt.Errorf("%s: %w: %T", op, routing.ErrUnsupportedOperand, v)
	}
	data, _ := ToSlice(v)
	return data, shape, nil
}

// at reads element i, stretching single-element operands.
func at[T any](data []T, i int) T {
	if len(data) == 1 {
		return data[0]
	}
	return data[i]
}

// result packs data as a scalar for rank 0 and a vector otherwise.
func result(data []float64, shape tensor.Shape) any {
	if shape.IsScalar() {
		return data[0]
	}
	return data
}

func vectorShape(op string, shape tensor.Shape) error {
	if len(shape) > 1 {
		return fmt.Errorf("%s: %w: dense operands are at most 1-D, got %v", op, tensor.ErrShapeMismatch, shape)
	}
	return nil
}

// Where selects a[i] where cond[i] holds and b[i] elsewhere.
// cond is a bool or []bool; all three operands broadcast together.
func Where(cond, a, b any) (any, error) {
	c, cShape, ok := condition(cond)
	if !ok {
		return nil, fmt.Errorf("where: %w: condition %T", routing.ErrUnsupportedOperand, cond)
	}
	aData, aShape, err := operand("where", a)
	if err != nil {
		return nil, err
	}
	bData, bShape, err := operand("where", b)
	if err != nil {
		return nil, err
	}

	outShape, _, err := tensor.BroadcastShapes(cShape, aShape)
	if err != nil {
		return nil, fmt.Errorf("where: %w", err)
	}
	outShape, _, err = tensor.BroadcastShapes(outShape, bShape)
	if err != nil {
		return nil, fmt.Errorf("where: %w", err)
	}
	if err := vectorShape("where", outShape); err != nil {
		return nil, err
	}

	out := make([]float64, outShape.NumElements())
	for i := range out {
		if at(c, i) {
			out[i] = at(aData, i)
		} else {
			out[i] = at(bData, i)
		}
	}
	return result(out, outShape), nil
}

// Sum returns the sum of all elements as a float64.
func Sum(x any) (any, error) {
	data, _, err := operand("sum", x)
	if err != nil {
		return nil, err
	}
	return floats.Sum(data), nil
}

// Dot follows numpy.dot for rank 0 and 1: a scalar scales the other
// operand, two vectors give their inner product.
func Dot(a, b any) (any, error) {
	aData, aShape, err := operand("dot", a)
	if err != nil {
		return nil, err
	}
	bData, bShape, err := operand("dot", b)
	if err != nil {
		return nil, err
	}

	switch {
	case aShape.IsScalar() && bShape.IsScalar():
		return aData[0] * bData[0], nil
	case aShape.IsScalar():
		out := make([]float64, len(bData))
		floats.ScaleTo(out, aData[0], bData)
		return out, nil
	case bShape.IsScalar():
		out := make([]float64, len(aData))
		floats.ScaleTo(out, bData[0], aData)
		return out, nil
	case len(aData) != len(bData):
		return nil, fmt.Errorf("dot: %w: %v and %v", tensor.ErrShapeMismatch, aShape, bShape)
	default:
		return floats.Dot(aData, bData), nil
	}
}

// BroadcastTo stretches x to shape. shape is a tensor.Shape, []int or int.
// The result is a fresh float64 (rank 0) or []float64 (rank 1).
func BroadcastTo(x, shape any) (any, error) {
	dst, err := tensor.AsShape(shape)
	if err != nil {
		return nil, fmt.Errorf("broadcast_to: %w", err)
	}
	data, src, err := operand("broadcast_to", x)
	if err != nil {
		return nil, err
	}
	if err := tensor.BroadcastTo(src, dst); err != nil {
		return nil, fmt.Errorf("broadcast_to: %w", err)
	}
	if err := vectorShape("broadcast_to", dst); err != nil {
		return nil, err
	}

	out := make([]float64, dst.NumElements())
	for i := range out {
		out[i] = at(data, i)
	}
	return result(out, dst), nil
}
