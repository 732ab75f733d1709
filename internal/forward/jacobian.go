package forward

import (
	"github.com/RoaringBitmap/roaring/v2"
	"gonum.org/v1/gonum/mat"
)

// Jacobian is a sparse matrix of partial derivatives stored by rows.
// Row i maps a variable index to d value[i] / d x[var]. Absent entries are
// structural zeros.
type Jacobian struct {
	cols int
	rows []map[int]float64
}

func newJacobian(rows, cols int) *Jacobian {
	return &Jacobian{cols: cols, rows: make([]map[int]float64, rows)}
}

// identity returns the n×n identity Jacobian.
func identity(n int) *Jacobian {
	j := newJacobian(n, n)
	for i := range j.rows {
		j.rows[i] = map[int]float64{i: 1}
	}
	return j
}

// Rows returns the number of rows (value entries).
func (j *Jacobian) Rows() int {
	return len(j.rows)
}

// Cols returns the number of columns (independent variables).
func (j *Jacobian) Cols() int {
	return j.cols
}

// At returns the entry at row i, column k.
func (j *Jacobian) At(i, k int) float64 {
	return j.rows[i][k]
}

// NNZ returns the number of stored entries.
func (j *Jacobian) NNZ() int {
	n := 0
	for _, r := range j.rows {
		n += len(r)
	}
	return n
}

// Pattern returns the sparsity pattern: the columns stored in each row.
func (j *Jacobian) Pattern() []*roaring.Bitmap {
	out := make([]*roaring.Bitmap, len(j.rows))
	for i, r := range j.rows {
		bm := roaring.New()
		for k := range r {
			bm.Add(uint32(k))
		}
		out[i] = bm
	}
	return out
}

// Dense returns the Jacobian as a gonum matrix.
// A Jacobian with no rows or no columns yields an empty mat.Dense.
func (j *Jacobian) Dense() *mat.Dense {
	if len(j.rows) == 0 || j.cols == 0 {
		return &mat.Dense{}
	}
	m := mat.NewDense(len(j.rows), j.cols, nil)
	for i, r := range j.rows {
		for k, v := range r {
			m.Set(i, k, v)
		}
	}
	return m
}

func cloneRow(r map[int]float64) map[int]float64 {
	if len(r) == 0 {
		return nil
	}
	out := make(map[int]float64, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// axpy adds scale*src into dst, allocating dst if needed.
func axpy(dst map[int]float64, scale float64, src map[int]float64) map[int]float64 {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[int]float64, len(src))
	}
	for k, v := range src {
		dst[k] += scale * v
	}
	return dst
}
