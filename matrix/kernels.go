// SPDX-License-Identifier: MIT
// Package matrix - named vector kernels (BLAS level-1 style) and MulNT.
//
// Purpose:
//   - Give the handful of primitives the anchor pipeline needs a name and a
//     single implementation: Swap, Copy, Axpy, Scal, Dot, Nrm2 on float64
//     slices, and MulNT (C = A·Bᵀ) on Dense.
//   - Exported kernels validate lengths and return sentinels; unexported
//     twins skip the checks for package-internal hot loops.
//
// Determinism:
//   - Fixed index order 0..n-1 for every reduction (Dot/Nrm2), so results are
//     bit-reproducible for identical inputs.

package matrix

import "math"

const (
	opSwap  = "Swap"
	opCopy  = "Copy"
	opAxpy  = "Axpy"
	opDot   = "Dot"
	opMulNT = "MulNT"
)

// Swap exchanges the contents of x and y element-wise.
// Errors: ErrDimensionMismatch when len(x) != len(y).
func Swap(x, y []float64) error {
	if len(x) != len(y) {
		return matrixErrorf(opSwap, ErrDimensionMismatch)
	}
	swap(x, y)

	return nil
}

func swap(x, y []float64) {
	for i := range x {
		x[i], y[i] = y[i], x[i]
	}
}

// Copy copies src into dst.
// Errors: ErrDimensionMismatch when len(dst) != len(src).
func Copy(dst, src []float64) error {
	if len(dst) != len(src) {
		return matrixErrorf(opCopy, ErrDimensionMismatch)
	}
	copy(dst, src)

	return nil
}

// Axpy computes y ← alpha·x + y in place.
// Errors: ErrDimensionMismatch when len(x) != len(y).
// Complexity: O(n).
func Axpy(alpha float64, x, y []float64) error {
	if len(x) != len(y) {
		return matrixErrorf(opAxpy, ErrDimensionMismatch)
	}
	axpy(alpha, x, y)

	return nil
}

func axpy(alpha float64, x, y []float64) {
	if alpha == 0 {
		return
	}
	for i := range x {
		y[i] += alpha * x[i]
	}
}

// Scal computes x ← alpha·x in place.
func Scal(alpha float64, x []float64) {
	for i := range x {
		x[i] *= alpha
	}
}

// Dot returns Σ x[i]·y[i].
// Errors: ErrDimensionMismatch when len(x) != len(y).
func Dot(x, y []float64) (float64, error) {
	if len(x) != len(y) {
		return 0, matrixErrorf(opDot, ErrDimensionMismatch)
	}

	return dot(x, y), nil
}

func dot(x, y []float64) float64 {
	sum := ZeroSum
	for i := range x {
		sum += x[i] * y[i]
	}

	return sum
}

// Nrm2 returns the Euclidean norm of x.
// Uses a scaled sum of squares so very large or very small entries do not
// overflow or underflow the intermediate sum.
func Nrm2(x []float64) float64 {
	var scale, ssq = 0.0, 1.0
	var a, r float64
	for _, v := range x {
		if v == 0 {
			continue
		}
		a = math.Abs(v)
		if scale < a {
			r = scale / a
			ssq = 1 + ssq*r*r
			scale = a
		} else {
			r = a / scale
			ssq += r * r
		}
	}
	if scale == 0 {
		return NormZero
	}

	return scale * math.Sqrt(ssq)
}

// MulNT computes C = A·Bᵀ, i.e. C[i][j] = <A.row(i), B.row(j)>.
// Implementation:
//   - Stage 1: validate non-nil operands and a.Cols() == b.Cols().
//   - Stage 2: allocate C (a.Rows()×b.Rows()); fill with row-row dot products.
//
// Behavior highlights:
//   - Row-row dot products walk both operands contiguously (row-major),
//     which is why the transposed form is the natural kernel here.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch.
//
// Complexity:
//   - Time O(ra·rb·c), Space O(ra·rb).
func MulNT(a, b *Dense) (*Dense, error) {
	if a == nil || b == nil {
		return nil, matrixErrorf(opMulNT, ErrNilMatrix)
	}
	if a.c != b.c {
		return nil, matrixErrorf(opMulNT, ErrDimensionMismatch)
	}
	res, err := NewDense(a.r, b.r)
	if err != nil {
		return nil, matrixErrorf(opMulNT, err)
	}
	res.validateNaNInf = a.validateNaNInf
	var i, j int
	var ai []float64
	for i = 0; i < a.r; i++ {
		ai = a.row(i)
		for j = 0; j < b.r; j++ {
			res.data[i*b.r+j] = dot(ai, b.row(j))
		}
	}

	return res, nil
}
