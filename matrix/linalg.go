// SPDX-License-Identifier: MIT
// Package matrix provides factorization-level operations on Matrix values:
// Householder QR and a partial-pivoting determinant. Both validate inputs,
// never mutate them, and take a flat fast path on *Dense.
//
// Notes:
//   - All kernels return plain sentinels wrapped via matrixErrorf at the facade.

package matrix

import (
	"fmt"
	"math"
)

// NormZero is the additive identity for norm and accumulation operations.
const NormZero = 0.0

// ZeroSum is the initial sum value for dot products and substitutions.
const ZeroSum = 0.0

// ZeroPivot is the sentinel for detecting a zero pivot in elimination.
const ZeroPivot = 0.0

const (
	opQR  = "QR"
	opDet = "Det"
)

// matrixErrorf wraps err with an operation tag, preserving it via %w.
// Use only when err != nil.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// asDense returns m as *Dense, copying through At when m is another implementation.
func asDense(m Matrix) (*Dense, error) {
	if d, ok := m.(*Dense); ok {
		return d.clone(), nil
	}
	res, err := NewDense(m.Rows(), m.Cols())
	if err != nil {
		return nil, err
	}
	var v float64
	for i := 0; i < m.Rows(); i++ {
		for j := 0; j < m.Cols(); j++ {
			if v, err = m.At(i, j); err != nil {
				return nil, fmt.Errorf("At(%d,%d): %w", i, j, err)
			}
			res.data[i*res.c+j] = v
		}
	}

	return res, nil
}

// QR computes a Householder-based factorization such that A ≈ Qᵀ * R.
// Implementation:
//   - Stage 1: Validate m (not nil, square); copy A; init Q to identity.
//   - Stage 2: For k=0..n-1, build a column reflector and apply it to A (forming R) and to Q.
//
// Behavior highlights:
//   - Deterministic column order; no sign canonicalization inside.
//   - |det A| = Π |R[i,i]|, which is how callers use R for volumes.
//
// Returns:
//   - *Dense: Q (accumulated reflectors; A ≈ Qᵀ * R, not Q*R).
//   - *Dense: R (upper triangular after reflections).
//
// Errors:
//   - ErrNilMatrix, ErrNonSquare.
//
// Complexity:
//   - Time O(n^3), Space O(n^2).
func QR(m Matrix) (*Dense, *Dense, error) {
	if err := ValidateSquareNonNil(m); err != nil {
		return nil, nil, matrixErrorf(opQR, err)
	}
	n := m.Rows()

	A, err := asDense(m)
	if err != nil {
		return nil, nil, matrixErrorf(opQR, err)
	}
	Q, err := NewDense(n, n)
	if err != nil {
		return nil, nil, matrixErrorf(opQR, err)
	}
	for i := 0; i < n; i++ {
		Q.data[i*n+i] = 1.0
	}

	v := make([]float64, n)
	var (
		i, j, k    int
		norm, beta float64
		alpha, tau float64
		sum        float64
	)
	for k = 0; k < n; k++ {
		// 2.1: norm of A[k:n][k]
		norm = NormZero
		for i = k; i < n; i++ {
			norm += A.data[i*n+k] * A.data[i*n+k]
		}
		norm = math.Sqrt(norm)
		if norm == NormZero {
			continue // skip zero column
		}

		// 2.2: alpha = -sign(A[k,k]) * norm
		alpha = -math.Copysign(norm, A.data[k*n+k])

		// 2.3: Householder vector v
		for i = 0; i < n; i++ {
			v[i] = 0.0
		}
		for i = k; i < n; i++ {
			v[i] = A.data[i*n+k]
		}
		v[k] -= alpha

		// 2.4: β = vᵀv, τ = 2/β
		beta = NormZero
		for i = k; i < n; i++ {
			beta += v[i] * v[i]
		}
		if beta == NormZero {
			continue
		}
		tau = 2.0 / beta

		// 2.5: reflect A (update R)
		for j = k; j < n; j++ {
			sum = ZeroSum
			for i = k; i < n; i++ {
				sum += v[i] * A.data[i*n+j]
			}
			for i = k; i < n; i++ {
				A.data[i*n+j] -= tau * v[i] * sum
			}
		}

		// 2.6: reflect Q
		for j = 0; j < n; j++ {
			sum = ZeroSum
			for i = k; i < n; i++ {
				sum += v[i] * Q.data[i*n+j]
			}
			for i = k; i < n; i++ {
				Q.data[i*n+j] -= tau * v[i] * sum
			}
		}
	}

	return Q, A, nil
}

// Det returns the determinant of a square matrix using Gaussian elimination
// with partial pivoting on a private copy.
// Implementation:
//   - Stage 1: validate (not nil, square); copy into a scratch Dense.
//   - Stage 2: for each column pick the largest |pivot| (first on ties), swap
//     rows (flipping the sign), eliminate below.
//   - Stage 3: product of pivots times the accumulated sign.
//
// Behavior highlights:
//   - An exactly zero pivot column yields 0 (singular), not an error.
//
// Errors:
//   - ErrNilMatrix, ErrNonSquare.
//
// Complexity:
//   - Time O(n^3), Space O(n^2).
func Det(m Matrix) (float64, error) {
	if err := ValidateSquareNonNil(m); err != nil {
		return 0, matrixErrorf(opDet, err)
	}
	A, err := asDense(m)
	if err != nil {
		return 0, matrixErrorf(opDet, err)
	}
	n := A.r
	det := 1.0
	var (
		i, k, p int
		best, f float64
	)
	for k = 0; k < n; k++ {
		p, best = k, math.Abs(A.data[k*n+k])
		for i = k + 1; i < n; i++ {
			if a := math.Abs(A.data[i*n+k]); a > best {
				p, best = i, a
			}
		}
		if best == ZeroPivot {
			return 0, nil
		}
		if p != k {
			swap(A.row(p), A.row(k))
			det = -det
		}
		det *= A.data[k*n+k]
		for i = k + 1; i < n; i++ {
			f = A.data[i*n+k] / A.data[k*n+k]
			if f != 0 {
				axpy(-f, A.data[k*n+k:k*n+n], A.data[i*n+k:i*n+n])
			}
		}
	}

	return det, nil
}
