// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//  - Provide a single, canonical source of truth for common validation checks.
//  - Keep kernels/facades minimal by delegating shape/nil/diagonal checks here.
//
// Determinism & Performance:
//  - All checks are pure, deterministic and allocate nothing.

package matrix

import (
	"fmt"
	"math"
)

// validatorErrorf wraps an underlying error with the given validator tag.
func validatorErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// ValidateNotNil – Ensures the matrix reference is non-nil.
// Also catches a typed-nil *Dense hidden behind the interface.
//
// Returns ErrNilMatrix if m == nil.
// Complexity: O(1).
func ValidateNotNil(m Matrix) error {
	if m == nil {
		return validatorErrorf("ValidateNotNil", ErrNilMatrix)
	}
	if d, ok := m.(*Dense); ok && d == nil {
		return validatorErrorf("ValidateNotNil", ErrNilMatrix)
	}

	return nil
}

// ValidateSquare checks that m is square (Rows == Cols).
// Assumes m is not nil (caller must ensure).
func ValidateSquare(m Matrix) error {
	if m.Rows() != m.Cols() {
		return validatorErrorf("ValidateSquare", ErrNonSquare)
	}

	return nil
}

// ValidateSquareNonNil composes ValidateNotNil → ValidateSquare.
func ValidateSquareNonNil(m Matrix) error {
	if err := ValidateNotNil(m); err != nil {
		return err
	}

	return ValidateSquare(m)
}

// ValidateVecLen ensures the vector length matches the required size n.
// A nil vector is reported as ErrNilMatrix (the package's "nil argument" sentinel).
func ValidateVecLen(x []float64, n int) error {
	if x == nil {
		return validatorErrorf("ValidateVecLen", ErrNilMatrix)
	}
	if len(x) != n {
		return validatorErrorf("ValidateVecLen", ErrDimensionMismatch)
	}

	return nil
}

// ValidateFiniteVec rejects NaN and ±Inf entries.
func ValidateFiniteVec(x []float64) error {
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return validatorErrorf(fmt.Sprintf("ValidateFiniteVec[%d]", i), ErrNaNInf)
		}
	}

	return nil
}

// ZeroDiagonal reports whether every diagonal entry of a square m is exactly 0.
// Errors: ErrNilMatrix, ErrNonSquare.
// Complexity: O(n).
func ZeroDiagonal(m Matrix) (bool, error) {
	if err := ValidateSquareNonNil(m); err != nil {
		return false, err
	}
	var v float64
	var err error
	for i := 0; i < m.Rows(); i++ {
		if v, err = m.At(i, i); err != nil {
			return false, err
		}
		if v != 0 {
			return false, nil
		}
	}

	return true, nil
}

// AllClose reports whether a and b have the same shape and
// |a[i,j]-b[i,j]| <= atol + rtol·|b[i,j]| everywhere. atol is resolved from
// options (WithEpsilon; DefaultEpsilon otherwise).
func AllClose(a, b Matrix, rtol float64, opts ...Option) (bool, error) {
	if err := ValidateNotNil(a); err != nil {
		return false, err
	}
	if err := ValidateNotNil(b); err != nil {
		return false, err
	}
	if a.Rows() != b.Rows() || a.Cols() != b.Cols() {
		return false, validatorErrorf("AllClose", ErrDimensionMismatch)
	}
	atol := gatherOptions(opts...).eps
	var av, bv float64
	var err error
	for i := 0; i < a.Rows(); i++ {
		for j := 0; j < a.Cols(); j++ {
			if av, err = a.At(i, j); err != nil {
				return false, err
			}
			if bv, err = b.At(i, j); err != nil {
				return false, err
			}
			if math.Abs(av-bv) > atol+rtol*math.Abs(bv) {
				return false, nil
			}
		}
	}

	return true, nil
}
