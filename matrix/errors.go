// SPDX-License-Identifier: MIT
// Package matrix: sentinel error set.
// This file defines ONLY package-level sentinel errors used across the matrix
// package. All kernels MUST return these sentinels (optionally wrapped with an
// operation tag) and tests MUST check them via errors.Is. No kernel panics on
// user-triggered error conditions.

package matrix

import "errors"

// NOTE ON NAMING & PREFIXING
// --------------------------
// Every message is prefixed with "matrix: ..." for consistency and to allow
// easy grepping across logs. When context is essential, wrap with
// fmt.Errorf("ctx: %w", ErrX) at the outer boundary; callers still match with
// errors.Is.
//
// ERROR PRIORITY (documented, enforced in tests):
// nil -> shape/index -> NaN/Inf -> extent violations -> numeric failures.

var (
	// ErrInvalidDimensions indicates that requested matrix dimensions are non-positive.
	ErrInvalidDimensions = errors.New("matrix: dimensions must be > 0")

	// ErrOutOfRange indicates that an index (row or column) is outside valid bounds.
	// Public indexers (At/Set) and swap primitives MUST return this, not panic.
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrDimensionMismatch indicates incompatible dimensions between operands,
	// e.g., vectors of different length or MulNT where a.Cols != b.Cols.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrNonSquare signals that a square matrix was required but the input wasn't.
	ErrNonSquare = errors.New("matrix: matrix is not square")

	// ErrNaNInf signals a NaN or ±Inf value was encountered where finite values
	// are required by the numeric policy.
	ErrNaNInf = errors.New("matrix: NaN or Inf encountered")

	// ErrNilMatrix indicates that a nil Matrix (receiver or argument) was used.
	ErrNilMatrix = errors.New("matrix: nil receiver")

	// ErrExtentUnderflow is returned when Shrink would make the active extent negative.
	ErrExtentUnderflow = errors.New("matrix: active extent cannot shrink below zero")

	// ErrExtentOverflow is returned when Grow would exceed the physical order.
	ErrExtentOverflow = errors.New("matrix: active extent cannot grow beyond order")

	// ErrSingular is returned when a factorization meets an exactly zero pivot.
	ErrSingular = errors.New("matrix: singular matrix")
)
