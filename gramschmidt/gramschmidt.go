// SPDX-License-Identifier: MIT

// Package gramschmidt builds an orthogonal basis incrementally with the
// modified Gram-Schmidt process.
//
// Vectors are offered one at a time. Each is orthogonalized against every
// vector accepted so far; if what remains is negligible the vector is linearly
// dependent on the basis and is rejected, leaving the rank unchanged.
// Accepted vectors are kept unnormalized; Norms exposes their lengths.
//
// A Basis serves one evaluation: after Finalize it refuses further input.
package gramschmidt

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/anchorset/matrix"
)

var (
	// ErrFinalized is returned by Add after Finalize.
	ErrFinalized = errors.New("gramschmidt: basis already finalized")

	// ErrInvalidDimension is returned by New for dim <= 0.
	ErrInvalidDimension = errors.New("gramschmidt: dimension must be > 0")
)

// DefaultTolerance is the relative residual threshold below which a vector
// is rejected as dependent.
const DefaultTolerance = 1e-9

const panicToleranceInvalid = "gramschmidt: WithTolerance: tol must be finite, non-negative"

// Option configures a Basis.
type Option func(*options)

type options struct {
	tol float64
}

// WithTolerance sets the rejection tolerance. Panics when tol is negative or
// non-finite.
func WithTolerance(tol float64) Option {
	if tol < 0 || math.IsNaN(tol) || math.IsInf(tol, 0) {
		panic(panicToleranceInvalid)
	}
	return func(o *options) { o.tol = tol }
}

// Basis is an incremental orthogonal basis in R^dim.
type Basis struct {
	dim       int
	tol       float64
	vecs      [][]float64 // accepted, mutually orthogonal, unnormalized
	sqNorms   []float64   // ‖vecs[k]‖²
	finalized bool
}

// New returns an empty Basis for vectors of length dim.
func New(dim int, opts ...Option) (*Basis, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("New(%d): %w", dim, ErrInvalidDimension)
	}
	o := options{tol: DefaultTolerance}
	for _, set := range opts {
		set(&o)
	}

	return &Basis{dim: dim, tol: o.tol}, nil
}

// Dim returns the vector length.
func (b *Basis) Dim() int { return b.dim }

// Rank returns the number of accepted vectors.
func (b *Basis) Rank() int { return len(b.vecs) }

// Add offers v to the basis.
// Implementation:
//   - Stage 1: validate state, length and finiteness; copy v into w.
//   - Stage 2: for each accepted q (in acceptance order): w ← w − (<w,q>/‖q‖²)·q.
//     Using the running w rather than v is what makes this the modified variant.
//   - Stage 3: accept w when ‖w‖ > tol·max(1, ‖v‖).
//
// The zero vector is always rejected. v is never modified or retained.
//
// Errors:
//   - ErrFinalized, matrix.ErrDimensionMismatch, matrix.ErrNaNInf.
//
// Complexity:
//   - Time O(rank·dim), Space O(dim).
func (b *Basis) Add(v []float64) (bool, error) {
	if b.finalized {
		return false, ErrFinalized
	}
	if len(v) != b.dim {
		return false, fmt.Errorf("Add: %w", matrix.ErrDimensionMismatch)
	}
	if err := matrix.ValidateFiniteVec(v); err != nil {
		return false, fmt.Errorf("Add: %w", err)
	}

	w := make([]float64, b.dim)
	copy(w, v)

	var (
		k    int
		proj float64
		err  error
	)
	for k = 0; k < len(b.vecs); k++ {
		if proj, err = matrix.Dot(w, b.vecs[k]); err != nil {
			return false, fmt.Errorf("Add: %w", err)
		}
		if err = matrix.Axpy(-proj/b.sqNorms[k], b.vecs[k], w); err != nil {
			return false, fmt.Errorf("Add: %w", err)
		}
	}

	residual := matrix.Nrm2(w)
	if residual <= b.tol*math.Max(1, matrix.Nrm2(v)) {
		return false, nil
	}
	b.vecs = append(b.vecs, w)
	b.sqNorms = append(b.sqNorms, residual*residual)

	return true, nil
}

// Norms returns the Euclidean length of each accepted vector, in acceptance
// order.
func (b *Basis) Norms() []float64 {
	out := make([]float64, len(b.sqNorms))
	for i, s := range b.sqNorms {
		out[i] = math.Sqrt(s)
	}
	return out
}

// Finalize closes the basis and returns its vectors as the rows of a
// rank×dim matrix together with the rank. The matrix is nil when the rank is
// 0. Calling Finalize again returns a fresh copy of the same result.
func (b *Basis) Finalize() (*matrix.Dense, int) {
	b.finalized = true
	r := len(b.vecs)
	if r == 0 {
		return nil, 0
	}
	q, _ := matrix.NewDense(r, b.dim) // r, dim > 0
	var row []float64
	for i, v := range b.vecs {
		row, _ = q.Row(i)
		copy(row, v)
	}

	return q, r
}
