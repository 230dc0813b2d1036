// SPDX-License-Identifier: MIT

// Package hypervolume measures how much room a point set spans: the volume
// of the simplex whose vertices are the rows of a latency matrix.
//
// Pipeline (OfActive):
//
//  1. Copy the active NPrime×NPrime block.
//  2. Recentre: subtract the last row from every other row, zero the last row.
//  3. Orthogonalize the first NPrime−1 rows (gramschmidt).
//  4. Project every row onto the unit basis directions (matrix.MulNT).
//  5. Volume = |det(first d×d coordinates)| / d!, d = NPrime−1.
//
// The result is zero when the points are affinely dependent (rank < d) or
// when fewer than two points remain. It is never negative.
package hypervolume

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/anchorset/gramschmidt"
	"github.com/katalvlaran/anchorset/matrix"
)

// ErrNotRecentred indicates that the last row passed to Evaluate is not
// exactly zero.
var ErrNotRecentred = errors.New("hypervolume: last row must be exactly zero")

const (
	opEvaluate    = "Evaluate"
	opOfActive    = "OfActive"
	opParallelope = "ParallelotopeVolume"
	opSimplex     = "SimplexVolume"
)

func hvErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// Option configures OfActive.
type Option func(*options)

type options struct {
	basis []gramschmidt.Option
}

// WithTolerance sets the dependence tolerance of the basis engine.
// Panics on a negative or non-finite tol (see gramschmidt.WithTolerance).
func WithTolerance(tol float64) Option {
	o := gramschmidt.WithTolerance(tol)
	return func(opts *options) { opts.basis = append(opts.basis, o) }
}

// Evaluate computes the simplex volume from recentred rows and their basis.
// Implementation:
//   - Stage 1: validate shapes; the last row of rows must be exactly zero.
//   - Stage 2: d = NPrime−1; return 0 when d == 0 or rank < d.
//   - Stage 3: coord = rows·basisᵀ, column j scaled by 1/‖basis_j‖.
//   - Stage 4: |det(coord[0:d][0:d])| / d!.
//
// rows and basis are not modified.
//
// Errors:
//   - matrix.ErrNilMatrix, matrix.ErrNonSquare, matrix.ErrDimensionMismatch,
//   - ErrNotRecentred.
//
// Complexity:
//   - Time O(NPrime²·rank + d³), Space O(NPrime·rank).
func Evaluate(rows, basis *matrix.Dense, rank int) (float64, error) {
	if rows == nil {
		return 0, hvErrorf(opEvaluate, matrix.ErrNilMatrix)
	}
	if err := matrix.ValidateSquare(rows); err != nil {
		return 0, hvErrorf(opEvaluate, err)
	}
	nPrime := rows.Rows()
	last, _ := rows.Row(nPrime - 1)
	for _, v := range last {
		if v != 0 {
			return 0, hvErrorf(opEvaluate, ErrNotRecentred)
		}
	}

	d := nPrime - 1
	if rank < 0 || rank > d {
		return 0, hvErrorf(opEvaluate, matrix.ErrDimensionMismatch)
	}
	if d == 0 || rank < d {
		return 0, nil
	}
	if basis == nil {
		return 0, hvErrorf(opEvaluate, matrix.ErrNilMatrix)
	}
	if basis.Rows() != rank || basis.Cols() != nPrime {
		return 0, hvErrorf(opEvaluate, matrix.ErrDimensionMismatch)
	}

	coord, err := matrix.MulNT(rows, basis)
	if err != nil {
		return 0, hvErrorf(opEvaluate, err)
	}

	// Leading d×d block with unit-direction coordinates.
	block, err := matrix.NewDense(d, d)
	if err != nil {
		return 0, hvErrorf(opEvaluate, err)
	}
	var (
		i, j       int
		qj, cr, br []float64
	)
	inv := make([]float64, d)
	for j = 0; j < d; j++ {
		qj, _ = basis.Row(j)
		inv[j] = 1 / matrix.Nrm2(qj)
	}
	for i = 0; i < d; i++ {
		cr, _ = coord.Row(i)
		br, _ = block.Row(i)
		for j = 0; j < d; j++ {
			br[j] = cr[j] * inv[j]
		}
	}

	det, err := matrix.Det(block)
	if err != nil {
		return 0, hvErrorf(opEvaluate, err)
	}

	return math.Abs(det) / factorial(d), nil
}

// OfActive runs the full pipeline on the active region of m.
// m itself is left untouched; all work happens on a private copy.
//
// Errors:
//   - matrix.ErrNilMatrix, matrix.ErrNonSquare.
func OfActive(m *matrix.Dense, opts ...Option) (float64, error) {
	if m == nil {
		return 0, hvErrorf(opOfActive, matrix.ErrNilMatrix)
	}
	if err := matrix.ValidateSquare(m); err != nil {
		return 0, hvErrorf(opOfActive, err)
	}
	a := m.Active()
	if a < 2 {
		return 0, nil
	}
	o := options{}
	for _, set := range opts {
		set(&o)
	}

	rows, err := m.ActiveCopy()
	if err != nil {
		return 0, hvErrorf(opOfActive, err)
	}
	if err = Recentre(rows); err != nil {
		return 0, hvErrorf(opOfActive, err)
	}

	b, err := gramschmidt.New(a, o.basis...)
	if err != nil {
		return 0, hvErrorf(opOfActive, err)
	}
	var r []float64
	for i := 0; i < a-1; i++ {
		r, _ = rows.Row(i)
		if _, err = b.Add(r); err != nil {
			return 0, hvErrorf(opOfActive, err)
		}
	}
	q, rank := b.Finalize()

	return Evaluate(rows, q, rank)
}

// Recentre subtracts the last row of m from every other row and zeroes the
// last row, in place.
//
// Errors: matrix.ErrNilMatrix.
func Recentre(m *matrix.Dense) error {
	if m == nil {
		return matrix.ErrNilMatrix
	}
	n := m.Rows()
	last, _ := m.Row(n - 1)
	var r []float64
	for i := 0; i < n-1; i++ {
		r, _ = m.Row(i)
		if err := matrix.Axpy(-1, last, r); err != nil {
			return err
		}
	}
	for j := range last {
		last[j] = 0
	}

	return nil
}

// ParallelotopeVolume returns the k-dimensional volume spanned by the k rows
// of v (k ≤ cols), computed as sqrt(|det(V·Vᵀ)|) with the determinant taken
// from the diagonal of a Householder QR of the Gram matrix.
// It shares no code path with Evaluate beyond the kernels and is used as an
// independent check.
func ParallelotopeVolume(v *matrix.Dense) (float64, error) {
	if v == nil {
		return 0, hvErrorf(opParallelope, matrix.ErrNilMatrix)
	}
	if v.Rows() > v.Cols() {
		return 0, nil
	}
	g, err := matrix.MulNT(v, v)
	if err != nil {
		return 0, hvErrorf(opParallelope, err)
	}
	_, r, err := matrix.QR(g)
	if err != nil {
		return 0, hvErrorf(opParallelope, err)
	}
	prod := 1.0
	var x float64
	for i := 0; i < r.Rows(); i++ {
		x, _ = r.At(i, i)
		prod *= math.Abs(x)
	}

	return math.Sqrt(prod), nil
}

// SimplexVolume returns the volume of the simplex whose vertices are the rows
// of points (k+1 points in R^n): the parallelotope volume of the k edge
// vectors from the last point, divided by k!.
func SimplexVolume(points *matrix.Dense) (float64, error) {
	if points == nil {
		return 0, hvErrorf(opSimplex, matrix.ErrNilMatrix)
	}
	k := points.Rows() - 1
	if k == 0 {
		return 0, nil
	}
	edges, err := matrix.NewDense(k, points.Cols())
	if err != nil {
		return 0, hvErrorf(opSimplex, err)
	}
	last, _ := points.Row(k)
	var src, dst []float64
	for i := 0; i < k; i++ {
		src, _ = points.Row(i)
		dst, _ = edges.Row(i)
		copy(dst, src)
		_ = matrix.Axpy(-1, last, dst)
	}
	vol, err := ParallelotopeVolume(edges)
	if err != nil {
		return 0, hvErrorf(opSimplex, err)
	}

	return vol / factorial(k), nil
}

// factorial returns d! as float64. Overflows to +Inf past 170!, which turns
// the volume into 0.
func factorial(d int) float64 {
	f := 1.0
	for i := 2; i <= d; i++ {
		f *= float64(i)
	}
	return f
}
