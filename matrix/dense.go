// SPDX-License-Identifier: MIT

// Package matrix - Dense storage (row-major), safe accessors and the active extent.
//
// Purpose:
//   - Provide a cache-friendly row-major buffer with the explicit index formula i*cols + j.
//   - Guarantee safety at the public surface: At/Set/swaps return errors instead of panicking.
//   - Carry a logical "active extent" so square matrices can be shrunk and regrown
//     in place (rows/cols beyond the extent are parked, not freed).
//   - Enforce a numeric policy (optional rejection of NaN/Inf) from a single source of truth.
//
// Complexity quicksheet:
//   - NewDense: O(r*c) zero-init; At/Set: O(1); Clone: O(r*c);
//     SwapRowsPrefix/SwapColsPrefix: O(n); ActiveCopy: O(a²).

package matrix

import (
	"fmt"
	"math"
	"strings"
)

// ---------- error context tags ----------

const (
	ctxAt       = "At"
	ctxSet      = "Set"
	ctxRow      = "Row"
	ctxSwapRows = "SwapRowsPrefix"
	ctxSwapCols = "SwapColsPrefix"
	ctxShrink   = "Shrink"
	ctxGrow     = "Grow"
	ctxFrom     = "NewDenseFrom"
)

// ---------- Formatting literals ----------
const (
	_fmtRowOpen  = "["
	_fmtRowClose = "]\n"
	_fmtSep      = ", "
)

// denseErrorf wraps an error with a uniform Dense context and callsite indices.
// Keeps a stable "Dense.<method>(row,col): <sentinel>" shape; preserves the
// sentinel via %w for errors.Is.
func denseErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("Dense.%s(%d,%d): %w", method, row, col, err)
}

// Dense is a concrete row-major matrix.
//   - r,c hold dimensions (rows, cols).
//   - data is a flat buffer of length r*c in row-major order (offset = i*c + j).
//   - active is the logical extent: rows/cols [0, active) form the working region.
//   - validateNaNInf enables optional NaN/Inf rejection in Set.
type Dense struct {
	r, c           int       // row and column counts (>0)
	data           []float64 // contiguous row-major storage (len == r*c)
	active         int       // logical extent, 0 <= active <= min(r, c)
	validateNaNInf bool      // numeric guard: reject NaN/Inf in Set when true
}

// Compile-time assertions for interface & fmt.Stringer conformance.
var (
	_ Matrix       = (*Dense)(nil)
	_ fmt.Stringer = (*Dense)(nil)
)

// NewDense creates an r×c zero matrix using row-major storage and the default
// numeric policy. The active extent starts at min(rows, cols).
//
// Errors:
//   - ErrInvalidDimensions when rows<=0 or cols<=0.
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
func NewDense(rows, cols int) (*Dense, error) {
	return NewDenseWith(rows, cols)
}

// NewDenseWith is NewDense with explicit options (numeric policy).
// Implementation:
//   - Stage 1: validate rows>0 && cols>0; else ErrInvalidDimensions.
//   - Stage 2: resolve options; allocate zero-filled buffer.
func NewDenseWith(rows, cols int, opts ...Option) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}
	o := gatherOptions(opts...)

	return &Dense{
		r:              rows,
		c:              cols,
		data:           make([]float64, rows*cols),
		active:         min(rows, cols),
		validateNaNInf: o.validateNaNInf,
	}, nil
}

// NewDenseFrom copies a rectangular [][]float64 into a fresh Dense.
// Every row must have the same positive length; values obey the numeric policy.
//
// Errors:
//   - ErrInvalidDimensions (no rows / empty first row),
//   - ErrDimensionMismatch (ragged rows),
//   - ErrNaNInf (non-finite value under the default policy).
func NewDenseFrom(rows [][]float64, opts ...Option) (*Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrInvalidDimensions
	}
	m, err := NewDenseWith(len(rows), len(rows[0]), opts...)
	if err != nil {
		return nil, err
	}
	var i, j int
	for i = 0; i < m.r; i++ {
		if len(rows[i]) != m.c {
			return nil, denseErrorf(ctxFrom, i, len(rows[i]), ErrDimensionMismatch)
		}
		for j = 0; j < m.c; j++ {
			if m.validateNaNInf && isNonFinite(rows[i][j]) {
				return nil, denseErrorf(ctxFrom, i, j, ErrNaNInf)
			}
			m.data[i*m.c+j] = rows[i][j]
		}
	}

	return m, nil
}

// Rows returns the row count. No side effects.
func (m *Dense) Rows() int { return m.r }

// Cols returns the column count. No side effects.
func (m *Dense) Cols() int { return m.c }

// Shape packs Rows() and Cols() into a single call for convenience.
func (m *Dense) Shape() (rows, cols int) { return m.r, m.c }

// indexOf bounds-checks (row,col) and returns the row-major offset.
// Returns the bare sentinel; public methods wrap it with coordinates.
func (m *Dense) indexOf(row, col int) (int, error) {
	if row < 0 || row >= m.r {
		return 0, ErrOutOfRange
	}
	if col < 0 || col >= m.c {
		return 0, ErrOutOfRange
	}

	return row*m.c + col, nil
}

// At returns the value at (row, col) or ErrOutOfRange.
// Complexity: O(1).
func (m *Dense) At(row, col int) (float64, error) {
	off, err := m.indexOf(row, col)
	if err != nil {
		return 0, denseErrorf(ctxAt, row, col, err)
	}

	return m.data[off], nil
}

// Set stores v at (row, col) or returns an error (bounds or numeric policy).
//
// Errors:
//   - ErrOutOfRange for bounds; ErrNaNInf for non-finite values when the policy is on.
//
// Complexity: O(1).
func (m *Dense) Set(row, col int, v float64) error {
	off, err := m.indexOf(row, col)
	if err != nil {
		return denseErrorf(ctxSet, row, col, err)
	}
	if m.validateNaNInf && (math.IsNaN(v) || math.IsInf(v, 0)) {
		return denseErrorf(ctxSet, row, col, ErrNaNInf)
	}
	m.data[off] = v

	return nil
}

// Row returns the i-th row as a slice aliasing the backing buffer.
// Writes through the slice bypass the numeric policy; kernels use it for
// flat, allocation-free access.
func (m *Dense) Row(i int) ([]float64, error) {
	if i < 0 || i >= m.r {
		return nil, denseErrorf(ctxRow, i, 0, ErrOutOfRange)
	}

	return m.data[i*m.c : (i+1)*m.c], nil
}

// row is the unchecked variant of Row for package-internal hot paths.
func (m *Dense) row(i int) []float64 { return m.data[i*m.c : (i+1)*m.c] }

// Clone returns a deep copy (new buffer, same active extent and numeric policy).
// Complexity: O(r*c).
func (m *Dense) Clone() Matrix {
	return m.clone()
}

func (m *Dense) clone() *Dense {
	cp := make([]float64, len(m.data))
	copy(cp, m.data)

	return &Dense{
		r:              m.r,
		c:              m.c,
		data:           cp,
		active:         m.active,
		validateNaNInf: m.validateNaNInf,
	}
}

// Active returns the logical extent: rows and columns [0, Active()) are the
// working region. It starts at min(Rows(), Cols()).
func (m *Dense) Active() int { return m.active }

// Shrink reduces the active extent by one.
// Errors: ErrExtentUnderflow when the extent is already 0.
func (m *Dense) Shrink() error {
	if m.active == 0 {
		return denseErrorf(ctxShrink, m.active, m.active, ErrExtentUnderflow)
	}
	m.active--

	return nil
}

// Grow extends the active extent by one.
// Errors: ErrExtentOverflow when the extent already equals min(Rows(), Cols()).
func (m *Dense) Grow() error {
	if m.active == min(m.r, m.c) {
		return denseErrorf(ctxGrow, m.active, m.active, ErrExtentOverflow)
	}
	m.active++

	return nil
}

// SwapRowsPrefix exchanges the first n entries of rows i and j.
// MAIN DESCRIPTION:
//   - The row half of a "move row/column k to the end of the active region"
//     step. Only the leading n columns are touched, so entries in parked
//     columns stay where they are.
//
// Behavior highlights:
//   - i == j is a no-op.
//   - Applying the same call twice restores the original bits exactly.
//
// Errors:
//   - ErrOutOfRange when i or j is outside [0, Rows()) or n outside [0, Cols()].
//
// Complexity:
//   - Time O(n), Space O(1).
func (m *Dense) SwapRowsPrefix(i, j, n int) error {
	if i < 0 || i >= m.r || j < 0 || j >= m.r || n < 0 || n > m.c {
		return denseErrorf(ctxSwapRows, i, j, ErrOutOfRange)
	}
	if i == j || n == 0 {
		return nil
	}
	swap(m.data[i*m.c:i*m.c+n], m.data[j*m.c:j*m.c+n])

	return nil
}

// SwapColsPrefix exchanges columns i and j across the first n rows.
// Column counterpart of SwapRowsPrefix; the same reversibility holds.
//
// Errors:
//   - ErrOutOfRange when i or j is outside [0, Cols()) or n outside [0, Rows()].
//
// Complexity:
//   - Time O(n), Space O(1).
func (m *Dense) SwapColsPrefix(i, j, n int) error {
	if i < 0 || i >= m.c || j < 0 || j >= m.c || n < 0 || n > m.r {
		return denseErrorf(ctxSwapCols, i, j, ErrOutOfRange)
	}
	if i == j {
		return nil
	}
	var r, base int
	for r = 0; r < n; r++ {
		base = r * m.c
		m.data[base+i], m.data[base+j] = m.data[base+j], m.data[base+i]
	}

	return nil
}

// ActiveCopy materializes the active×active leading block as an independent
// Dense (same numeric policy, full extent).
//
// Errors:
//   - ErrInvalidDimensions when the active extent is 0.
//
// Complexity:
//   - Time O(a²), Space O(a²).
func (m *Dense) ActiveCopy() (*Dense, error) {
	a := m.active
	res, err := NewDense(a, a)
	if err != nil {
		return nil, err
	}
	res.validateNaNInf = m.validateNaNInf
	var i int
	for i = 0; i < a; i++ {
		copy(res.data[i*a:(i+1)*a], m.data[i*m.c:i*m.c+a])
	}

	return res, nil
}

// Equal reports whether m and b have the same shape, active extent, and
// bit-identical contents (NaN payloads included; +0 and -0 differ).
func (m *Dense) Equal(b *Dense) bool {
	if m == nil || b == nil {
		return m == b
	}
	if m.r != b.r || m.c != b.c || m.active != b.active {
		return false
	}
	for i := range m.data {
		if math.Float64bits(m.data[i]) != math.Float64bits(b.data[i]) {
			return false
		}
	}

	return true
}

// String renders rows as lines with comma-separated values (%g).
// Intended for logs and debugging; not for hot paths.
func (m *Dense) String() string {
	var b strings.Builder
	var i, j, base int
	for i = 0; i < m.r; i++ {
		b.WriteString(_fmtRowOpen)
		base = i * m.c
		for j = 0; j < m.c; j++ {
			b.WriteString(fmt.Sprintf("%g", m.data[base+j]))
			if j+1 < m.c {
				b.WriteString(_fmtSep)
			}
		}
		b.WriteString(_fmtRowClose)
	}

	return b.String()
}

// isNonFinite reports NaN or ±Inf.
func isNonFinite(v float64) bool { return math.IsNaN(v) || math.IsInf(v, 0) }
