// Package matrix provides the dense numeric layer used by anchor selection.
//
// The matrix package provides:
//
//   - Dense: an owned, bounds-checked, row-major float64 buffer with an
//     "active extent" that lets square matrices shrink and grow logically
//     without reallocation.
//   - Prefix swaps (SwapRowsPrefix, SwapColsPrefix) used to move a row/column
//     out of the active region and back again, bit-for-bit reversibly.
//   - Named BLAS-like kernels over float64 slices: Swap, Copy, Axpy, Scal,
//     Dot, Nrm2, plus MulNT (C = A·Bᵀ) on Dense.
//   - Householder QR and a partial-pivoting determinant.
//
// Dense matrices are meant for the small, fully populated latency matrices
// produced by the latency package (tens to a few hundred nodes), where O(n²)
// memory is cheap and cache-friendly flat storage pays off.
package matrix
