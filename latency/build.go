// SPDX-License-Identifier: MIT

package latency

import (
	"github.com/katalvlaran/anchorset/matrix"
)

const opBuild = "BuildMatrix"

// BuildMatrix converts a candidate set and its measurements into an N×N
// latency matrix.
// Implementation:
//   - Stage 1: Validate inputs (non-nil, N > 0); allocate N×N.
//   - Stage 2: For every ordered pair (i, j), i != j, in index order, look up
//     (node_i, node_j) and store float64(raw)/UnitDivisor. The diagonal stays 0.
//   - Stage 3: Report the finished matrix to the sink.
//
// Behavior highlights:
//   - Node i is cands.At(i); ascending NodeIdent order fixes the indexing.
//   - Asymmetric tables produce asymmetric matrices; nothing is averaged.
//   - On failure no matrix is returned; the first gap is reported to the sink
//     and returned as *MissingMeasurementError.
//
// Errors:
//   - ErrNilTable, ErrEmptyCandidateSet,
//   - *MissingMeasurementError (matches ErrMissingMeasurement).
//
// Complexity:
//   - Time O(N²) map lookups, Space O(N²).
func BuildMatrix(cands *CandidateSet, table *Table, opts ...Option) (*matrix.Dense, error) {
	if cands == nil {
		return nil, latencyErrorf(opBuild, ErrNilTable)
	}
	n := cands.Len()
	if n == 0 {
		return nil, latencyErrorf(opBuild, ErrEmptyCandidateSet)
	}
	o := gatherOptions(opts...)

	m, err := matrix.NewDenseWith(n, n, o.matrixOpts...)
	if err != nil {
		return nil, latencyErrorf(opBuild, err)
	}

	var (
		i, j int
		raw  uint32
		miss *MissingMeasurementError
		row  []float64
	)
	for i = 0; i < n; i++ {
		// Row aliases the buffer; the bounds are already known to be valid.
		row, _ = m.Row(i)
		for j = 0; j < n; j++ {
			if i == j {
				row[j] = 0.0
				continue
			}
			if raw, miss = table.lookup(cands.nodes[i], cands.nodes[j]); miss != nil {
				o.sink.MissingMeasurement(miss.From.String(), miss.To.String(), miss.Row)
				return nil, latencyErrorf(opBuild, miss)
			}
			row[j] = float64(raw) / UnitDivisor
		}
	}

	o.sink.MatrixBuilt(cands.Labels(), m)

	return m, nil
}
