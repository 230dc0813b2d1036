// Package latency turns pairwise round-trip measurements into the dense
// matrix consumed by anchor reduction.
//
// The latency package provides:
//
//   - NodeIdent: an address+port peer identity with a total order.
//   - CandidateSet: a sorted, duplicate-free node set; a node's rank in the
//     set is its matrix index.
//   - Table: raw (from, to) measurements, not assumed symmetric.
//   - BuildMatrix: N×N *matrix.Dense with a zero diagonal and
//     [i][j] = raw(node_i, node_j) / UnitDivisor.
//   - Decode/Encode/ReadFile: a YAML measurement document.
//
// A missing measurement is a hard error. BuildMatrix never returns a partial
// matrix; the error names the node that could not be resolved and whether the
// whole row or just one entry was missing.
package latency
