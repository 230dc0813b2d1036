// Package anchorset selects a well-spread subset of anchor nodes from
// pairwise latency measurements.
//
// Every node is treated as a point whose coordinates are its latencies to the
// other nodes. The spread of a node set is the volume of the simplex those
// points span. Given N candidates, anchorset removes nodes one at a time,
// always the one whose absence leaves the largest volume, until the requested
// number is gone.
//
// Layout:
//
//	matrix/       dense row-major matrix with a shrinkable active extent + kernels
//	latency/      node identities, measurement tables, YAML codec, matrix build
//	gramschmidt/  incremental orthogonal basis with dependence rejection
//	hypervolume/  simplex volume of the active rows of a latency matrix
//	reduce/       greedy elimination over the matrix, in place
//	diag/         diagnostic sinks: slog, Prometheus metrics
//	anchor/       service: run IDs, tracing, bounded parallel runs
//	cmd/anchorset command line front end
//
// Quick example:
//
//	cands, table, _ := latency.ReadFile("latencies.yaml")
//	m, _ := latency.BuildMatrix(cands, table)
//	res, _ := reduce.ReduceSetByN(cands.Nodes(), m, 2)
//	fmt.Println(res.Survivors, res.HyperVolume)
package anchorset
