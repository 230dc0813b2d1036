// SPDX-License-Identifier: MIT

// Package reduce implements greedy anchor elimination.
//
// Each round tries removing every active node in turn, measures the
// hypervolume of what would remain, and permanently removes the node whose
// absence leaves the largest volume. Trials work in place on the latency
// matrix: the node is swapped to the end of the active region, the extent is
// shrunk, and the exact reverse restores the matrix bit for bit.
package reduce

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/anchorset/diag"
	"github.com/katalvlaran/anchorset/hypervolume"
	"github.com/katalvlaran/anchorset/latency"
	"github.com/katalvlaran/anchorset/matrix"
)

var (
	// ErrInvalidReductionCount is returned when numReduction is negative or
	// not smaller than the node count.
	ErrInvalidReductionCount = errors.New("reduce: reduction count must satisfy 0 <= n < len(nodes)")

	// ErrExhaustedCandidates is the panic value (wrapped) raised when a round
	// finds no candidate to remove. It signals a broken invariant, never bad
	// input.
	ErrExhaustedCandidates = errors.New("reduce: no removal candidate found")
)

const opReduce = "ReduceSetByN"

func reduceErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// Result is the outcome of one reduction run.
type Result struct {
	Survivors   []latency.NodeIdent `yaml:"survivors"`
	Removed     []latency.NodeIdent `yaml:"removed"` // in removal order
	HyperVolume float64             `yaml:"hypervolume"`
}

// evaluator scores the active region of a matrix.
type evaluator func(m *matrix.Dense) (float64, error)

// Reducer runs greedy reductions. It holds configuration only and is safe to
// share between goroutines as long as each call gets its own matrix.
type Reducer struct {
	sink   diag.Sink
	hvOpts []hypervolume.Option
	eval   evaluator
}

// Option configures a Reducer.
type Option func(*Reducer)

// WithSink reports every committed round to s. A nil sink is ignored.
func WithSink(s diag.Sink) Option {
	return func(r *Reducer) {
		if s != nil {
			r.sink = s
		}
	}
}

// WithTolerance sets the dependence tolerance used by the hypervolume
// evaluation. Panics on invalid values (see gramschmidt.WithTolerance).
func WithTolerance(tol float64) Option {
	o := hypervolume.WithTolerance(tol)
	return func(r *Reducer) { r.hvOpts = append(r.hvOpts, o) }
}

// New returns a Reducer with the given options.
func New(opts ...Option) *Reducer {
	r := &Reducer{sink: diag.Nop{}}
	for _, set := range opts {
		set(r)
	}
	if r.eval == nil {
		hvOpts := r.hvOpts
		r.eval = func(m *matrix.Dense) (float64, error) {
			return hypervolume.OfActive(m, hvOpts...)
		}
	}

	return r
}

// ReduceSetByN removes numReduction nodes from nodes, one per round.
// nodes[k] must correspond to row/column k of m.
// Implementation:
//   - Stage 1: validate everything before touching m.
//   - Stage 2: per round, for every active k: exclude k, evaluate, restore.
//     The winner is tracked with >= so the last of equally good candidates
//     wins; the round maximum is tracked separately with >.
//   - Stage 3: exclude the winner permanently, move its node to Removed and
//     swap-remove it from the working vector.
//
// Behavior highlights:
//   - m is consumed: on return its active extent is len(Survivors) and the
//     active block is the survivors' latency matrix in Survivors order.
//   - nodes is not modified.
//   - HyperVolume is the last round's maximum, 0 when numReduction == 0.
//
// Errors:
//   - ErrInvalidReductionCount, matrix.ErrNilMatrix,
//   - matrix.ErrNonSquare, matrix.ErrDimensionMismatch (m.Active() != len(nodes)),
//   - any error from the hypervolume evaluation.
//
// Panics:
//   - with an error wrapping ErrExhaustedCandidates if a round finds no
//     candidate (e.g. every evaluation produced NaN).
//
// Complexity:
//   - Time O(r·N·E(N)) where E is one evaluation (O(N³)), so O(r·N⁴).
//   - Space O(N²) per evaluation.
func (r *Reducer) ReduceSetByN(nodes []latency.NodeIdent, m *matrix.Dense, numReduction int) (Result, error) {
	n := len(nodes)
	if numReduction < 0 || numReduction >= n {
		return Result{}, fmt.Errorf("%s(%d of %d): %w", opReduce, numReduction, n, ErrInvalidReductionCount)
	}
	if m == nil {
		return Result{}, reduceErrorf(opReduce, matrix.ErrNilMatrix)
	}
	if err := matrix.ValidateSquare(m); err != nil {
		return Result{}, reduceErrorf(opReduce, err)
	}
	if m.Active() != n {
		return Result{}, reduceErrorf(opReduce, matrix.ErrDimensionMismatch)
	}

	working := make([]latency.NodeIdent, n)
	copy(working, nodes)
	removed := make([]latency.NodeIdent, 0, numReduction)

	var (
		round, k, best int
		hv, bestHV     float64
		roundMax       float64
		err            error
	)
	for round = 1; round <= numReduction; round++ {
		best, bestHV, roundMax = -1, math.Inf(-1), math.Inf(-1)
		for k = 0; k < m.Active(); k++ {
			if hv, err = r.trial(m, k); err != nil {
				return Result{}, reduceErrorf(opReduce, err)
			}
			if hv >= bestHV {
				best, bestHV = k, hv
			}
			if hv > roundMax {
				roundMax = hv
			}
		}
		if best < 0 {
			panic(fmt.Errorf("%w: round %d, %d active", ErrExhaustedCandidates, round, m.Active()))
		}

		last := m.Active() - 1
		if err = exclude(m, best); err != nil {
			return Result{}, reduceErrorf(opReduce, err)
		}
		removed = append(removed, working[best])
		working[best] = working[last]
		working = working[:last]

		r.sink.RoundCompleted(round, removed[len(removed)-1].String(), roundMax, len(working))
	}

	res := Result{Survivors: working, Removed: removed}
	if numReduction > 0 {
		res.HyperVolume = roundMax
	}

	return res, nil
}

// trial scores m with node k excluded and always restores m before
// returning.
func (r *Reducer) trial(m *matrix.Dense, k int) (hv float64, err error) {
	if err = exclude(m, k); err != nil {
		return 0, err
	}
	defer func() {
		if rerr := restore(m, k); rerr != nil && err == nil {
			err = rerr
		}
	}()

	return r.eval(m)
}

// exclude moves row/column k to the end of the active region and shrinks the
// extent by one:
//  1. swap column k with the last active column across the active rows;
//  2. swap row k with the last active row across the remaining columns;
//  3. shrink.
func exclude(m *matrix.Dense, k int) error {
	a := m.Active()
	last := a - 1
	if err := m.SwapColsPrefix(k, last, a); err != nil {
		return err
	}
	if err := m.SwapRowsPrefix(k, last, a-1); err != nil {
		return err
	}

	return m.Shrink()
}

// restore undoes exclude(m, k) in exact reverse order.
func restore(m *matrix.Dense, k int) error {
	if err := m.Grow(); err != nil {
		return err
	}
	a := m.Active()
	last := a - 1
	if err := m.SwapRowsPrefix(k, last, a-1); err != nil {
		return err
	}

	return m.SwapColsPrefix(k, last, a)
}

// ReduceSetByN runs a default Reducer.
func ReduceSetByN(nodes []latency.NodeIdent, m *matrix.Dense, numReduction int) (Result, error) {
	return New().ReduceSetByN(nodes, m, numReduction)
}
