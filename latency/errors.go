// SPDX-License-Identifier: MIT
// Package latency: sentinel error set and the typed missing-measurement error.

package latency

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingMeasurement indicates that a required (from, to) latency is absent.
	// Returned errors are *MissingMeasurementError values that match this
	// sentinel via errors.Is.
	ErrMissingMeasurement = errors.New("latency: missing measurement")

	// ErrEmptyCandidateSet indicates a matrix was requested for zero nodes.
	ErrEmptyCandidateSet = errors.New("latency: empty candidate set")

	// ErrDuplicateNode indicates the same node was listed twice.
	ErrDuplicateNode = errors.New("latency: duplicate node")

	// ErrInvalidNode indicates an unparsable or zero-valued node identity.
	ErrInvalidNode = errors.New("latency: invalid node")

	// ErrDuplicateMeasurement indicates a (from, to) pair listed twice in one file.
	ErrDuplicateMeasurement = errors.New("latency: duplicate measurement")

	// ErrNilTable indicates a nil *Table or *CandidateSet argument.
	ErrNilTable = errors.New("latency: nil table or candidate set")
)

// MissingMeasurementError identifies the lookup that failed.
//
// Row is true when From has no measurements at all; the row node is the one
// that cannot be resolved. Otherwise From has measurements but none to To,
// and the column node is the culprit.
type MissingMeasurementError struct {
	From, To NodeIdent
	Row      bool
}

func (e *MissingMeasurementError) Error() string {
	if e.Row {
		return fmt.Sprintf("latency: no measurements from %s (needed for %s)", e.From, e.To)
	}
	return fmt.Sprintf("latency: missing measurement %s -> %s", e.From, e.To)
}

// Is makes errors.Is(err, ErrMissingMeasurement) hold.
func (e *MissingMeasurementError) Is(target error) bool {
	return target == ErrMissingMeasurement
}

// Node returns the node that could not be resolved: From for row failures,
// To for column failures.
func (e *MissingMeasurementError) Node() NodeIdent {
	if e.Row {
		return e.From
	}
	return e.To
}

// latencyErrorf wraps err with an operation tag, preserving it via %w.
func latencyErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
