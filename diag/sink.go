// SPDX-License-Identifier: MIT

// Package diag carries the diagnostic side channel of anchor selection.
//
// The numeric packages (latency, reduce) never log. They report what happened
// to an injected Sink; this package ships the Sink implementations:
//
//   - Nop:        discards everything (the default everywhere).
//   - SlogSink:   structured records on a *slog.Logger.
//   - Metrics:    Prometheus counters, gauges and histograms.
//   - Multi:      fan-out to several sinks in order.
//
// Node identities cross this boundary as strings so that diag depends only on
// the matrix package.
package diag

import (
	"time"

	"github.com/katalvlaran/anchorset/matrix"
)

// Sink receives diagnostics from matrix construction and reduction.
// Implementations must not retain or mutate m beyond the call.
type Sink interface {
	// MissingMeasurement is called when a latency lookup fails. row is true
	// when "from" has no measurements at all, false when only the (from,to)
	// entry is absent.
	MissingMeasurement(from, to string, row bool)

	// MatrixBuilt is called once per successfully built latency matrix.
	// labels[i] names row/column i.
	MatrixBuilt(labels []string, m matrix.Matrix)

	// RoundCompleted is called after each permanent removal. active is the
	// number of nodes still in play after the removal.
	RoundCompleted(round int, removed string, hv float64, active int)

	// RunCompleted is called once per selection run, successful or not.
	RunCompleted(runID string, survivors, removed int, hv float64, elapsed time.Duration, err error)
}

// Nop is a Sink that discards everything.
type Nop struct{}

var _ Sink = Nop{}

func (Nop) MissingMeasurement(string, string, bool) {}
func (Nop) MatrixBuilt([]string, matrix.Matrix) {}
func (Nop) RoundCompleted(int, string, float64, int) {}
func (Nop) RunCompleted(string, int, int, float64, time.Duration, error) {}

// Multi fans every call out to each sink in order. nil entries are skipped.
type Multi []Sink

var _ Sink = Multi(nil)

// NewMulti returns a Multi of the non-nil sinks. With zero or one sink it
// returns Nop or that sink directly.
func NewMulti(sinks ...Sink) Sink {
	out := make(Multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	switch len(out) {
	case 0:
		return Nop{}
	case 1:
		return out[0]
	}

	return out
}

func (ms Multi) MissingMeasurement(from, to string, row bool) {
	for _, s := range ms {
		if s != nil {
			s.MissingMeasurement(from, to, row)
		}
	}
}

func (ms Multi) MatrixBuilt(labels []string, m matrix.Matrix) {
	for _, s := range ms {
		if s != nil {
			s.MatrixBuilt(labels, m)
		}
	}
}

func (ms Multi) RoundCompleted(round int, removed string, hv float64, active int) {
	for _, s := range ms {
		if s != nil {
			s.RoundCompleted(round, removed, hv, active)
		}
	}
}

func (ms Multi) RunCompleted(runID string, survivors, removed int, hv float64, elapsed time.Duration, err error) {
	for _, s := range ms {
		if s != nil {
			s.RunCompleted(runID, survivors, removed, hv, elapsed, err)
		}
	}
}

// OrNop returns s, or Nop when s is nil.
func OrNop(s Sink) Sink {
	if s == nil {
		return Nop{}
	}

	return s
}
